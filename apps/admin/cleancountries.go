package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/unipath/unipath/core/student"
)

// normalizeCountry collapses a stored value to its canonical country, falling
// back to fuzzy suggestion for typos ("Untied Kingdom") the alias table misses.
func normalizeCountry(raw string) string {
	fixed := student.CanonicalCountry(raw)
	for _, canonical := range student.CanonicalCountries {
		if fixed == canonical {
			return fixed
		}
	}
	if suggestion, ok := student.SuggestCountry(fixed); ok {
		return suggestion
	}
	return fixed
}

// cleanCountries rewrites contaminated country values on country profiles and
// applications, reporting a per-value change tally.
func (cli *commandLine) cleanCountries(dryRun bool) error {
	ctx := context.Background()

	students, err := cli.stuRepo.QueryStudents(ctx, nil, nil)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}

	changes := make(map[string]int)
	for _, stu := range students {
		if err := cli.cleanStudentCountries(ctx, stu.ID, dryRun, changes); err != nil {
			return err
		}
	}

	if len(changes) == 0 {
		fmt.Fprintln(cli.out, "all country values are clean")
		return nil
	}

	keys := make([]string, 0, len(changes))
	for k := range changes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	verb := "fixed"
	if dryRun {
		verb = "would fix"
	}
	for _, k := range keys {
		fmt.Fprintf(cli.out, "%s %s (%d)\n", verb, k, changes[k])
	}
	return nil
}

func (cli *commandLine) cleanStudentCountries(ctx context.Context, studentID string, dryRun bool, changes map[string]int) error {
	profiles, err := cli.stuRepo.QueryStudentProfiles(ctx, studentID)
	if err != nil {
		return errors.Wrap(err, "querying country profiles")
	}
	for _, profile := range profiles {
		fixed := normalizeCountry(profile.Country)
		if fixed == profile.Country {
			continue
		}
		changes[fmt.Sprintf("%q -> %q", profile.Country, fixed)]++
		if dryRun {
			continue
		}
		profile.Country = fixed
		profile.UpdatedAt = time.Now().UTC()
		if _, err = cli.stuRepo.UpdateProfile(ctx, profile); err != nil {
			return errors.Wrap(err, "updating country profile")
		}
	}

	apps, err := cli.appRepo.QueryStudentApplications(ctx, studentID)
	if err != nil {
		return errors.Wrap(err, "querying applications")
	}
	for _, app := range apps {
		fixed := normalizeCountry(app.UniversityCountry)
		if fixed == app.UniversityCountry {
			continue
		}
		changes[fmt.Sprintf("%q -> %q", app.UniversityCountry, fixed)]++
		if dryRun {
			continue
		}
		app.UniversityCountry = fixed
		app.UpdatedAt = time.Now().UTC()
		if _, err = cli.appRepo.UpdateApplication(ctx, app); err != nil {
			return errors.Wrap(err, "updating application")
		}
	}
	return nil
}
