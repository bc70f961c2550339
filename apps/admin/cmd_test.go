package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/unipath/unipath/core/application"
	"github.com/unipath/unipath/core/student"
	dummydb "github.com/unipath/unipath/storage/database/dummy"
	testutil "github.com/unipath/unipath/tests"
)

var (
	stuRepo student.Repository
	appRepo application.Repository
)

func setup(t *testing.T) *commandLine {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed, %v", err)
	}
	stuRepo = dummydb.NewStudentRepository(db)
	appRepo = dummydb.NewApplicationRepository(db)

	// start CLI
	return &commandLine{
		stuRepo: stuRepo,
		appRepo: appRepo,
		out:     new(bytes.Buffer),
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "document", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_cleanCountries(t *testing.T) {
	ctx := context.Background()
	cli := setup(t)

	stu := testutil.CreateStudent(t, stuRepo, "Awa Ndiaye", "awa@test.cd")

	// contaminated rows, inserted below the canonicalizing service layer
	if _, err := stuRepo.CreateProfile(ctx, student.StudentCountryProfile{
		StudentID:    stu.ID,
		Country:      `["United Kingdom"]`,
		CurrentPhase: student.PhaseDocumentCollection,
		VisaStatus:   student.VisaNotStarted,
	}); err != nil {
		t.Fatalf("CreateProfile() failed, %v", err)
	}
	if _, err := appRepo.CreateApplication(ctx, application.Application{
		StudentID:         stu.ID,
		UniversityName:    "UCL",
		UniversityCountry: "U.K.",
		Status:            application.StatusPending,
		Priority:          application.PriorityPrimary,
	}); err != nil {
		t.Fatalf("CreateApplication() failed, %v", err)
	}
	if _, err := appRepo.CreateApplication(ctx, application.Application{
		StudentID:         stu.ID,
		UniversityName:    "McGill",
		UniversityCountry: "Canda",
		Status:            application.StatusPending,
		Priority:          application.PriorityBackup,
	}); err != nil {
		t.Fatalf("CreateApplication() failed, %v", err)
	}

	t.Run("dry run leaves data untouched", func(t *testing.T) {
		out := new(bytes.Buffer)
		cli.out = out
		if err := cli.run([]string{"admin", "cleancountries", "-dry-run"}); err != nil {
			t.Fatalf("cli.run() unexpected error = %v", err)
		}
		if !strings.Contains(out.String(), "would fix") {
			t.Errorf("expected dry-run report, got %q", out.String())
		}

		apps, err := appRepo.QueryStudentApplications(ctx, stu.ID)
		if err != nil {
			t.Fatalf("QueryStudentApplications() failed, %v", err)
		}
		for _, app := range apps {
			if app.UniversityCountry == student.CountryUK {
				t.Error("dry run must not rewrite stored values")
			}
		}
	})

	t.Run("rewrites contaminated values", func(t *testing.T) {
		out := new(bytes.Buffer)
		cli.out = out
		if err := cli.run([]string{"admin", "cleancountries"}); err != nil {
			t.Fatalf("cli.run() unexpected error = %v", err)
		}

		profiles, err := stuRepo.QueryStudentProfiles(ctx, stu.ID)
		if err != nil {
			t.Fatalf("QueryStudentProfiles() failed, %v", err)
		}
		for _, p := range profiles {
			if p.Country != student.CountryUK {
				t.Errorf("profile country not normalized: %q", p.Country)
			}
		}

		apps, err := appRepo.QueryStudentApplications(ctx, stu.ID)
		if err != nil {
			t.Fatalf("QueryStudentApplications() failed, %v", err)
		}
		for _, app := range apps {
			if app.UniversityCountry != student.CountryUK && app.UniversityCountry != student.CountryCanada {
				t.Errorf("application country not normalized: %q", app.UniversityCountry)
			}
		}
	})

	t.Run("second pass reports clean", func(t *testing.T) {
		out := new(bytes.Buffer)
		cli.out = out
		if err := cli.run([]string{"admin", "cleancountries"}); err != nil {
			t.Fatalf("cli.run() unexpected error = %v", err)
		}
		if !strings.Contains(out.String(), "all country values are clean") {
			t.Errorf("expected clean report, got %q", out.String())
		}
	})
}
