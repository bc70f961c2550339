package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/unipath/unipath/core/application"
	"github.com/unipath/unipath/core/student"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db      *sql.DB
	stuRepo student.Repository
	appRepo application.Repository
	out     io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run database migrations (up, down, status, ...)")
	fmt.Fprintln(cli.out, "  cleancountries [-dry-run] - normalize stored country names")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	cleanCountriesCmd := flag.NewFlagSet("cleancountries", flag.ExitOnError)
	cleanCountriesDryRun := cleanCountriesCmd.Bool("dry-run", false, "Report what would change without writing.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "cleancountries":
		if err := cleanCountriesCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.cleanCountries(*cleanCountriesDryRun)
	default:
		cli.printUsage()
		return errHelp
	}
}
