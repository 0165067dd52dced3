package main

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/mkuprys/gradefold/core"
	"github.com/mkuprys/gradefold/core/curriculum"
	"github.com/mkuprys/gradefold/storage/records"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf   *core.Config
	repo   *records.FileRepository
	engine *curriculum.Engine
	log    core.Logger
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  import -file WORKBOOK [-columns COL1,COL2] - ingest a gradebook workbook")
	fmt.Println("  export - write the aggregated master export")
	fmt.Println("  mission -student ID -title TITLE -objectives CODE1,CODE2 [-type TYPE] [-deadline DATE] - create a mission")
	fmt.Println("  migrate -from VERSION -to VERSION - migrate the record collection between schema versions")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	importFile := importCmd.String("file", "", "Path to the .xlsx gradebook workbook.")
	importColumns := importCmd.String("columns", "", "Optional comma-separated allow-list of columns to process.")

	missionCmd := flag.NewFlagSet("mission", flag.ExitOnError)
	missionStudent := missionCmd.String("student", "", "The student record ID.")
	missionTitle := missionCmd.String("title", "", "The mission title.")
	missionType := missionCmd.String("type", "remediation", "The mission type.")
	missionObjectives := missionCmd.String("objectives", "", "Comma-separated objective codes, e.g. 9Ni.01,9Ni.02.")
	missionDeadline := missionCmd.String("deadline", "", "Optional ISO deadline date.")

	migrateCmd := flag.NewFlagSet("migrate", flag.ExitOnError)
	migrateFrom := migrateCmd.String("from", "", "Source schema version, e.g. 4.0.")
	migrateTo := migrateCmd.String("to", "", "Target schema version, e.g. 5.0.")

	switch args[1] {
	case "import":
		if err := importCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importFile == "" {
			importCmd.Usage()
			return errHelp
		}
		return cli.importWorkbook(*importFile, *importColumns)
	case "export":
		return cli.exportMaster()
	case "mission":
		if err := missionCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *missionStudent == "" || *missionTitle == "" || *missionObjectives == "" {
			missionCmd.Usage()
			return errHelp
		}
		return cli.createMission(*missionStudent, *missionTitle, *missionType, *missionObjectives, *missionDeadline)
	case "migrate":
		if err := migrateCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *migrateFrom == "" || *migrateTo == "" {
			migrateCmd.Usage()
			return errHelp
		}
		return cli.migrate(*migrateFrom, *migrateTo)
	default:
		cli.printUsage()
		return errHelp
	}
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = core.CleanString(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
