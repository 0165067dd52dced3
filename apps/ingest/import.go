package main

import (
	"fmt"

	"github.com/mkuprys/gradefold/core/student"
	sheetsvc "github.com/mkuprys/gradefold/services/sheet"
)

var ingestRunFunc = runIngest // mockable

func (cli *commandLine) importWorkbook(path, columns string) error {
	stats, err := ingestRunFunc(cli, path, splitList(columns))
	if err != nil {
		return err
	}
	fmt.Printf("imported %d sheets, %d rows (%d skipped): %d assessments added, %d updated, %d new students\n",
		stats.Sheets, stats.Rows, stats.RowsSkipped, stats.Added, stats.Updated, stats.NewStudents)
	return nil
}

func runIngest(cli *commandLine, path string, allow []string) (*student.ImportStats, error) {
	source := sheetsvc.NewExcelSource(path, cli.conf, cli.log)
	svc := student.NewService(cli.conf, cli.repo, source, cli.engine, cli.log)
	return svc.Ingest(allow)
}
