package main

import (
	"fmt"

	"github.com/mkuprys/gradefold/core/student"
)

var exportRunFunc = runExport // mockable

func (cli *commandLine) exportMaster() error {
	path, count, err := exportRunFunc(cli)
	if err != nil {
		return err
	}
	fmt.Printf("exported %d students to %s\n", count, path)
	return nil
}

func runExport(cli *commandLine) (string, int, error) {
	svc := student.NewService(cli.conf, cli.repo, nil, cli.engine, cli.log)
	export, err := svc.ExportMaster()
	if err != nil {
		return "", 0, err
	}
	path, err := cli.repo.WriteExport("master_export.json", export)
	if err != nil {
		return "", 0, err
	}
	return path, export.StudentCount, nil
}
