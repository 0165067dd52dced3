package main

import (
	"fmt"

	"github.com/mkuprys/gradefold/core/schema"
)

var migrateRunFunc = runMigrate // mockable

func (cli *commandLine) migrate(from, to string) error {
	stats, err := migrateRunFunc(cli, from, to)
	if err != nil {
		return err
	}
	fmt.Printf("migrated %d records from %s to %s (%d skipped)\n", stats.Migrated, from, to, stats.Skipped)
	return nil
}

func runMigrate(cli *commandLine, from, to string) (*schema.MigrateStats, error) {
	return schema.NewMigrator(cli.log).Migrate(cli.conf.DataDir, from, to)
}
