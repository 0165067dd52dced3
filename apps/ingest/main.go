package main

import (
	"log"
	"os"

	"github.com/mkuprys/gradefold/core"
	"github.com/mkuprys/gradefold/core/curriculum"
	logsvc "github.com/mkuprys/gradefold/services/logger"
	"github.com/mkuprys/gradefold/storage/records"
)

func main() {
	defer os.Exit(0)

	std := log.New(os.Stdout, "INGEST : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	var appLogger core.Logger
	if conf.RollbarToken != "" {
		appLogger = logsvc.NewRollbarLogger(std, conf)
	} else {
		appLogger = logsvc.NewConsoleLogger(std, conf)
	}

	repo, err := records.NewFileRepository(conf.DataDir, conf.SchemaVersion, appLogger)
	if err != nil {
		std.Fatal(err)
	}

	cli := commandLine{
		conf:   conf,
		repo:   repo,
		engine: curriculum.NewEngine(nil, appLogger, conf.MissionsAllowReopen),
		log:    appLogger,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			std.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
