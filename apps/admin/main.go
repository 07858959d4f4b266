package main

import (
	"fmt"
	"os"

	"github.com/trezcool/darasa/apps/shared"
	"github.com/trezcool/darasa/core"
	emailsvc "github.com/trezcool/darasa/services/email"
	logsvc "github.com/trezcool/darasa/services/logger"
	"github.com/trezcool/darasa/storage/database"
)

func main() {
	conf, err := core.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	std, err := logsvc.NewZapLogger("ADMIN", conf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "setting up logger: %v\n", err)
		os.Exit(1)
	}
	logger := logsvc.NewRollbarLogger(std, conf)
	logger.Enable(!conf.Debug)
	defer func() { _ = logger.Sync() }()

	// set up DB
	database.SetMigrationLogger(logger)
	if err = database.CreateIfNotExist(conf); err != nil {
		logger.Fatal(fmt.Sprintf("creating database: %v", err), err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}

	// start CLI
	engine := conf.Database.Engine
	cli := commandLine{
		db:     db,
		engine: engine,
		svcs:   shared.NewServices(db, engine, conf, emailsvc.NewConsoleService(conf, logger), logger),
		out:    os.Stdout,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("admin: %v", err), err)
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
