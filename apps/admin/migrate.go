package main

func (cli *commandLine) migrate(args []string) error {
	return migrateFunc(cli.db, cli.engine, args...)
}
