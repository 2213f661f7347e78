package main

import (
	"context"

	"github.com/trezcool/campuscopilot/storage/database"
)

var gooseRunFunc = database.RunMigrations // mockable

func (cli *commandLine) migrate(ctx context.Context, args []string) error {
	db, err := database.Open(ctx, cli.conf.Database)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return gooseRunFunc(ctx, db.DB, cli.conf.Database.Engine, args[0], arguments...)
}
