package main

import (
	"fmt"
	"io"

	"github.com/noah-isme/getaroom/pkg/database"
)

func (a *app) migrate(stdout io.Writer) error {
	if err := database.RunMigrations(a.db.DB, a.logger); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "Migrations applied")
	return nil
}
