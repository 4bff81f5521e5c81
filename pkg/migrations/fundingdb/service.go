// Package fundingdb holds all the migrations for the funding database
package fundingdb

import (
	"github.com/uptrace/bun/migrate"
)

// Migrations is the collection of all migrations for the funding database
var Migrations = migrate.NewMigrations()
