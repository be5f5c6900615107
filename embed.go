// Package liftplan holds assets compiled into the liftplan binaries.
package liftplan

import "embed"

// MigrationsFS holds the Postgres schema migrations.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS
