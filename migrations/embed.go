// Package migrations embeds the PostgreSQL schema migrations.
package migrations

import "embed"

// Dir is the directory inside FS holding the migration files.
const Dir = "postgres"

// FS holds the golang-migrate up/down files.
//
//go:embed postgres/*.sql
var FS embed.FS
