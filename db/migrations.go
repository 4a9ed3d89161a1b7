// Package db embeds the SQL migrations applied by the migrate command.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
