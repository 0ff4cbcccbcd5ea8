// Package migrations embeds the SQL migrations for the local job journal.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
