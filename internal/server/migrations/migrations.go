// Package migrations embeds the goose SQL migrations for the bluelink
// schema: login tokens, failed-attempt records, and directory users.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
