// Package migrations embeds the goose SQL migration files so the server
// binary carries its schema with it instead of depending on a separate
// migration deploy step.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
