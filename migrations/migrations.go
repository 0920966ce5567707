// Package migrations embeds the goose SQL migrations for the order store.
package migrations

import "embed"

//go:embed *.sql
var MigrationsFS embed.FS
