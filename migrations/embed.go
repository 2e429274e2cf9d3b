// Package migrations embeds the database schema.
package migrations

import "embed"

// FS holds the SQL migrations applied in lexical order.
//
//go:embed *.sql
var FS embed.FS
