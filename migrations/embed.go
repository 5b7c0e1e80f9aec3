// Package migrations embeds the SQL schema applied at startup.
package migrations

import "embed"

// FS holds the .sql files.
//
//go:embed *.sql
var FS embed.FS
