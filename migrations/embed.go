// Package migrations embeds the MySQL schema migrations so the server and
// the seed command can apply them with goose without a filesystem path.
package migrations

import "embed"

// FS holds all *.sql migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS
