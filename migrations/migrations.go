// Package migrations embeds the SQL schema so the migrate command works
// without a checkout of the repository.
package migrations

import "embed"

// FS holds every *.up.sql and *.down.sql file.
//
//go:embed *.sql
var FS embed.FS
