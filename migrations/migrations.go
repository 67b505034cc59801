// Package migrations embeds the SQL schema for the relational key-value backends.
package migrations

import "embed"

// FS holds one directory of golang-migrate files per SQL dialect
//
//go:embed postgres/*.sql mysql/*.sql
var FS embed.FS
