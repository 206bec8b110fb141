package migrations

import "embed"

// Files stores forward-only SQL migrations embedded into the binary. The
// statements stay within the SQL subset shared by SQLite and Postgres.
//
//go:embed *.sql
var Files embed.FS
