//go:build !sqlite_cgo

package database

// Pure Go SQLite, no C compiler required.
//
// Driver used: modernc.org/sqlite

import (
	_ "modernc.org/sqlite"
)

const sqliteDriverName = "sqlite"
