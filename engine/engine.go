package engine

import (
	"database/sql"
	"strings"

	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

// BusyTimeoutMillis is applied to every connection opened by Open.
const BusyTimeoutMillis = 5000

// Open opens a SQLite database using the modernc.org/sqlite driver.
//
// For file-based databases, pass a path like "./db.sqlite"; the database is
// switched to WAL journaling with a busy timeout so concurrent readers and a
// writer can share it. For in-memory databases, pass ":memory:"; the pool is
// then limited to one connection, since every SQLite connection would
// otherwise see its own empty database.
func Open(dsn string) (*sql.DB, error) {
	memory := isMemory(dsn)
	db, err := sql.Open("sqlite", withPragmas(dsn, memory))
	if err != nil {
		return nil, err
	}
	if memory {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

func isMemory(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

func withPragmas(dsn string, memory bool) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	pragmas := "_pragma=busy_timeout(5000)"
	if !memory {
		pragmas += "&_pragma=journal_mode(WAL)"
	}
	if strings.HasPrefix(dsn, "file:") || strings.Contains(dsn, "?") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		return dsn + sep + pragmas
	}
	if memory {
		return dsn
	}
	return "file:" + dsn + "?" + pragmas
}
