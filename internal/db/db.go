package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// pragmas run once per Open. The pool is pinned to one connection, so they
// hold for every statement that follows.
var pragmas = []string{
	"journal_mode = WAL",
	"synchronous = NORMAL",
	"busy_timeout = 5000",
}

// Open opens the SQLite file at path. daykcal is the only writer.
func Open(path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("database path is required")
	}
	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	sqldb.SetMaxOpenConns(1)
	if err := sqldb.Ping(); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("ping sqlite database %s: %w", path, err)
	}
	for _, p := range pragmas {
		if _, err := sqldb.Exec("PRAGMA " + p); err != nil {
			sqldb.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", p, err)
		}
	}
	return sqldb, nil
}
