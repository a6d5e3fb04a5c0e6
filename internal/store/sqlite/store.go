package sqlite

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/shrimpsizemoose/appello/internal/store"
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

type SQLiteStore struct {
	store.BaseStore
}

// NewSQLiteStore opens dsn (a file path or ":memory:") and applies
// migrations. SQLite allows one writer at a time, so the pool is capped at a
// single connection; this also keeps an in-memory database alive.
func NewSQLiteStore(dsn string, migrationsDir string) (*SQLiteStore, error) {
	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set %q: %w", pragma, err)
		}
	}

	s := &SQLiteStore{BaseStore: store.NewBaseStore(
		db,
		func(query string) string {
			return query
		},
		"",
		isUniqueViolation,
	)}

	if err := s.ApplyMigrations(migrationsDir); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) ApplyMigrations(dir string) error {
	return s.BaseStore.ApplyMigrations(dir, translateToSQLite)
}

// sqliteReplacements covers the Postgres types used by the migrations and is
// applied in order, so BIGSERIAL PRIMARY KEY is rewritten before BIGINT.
var sqliteReplacements = []struct{ from, to string }{
	{"BIGSERIAL PRIMARY KEY", "INTEGER PRIMARY KEY AUTOINCREMENT"},
	{"BIGINT", "INTEGER"},
	{"VARCHAR(50)", "TEXT"},
	{"VARCHAR(6)", "TEXT"},
}

// translateToSQLite converts Postgres SQL to SQLite dialect
func translateToSQLite(sql string) string {
	result := sql
	for _, r := range sqliteReplacements {
		result = strings.ReplaceAll(result, r.from, r.to)
	}
	return result
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}
