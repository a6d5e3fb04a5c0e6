package app

import (
	"fmt"
	"strings"

	"github.com/shrimpsizemoose/appello/internal/store"
	"github.com/shrimpsizemoose/appello/internal/store/postgres"
	"github.com/shrimpsizemoose/appello/internal/store/sqlite"
)

// NewStore picks the dialect from the DSN. An empty migrationsDir applies
// the migrations embedded in the binary.
func NewStore(dsn, migrationsDir string) (store.Store, error) {
	dbType := store.DBTypeSQLite
	if strings.HasPrefix(dsn, "postgres") {
		dbType = store.DBTypePostgres
	}

	switch dbType {
	case store.DBTypePostgres:
		return postgres.NewPostgresStore(dsn, migrationsDir)
	case store.DBTypeSQLite:
		return sqlite.NewSQLiteStore(dsn, migrationsDir)
	default:
		return nil, fmt.Errorf("unable to determine database type from DSN: %s", dsn)
	}
}
