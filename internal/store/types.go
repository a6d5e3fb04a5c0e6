package store

type DatabaseType string

const (
	DBTypePostgres DatabaseType = "postgres"
	DBTypeSQLite   DatabaseType = "sqlite"
)

type DBConfig struct {
	DSN           string
	Type          DatabaseType
	MigrationsDir string
}

// VocabularyRow is one seeded row of the statuses or results table.
type VocabularyRow struct {
	ID    int    `db:"id"`
	Value string `db:"value"`
}
