package ledger

import (
	"database/sql"
	"embed"

	"github.com/pkg/errors"
	migrate "github.com/rubenv/sql-migrate"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsTable = "migrations"

// Migrations returns the embedded migration source.
func Migrations() migrate.MigrationSource {
	return &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationsFS,
		Root:       "migrations",
	}
}

// Migrate applies all pending migrations and returns how many were applied.
func Migrate(db *sql.DB) (int, error) {
	set := migrate.MigrationSet{TableName: migrationsTable}

	n, err := set.Exec(db, "postgres", Migrations(), migrate.Up)
	if err != nil {
		return n, errors.Wrap(err, "failed to apply migrations")
	}

	return n, nil
}

// PlanMigrations lists the ids of migrations not yet applied.
func PlanMigrations(db *sql.DB) ([]string, error) {
	set := migrate.MigrationSet{TableName: migrationsTable}

	planned, _, err := set.PlanMigration(db, "postgres", Migrations(), migrate.Up, 0)
	if err != nil {
		return nil, errors.Wrap(err, "failed to plan migrations")
	}

	ids := make([]string, 0, len(planned))
	for _, m := range planned {
		ids = append(ids, m.Id)
	}

	return ids, nil
}
