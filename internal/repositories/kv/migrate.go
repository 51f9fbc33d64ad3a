package kv

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/todoauth/internal/dbx"
	"github.com/dmitrijs2005/todoauth/internal/repositories/kv/migrations"
	"github.com/pressly/goose/v3"
)

// RunMigrations applies the embedded migrations for the given dialect.
// It is safe to call on an already migrated database.
func RunMigrations(ctx context.Context, db *sql.DB, dialect dbx.Dialect) error {
	var gooseDialect, dir string
	switch dialect {
	case dbx.DialectSQLite:
		gooseDialect, dir = "sqlite3", "sqlite"
	case dbx.DialectPostgres:
		gooseDialect, dir = "postgres", "postgres"
	default:
		return fmt.Errorf("unsupported dialect %q", dialect)
	}

	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
