package kv

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/todoauth/internal/config"
	"github.com/dmitrijs2005/todoauth/internal/dbx"
	"github.com/dmitrijs2005/todoauth/internal/filex"
	"github.com/dmitrijs2005/todoauth/internal/logging"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Store is an opened Repository plus the function that releases it.
type Store struct {
	Repository
	close func() error
}

func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

func nopClose() error { return nil }

// Open selects the backend named by cfg.StoreDriver. SQL backends are
// migrated before the store is returned.
func Open(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		logger.Info(ctx, "using in-memory store")
		return &Store{Repository: NewMemoryRepository(), close: nopClose}, nil

	case config.DriverS3:
		repo, err := NewS3RepositoryFromOptions(ctx, S3Options{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			Prefix:       cfg.S3Prefix,
		})
		if err != nil {
			return nil, err
		}
		logger.Info(ctx, "using s3 store", "bucket", cfg.S3Bucket, "prefix", cfg.S3Prefix)
		return &Store{Repository: repo, close: nopClose}, nil

	case config.DriverSQLite:
		dsn, err := sqliteDSN(cfg.DataDir, cfg.StoreDSN)
		if err != nil {
			return nil, err
		}
		logger.Info(ctx, "using sqlite store", "dsn", dsn)
		return openSQL(ctx, "sqlite", dsn, dbx.DialectSQLite)

	case config.DriverPostgres:
		logger.Info(ctx, "using postgres store")
		return openSQL(ctx, "pgx", cfg.StoreDSN, dbx.DialectPostgres)

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// sqliteDSN places plain file names under the data directory and leaves
// URIs and :memory: untouched.
func sqliteDSN(dataDir, dsn string) (string, error) {
	if dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return dsn, nil
	}
	return filex.DataFile(dataDir, dsn)
}

func openSQL(ctx context.Context, driver, dsn string, dialect dbx.Dialect) (*Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", driver, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}

	if err := RunMigrations(ctx, db, dialect); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{Repository: NewSQLRepository(db, dialect), close: db.Close}, nil
}
