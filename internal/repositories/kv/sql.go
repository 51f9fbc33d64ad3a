package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/todoauth/internal/dbx"
)

// SQLRepository stores entries in the kv table created by the embedded
// migrations. Queries are written with '?' placeholders and rebound for the
// dialect once, at construction.
type SQLRepository struct {
	db      *sql.DB
	dialect dbx.Dialect

	qGet, qGetForUpdate, qSet, qDelete, qClear, qList string
}

func NewSQLRepository(db *sql.DB, dialect dbx.Dialect) *SQLRepository {
	r := &SQLRepository{db: db, dialect: dialect}
	r.qGet = dbx.Rebind(dialect, `SELECT value FROM kv WHERE key = ?`)
	r.qGetForUpdate = r.qGet
	if dialect == dbx.DialectPostgres {
		r.qGetForUpdate = r.qGet + ` FOR UPDATE`
	}
	r.qSet = dbx.Rebind(dialect, `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`)
	r.qDelete = dbx.Rebind(dialect, `DELETE FROM kv WHERE key = ?`)
	r.qClear = `DELETE FROM kv`
	r.qList = `SELECT key, value FROM kv`
	return r
}

func (r *SQLRepository) Get(ctx context.Context, key string) ([]byte, error) {
	return r.get(ctx, r.db, r.qGet, key)
}

func (r *SQLRepository) get(ctx context.Context, db dbx.DBTX, query string, key string) ([]byte, error) {
	var value []byte
	err := db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get kv[%s]: %w", key, err)
	}
	return value, nil
}

func (r *SQLRepository) Set(ctx context.Context, key string, value []byte) error {
	return r.set(ctx, r.db, key, value)
}

func (r *SQLRepository) set(ctx context.Context, db dbx.DBTX, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	if _, err := db.ExecContext(ctx, r.qSet, key, value); err != nil {
		return fmt.Errorf("failed to set kv[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLRepository) Delete(ctx context.Context, key string) error {
	return r.delete(ctx, r.db, key)
}

func (r *SQLRepository) delete(ctx context.Context, db dbx.DBTX, key string) error {
	if _, err := db.ExecContext(ctx, r.qDelete, key); err != nil {
		return fmt.Errorf("failed to delete kv[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, r.qClear); err != nil {
		return fmt.Errorf("failed to clear kv: %w", err)
	}
	return nil
}

func (r *SQLRepository) List(ctx context.Context) (map[string][]byte, error) {
	rows, err := r.db.QueryContext(ctx, r.qList)
	if err != nil {
		return nil, fmt.Errorf("failed to list kv: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]byte)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan kv row: %w", err)
		}
		result[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate kv rows: %w", err)
	}

	return result, nil
}

func (r *SQLRepository) Update(ctx context.Context, key string, fn UpdateFunc) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		current, err := r.get(ctx, tx, r.qGetForUpdate, key)
		if err != nil {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		if next == nil {
			return r.delete(ctx, tx, key)
		}
		return r.set(ctx, tx, key, next)
	})
}
