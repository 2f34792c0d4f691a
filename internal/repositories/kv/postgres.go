package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophdesk/internal/dbx"
)

// PostgresRepository stores values in the kv table of a PostgreSQL
// database opened through the pgx stdlib driver.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT value FROM kv WHERE key = $1`
	return postgresGet(ctx, r.db, query, key)
}

func (r *PostgresRepository) Set(ctx context.Context, key string, value []byte) error {
	return postgresSet(ctx, r.db, key, value)
}

func (r *PostgresRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM kv WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Update serializes writers on the key with a transaction-scoped advisory
// lock before reading it. FOR UPDATE alone locks nothing while the row is
// absent, so two first writers could both see nil.
func (r *PostgresRepository) Update(ctx context.Context, key string, fn UpdateFunc) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
			return fmt.Errorf("db error: %w", err)
		}

		query := `SELECT value FROM kv WHERE key = $1 FOR UPDATE`
		current, err := postgresGet(ctx, tx, query, key)
		if err != nil {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		return postgresSet(ctx, tx, key, next)
	})
}

func postgresGet(ctx context.Context, db dbx.DBTX, query, key string) ([]byte, error) {
	var value []byte
	err := db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return value, nil
}

func postgresSet(ctx context.Context, db dbx.DBTX, key string, value []byte) error {
	query :=
		`INSERT INTO kv (key, value, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
		 `

	if _, err := db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
