package snapshot

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jeffreyvdb/dhgate-monitor/internal/models"
)

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	seller     TEXT NOT NULL,
	product_id TEXT NOT NULL,
	data       JSONB NOT NULL,
	PRIMARY KEY (seller, product_id)
)`

// PostgresRepository stores one row per (seller, product). Save replaces the
// seller's rows in full inside a transaction, so readers never observe a
// half-written snapshot.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(ctx context.Context, dsn string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, snapshotSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create snapshots table: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) Load(ctx context.Context, seller string) (models.Snapshot, error) {
	rows, err := r.pool.Query(ctx, `SELECT product_id, data FROM snapshots WHERE seller = $1`, seller)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot for %q: %w", seller, err)
	}
	defer rows.Close()

	snap := make(models.Snapshot)
	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}

		var p models.Product
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("corrupt snapshot entry %s/%s: %w", seller, id, err)
		}
		snap[id] = p
	}

	return snap, rows.Err()
}

func (r *PostgresRepository) Save(ctx context.Context, seller string, snap models.Snapshot) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM snapshots WHERE seller = $1`, seller); err != nil {
		return fmt.Errorf("failed to clear snapshot for %q: %w", seller, err)
	}

	for id, p := range snap {
		data, err := json.Marshal(p)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO snapshots (seller, product_id, data) VALUES ($1, $2, $3)`,
			seller, id, data,
		); err != nil {
			return fmt.Errorf("failed to insert snapshot entry %s/%s: %w", seller, id, err)
		}
	}

	return tx.Commit(ctx)
}

func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}
