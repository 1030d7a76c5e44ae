package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"metastore-scraper/models"
)

// PostgresStore keeps each record as a JSONB document keyed by app_id.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresStore.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, fmt.Errorf("postgres: ping: %w", ctx.Err())
		case <-time.After(2 * time.Second):
		}
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	ps := &PostgresStore{db: db}
	if err := ps.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return ps, nil
}

func (ps *PostgresStore) migrate(ctx context.Context) error {
	_, err := ps.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS app_records (
			app_id     TEXT        PRIMARY KEY,
			doc        JSONB       NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_app_records_category ON app_records ((doc->>'category'));
		CREATE INDEX IF NOT EXISTS idx_app_records_ratings  ON app_records (((doc->>'ratings')::NUMERIC));
	`)
	return err
}

// Clear deletes all existing records from the table.
func (ps *PostgresStore) Clear(ctx context.Context) error {
	if _, err := ps.db.ExecContext(ctx, "DELETE FROM app_records"); err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}
	return nil
}

// Upsert replaces the whole document stored under r.ID.
func (ps *PostgresStore) Upsert(ctx context.Context, r *models.Record) error {
	doc, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("postgres: encode %s: %w", r.ID, err)
	}
	_, err = ps.db.ExecContext(ctx, `
		INSERT INTO app_records (app_id, doc, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (app_id) DO UPDATE
		SET doc = EXCLUDED.doc, updated_at = NOW()
	`, r.ID, string(doc))
	if err != nil {
		return fmt.Errorf("postgres: upsert %s: %w", r.ID, err)
	}
	return nil
}

// FetchAll retrieves all stored records ordered by id.
func (ps *PostgresStore) FetchAll(ctx context.Context) ([]*models.Record, error) {
	rows, err := ps.db.QueryContext(ctx, `SELECT doc FROM app_records ORDER BY app_id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var records []*models.Record
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		r := &models.Record{}
		if err := json.Unmarshal(raw, r); err != nil {
			return nil, fmt.Errorf("postgres: decode row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
