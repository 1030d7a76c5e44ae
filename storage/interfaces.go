package storage

import (
	"context"

	"metastore-scraper/models"
)

// RecordStore is a document store holding at most one record per app_id.
type RecordStore interface {
	// Clear deletes every stored record.
	Clear(ctx context.Context) error
	// Upsert inserts r or fully replaces the stored record with the same id.
	Upsert(ctx context.Context, r *models.Record) error
	FetchAll(ctx context.Context) ([]*models.Record, error)
	Close() error
}

// RecordWriter persists a whole batch to a local sink.
type RecordWriter interface {
	Write(records []*models.Record) error
}

// RecordPublisher announces synced records to downstream consumers.
type RecordPublisher interface {
	Publish(ctx context.Context, r *models.Record) error
	Close() error
}
