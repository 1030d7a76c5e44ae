package storage

import (
	"context"
	"errors"
	"fmt"

	"metastore-scraper/models"
	"metastore-scraper/utils"
)

// ErrPartialSync is returned when at least one record failed to persist.
var ErrPartialSync = errors.New("some records failed to sync")

// SyncOutcome reports what a Sync call did.
type SyncOutcome struct {
	Cleared  bool
	Upserted int
	Failed   int
}

// Syncer writes batches into a RecordStore, one record at a time.
type Syncer struct {
	store     RecordStore
	publisher RecordPublisher
	logger    *utils.Logger
}

func NewSyncer(store RecordStore, logger *utils.Logger) *Syncer {
	return &Syncer{store: store, logger: logger}
}

// WithPublisher announces each upserted record on p.
func (s *Syncer) WithPublisher(p RecordPublisher) *Syncer {
	s.publisher = p
	return s
}

// Sync optionally clears the store, then upserts every record by id. It is
// not transactional: a failed record is counted and the rest continue.
func (s *Syncer) Sync(ctx context.Context, records []*models.Record, clear bool) (SyncOutcome, error) {
	var out SyncOutcome

	if clear {
		if err := s.store.Clear(ctx); err != nil {
			return out, fmt.Errorf("clear store: %w", err)
		}
		out.Cleared = true
		s.logger.Info("[sync] Cleared existing records")
	}

	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return out, fmt.Errorf("sync interrupted after %d records: %w", out.Upserted+out.Failed, err)
		}
		if r == nil || r.ID == "" {
			out.Failed++
			s.logger.Warn("[sync] Skipping record without app_id")
			continue
		}
		if err := s.store.Upsert(ctx, r); err != nil {
			out.Failed++
			s.logger.With("app_id", r.ID).Err(err, "[sync] Upsert failed")
			continue
		}
		out.Upserted++

		if s.publisher != nil {
			if err := s.publisher.Publish(ctx, r); err != nil {
				s.logger.Warn("[sync] Publish %s failed: %v", r.ID, err)
			}
		}
	}

	s.logger.Info("[sync] Upserted %d records (%d failed)", out.Upserted, out.Failed)
	if out.Failed > 0 {
		return out, fmt.Errorf("%w: %d of %d", ErrPartialSync, out.Failed, len(records))
	}
	return out, nil
}
