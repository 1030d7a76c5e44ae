package storage

import (
	"context"
	"fmt"

	"metastore-scraper/config"
	"metastore-scraper/utils"
)

// Open connects the record store selected by cfg.StoreBackend.
func Open(ctx context.Context, cfg *config.Config, logger *utils.Logger) (RecordStore, error) {
	switch cfg.StoreBackend {
	case config.StoreMongo:
		ms, err := NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
		if err != nil {
			return nil, err
		}
		if err := ms.EnsureIndex(ctx); err != nil {
			logger.Warn("[storage] %v; one document per app_id is not guaranteed until the collection is cleared", err)
		}
		return ms, nil
	case config.StorePostgres:
		return NewPostgresStore(ctx, cfg.DSN())
	case config.StoreElasticsearch:
		return NewElasticStore(ctx, cfg.ElasticAddress, cfg.ElasticUsername, cfg.ElasticPassword, cfg.ElasticIndex)
	case config.StoreMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.StoreBackend)
	}
}
