package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"metastore-scraper/models"
)

// RedisPublisher appends every synced record to a Redis stream.
type RedisPublisher struct {
	client    *redis.Client
	stream    string
	maxLength int64
}

// NewRedisPublisher creates a publisher writing to stream on the server at addr.
func NewRedisPublisher(addr string, db int, stream string, maxLength int64) *RedisPublisher {
	return &RedisPublisher{
		client:    redis.NewClient(&redis.Options{Addr: addr, DB: db}),
		stream:    stream,
		maxLength: maxLength,
	}
}

func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func (p *RedisPublisher) Publish(ctx context.Context, r *models.Record) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("redis: encode %s: %w", r.ID, err)
	}
	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLength,
		Approx: p.maxLength > 0,
		Values: map[string]interface{}{
			"app_id": r.ID,
			"record": string(payload),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("redis: xadd %s: %w", p.stream, err)
	}
	return nil
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
