package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"metastore-scraper/models"
)

// MongoStore persists records in the collection the query service reads.
type MongoStore struct {
	client  *mongo.Client
	coll    *mongo.Collection
	indexed bool
}

// NewMongoStore connects to uri and verifies the server answers.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}

	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

// EnsureIndex creates the unique app_id index. It fails when the
// collection already holds duplicate ids; Clear retries it.
func (m *MongoStore) EnsureIndex(ctx context.Context) error {
	_, err := m.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "app_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("app_id_unique"),
	})
	if err != nil {
		return fmt.Errorf("mongo: create app_id index: %w", err)
	}
	m.indexed = true
	return nil
}

// Indexed reports whether the unique app_id index is in place.
func (m *MongoStore) Indexed() bool { return m.indexed }

func (m *MongoStore) Clear(ctx context.Context) error {
	if _, err := m.coll.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("mongo: clear: %w", err)
	}
	if !m.indexed {
		// Duplicates are gone now, so the index can be built.
		if err := m.EnsureIndex(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Upsert replaces the whole document matching r.ID, inserting it if absent.
func (m *MongoStore) Upsert(ctx context.Context, r *models.Record) error {
	_, err := m.coll.ReplaceOne(ctx,
		bson.D{{Key: "app_id", Value: r.ID}},
		r,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("mongo: upsert %s: %w", r.ID, err)
	}
	return nil
}

func (m *MongoStore) FetchAll(ctx context.Context) ([]*models.Record, error) {
	cursor, err := m.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "app_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("mongo: fetch all: %w", err)
	}
	var docs []models.Record
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: decode: %w", err)
	}
	out := make([]*models.Record, len(docs))
	for i := range docs {
		out[i] = &docs[i]
	}
	return out, nil
}

func (m *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
