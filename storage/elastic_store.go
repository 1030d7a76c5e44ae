package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/typedapi/types"

	"metastore-scraper/models"
)

const elasticFetchLimit = 10000

// ElasticStore indexes records as documents whose _id is the app_id.
type ElasticStore struct {
	client *elasticsearch.TypedClient
	index  string
}

// NewElasticStore connects to address and creates index when missing.
func NewElasticStore(ctx context.Context, address, username, password, index string) (*ElasticStore, error) {
	client, err := elasticsearch.NewTypedClient(elasticsearch.Config{
		Addresses: []string{address},
		Username:  username,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: init client: %w", err)
	}

	es := &ElasticStore{client: client, index: index}
	if err := es.ensureIndex(ctx); err != nil {
		return nil, err
	}
	return es, nil
}

func (es *ElasticStore) ensureIndex(ctx context.Context) error {
	exists, err := es.client.Indices.Exists(es.index).Do(ctx)
	if err != nil {
		return fmt.Errorf("elasticsearch: check index %s: %w", es.index, err)
	}
	if exists {
		return nil
	}
	if _, err := es.client.Indices.Create(es.index).Mappings(recordMapping()).Do(ctx); err != nil {
		return fmt.Errorf("elasticsearch: create index %s: %w", es.index, err)
	}
	return nil
}

func recordMapping() *types.TypeMapping {
	return &types.TypeMapping{
		Properties: map[string]types.Property{
			"app_id":        types.NewKeywordProperty(),
			"app_name":      types.NewTextProperty(),
			"app_image_url": types.NewKeywordProperty(),
			"ratings":       types.NewFloatNumberProperty(),
			"num_reviews":   types.NewIntegerNumberProperty(),
			"description":   types.NewTextProperty(),
			"category":      types.NewKeywordProperty(),
			"source_url":    types.NewKeywordProperty(),
		},
	}
}

// refresh makes recently indexed documents visible to queries.
func (es *ElasticStore) refresh(ctx context.Context) error {
	if _, err := es.client.Indices.Refresh().Index(es.index).Do(ctx); err != nil {
		return fmt.Errorf("elasticsearch: refresh %s: %w", es.index, err)
	}
	return nil
}

// Clear refreshes first; delete-by-query only sees searchable documents.
func (es *ElasticStore) Clear(ctx context.Context) error {
	if err := es.refresh(ctx); err != nil {
		return err
	}
	_, err := es.client.DeleteByQuery(es.index).
		Query(&types.Query{MatchAll: &types.MatchAllQuery{}}).
		Refresh(true).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("elasticsearch: clear %s: %w", es.index, err)
	}
	return nil
}

// Upsert indexes r under its id, replacing any previous version.
func (es *ElasticStore) Upsert(ctx context.Context, r *models.Record) error {
	_, err := es.client.Index(es.index).
		Id(r.ID).
		Document(r).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("elasticsearch: index %s: %w", r.ID, err)
	}
	return nil
}

func (es *ElasticStore) FetchAll(ctx context.Context) ([]*models.Record, error) {
	if err := es.refresh(ctx); err != nil {
		return nil, err
	}
	resp, err := es.client.Search().
		Index(es.index).
		Query(&types.Query{MatchAll: &types.MatchAllQuery{}}).
		Size(elasticFetchLimit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: search %s: %w", es.index, err)
	}

	records := make([]*models.Record, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		r := &models.Record{}
		if err := json.Unmarshal(hit.Source_, r); err != nil {
			return nil, fmt.Errorf("elasticsearch: decode hit: %w", err)
		}
		records = append(records, r)
	}
	return records, nil
}

func (es *ElasticStore) Close() error { return nil }
