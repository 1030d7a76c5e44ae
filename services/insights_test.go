package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metastore-scraper/models"
)

func sampleBatch() *models.Batch {
	return &models.Batch{
		Mode: models.ModeExtracted,
		Records: []*models.Record{
			{ID: "a", Name: "Beat Saber", Rating: 4.9, ReviewCount: 15423, Category: "Music & Rhythm"},
			{ID: "b", Name: "SUPERHOT VR", Rating: 4.7, ReviewCount: 8756, Category: "Action"},
			{ID: "c", Name: "Pistol Whip", Rating: 4.8, ReviewCount: 300, Category: "Action"},
			{ID: "d", Name: "Unrated", Rating: 0, ReviewCount: 0, Category: "App"},
			{ID: "e", Name: "Walkabout", Rating: 4.6, ReviewCount: 40, Category: "Game"},
		},
	}
}

func TestSummaryCounts(t *testing.T) {
	svc := NewSummaryService(newTestLogger())
	r := svc.Generate(sampleBatch())
	if r.TotalRecords != 5 {
		t.Errorf("TotalRecords: got %d, want 5", r.TotalRecords)
	}
	if r.RatedRecords != 4 {
		t.Errorf("RatedRecords: got %d, want 4", r.RatedRecords)
	}
	if r.TotalReviews != 24519 {
		t.Errorf("TotalReviews: got %d, want 24519", r.TotalReviews)
	}
	assert.Equal(t, models.ModeExtracted, r.Mode)
}

func TestSummaryAverageRating(t *testing.T) {
	svc := NewSummaryService(newTestLogger())
	r := svc.Generate(sampleBatch())
	assert.Equal(t, 4.75, r.AverageRating)
}

func TestSummaryMostReviewed(t *testing.T) {
	svc := NewSummaryService(newTestLogger())
	r := svc.Generate(sampleBatch())
	require.NotNil(t, r.MostReviewed)
	assert.Equal(t, "Beat Saber", r.MostReviewed.Name)
}

func TestSummaryTopRated(t *testing.T) {
	svc := NewSummaryService(newTestLogger())
	r := svc.Generate(sampleBatch())
	require.Len(t, r.TopRated, 4)
	assert.Equal(t, 4.9, r.TopRated[0].Rating)
	assert.Equal(t, "Pistol Whip", r.TopRated[1].Name)
}

func TestSummaryCategoryGrouping(t *testing.T) {
	svc := NewSummaryService(newTestLogger())
	r := svc.Generate(sampleBatch())
	assert.Equal(t, 2, r.RecordsByCategory["Action"])
	assert.Equal(t, 1, r.RecordsByCategory["Game"])
}

func TestSummaryEmptyInput(t *testing.T) {
	svc := NewSummaryService(newTestLogger())
	r := svc.Generate(nil)
	assert.Equal(t, 0, r.TotalRecords)
	assert.Nil(t, r.MostReviewed)

	r = svc.Generate(&models.Batch{Mode: models.ModeFallbackDemo})
	assert.Equal(t, models.ModeFallbackDemo, r.Mode)
	assert.Empty(t, r.TopRated)
}

func TestSummaryPrintFlagsDemo(t *testing.T) {
	var buf bytes.Buffer
	svc := NewSummaryService(newTestLogger()).WithOutput(&buf)

	svc.Print(svc.Generate(&models.Batch{
		Mode:    models.ModeFallbackDemo,
		Records: []*models.Record{{ID: "beat-saber", Name: "Beat Saber", Rating: 4.9, ReviewCount: 15423, Category: "Music & Rhythm"}},
	}))

	out := buf.String()
	assert.Contains(t, out, "fallback_demo")
	assert.Contains(t, out, "demo records")
	assert.Contains(t, out, "Beat Saber")
	assert.Contains(t, out, "Music & Rhythm")
}
