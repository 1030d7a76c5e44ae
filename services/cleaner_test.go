package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metastore-scraper/models"
	"metastore-scraper/utils"
)

func newTestLogger() *utils.Logger { return utils.NewNopLogger() }

func TestParseRating(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{"4.7 stars", 4.7, true},
		{"Rated 4.5/5", 4.5, true},
		{"4 / 5", 4, true},
		{"5 STARS", 5, true},
		{"9.8 stars", 0, false},
		{"1,234 reviews", 0, false},
		{"", 0, false},
		{"stars", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseRating(tt.raw)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseRating(%q) = %.2f, %v; want %.2f, %v", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseReviewCount(t *testing.T) {
	tests := []struct {
		raw    string
		want   int
		wantOK bool
	}{
		{"1,234 reviews", 1234, true},
		{"4.7 stars (12,345,678 ratings)", 12345678, true},
		{"12345 reviews", 12345, true},
		{"87 Ratings", 87, true},
		{"4.7 stars", 0, false},
		{"no reviews yet", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseReviewCount(tt.raw)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseReviewCount(%q) = %d, %v; want %d, %v", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestIDFromURL(t *testing.T) {
	tests := map[string]string{
		"https://www.meta.com/quest/experiences/beat-saber/":                    "beat-saber",
		"https://www.meta.com/experiences/among-us-vr/4948428055244413/":        "4948428055244413",
		"https://www.meta.com/experiences/asgards-wrath-2/2603836099654226?x=1": "2603836099654226",
		"/quest/experiences/superhot-vr":                                        "superhot-vr",
		"https://www.meta.com/":                                                 "",
	}
	for raw, want := range tests {
		assert.Equal(t, want, IDFromURL(raw), raw)
	}
}

func TestIDFromURLIsStable(t *testing.T) {
	const u = "https://www.meta.com/quest/experiences/beat-saber/"
	assert.Equal(t, IDFromURL(u), IDFromURL(u))
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "Beat Saber", Humanize("beat-saber"))
	assert.Equal(t, "Among Us Vr", Humanize("among-us-VR"))
	assert.Equal(t, "4948428055244413", Humanize("4948428055244413"))
	assert.Equal(t, "", Humanize(""))
}

func TestInferCategory(t *testing.T) {
	assert.Equal(t, "Game", InferCategory("https://www.meta.com/quest/gaming/x/", "Calm"))
	assert.Equal(t, "Game", InferCategory("https://www.meta.com/experiences/x/", "Game Room"))
	assert.Equal(t, "App", InferCategory("https://www.meta.com/experiences/x/", "Supernatural"))
}

func TestNormaliseText(t *testing.T) {
	assert.Equal(t, "Beat Saber", NormaliseText("  Beat\n\t Saber  "))
	assert.Equal(t, "", NormaliseText(" \n "))
}

func TestCleanerEnforcesInvariants(t *testing.T) {
	c := NewCleaner(newTestLogger())

	out := c.Clean([]*models.Record{
		{ID: "beat-saber", Name: " Beat  Saber ", Rating: 4.9, ReviewCount: 10, Description: "Slash", Category: "Music", SourceURL: "https://www.meta.com/quest/experiences/beat-saber/"},
		{ID: "beat-saber", Name: "Duplicate", SourceURL: "https://www.meta.com/experiences/beat-saber/"},
		{ID: "", Name: "No id"},
		nil,
		{ID: "odd-one", Rating: 7, ReviewCount: -3, SourceURL: "https://www.meta.com/experiences/odd-one/"},
	})

	require.Len(t, out, 2)
	assert.Equal(t, "Beat Saber", out[0].Name)
	assert.Equal(t, "Music", out[0].Category)

	odd := out[1]
	assert.Equal(t, "Odd One", odd.Name)
	assert.Equal(t, 0.0, odd.Rating)
	assert.Equal(t, 0, odd.ReviewCount)
	assert.Equal(t, DescriptionPlaceholder, odd.Description)
	assert.Equal(t, "App", odd.Category)
}
