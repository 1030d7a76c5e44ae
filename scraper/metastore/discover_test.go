package metastore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metastore-scraper/browser"
	"metastore-scraper/models"
)

const storeHTML = `<html><head>
<link rel="prefetch" href="/quest/experiences/hidden-gem/123/">
</head><body>
<a href="/quest/experiences/beat-saber/">Beat Saber</a>
<a href="https://www.meta.com/quest/experiences/superhot-vr/">SUPERHOT VR</a>
</body></html>`

func TestDiscoverPrimaryResolvesDedupsAndCaps(t *testing.T) {
	page := browser.NewStaticPage(map[string]string{rootURL: listingHTML})
	s := newTestScraper(page)

	links := s.Discover(context.Background(), 3)

	assert.Equal(t, models.StagePrimary, links.Stage)
	assert.Equal(t, []string{beatSaberURL, superhotURL, brokenURL}, links.URLs)
	assert.Equal(t, []float64{1, 1, 1, 1, 1}, page.Scrolls())
	assert.Equal(t, []string{"shots/meta_store_page.png"}, page.Screenshots())
}

func TestDiscoverRespectsCapWithoutDuplicates(t *testing.T) {
	for limit := 1; limit <= 7; limit++ {
		page := browser.NewStaticPage(map[string]string{rootURL: listingHTML})
		links := newTestScraper(page).Discover(context.Background(), limit)

		assert.LessOrEqual(t, len(links.URLs), limit, "limit %d", limit)
		seen := map[string]bool{}
		for _, u := range links.URLs {
			assert.False(t, seen[u], "duplicate %s at limit %d", u, limit)
			seen[u] = true
		}
	}
}

func TestDiscoverOnlyKeepsExperienceLinks(t *testing.T) {
	page := browser.NewStaticPage(map[string]string{rootURL: listingHTML})
	links := newTestScraper(page).Discover(context.Background(), 50)

	require.Len(t, links.URLs, 5)
	for _, u := range links.URLs {
		assert.Contains(t, u, "/experiences/")
		assert.True(t, strings.HasPrefix(u, "https://www.meta.com/"))
	}
}

func TestDiscoverFallsBackToStorePage(t *testing.T) {
	page := browser.NewStaticPage(map[string]string{
		rootURL:     `<html><body><p>Loading</p></body></html>`,
		fallbackURL: storeHTML,
	})
	s := newTestScraper(page)

	links := s.Discover(context.Background(), 10)

	assert.Equal(t, models.StageFallback, links.Stage)
	assert.Equal(t, []string{
		"https://www.meta.com/quest/experiences/beat-saber/",
		"https://www.meta.com/quest/experiences/superhot-vr/",
		"https://www.meta.com/quest/experiences/hidden-gem/123/",
	}, links.URLs)
	assert.Equal(t, []float64{0.5, 1, 0.5, 1, 0.5, 1}, page.Scrolls())
	assert.Equal(t, []string{"shots/timeout_error.png", "shots/fallback_page.png"}, page.Screenshots())
}

func TestDiscoverFallbackCapStopsMarkupScan(t *testing.T) {
	page := browser.NewStaticPage(map[string]string{fallbackURL: storeHTML})
	page.FailNavigation(rootURL, errors.New("net::ERR_CONNECTION_RESET"))

	links := newTestScraper(page).Discover(context.Background(), 2)

	assert.Equal(t, models.StageFallback, links.Stage)
	assert.Len(t, links.URLs, 2)
	assert.NotContains(t, links.URLs, "https://www.meta.com/quest/experiences/hidden-gem/123/")
}

func TestDiscoverFallbackMarkupOnly(t *testing.T) {
	page := browser.NewStaticPage(map[string]string{
		fallbackURL: `<html><head><link rel="prefetch" href="/quest/experiences/only-in-markup/9/"></head><body></body></html>`,
	})

	links := newTestScraper(page).Discover(context.Background(), 5)

	assert.Equal(t, models.StageFallback, links.Stage)
	assert.Equal(t, []string{"https://www.meta.com/quest/experiences/only-in-markup/9/"}, links.URLs)
}

func TestDiscoverUsesSeedsWhenEverythingFails(t *testing.T) {
	page := browser.NewStaticPage(nil)
	page.FailNavigation(rootURL, fmt.Errorf("%w: navigate", browser.ErrTimeout))
	page.FailNavigation(fallbackURL, fmt.Errorf("%w: navigate", browser.ErrTimeout))

	links := newTestScraper(page).Discover(context.Background(), 2)

	assert.Equal(t, models.StageSeed, links.Stage)
	assert.Equal(t, SeedLinks(2), links.URLs)
	assert.Len(t, links.URLs, 2)
}

func TestDiscoverSeedsAreTruncatedToCap(t *testing.T) {
	assert.Len(t, SeedLinks(1), 1)
	assert.Len(t, SeedLinks(100), 4)
	assert.Empty(t, SeedLinks(-1))

	first := SeedLinks(4)
	first[0] = "mutated"
	assert.NotEqual(t, "mutated", SeedLinks(1)[0])
}

func TestDiscoverZeroLimit(t *testing.T) {
	page := browser.NewStaticPage(map[string]string{rootURL: listingHTML})
	links := newTestScraper(page).Discover(context.Background(), 0)

	assert.Empty(t, links.URLs)
	assert.Empty(t, page.Visited())
}
