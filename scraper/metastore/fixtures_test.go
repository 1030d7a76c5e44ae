package metastore

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"metastore-scraper/browser"
	"metastore-scraper/config"
	"metastore-scraper/utils"
)

const (
	rootURL     = "https://www.meta.com/quest/gaming/"
	fallbackURL = "https://www.meta.com/quest/store/"

	beatSaberURL = "https://www.meta.com/experiences/beat-saber/2448060205267927/"
	superhotURL  = "https://www.meta.com/experiences/superhot-vr/1921533091289407/"
	brokenURL    = "https://www.meta.com/experiences/broken-app/1111111111111111/"
)

const listingHTML = `<html><body>
<nav><a href="/quest/">Home</a></nav>
<div class="grid">
  <a class="AppTile" href="/experiences/beat-saber/2448060205267927/">Beat Saber</a>
  <a class="AppTile" href="/experiences/beat-saber/2448060205267927/">Beat Saber again</a>
  <a class="AppTile" href="https://www.meta.com/experiences/superhot-vr/1921533091289407/">SUPERHOT VR</a>
  <a class="AppTile" href="/experiences/broken-app/1111111111111111/">Broken</a>
  <a class="AppTile" href="/experiences/walkabout-mini-golf/2462678267173943/">Walkabout</a>
  <a class="AppTile" href="/experiences/pistol-whip/2104963472963790/">Pistol Whip</a>
</div>
</body></html>`

const beatSaberHTML = `<html><body>
<header><img alt="Beat Saber cover art" src="/images/beat-saber-cover.jpg"></header>
<h1> Beat Saber </h1>
<div class="summary"><span class="rating-value">4.9 stars from 1,234 reviews</span></div>
<div class="product-description">
  <p>Beat Saber is a VR rhythm game where you slash the beats of adrenaline-pumping music.</p>
</div>
<div class="meta">
  <div>Category</div>
  <div>Music &amp; Rhythm</div>
</div>
</body></html>`

const superhotHTML = `<html><body>
<h1>SUPERHOT VR</h1>
<p>Short blurb.</p>
<p>SUPERHOT VR is the award-winning, first-person shooter where time moves only when you move.</p>
<span>Genre</span><span>Action</span>
</body></html>`

const noHeadingHTML = `<html><body><div class="spinner">Loading…</div></body></html>`

func testConfig() *config.Config {
	return &config.Config{
		RootURL:         rootURL,
		FallbackURL:     fallbackURL,
		SiteURL:         "https://www.meta.com",
		ScreenshotDir:   "shots",
		ScrollTimes:     5,
		FallbackScrolls: 3,
	}
}

func newTestScraper(page browser.Page) *Scraper {
	return New(testConfig(), utils.NewNopLogger(), page)
}

func parseDoc(t *testing.T, markup string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}
