package metastore

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"metastore-scraper/models"
	"metastore-scraper/utils"
)

const itemLinkSelector = "a[href*='/experiences/']"

var (
	listingSelectors = []string{
		itemLinkSelector,
		"a.AppTile",
		"div.app-card a",
		"div.app-listing a",
	}
	fallbackSelectors = []string{
		"a[href*='/quest/experiences/']",
		"a[href*='/store/quest/']",
		"a[href*='game']",
		"div[class*='game'] a, div[class*='app'] a",
	}
	experienceHrefRegexp = regexp.MustCompile(`href="(/quest/experiences/[^"]+)"`)
)

// Discover collects up to limit item URLs, trying the listing page, then
// the store page, then the built-in seeds. It never returns an error; a
// stage that fails simply yields nothing.
func (s *Scraper) Discover(ctx context.Context, limit int) models.Links {
	if limit <= 0 {
		return models.Links{Stage: models.StageSeed}
	}

	if links := s.discoverPrimary(ctx, limit); len(links) > 0 {
		return models.Links{URLs: links, Stage: models.StagePrimary}
	}

	s.logger.Warn("No app links found with primary method. Using fallback method...")
	if links := s.discoverFallback(ctx, limit); len(links) > 0 {
		return models.Links{URLs: links, Stage: models.StageFallback}
	}

	s.logger.Error("Both primary and fallback methods failed. Using seed app links.")
	return models.Links{URLs: SeedLinks(limit), Stage: models.StageSeed}
}

func (s *Scraper) discoverPrimary(ctx context.Context, limit int) []string {
	log := s.logger.With("stage", models.StagePrimary)
	root := s.cfg.RootURL

	log.Info("Navigating to %s", root)
	if err := s.page.Navigate(ctx, root); err != nil {
		log.Error("Failed to load listing page: %v", err)
		return nil
	}
	if err := s.page.WaitFor(ctx, itemLinkSelector, s.cfg.ListingWaitTimeout); err != nil {
		log.Warn("Timeout waiting for listing page to load: %v", err)
		s.screenshot(ctx, "timeout_error.png")
		return nil
	}
	s.screenshot(ctx, "meta_store_page.png")

	log.Info("Scrolling to load more apps...")
	for i := 0; i < s.cfg.ScrollTimes; i++ {
		if err := s.page.ScrollTo(ctx, 1); err != nil {
			log.Warn("Scroll %d failed: %v", i+1, err)
			break
		}
		if err := utils.Sleep(ctx, s.cfg.ScrollPause); err != nil {
			return nil
		}
	}

	doc, err := s.snapshot(ctx)
	if err != nil {
		log.Error("Failed to read listing page: %v", err)
		return nil
	}

	base := parseBase(root)
	set := utils.NewLinkSet(limit)
	for _, selector := range listingSelectors {
		matches := doc.Find(selector)
		if matches.Length() == 0 {
			continue
		}
		log.Info("Found %d app elements with selector: %s", matches.Length(), selector)
		collectLinks(matches, base, set, func(abs string) bool {
			return strings.Contains(abs, "/experiences/")
		})
		break
	}
	return set.Items()
}

func (s *Scraper) discoverFallback(ctx context.Context, limit int) []string {
	log := s.logger.With("stage", models.StageFallback)
	target := s.cfg.FallbackURL

	log.Info("Navigating to %s", target)
	if err := s.page.Navigate(ctx, target); err != nil {
		log.Error("Failed to load store page: %v", err)
		return nil
	}
	if err := utils.Sleep(ctx, s.cfg.FallbackSettle); err != nil {
		return nil
	}

	for i := 0; i < s.cfg.FallbackScrolls; i++ {
		for _, fraction := range []float64{0.5, 1} {
			if err := s.page.ScrollTo(ctx, fraction); err != nil {
				log.Warn("Scroll to %.0f%% failed: %v", fraction*100, err)
			}
			if err := utils.Sleep(ctx, s.cfg.ScrollPause); err != nil {
				return nil
			}
		}
	}
	s.screenshot(ctx, "fallback_page.png")

	markup, err := s.page.HTML(ctx)
	if err != nil {
		log.Error("Failed to read store page: %v", err)
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		log.Error("Failed to parse store page: %v", err)
		return nil
	}

	set := utils.NewLinkSet(limit)
	for _, selector := range fallbackSelectors {
		matches := doc.Find(selector)
		if matches.Length() == 0 {
			continue
		}
		log.Info("Found %d elements with selector: %s", matches.Length(), selector)
		collectLinks(matches, parseBase(target), set, func(string) bool { return true })
		break
	}

	// Raw markup scan catches links the selectors miss.
	if !set.Full() {
		site := parseBase(s.cfg.SiteURL)
		for _, m := range experienceHrefRegexp.FindAllStringSubmatch(markup, -1) {
			if abs, ok := resolve(site, m[1]); ok {
				set.Add(abs)
			}
			if set.Full() {
				break
			}
		}
	}

	if set.Size() > 0 {
		log.Info("Found %d app links using fallback method", set.Size())
	}
	return set.Items()
}

// collectLinks adds the resolved href of every anchor in sel to set, in
// document order, until the set is full.
func collectLinks(sel *goquery.Selection, base *url.URL, set *utils.LinkSet, keep func(abs string) bool) {
	sel.EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, ok := a.Attr("href")
		if !ok {
			return true
		}
		abs, ok := resolve(base, href)
		if ok && keep(abs) {
			set.Add(abs)
		}
		return !set.Full()
	})
}

func parseBase(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		return &url.URL{}
	}
	return u
}
