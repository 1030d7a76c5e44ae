// Package metastore scrapes application records from the Meta Quest store.
package metastore

import (
	"context"
	"fmt"
	"path/filepath"

	"metastore-scraper/browser"
	"metastore-scraper/config"
	"metastore-scraper/models"
	"metastore-scraper/services"
	"metastore-scraper/utils"
)

const previewLinks = 5

// Cooldown tracks item URLs that recently failed hard.
type Cooldown interface {
	Active(url string) (bool, error)
	Mark(url string) error
}

// pauser spaces out item visits.
type pauser interface {
	Pause(ctx context.Context) error
}

// Scraper orchestrates listing discovery and per-item extraction over a
// single browser page. It is not safe for concurrent use.
type Scraper struct {
	cfg      *config.Config
	logger   *utils.Logger
	page     browser.Page
	pacer    pauser
	cleaner  *services.Cleaner
	cooldown Cooldown
}

// New creates a Scraper driving page. The caller owns page and closes it.
func New(cfg *config.Config, logger *utils.Logger, page browser.Page) *Scraper {
	return &Scraper{
		cfg:     cfg,
		logger:  logger,
		page:    page,
		pacer:   utils.NewPacer(cfg.PacingMin, cfg.PacingMax),
		cleaner: services.NewCleaner(logger),
	}
}

// WithCooldown enables skipping of recently failed item URLs.
func (s *Scraper) WithCooldown(c Cooldown) *Scraper {
	s.cooldown = c
	return s
}

// Run discovers up to maxItems item pages and extracts each one. A failure
// on one item never stops the run. When nothing could be extracted the
// batch carries the demo records and ModeFallbackDemo.
func (s *Scraper) Run(ctx context.Context, maxItems int) *models.Batch {
	links := s.Discover(ctx, maxItems)
	s.logger.Info("Found %d app links (stage: %s)", len(links.URLs), links.Stage)
	for i, link := range links.URLs {
		if i == previewLinks {
			break
		}
		s.logger.Info("Link found: %s", link)
	}

	records := make([]*models.Record, 0, len(links.URLs))
	for i, link := range links.URLs {
		if ctx.Err() != nil {
			s.logger.Warn("Run cancelled after %d of %d links", i, len(links.URLs))
			break
		}
		if s.coolingDown(link) {
			s.logger.Info("Skipping %s: failed recently", link)
			continue
		}

		s.logger.Info("Scraping app %d/%d: %s", i+1, len(links.URLs), link)
		rec, err := s.extractIsolated(ctx, link)
		if err != nil {
			if ctx.Err() != nil {
				// Interrupted, not failed: the link stays eligible for the next run.
				s.logger.Warn("Run cancelled while scraping %s", link)
				break
			}
			s.logger.With("url", link).Err(err, "Failed to scrape app")
			s.markCooldown(link)
			continue
		}

		records = append(records, rec)
		s.logger.Info("Successfully scraped: %s", rec.Name)

		if i < len(links.URLs)-1 {
			if err := s.pacer.Pause(ctx); err != nil {
				break
			}
		}
	}

	records = s.cleaner.Clean(records)
	if len(records) == 0 {
		s.logger.Warn("No app details scraped. Falling back to demo records.")
		return &models.Batch{Records: DemoRecords(), Mode: models.ModeFallbackDemo}
	}
	return &models.Batch{Records: records, Mode: models.ModeExtracted}
}

// extractIsolated turns a panic inside extraction into an error so one
// broken page cannot end the run.
func (s *Scraper) extractIsolated(ctx context.Context, link string) (rec *models.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec = nil
			err = &StageError{Stage: "item", URL: link, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return s.Extract(ctx, link)
}

func (s *Scraper) coolingDown(link string) bool {
	if s.cooldown == nil {
		return false
	}
	active, err := s.cooldown.Active(link)
	if err != nil {
		s.logger.Debug("Cooldown lookup failed for %s: %v", link, err)
		return false
	}
	return active
}

func (s *Scraper) markCooldown(link string) {
	if s.cooldown == nil {
		return
	}
	if err := s.cooldown.Mark(link); err != nil {
		s.logger.Debug("Cooldown mark failed for %s: %v", link, err)
	}
}

// screenshot is best effort; failures are only logged.
func (s *Scraper) screenshot(ctx context.Context, name string) {
	if s.cfg.ScreenshotDir == "" {
		return
	}
	path := filepath.Join(s.cfg.ScreenshotDir, name)
	if err := s.page.Screenshot(ctx, path); err != nil {
		s.logger.Debug("Screenshot %s failed: %v", path, err)
		return
	}
	s.logger.Debug("Saved screenshot %s", path)
}
