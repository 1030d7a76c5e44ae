package metastore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"metastore-scraper/browser"
	"metastore-scraper/models"
	"metastore-scraper/services"
)

// Extract renders itemURL and builds a Record from it. Missing optional
// fields fall back to defaults; only a page that never shows its heading
// is a failure.
func (s *Scraper) Extract(ctx context.Context, itemURL string) (*models.Record, error) {
	log := s.logger.With("url", itemURL)
	id := services.IDFromURL(itemURL)

	if err := s.page.Navigate(ctx, itemURL); err != nil {
		return nil, &StageError{Stage: "item", URL: itemURL, Err: err}
	}

	if err := s.page.WaitFor(ctx, "h1", s.cfg.ItemWaitTimeout); err != nil {
		if !errors.Is(err, browser.ErrTimeout) {
			return nil, &StageError{Stage: "item", URL: itemURL, Err: err}
		}
		log.Warn("Timeout waiting for item page heading")
		s.screenshot(ctx, fmt.Sprintf("app_timeout_%s.png", id))
		return nil, &StageError{Stage: "item", URL: itemURL, Err: ErrNoHeading}
	}

	doc, err := s.snapshot(ctx)
	if err != nil {
		return nil, &StageError{Stage: "item", URL: itemURL, Err: err}
	}

	rec, sources := extractRecord(itemURL, doc)
	log.Debug("Field sources: name=%s image=%s rating=%s reviews=%s description=%s category=%s",
		sources["name"], sources["image"], sources["rating"], sources["reviews"],
		sources["description"], sources["category"])
	return rec, nil
}

// extractRecord runs every field cascade over a rendered item page. The
// second return maps field name to the strategy that produced it.
func extractRecord(itemURL string, doc *goquery.Document) (*models.Record, map[string]string) {
	p := newItemPage(itemURL, doc)
	id := services.IDFromURL(itemURL)
	sources := make(map[string]string, 6)

	rec := &models.Record{ID: id, SourceURL: itemURL}
	rec.Name, sources["name"] = selectFirst(p, nameStrategies, services.Humanize(id))
	rec.ImageURL, sources["image"] = selectFirst(p, imageStrategies, "")
	rec.Rating, sources["rating"] = selectFirst(p, ratingStrategies, 0.0)
	rec.ReviewCount, sources["reviews"] = selectFirst(p, reviewStrategies, 0)
	rec.Description, sources["description"] = selectFirst(p, descriptionStrategies, services.DescriptionPlaceholder)
	rec.Category, sources["category"] = selectFirst(p, categoryStrategies, services.InferCategory(itemURL, rec.Name))

	return rec, sources
}

func (s *Scraper) snapshot(ctx context.Context) (*goquery.Document, error) {
	markup, err := s.page.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse rendered markup: %w", err)
	}
	return doc, nil
}
