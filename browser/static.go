package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// StaticPage serves canned markup keyed by URL. Element waits resolve
// immediately against the stored markup, so it never needs a browser.
type StaticPage struct {
	mu      sync.Mutex
	pages   map[string]string
	fail    map[string]error
	current string

	visited     []string
	scrolls     []float64
	screenshots []string
	closed      int
}

// NewStaticPage creates a StaticPage over url -> markup.
func NewStaticPage(pages map[string]string) *StaticPage {
	if pages == nil {
		pages = make(map[string]string)
	}
	return &StaticPage{pages: pages, fail: make(map[string]error)}
}

// FailNavigation makes every navigation to url return err.
func (s *StaticPage) FailNavigation(url string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[url] = err
}

func (s *StaticPage) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visited = append(s.visited, url)
	if err, ok := s.fail[url]; ok {
		return err
	}
	s.current = url
	return nil
}

func (s *StaticPage) WaitFor(ctx context.Context, selector string, _ time.Duration) error {
	html, err := s.HTML(ctx)
	if err != nil {
		return err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("static: parse markup: %w", err)
	}
	if doc.Find(selector).Length() == 0 {
		return fmt.Errorf("%w: wait for %s", ErrTimeout, selector)
	}
	return nil
}

func (s *StaticPage) ScrollTo(ctx context.Context, fraction float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scrolls = append(s.scrolls, fraction)
	return ctx.Err()
}

func (s *StaticPage) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pages[s.current], nil
}

// Screenshot records the requested path without writing anything.
func (s *StaticPage) Screenshot(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screenshots = append(s.screenshots, path)
	return nil
}

func (s *StaticPage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

// Visited returns every URL passed to Navigate, in order.
func (s *StaticPage) Visited() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.visited...)
}

// Scrolls returns every fraction passed to ScrollTo, in order.
func (s *StaticPage) Scrolls() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]float64(nil), s.scrolls...)
}

// Screenshots returns every requested screenshot path, in order.
func (s *StaticPage) Screenshots() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.screenshots...)
}

// CloseCount returns how many times Close was called.
func (s *StaticPage) CloseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
