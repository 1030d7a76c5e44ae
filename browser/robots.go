package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// RobotsChecker caches and checks robots.txt rules per host.
type RobotsChecker struct {
	mu       sync.RWMutex
	rules    map[string]*robotstxt.RobotsData
	expiry   map[string]time.Time
	client   *http.Client
	cacheTTL time.Duration
}

// NewRobotsChecker creates a checker that fetches robots.txt with client.
func NewRobotsChecker(client *http.Client) *RobotsChecker {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &RobotsChecker{
		rules:    make(map[string]*robotstxt.RobotsData),
		expiry:   make(map[string]time.Time),
		client:   client,
		cacheTTL: time.Hour,
	}
}

// IsAllowed reports whether userAgent may fetch rawURL. An unreachable
// robots.txt allows everything.
func (r *RobotsChecker) IsAllowed(ctx context.Context, userAgent, rawURL string) (bool, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false, fmt.Errorf("robots: parse %q: %w", rawURL, err)
	}

	data, err := r.getRobots(ctx, u.Scheme+"://"+u.Host)
	if err != nil {
		return true, nil
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return data.FindGroup(userAgent).Test(path), nil
}

func (r *RobotsChecker) getRobots(ctx context.Context, origin string) (*robotstxt.RobotsData, error) {
	r.mu.RLock()
	data, ok := r.rules[origin]
	exp := r.expiry[origin]
	r.mu.RUnlock()
	if ok && time.Now().Before(exp) {
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer resp.Body.Close()

	data, err = robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	r.mu.Lock()
	r.rules[origin] = data
	r.expiry[origin] = time.Now().Add(r.cacheTTL)
	r.mu.Unlock()
	return data, nil
}
