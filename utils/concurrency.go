package utils

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// Pacer spaces out consecutive page visits with a uniformly random pause.
type Pacer struct {
	min time.Duration
	max time.Duration
}

// NewPacer creates a Pacer drawing pauses from [min, max]. Swapped bounds
// are normalised.
func NewPacer(min, max time.Duration) *Pacer {
	if max < min {
		min, max = max, min
	}
	return &Pacer{min: min, max: max}
}

// Next returns the next pause duration.
func (p *Pacer) Next() time.Duration {
	if p.max <= p.min {
		return p.min
	}
	return p.min + rand.N(p.max-p.min+1)
}

// Pause sleeps for the next pause duration or until ctx is done.
func (p *Pacer) Pause(ctx context.Context) error {
	return Sleep(ctx, p.Next())
}

// LinkSet is a thread-safe, insertion-ordered set of URLs with a size cap.
type LinkSet struct {
	mu    sync.RWMutex
	limit int
	seen  map[string]struct{}
	items []string
}

// NewLinkSet creates an empty LinkSet holding at most limit entries.
func NewLinkSet(limit int) *LinkSet {
	if limit < 0 {
		limit = 0
	}
	return &LinkSet{limit: limit, seen: make(map[string]struct{})}
}

// Add returns true if the URL was newly added, false if already present or
// the set is full.
func (s *LinkSet) Add(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) >= s.limit {
		return false
	}
	if _, exists := s.seen[url]; exists {
		return false
	}
	s.seen[url] = struct{}{}
	s.items = append(s.items, url)
	return true
}

// Full reports whether the cap has been reached.
func (s *LinkSet) Full() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items) >= s.limit
}

// Size returns the number of unique URLs tracked.
func (s *LinkSet) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Items returns a copy of the URLs in insertion order.
func (s *LinkSet) Items() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}
