package services

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// MemcacheCooldown remembers item URLs that recently failed hard so later
// runs can skip them until the entry expires.
type MemcacheCooldown struct {
	client *memcache.Client
	ttl    time.Duration
}

// NewMemcacheCooldown creates a cooldown backed by the memcache server at addr.
func NewMemcacheCooldown(addr string, ttl time.Duration) *MemcacheCooldown {
	return &MemcacheCooldown{client: memcache.New(addr), ttl: ttl}
}

// Active reports whether url is still cooling down.
func (c *MemcacheCooldown) Active(url string) (bool, error) {
	_, err := c.client.Get(cooldownKey(url))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, memcache.ErrCacheMiss) {
		return false, nil
	}
	return false, err
}

// Mark starts the cooldown window for url.
func (c *MemcacheCooldown) Mark(url string) error {
	return c.client.Set(&memcache.Item{
		Key:        cooldownKey(url),
		Value:      []byte(time.Now().UTC().Format(time.RFC3339)),
		Expiration: int32(c.ttl.Seconds()),
	})
}

// Ping checks that the memcache server answers.
func (c *MemcacheCooldown) Ping() error {
	return c.client.Ping()
}

// memcache keys are limited to 250 bytes without whitespace.
func cooldownKey(url string) string {
	sum := sha1.Sum([]byte(url))
	return "metastore:cooldown:" + hex.EncodeToString(sum[:])
}
