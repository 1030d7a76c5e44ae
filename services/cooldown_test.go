package services

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCooldownKeyShape(t *testing.T) {
	long := "https://www.meta.com/experiences/" + strings.Repeat("x", 400) + "/"
	key := cooldownKey(long)

	assert.LessOrEqual(t, len(key), 250)
	assert.NotContains(t, key, " ")
	assert.Equal(t, key, cooldownKey(long))
	assert.NotEqual(t, key, cooldownKey(long+"?v=2"))
}

func TestMemcacheCooldown(t *testing.T) {
	addr := os.Getenv("MEMCACHE_TEST_ADDR")
	if addr == "" {
		t.Skip("MEMCACHE_TEST_ADDR not set, skipping memcache test")
	}

	c := NewMemcacheCooldown(addr, time.Minute)
	if err := c.Ping(); err != nil {
		t.Skipf("memcache unavailable: %v", err)
	}

	url := "https://www.meta.com/experiences/cooldown-test/" + time.Now().Format("150405.000000") + "/"
	active, err := c.Active(url)
	require.NoError(t, err)
	assert.False(t, active)

	require.NoError(t, c.Mark(url))
	active, err = c.Active(url)
	require.NoError(t, err)
	assert.True(t, active)
}
