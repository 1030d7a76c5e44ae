package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func robotsServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGuardBlocksDisallowedPaths(t *testing.T) {
	srv := robotsServer(t, "User-agent: *\nDisallow: /private/\n", http.StatusOK)
	inner := NewStaticPage(nil)
	g := Guard(inner, nil, NewRobotsChecker(srv.Client()), "metastore-test")
	ctx := context.Background()

	err := g.Navigate(ctx, srv.URL+"/private/app")
	assert.ErrorIs(t, err, ErrBlocked)

	require.NoError(t, g.Navigate(ctx, srv.URL+"/quest/experiences/beat-saber/"))
	assert.Equal(t, []string{srv.URL + "/quest/experiences/beat-saber/"}, inner.Visited())
}

func TestGuardAllowsWhenRobotsMissing(t *testing.T) {
	srv := robotsServer(t, "", http.StatusNotFound)
	inner := NewStaticPage(nil)
	g := Guard(inner, nil, NewRobotsChecker(srv.Client()), "metastore-test")

	require.NoError(t, g.Navigate(context.Background(), srv.URL+"/anything"))
	assert.Len(t, inner.Visited(), 1)
}

func TestGuardLimiterSpacesNavigations(t *testing.T) {
	inner := NewStaticPage(nil)
	g := Guard(inner, rate.NewLimiter(rate.Every(50*time.Millisecond), 1), nil, "")
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, g.Navigate(ctx, "https://example.com/"))
	}
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
	assert.Len(t, inner.Visited(), 3)
}

func TestGuardLimiterHonoursCancel(t *testing.T) {
	inner := NewStaticPage(nil)
	g := Guard(inner, rate.NewLimiter(rate.Every(time.Hour), 1), nil, "")
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, g.Navigate(ctx, "https://example.com/"))
	cancel()
	assert.Error(t, g.Navigate(ctx, "https://example.com/"))
	assert.Len(t, inner.Visited(), 1)
}

func TestGuardDelegatesOtherMethods(t *testing.T) {
	inner := NewStaticPage(map[string]string{"https://example.com/": "<h1>x</h1>"})
	var p Page = Guard(inner, nil, nil, "")
	ctx := context.Background()

	require.NoError(t, p.Navigate(ctx, "https://example.com/"))
	require.NoError(t, p.WaitFor(ctx, "h1", time.Second))
	require.NoError(t, p.Close())
	assert.Equal(t, 1, inner.CloseCount())
}
