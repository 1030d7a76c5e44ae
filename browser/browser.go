// Package browser renders storefront pages through a headless browser and
// exposes the small surface the scraper needs: navigate, wait, scroll,
// snapshot the rendered markup and take screenshots.
package browser

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"time"
)

const (
	EngineChromedp = "chromedp"
	EngineRod      = "rod"
)

var (
	// ErrTimeout is returned when a navigation or element wait exceeds its ceiling.
	ErrTimeout = errors.New("browser: timed out")
	// ErrBlocked is returned when a navigation is refused before it starts.
	ErrBlocked = errors.New("browser: navigation blocked")
)

// Page is a single rendering tab reused across navigations.
type Page interface {
	Navigate(ctx context.Context, url string) error
	// WaitFor blocks until selector matches at least one element or timeout elapses.
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error
	// ScrollTo scrolls to fraction of the document height (1 is the bottom).
	ScrollTo(ctx context.Context, fraction float64) error
	HTML(ctx context.Context) (string, error)
	Screenshot(ctx context.Context, path string) error
	Close() error
}

// Options configures a browser session.
type Options struct {
	Engine          string
	Bin             string
	Headless        bool
	UserAgent       string
	WindowWidth     int
	WindowHeight    int
	PageLoadTimeout time.Duration
}

// Open launches a session with the requested engine.
func Open(ctx context.Context, opts Options) (Page, error) {
	if opts.UserAgent == "" {
		opts.UserAgent = RandomUserAgent()
	}
	if opts.WindowWidth <= 0 || opts.WindowHeight <= 0 {
		opts.WindowWidth, opts.WindowHeight = 1920, 1080
	}
	if opts.PageLoadTimeout <= 0 {
		opts.PageLoadTimeout = 30 * time.Second
	}

	switch opts.Engine {
	case "", EngineChromedp:
		return NewChromedpPage(ctx, opts)
	case EngineRod:
		return NewRodPage(ctx, opts)
	default:
		return nil, fmt.Errorf("browser: unknown engine %q", opts.Engine)
	}
}

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/100.0.4896.127 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/101.0.4951.54 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/100.0.4896.127 Safari/537.36",
}

// RandomUserAgent picks one of the built-in desktop user agents.
func RandomUserAgent() string {
	return userAgents[rand.IntN(len(userAgents))]
}

func scrollScript(fraction float64) string {
	return fmt.Sprintf("window.scrollTo(0, document.body.scrollHeight * %g)", fraction)
}

// timeoutErr maps a deadline hit on the operation's own timer to ErrTimeout.
// Cancellation of the caller's ctx is passed through untouched.
func timeoutErr(parent context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	if parent.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %v", ErrTimeout, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func findChromeBinary(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

func writeScreenshot(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write screenshot %q: %w", path, err)
	}
	return nil
}
