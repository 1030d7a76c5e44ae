package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// RodPage drives one stealth-patched Chrome tab through rod.
type RodPage struct {
	launcher    *launcher.Launcher
	browser     *rod.Browser
	page        *rod.Page
	loadTimeout time.Duration
	closeOnce   sync.Once
	closeErr    error
}

// NewRodPage launches Chrome through the rod launcher and opens a stealth page.
func NewRodPage(ctx context.Context, opts Options) (*RodPage, error) {
	l := launcher.New().
		Headless(opts.Headless).
		Set("no-sandbox").
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("blink-settings", "imagesEnabled=false").
		Set("window-size", fmt.Sprintf("%d,%d", opts.WindowWidth, opts.WindowHeight)).
		Set("user-agent", opts.UserAgent).
		Logger(io.Discard)
	if bin := findChromeBinary(opts.Bin); bin != "" {
		l = l.Bin(bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("rod: launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("rod: connect: %w", err)
	}

	page, err := stealth.Page(b)
	if err != nil {
		_ = b.Close()
		l.Cleanup()
		return nil, fmt.Errorf("rod: open stealth page: %w", err)
	}

	err = page.Context(ctx).SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  opts.WindowWidth,
		Height: opts.WindowHeight,
	})
	if err != nil {
		_ = b.Close()
		l.Cleanup()
		return nil, fmt.Errorf("rod: set viewport: %w", err)
	}

	return &RodPage{
		launcher:    l,
		browser:     b,
		page:        page,
		loadTimeout: opts.PageLoadTimeout,
	}, nil
}

func (r *RodPage) Navigate(ctx context.Context, url string) error {
	p := r.page.Context(ctx).Timeout(r.loadTimeout)
	defer p.CancelTimeout()
	if err := p.Navigate(url); err != nil {
		return timeoutErr(ctx, "navigate "+url, err)
	}
	return timeoutErr(ctx, "wait load "+url, p.WaitLoad())
}

func (r *RodPage) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	p := r.page.Context(ctx).Timeout(timeout)
	defer p.CancelTimeout()
	_, err := p.Element(selector)
	return timeoutErr(ctx, "wait for "+selector, err)
}

func (r *RodPage) ScrollTo(ctx context.Context, fraction float64) error {
	p := r.page.Context(ctx).Timeout(r.loadTimeout)
	defer p.CancelTimeout()
	_, err := p.Eval("() => " + scrollScript(fraction))
	return timeoutErr(ctx, "scroll", err)
}

func (r *RodPage) HTML(ctx context.Context) (string, error) {
	p := r.page.Context(ctx).Timeout(r.loadTimeout)
	defer p.CancelTimeout()
	html, err := p.HTML()
	if err != nil {
		return "", timeoutErr(ctx, "outer html", err)
	}
	return html, nil
}

func (r *RodPage) Screenshot(ctx context.Context, path string) error {
	p := r.page.Context(ctx).Timeout(r.loadTimeout)
	defer p.CancelTimeout()
	buf, err := p.Screenshot(true, nil)
	if err != nil {
		return timeoutErr(ctx, "screenshot", err)
	}
	return writeScreenshot(path, buf)
}

// Close shuts the page, the browser and the launched process. Safe to call
// more than once.
func (r *RodPage) Close() error {
	r.closeOnce.Do(func() {
		r.closeErr = errors.Join(r.page.Close(), r.browser.Close())
		r.launcher.Cleanup()
	})
	return r.closeErr
}
