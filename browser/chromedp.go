package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// ChromedpPage drives one Chrome tab through chromedp.
type ChromedpPage struct {
	cancelAlloc context.CancelFunc
	pageCtx     context.Context
	cancelPage  context.CancelFunc
	loadTimeout time.Duration
	closeOnce   sync.Once
}

// NewChromedpPage starts Chrome and opens a tab.
func NewChromedpPage(ctx context.Context, opts Options) (*ChromedpPage, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.WindowSize(opts.WindowWidth, opts.WindowHeight),
		chromedp.UserAgent(opts.UserAgent),
	)
	if bin := findChromeBinary(opts.Bin); bin != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(bin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	pageCtx, cancelPage := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	// The first Run launches the browser; it must not carry a deadline or
	// the whole browser dies with it.
	if err := chromedp.Run(pageCtx); err != nil {
		cancelPage()
		cancelAlloc()
		return nil, fmt.Errorf("chromedp: start browser: %w", err)
	}

	return &ChromedpPage{
		cancelAlloc: cancelAlloc,
		pageCtx:     pageCtx,
		cancelPage:  cancelPage,
		loadTimeout: opts.PageLoadTimeout,
	}, nil
}

func (c *ChromedpPage) run(ctx context.Context, op string, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(c.pageCtx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return timeoutErr(ctx, op, chromedp.Run(runCtx, actions...))
}

func (c *ChromedpPage) Navigate(ctx context.Context, url string) error {
	return c.run(ctx, "navigate "+url, c.loadTimeout, chromedp.Navigate(url))
}

func (c *ChromedpPage) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	return c.run(ctx, "wait for "+selector, timeout, chromedp.WaitReady(selector, chromedp.ByQuery))
}

func (c *ChromedpPage) ScrollTo(ctx context.Context, fraction float64) error {
	return c.run(ctx, "scroll", c.loadTimeout, chromedp.Evaluate(scrollScript(fraction), nil))
}

func (c *ChromedpPage) HTML(ctx context.Context) (string, error) {
	var html string
	if err := c.run(ctx, "outer html", c.loadTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

func (c *ChromedpPage) Screenshot(ctx context.Context, path string) error {
	var buf []byte
	if err := c.run(ctx, "screenshot", c.loadTimeout, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return err
	}
	return writeScreenshot(path, buf)
}

// Close shuts the tab and the browser process. Safe to call more than once.
func (c *ChromedpPage) Close() error {
	c.closeOnce.Do(func() {
		c.cancelPage()
		c.cancelAlloc()
	})
	return nil
}
