package browser

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// GuardedPage gates every navigation of the wrapped Page behind an optional
// rate limiter and an optional robots.txt check.
type GuardedPage struct {
	Page
	limiter   *rate.Limiter
	robots    *RobotsChecker
	userAgent string
}

// Guard wraps p. A nil limiter or robots checker disables that gate.
func Guard(p Page, limiter *rate.Limiter, robots *RobotsChecker, userAgent string) *GuardedPage {
	return &GuardedPage{Page: p, limiter: limiter, robots: robots, userAgent: userAgent}
}

func (g *GuardedPage) Navigate(ctx context.Context, url string) error {
	if g.robots != nil {
		allowed, err := g.robots.IsAllowed(ctx, g.userAgent, url)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBlocked, err)
		}
		if !allowed {
			return fmt.Errorf("%w by robots.txt: %s", ErrBlocked, url)
		}
	}
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("navigation limiter: %w", err)
		}
	}
	return g.Page.Navigate(ctx, url)
}
