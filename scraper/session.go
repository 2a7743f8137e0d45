// Package scraper owns the rendering sessions the site extractors drive:
// browser launch, isolated per-run contexts, navigation with retries,
// popup dismissal and lazy-load scrolling.
package scraper

import (
	"context"
	"time"
)

// WaitCondition selects the page lifecycle event a navigation waits for.
type WaitCondition string

const (
	WaitCommit           WaitCondition = "commit"
	WaitDOMContentLoaded WaitCondition = "domcontentloaded"
	WaitLoad             WaitCondition = "load"
	WaitNetworkIdle      WaitCondition = "networkidle"
)

// Navigator loads a URL into a page. One call is one attempt.
type Navigator interface {
	Navigate(ctx context.Context, url string, wait WaitCondition) error
}

// Clicker clicks the first element matching a dismissal target.
type Clicker interface {
	Click(ctx context.Context, d Dismissal) error
}

// Scroller scrolls the viewport and counts elements matching a selector.
type Scroller interface {
	Scroll(ctx context.Context, dy float64) error
	Count(ctx context.Context, selector string) (int, error)
}

// Session is an exclusive rendering session: one isolated browser context
// with one page. It is not safe for concurrent use. Close releases every
// resource and must be called on all exit paths.
type Session interface {
	Navigator
	Clicker
	Scroller

	// HTML returns the current rendered document.
	HTML(ctx context.Context) (string, error)

	Close() error
}

// SessionOptions shape the browser context a session runs in.
type SessionOptions struct {
	// UserAgent overrides the browser user agent when set.
	UserAgent string

	// Locale is the emulated locale, e.g. "en-IN".
	Locale string

	// ViewportWidth and ViewportHeight emulate a window size when both are set.
	ViewportWidth  int
	ViewportHeight int

	// Stealth masks navigator.webdriver and similar automation tells.
	Stealth bool

	// Headers are sent with every request of the session.
	Headers map[string]string
}

// Opener creates sessions. *Browser is the production implementation.
type Opener interface {
	NewSession(ctx context.Context, opts SessionOptions) (Session, error)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
