package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

// NavOptions bound a navigation with retries.
type NavOptions struct {
	// MaxAttempts is the number of tries before giving up. Default 3.
	MaxAttempts int

	// Timeout bounds each attempt. Default 90s.
	Timeout time.Duration

	// Backoff is multiplied by the attempt number between tries. Default 1.5s.
	Backoff time.Duration

	// Settle is the pause after a successful load so dynamic content can
	// start rendering. Default 600ms.
	Settle time.Duration

	// Wait is the lifecycle event each attempt waits for.
	Wait WaitCondition
}

// DefaultNavOptions returns the stock retry policy.
func DefaultNavOptions() NavOptions {
	return NavOptions{
		MaxAttempts: 3,
		Timeout:     90 * time.Second,
		Backoff:     1500 * time.Millisecond,
		Settle:      600 * time.Millisecond,
		Wait:        WaitDOMContentLoaded,
	}
}

func (o NavOptions) withDefaults() NavOptions {
	d := DefaultNavOptions()
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = d.MaxAttempts
	}
	if o.Timeout <= 0 {
		o.Timeout = d.Timeout
	}
	if o.Wait == "" {
		o.Wait = d.Wait
	}
	return o
}

// NavigationError reports a page load that did not succeed. Err is the
// last underlying cause.
type NavigationError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation to %s failed after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err or anything it wraps was marked Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// Navigate loads rawURL with up to opts.MaxAttempts tries, sleeping
// Backoff×attempt between them. Permanent errors and cancellation of ctx
// stop immediately. Every failure is returned as a *NavigationError.
func Navigate(ctx context.Context, nav Navigator, rawURL string, opts NavOptions) error {
	opts = opts.withDefaults()

	if err := validateURL(rawURL); err != nil {
		return &NavigationError{URL: rawURL, Attempts: 0, Err: err}
	}

	var lastErr error
	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
		err := nav.Navigate(attemptCtx, rawURL, opts.Wait)
		cancel()

		if err == nil {
			if serr := sleep(ctx, opts.Settle); serr != nil {
				return &NavigationError{URL: rawURL, Attempts: attempt, Err: serr}
			}
			return nil
		}

		lastErr = err
		if IsPermanent(err) || ctx.Err() != nil {
			return &NavigationError{URL: rawURL, Attempts: attempt, Err: err}
		}

		slog.Warn("navigation attempt failed",
			"url", rawURL,
			"attempt", attempt,
			"error", err,
		)

		if attempt < opts.MaxAttempts {
			if serr := sleep(ctx, opts.Backoff*time.Duration(attempt)); serr != nil {
				return &NavigationError{URL: rawURL, Attempts: attempt, Err: serr}
			}
		}
	}

	return &NavigationError{URL: rawURL, Attempts: opts.MaxAttempts, Err: lastErr}
}

func validateURL(rawURL string) error {
	u, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return Permanent(fmt.Errorf("malformed URL %q: %w", rawURL, err))
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Permanent(fmt.Errorf("malformed URL %q: need an absolute http(s) URL", rawURL))
	}
	return nil
}
