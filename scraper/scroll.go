package scraper

import (
	"context"
	"time"
)

// ScrollOptions bound the lazy-load poll loop.
type ScrollOptions struct {
	// Step is the wheel delta in pixels per scroll.
	Step float64

	// Pause is the wait after each scroll before counting.
	Pause time.Duration

	// MaxSteps caps the loop.
	MaxSteps int

	// StableChecks is how many consecutive unchanged counts end the loop.
	// Default 2.
	StableChecks int
}

// ScrollUntilStable scrolls until the number of elements matching selector
// stops changing for StableChecks consecutive checks, or MaxSteps is hit.
// It returns the last count observed.
func ScrollUntilStable(ctx context.Context, s Scroller, selector string, opts ScrollOptions) (int, error) {
	if opts.StableChecks <= 0 {
		opts.StableChecks = 2
	}

	count, prev, stable := 0, -1, 0
	for step := 0; step < opts.MaxSteps; step++ {
		if err := s.Scroll(ctx, opts.Step); err != nil {
			return count, err
		}
		if err := sleep(ctx, opts.Pause); err != nil {
			return count, err
		}

		n, err := s.Count(ctx, selector)
		if err != nil {
			return count, err
		}
		count = n

		if n == prev {
			stable++
			if stable >= opts.StableChecks {
				break
			}
		} else {
			stable = 0
		}
		prev = n
	}
	return count, nil
}
