package scraper

import (
	"context"
	"log/slog"
	"time"
)

// dismissPause lets a closing overlay animate away before the next click.
const dismissPause = 500 * time.Millisecond

// Dismissal targets an interstitial close control. Text, when set, is a
// regular expression the element's visible text must match, which covers
// controls like a bare "✕" button that CSS alone cannot single out.
type Dismissal struct {
	Selector string
	Text     string
}

// DismissPopups tries each dismissal once, each bounded by timeout.
// Missing targets are normal; the number of successful clicks is returned.
func DismissPopups(ctx context.Context, c Clicker, dismissals []Dismissal, timeout time.Duration) int {
	closed := 0
	for _, d := range dismissals {
		if ctx.Err() != nil {
			return closed
		}

		clickCtx, cancel := context.WithTimeout(ctx, timeout)
		err := c.Click(clickCtx, d)
		cancel()
		if err != nil {
			slog.Debug("popup not dismissed", "selector", d.Selector, "text", d.Text, "error", err)
			continue
		}

		closed++
		slog.Info("closed popup", "selector", d.Selector)
		_ = sleep(ctx, dismissPause)
	}
	return closed
}
