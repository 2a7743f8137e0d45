// Package filter narrows aggregated results by a maximum discount.
package filter

import (
	"errors"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/use-agent/dealscope/models"
)

// ErrNoNumericThreshold is returned when a threshold input contains no number.
var ErrNoNumericThreshold = errors.New("no numeric value in discount threshold")

var thresholdNumber = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ParseThreshold extracts the threshold from free-form input such as "30"
// or "30%". active is false for empty or zero input, meaning no filtering.
func ParseThreshold(raw string) (threshold float64, active bool, err error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false, nil
	}
	if f, perr := strconv.ParseFloat(s, 64); perr == nil && f == 0 {
		return 0, false, nil
	}

	m := thresholdNumber.FindString(s)
	if m == "" {
		return 0, false, ErrNoNumericThreshold
	}
	v, perr := strconv.ParseFloat(m, 64)
	if perr != nil {
		return 0, false, ErrNoNumericThreshold
	}
	return v, true, nil
}

// ApplyThreshold keeps items whose discount is known and <= the threshold.
// Items without a discount are dropped whenever a threshold is active.
// Unparseable input is logged and the items are returned unchanged.
func ApplyThreshold(items []models.RawItem, raw string) []models.RawItem {
	threshold, active, err := ParseThreshold(raw)
	if err != nil {
		slog.Warn("discount filter skipped", "input", raw, "error", err)
		return items
	}
	if !active {
		return items
	}

	slog.Info("applying discount filter", "max_discount", threshold)
	kept := make([]models.RawItem, 0, len(items))
	for _, item := range items {
		if item.DiscountPercent != nil && *item.DiscountPercent <= threshold {
			kept = append(kept, item)
		}
	}
	return kept
}
