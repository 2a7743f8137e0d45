// Package price normalizes localized price text and keeps discount
// percentages within a plausible range.
package price

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// NotAvailable is the display form of a missing or unparseable price.
const NotAvailable = "N/A"

// numericRun matches the first number with optional thousands separators
// and decimal part, e.g. "35,490" in "₹35,490.00 M.R.P".
var numericRun = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

// DisplayString returns only the numeric run of a price text ("35,490"),
// or NotAvailable. DisplayString(DisplayString(x)) == DisplayString(x).
func DisplayString(text string) string {
	if text == "" {
		return NotAvailable
	}
	s := strings.ReplaceAll(text, "\u00a0", " ")
	m := numericRun.FindString(s)
	if m == "" {
		return NotAvailable
	}
	return strings.TrimRight(m, ",")
}

// Number parses the first numeric run of a price text, dropping currency
// symbols and thousands separators. ok is false when nothing parses.
func Number(text string) (float64, bool) {
	m := numericRun.FindString(strings.ReplaceAll(text, "\u00a0", " "))
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Format renders a whole amount with thousands separators, e.g. 35490 -> "35,490".
func Format(v float64) string {
	n := int64(math.Round(v))
	neg := n < 0
	if neg {
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// OriginalFromDiscount back-computes the pre-discount price from the selling
// price and a discount percentage: price × 100 / (100 − discount).
// It returns NotAvailable unless the price parses and 0 < discount < MaxDiscount.
func OriginalFromDiscount(priceText string, discount float64) string {
	p, ok := Number(priceText)
	if !ok || discount <= 0 || discount >= MaxDiscount {
		return NotAvailable
	}
	return Format(p * 100 / (100 - discount))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
