package sites

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/use-agent/dealscope/models"
	"github.com/use-agent/dealscope/price"
)

var (
	errNoTitle = errors.New("no title")
	errNoPrice = errors.New("no price")
)

// ExtractionError describes why one card was skipped. It never leaves the
// page loop.
type ExtractionError struct {
	Site   string
	Index  int
	Reason error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s card %d: %v", e.Site, e.Index, e.Reason)
}

func (e *ExtractionError) Unwrap() error {
	return e.Reason
}

// Listing is what a site parser reads off one card, before discount
// sanitization. Price and Original are display strings.
type Listing struct {
	Title    string
	Price    string
	Original string
	Badge    *float64
	URL      string
	Image    string
}

// Outcome is the result of parsing one card: a listing or a skip reason.
type Outcome struct {
	Listing Listing
	Err     error
}

// fold splits outcomes into kept listings and skip reasons, preserving order.
func fold(outcomes []Outcome) (kept []Listing, skipped []error) {
	for _, o := range outcomes {
		if o.Err != nil {
			skipped = append(skipped, o.Err)
			continue
		}
		kept = append(kept, o.Listing)
	}
	return kept, skipped
}

// toItem normalizes a listing into the canonical item shape.
func toItem(site string, l Listing) models.RawItem {
	item := models.RawItem{
		Site:              site,
		Title:             l.Title,
		PriceText:         price.DisplayString(l.Price),
		OriginalPriceText: price.DisplayString(l.Original),
		URL:               l.URL,
		Image:             l.Image,
	}
	if IsPlaceholderImage(item.Image) {
		item.Image = ""
	}

	item.DiscountPercent = price.Sanitize(l.Badge, item.PriceText, item.OriginalPriceText)
	switch {
	case item.DiscountPercent == nil:
		item.DiscountSource = models.DiscountNone
	case l.Badge != nil && *l.Badge == *item.DiscountPercent:
		item.DiscountSource = models.DiscountScraped
	default:
		item.DiscountSource = models.DiscountDerived
	}
	return item
}

var percentRun = regexp.MustCompile(`\d+(?:\.\d+)?`)

// percent reads the first number of a badge like "-23%" or "(40% off)".
func percent(text string) *float64 {
	m := percentRun.FindString(text)
	if m == "" {
		return nil
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return nil
	}
	return &v
}
