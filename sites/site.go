// Package sites crawls the search listings of individual shops and turns
// their product cards into canonical items.
package sites

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/dealscope/scraper"
)

// Site describes one shop: where its listings live and how to read them.
type Site struct {
	Name    string
	BaseURL string

	// SearchURL builds the listing URL for a keyword and 1-based page.
	SearchURL func(keyword string, page int) string

	// CardSelector matches one product card in the rendered listing.
	CardSelector string

	// Wait is the lifecycle event page loads wait for.
	Wait scraper.WaitCondition

	// Dismissals close interstitials (login prompts, cookie banners).
	Dismissals []scraper.Dismissal

	// Session is the base browser context for the site.
	Session scraper.SessionOptions

	// RotateUserAgent picks a random user agent from the configured pool
	// for each run.
	RotateUserAgent bool

	// Parse reads one card. base is BaseURL.
	Parse func(card *goquery.Selection, base string) (Listing, error)

	// DetailImage opens a card's product page for og:image when the
	// listing has no usable picture.
	DetailImage bool

	cards goquery.Matcher
}

// All returns the supported sites in their fixed response order.
func All() []*Site {
	return []*Site{Amazon(), Flipkart(), Nykaa()}
}

func (s *Site) cardMatcher() goquery.Matcher {
	if s.cards == nil {
		s.cards = match(s.CardSelector)
	}
	return s.cards
}
