package sites

import (
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/dealscope/price"
	"github.com/use-agent/dealscope/scraper"
)

var (
	amazonTitle = Chain[string]{
		Text("h2 a span"),
		Text("h2 span"),
		Text("h2"),
		Attr("img.s-image", "alt"),
	}
	amazonLink = Chain[string]{
		Attr("h2 a", "href"),
		Attr("a.a-link-normal[href*='/dp/']", "href"),
	}
	amazonImage    = Image("img.s-image", "src", "data-image-src", "srcset", "data-src")
	amazonPrice    = Text("span.a-price > span.a-offscreen")
	amazonOriginal = Text("span.a-text-price span.a-offscreen")
	amazonBadge    = Text("span.savingsPercentage")
)

// Amazon returns the amazon.in site definition.
func Amazon() *Site {
	const base = "https://www.amazon.in"
	return &Site{
		Name:    "amazon",
		BaseURL: base,
		SearchURL: func(keyword string, page int) string {
			return fmt.Sprintf("%s/s?k=%s&page=%d", base, url.QueryEscape(keyword), page)
		},
		CardSelector: "div.s-result-item[data-component-type='s-search-result']",
		Wait:         scraper.WaitNetworkIdle,
		Dismissals: []scraper.Dismissal{
			{Selector: "#sp-cc-accept"},
		},
		Session: scraper.SessionOptions{
			Locale:         "en-IN",
			ViewportWidth:  1280,
			ViewportHeight: 900,
			Stealth:        true,
			Headers:        map[string]string{"Accept-Language": "en-IN,en;q=0.9"},
		},
		RotateUserAgent: true,
		Parse:           parseAmazon,
	}
}

// parseAmazon keeps cards without a price. A missing original is
// back-computed from the badge when there is one; otherwise price and
// original stand in for each other.
func parseAmazon(card *goquery.Selection, base string) (Listing, error) {
	title, ok := amazonTitle.First(card)
	if !ok {
		return Listing{}, errNoTitle
	}

	l := Listing{Title: title}
	if href, ok := amazonLink.First(card); ok {
		l.URL = Absolute(base, href)
	}
	if src, ok := amazonImage(card); ok {
		l.Image = Absolute(base, src)
	}

	rawPrice, _ := amazonPrice(card)
	rawOriginal, _ := amazonOriginal(card)
	l.Price = price.DisplayString(rawPrice)
	l.Original = price.DisplayString(rawOriginal)
	if badge, ok := amazonBadge(card); ok {
		l.Badge = percent(badge)
	}

	if l.Price == price.NotAvailable && l.Original != price.NotAvailable {
		l.Price = l.Original
	}
	if l.Original == price.NotAvailable && l.Badge != nil {
		l.Original = price.OriginalFromDiscount(l.Price, *l.Badge)
	}
	if l.Original == price.NotAvailable && l.Price != price.NotAvailable {
		l.Original = l.Price
	}
	return l, nil
}
