package sites

import (
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/dealscope/price"
	"github.com/use-agent/dealscope/scraper"
)

var (
	nykaaLink = Chain[string]{
		Attr("a[href]", "href"),
		Closest("a[href]", "href"),
	}
	nykaaTitle = Chain[string]{
		Text("div.css-xrzmfa"),
		Attr("img", "alt"),
	}
	nykaaImage    = Image("img", "src", "data-src", "data-srcset", "srcset")
	nykaaPrice    = Text("span.css-111z9ua")
	nykaaOriginal = Text("span.css-17x46n5")
	nykaaBadge    = Text("span.css-cjd9an")
)

// Nykaa returns the nykaa.com site definition. Its listing images load
// late, so cards without one fall back to the product page's og:image.
func Nykaa() *Site {
	const base = "https://www.nykaa.com"
	return &Site{
		Name:    "nykaa",
		BaseURL: base,
		SearchURL: func(keyword string, page int) string {
			return fmt.Sprintf("%s/search/result/?q=%s&page_no=%d", base, url.QueryEscape(keyword), page)
		},
		CardSelector: "div.css-1rd7vky",
		Wait:         scraper.WaitLoad,
		Session:      scraper.SessionOptions{Stealth: true},
		Parse:        parseNykaa,
		DetailImage:  true,
	}
}

func parseNykaa(card *goquery.Selection, base string) (Listing, error) {
	title, ok := nykaaTitle.First(card)
	if !ok {
		return Listing{}, errNoTitle
	}
	rawPrice, ok := nykaaPrice(card)
	if !ok {
		return Listing{}, errNoPrice
	}

	l := Listing{
		Title:    title,
		Price:    price.DisplayString(rawPrice),
		Original: price.NotAvailable,
	}
	if href, ok := nykaaLink.First(card); ok {
		l.URL = Absolute(base, href)
	}
	if src, ok := nykaaImage(card); ok {
		l.Image = Absolute(base, src)
	}
	if raw, ok := nykaaOriginal(card); ok {
		l.Original = price.DisplayString(raw)
	}
	if badge, ok := nykaaBadge(card); ok {
		l.Badge = percent(badge)
	}
	if l.Original == price.NotAvailable && l.Badge != nil {
		l.Original = price.OriginalFromDiscount(l.Price, *l.Badge)
	}
	return l, nil
}
