package sites

import (
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/dealscope/price"
	"github.com/use-agent/dealscope/scraper"
)

// Flipkart's class names rotate often, so cards are read from their raw
// markup rather than through selectors.
var (
	flipkartTextRun  = regexp.MustCompile(`>([^<>]{10,120})<`)
	flipkartNotTitle = regexp.MustCompile(`(?i)₹|%|★|off|add to cart`)
	flipkartPrice    = regexp.MustCompile(`₹\s?[\d,]+`)
	flipkartBadge    = regexp.MustCompile(`(?i)(\d{1,2})%\s*off`)
	flipkartImg      = match("img")
	flipkartLink     = Attr("a[href]", "href")
)

// Flipkart returns the flipkart.com site definition.
func Flipkart() *Site {
	const base = "https://www.flipkart.com"
	return &Site{
		Name:    "flipkart",
		BaseURL: base,
		SearchURL: func(keyword string, page int) string {
			return fmt.Sprintf("%s/search?q=%s&page=%d", base, url.QueryEscape(keyword), page)
		},
		CardSelector: "div[data-id]",
		Wait:         scraper.WaitDOMContentLoaded,
		Dismissals: []scraper.Dismissal{
			{Selector: "button", Text: "✕"},
		},
		Session: scraper.SessionOptions{Stealth: true},
		Parse:   parseFlipkart,
	}
}

func parseFlipkart(card *goquery.Selection, base string) (Listing, error) {
	inner, err := card.Html()
	if err != nil {
		return Listing{}, err
	}

	title := flipkartTitle(inner)
	if title == "" {
		return Listing{}, errNoTitle
	}
	rawPrice := flipkartPrice.FindString(inner)
	if rawPrice == "" {
		return Listing{}, errNoPrice
	}

	l := Listing{
		Title:    title,
		Price:    price.DisplayString(rawPrice),
		Original: price.NotAvailable,
		Image:    flipkartImage(card, base),
	}

	if m := flipkartBadge.FindStringSubmatch(inner); m != nil {
		if d, err := strconv.ParseFloat(m[1], 64); err == nil {
			l.Badge = &d
			l.Original = price.OriginalFromDiscount(l.Price, d)
		}
	}

	if href, ok := flipkartLink(card); ok {
		l.URL = CleanHref(base, href)
	}
	return l, nil
}

// flipkartTitle picks the longest text run that is not a price, rating,
// discount or button label.
func flipkartTitle(inner string) string {
	var best string
	bestLen := 0
	for _, m := range flipkartTextRun.FindAllStringSubmatch(inner, -1) {
		t := collapse(html.UnescapeString(m[1]))
		if t == "" || flipkartNotTitle.MatchString(t) {
			continue
		}
		if n := utf8.RuneCountInString(t); n > bestLen {
			best, bestLen = t, n
		}
	}
	return best
}

// flipkartImage prefers src and falls back to data-src while src is
// missing or an inline placeholder.
func flipkartImage(card *goquery.Selection, base string) string {
	img := card.FindMatcher(flipkartImg).First()
	src := strings.TrimSpace(img.AttrOr("src", ""))
	if src == "" || strings.HasPrefix(src, "data:") {
		src = strings.TrimSpace(img.AttrOr("data-src", ""))
	}
	return Absolute(base, src)
}
