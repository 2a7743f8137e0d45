package sites

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Strategy is one way of reading a field off a product card.
type Strategy[T any] func(card *goquery.Selection) (T, bool)

// Chain is an ordered list of strategies for the same field.
type Chain[T any] []Strategy[T]

// First returns the result of the first strategy that succeeds.
func (c Chain[T]) First(card *goquery.Selection) (T, bool) {
	for _, s := range c {
		if v, ok := s(card); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func match(selector string) goquery.Matcher {
	return cascadia.MustCompile(selector)
}

// Text reads the whitespace-collapsed text of the first element matching
// selector. Empty text is a miss.
func Text(selector string) Strategy[string] {
	m := match(selector)
	return func(card *goquery.Selection) (string, bool) {
		t := collapse(card.FindMatcher(m).First().Text())
		return t, t != ""
	}
}

// Attr reads the first non-empty attribute, in order, of the first element
// matching selector.
func Attr(selector string, attrs ...string) Strategy[string] {
	m := match(selector)
	return func(card *goquery.Selection) (string, bool) {
		return firstAttr(card.FindMatcher(m).First(), attrs)
	}
}

// Closest reads attributes from the nearest ancestor (or the card itself)
// matching selector. Cards are sometimes nested inside their link.
func Closest(selector string, attrs ...string) Strategy[string] {
	m := match(selector)
	return func(card *goquery.Selection) (string, bool) {
		return firstAttr(card.ClosestMatcher(m), attrs)
	}
}

// Image reads image attributes of the first element matching selector,
// taking the first srcset candidate and skipping placeholders.
func Image(selector string, attrs ...string) Strategy[string] {
	m := match(selector)
	return func(card *goquery.Selection) (string, bool) {
		img := card.FindMatcher(m).First()
		for _, a := range attrs {
			v := strings.TrimSpace(img.AttrOr(a, ""))
			if strings.Contains(a, "srcset") {
				v = FirstSrcset(v)
			}
			if v == "" || IsPlaceholderImage(v) {
				continue
			}
			return v, true
		}
		return "", false
	}
}

func firstAttr(sel *goquery.Selection, attrs []string) (string, bool) {
	if sel.Length() == 0 {
		return "", false
	}
	for _, a := range attrs {
		if v := strings.TrimSpace(sel.AttrOr(a, "")); v != "" {
			return v, true
		}
	}
	return "", false
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
