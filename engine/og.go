package engine

import (
	"strings"

	"golang.org/x/net/html"
)

// OGImage returns the content of the first og:image meta tag, matching
// either property= or name=. It stops at </head> and returns "" when the
// tag is absent.
func OGImage(doc string) string {
	z := html.NewTokenizer(strings.NewReader(doc))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.EndTagToken:
			if name, _ := z.TagName(); string(name) == "head" {
				return ""
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "meta" || !hasAttr {
				continue
			}
			if v := ogContent(z); v != "" {
				return v
			}
		}
	}
}

func ogContent(z *html.Tokenizer) string {
	var isOG bool
	var content string
	for {
		key, val, more := z.TagAttr()
		switch string(key) {
		case "property", "name":
			if strings.EqualFold(strings.TrimSpace(string(val)), "og:image") {
				isOG = true
			}
		case "content":
			content = strings.TrimSpace(string(val))
		}
		if !more {
			break
		}
	}
	if isOG {
		return content
	}
	return ""
}
