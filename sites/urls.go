package sites

import (
	"net/url"
	"strings"
)

var placeholderMarkers = []string{"placeholder", "transparent", "pixel", "no-image", "sprite"}

// Absolute resolves href against base. Protocol-relative hrefs get https,
// absolute URLs are kept, anything else is joined to base. Empty or
// unparseable input yields "".
func Absolute(base, href string) string {
	h := strings.TrimSpace(href)
	if h == "" {
		return ""
	}
	if strings.HasPrefix(h, "//") {
		return "https:" + h
	}
	u, err := url.Parse(h)
	if err != nil {
		return ""
	}
	if u.Scheme != "" && u.Host != "" {
		return h
	}
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	return b.ResolveReference(u).String()
}

// CleanHref unescapes a listing link and, for site-relative paths, drops
// the tracking query before resolving it. Links that are neither
// site-relative nor http(s) yield "".
func CleanHref(base, href string) string {
	h := strings.TrimSpace(href)
	if un, err := url.PathUnescape(h); err == nil {
		h = un
	}
	switch {
	case strings.HasPrefix(h, "/"):
		if i := strings.IndexByte(h, '?'); i >= 0 {
			h = h[:i]
		}
		return Absolute(base, h)
	case strings.HasPrefix(h, "http"):
		return h
	default:
		return ""
	}
}

// FirstSrcset returns the URL of the first srcset candidate.
func FirstSrcset(v string) string {
	first, _, _ := strings.Cut(v, ",")
	fields := strings.Fields(first)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// IsPlaceholderImage reports whether u looks like a lazy-load stand-in
// rather than a product picture.
func IsPlaceholderImage(u string) bool {
	low := strings.ToLower(strings.TrimSpace(u))
	if strings.HasPrefix(low, "data:") {
		return true
	}
	for _, m := range placeholderMarkers {
		if strings.Contains(low, m) {
			return true
		}
	}
	return false
}
