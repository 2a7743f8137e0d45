package scraper

import (
	"net/url"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// blockableTypes maps config names to protocol resource types. Images are
// deliberately absent: listing cards carry their picture URLs in lazy-load
// attributes that only populate when the image request is allowed.
var blockableTypes = map[string]proto.NetworkResourceType{
	"Font":       proto.NetworkResourceTypeFont,
	"Media":      proto.NetworkResourceTypeMedia,
	"Stylesheet": proto.NetworkResourceTypeStylesheet,
	"Ping":       proto.NetworkResourceTypePing,
}

// adHosts are ad and tracking hosts dropped when ad blocking is on.
// Subdomains match too.
var adHosts = map[string]struct{}{
	"doubleclick.net":       {},
	"googlesyndication.com": {},
	"googleadservices.com":  {},
	"google-analytics.com":  {},
	"googletagmanager.com":  {},
	"googletagservices.com": {},
	"facebook.net":          {},
	"amazon-adsystem.com":   {},
	"adnxs.com":             {},
	"adsrvr.org":            {},
	"criteo.com":            {},
	"criteo.net":            {},
	"taboola.com":           {},
	"outbrain.com":          {},
	"moatads.com":           {},
	"pubmatic.com":          {},
	"rubiconproject.com":    {},
	"scorecardresearch.com": {},
	"hotjar.com":            {},
	"mixpanel.com":          {},
	"clarity.ms":            {},
	"branch.io":             {},
	"appsflyer.com":         {},
	"moengage.com":          {},
	"webengage.com":         {},
	"demdex.net":            {},
	"omtrdc.net":            {},
	"bluekai.com":           {},
	"mathtag.com":           {},
	"consensu.org":          {},
}

func isAdHost(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	for host != "" {
		if _, ok := adHosts[host]; ok {
			return true
		}
		i := strings.IndexByte(host, '.')
		if i < 0 {
			return false
		}
		host = host[i+1:]
	}
	return false
}

// blockSet resolves configured type names, ignoring unknown ones and "Image".
func blockSet(names []string) map[proto.NetworkResourceType]struct{} {
	set := make(map[proto.NetworkResourceType]struct{}, len(names))
	for _, name := range names {
		if rt, ok := blockableTypes[name]; ok {
			set[rt] = struct{}{}
		}
	}
	return set
}

// installHijack intercepts the page's requests, failing blocked resource
// types and ad hosts. It returns nil when there is nothing to block;
// otherwise the caller must Stop the router.
func installHijack(page *rod.Page, blockedTypes []string, blockAds bool) *rod.HijackRouter {
	blocked := blockSet(blockedTypes)
	if len(blocked) == 0 && !blockAds {
		return nil
	}

	router := page.HijackRequests()
	_ = router.Add("*", "", func(h *rod.Hijack) {
		if _, ok := blocked[h.Request.Type()]; ok {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		if blockAds {
			if u, err := url.Parse(h.Request.URL().String()); err == nil && isAdHost(u.Hostname()) {
				h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
				return
			}
		}
		h.ContinueRequest(&proto.FetchContinueRequest{})
	})
	go router.Run()

	return router
}
