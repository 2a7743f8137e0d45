package sites

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/dealscope/cache"
	"github.com/use-agent/dealscope/config"
	"github.com/use-agent/dealscope/engine"
	"github.com/use-agent/dealscope/models"
	"github.com/use-agent/dealscope/scraper"
	"github.com/use-agent/dealscope/simhash"
)

// Extractor crawls one site. Each Scrape call owns a fresh session, so an
// Extractor may run concurrently with itself.
type Extractor struct {
	site       *Site
	opener     scraper.Opener
	detail     engine.Engine
	images     *cache.Cache
	cfg        config.ScraperConfig
	userAgents []string
}

// NewExtractor binds site to a browser. detail may be nil, which disables
// the product-page image fallback.
func NewExtractor(site *Site, opener scraper.Opener, detail engine.Engine, cfg config.ScraperConfig, userAgents []string) *Extractor {
	site.cardMatcher()
	return &Extractor{
		site:       site,
		opener:     opener,
		detail:     detail,
		cfg:        cfg,
		userAgents: userAgents,
	}
}

// WithImageCache makes detail-page image lookups consult c first.
// Only found images are cached, so failures are retried next time.
func (e *Extractor) WithImageCache(c *cache.Cache) *Extractor {
	e.images = c
	return e
}

// Name returns the site name items are tagged with.
func (e *Extractor) Name() string { return e.site.Name }

// Scrape crawls up to maxPages listing pages for keyword and returns at
// most maxProducts items. A page that fails to load ends the crawl; the
// run only fails when nothing had been collected by then.
func (e *Extractor) Scrape(ctx context.Context, keyword string, maxProducts, maxPages int) ([]models.RawItem, error) {
	name := e.site.Name

	sess, err := e.opener.NewSession(ctx, e.sessionOptions())
	if err != nil {
		return nil, models.NewSiteError(name, err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			slog.Warn("session close failed", "site", name, "error", cerr)
		}
	}()

	var (
		items   []models.RawItem
		prev    uint64
		hasPrev bool
	)

	for page := 1; page <= maxPages && len(items) < maxProducts; page++ {
		pageURL := e.site.SearchURL(keyword, page)
		slog.Info("scraping listing", "site", name, "page", page, "url", pageURL)

		doc, err := e.loadPage(ctx, sess, pageURL)
		if err != nil {
			if len(items) == 0 {
				return nil, models.NewSiteError(name, err)
			}
			slog.Warn("listing failed, keeping partial results",
				"site", name, "page", page, "items", len(items), "error", err)
			break
		}

		cards := doc.FindMatcher(e.site.cardMatcher())
		if cards.Length() == 0 {
			slog.Info("no product cards, stopping", "site", name, "page", page)
			break
		}

		kept, skipped := fold(e.parseCards(cards))
		for _, s := range skipped {
			slog.Debug("card skipped", "site", name, "page", page, "reason", s)
		}

		if len(kept) > 0 {
			fp := simhash.Listing(titles(kept))
			if hasPrev && simhash.Similar(fp, prev, simhash.RepeatThreshold) {
				slog.Info("listing repeats previous page, stopping", "site", name, "page", page)
				break
			}
			prev, hasPrev = fp, true
		}

		if remaining := maxProducts - len(items); len(kept) > remaining {
			kept = kept[:remaining]
		}
		for _, l := range kept {
			if l.Image == "" {
				l.Image = e.detailImage(ctx, l.URL)
			}
			items = append(items, toItem(name, l))
		}

		slog.Info("listing parsed",
			"site", name, "page", page,
			"cards", cards.Length(), "kept", len(kept), "skipped", len(skipped), "total", len(items))
	}

	slog.Info("site done", "site", name, "items", len(items))
	return items, nil
}

// loadPage navigates, clears popups, scrolls lazy content in and returns
// the rendered document.
func (e *Extractor) loadPage(ctx context.Context, sess scraper.Session, pageURL string) (*goquery.Document, error) {
	if err := scraper.Navigate(ctx, sess, pageURL, e.navOptions()); err != nil {
		return nil, err
	}

	if len(e.site.Dismissals) > 0 {
		scraper.DismissPopups(ctx, sess, e.site.Dismissals, e.cfg.PopupTimeout)
	}

	if _, err := scraper.ScrollUntilStable(ctx, sess, e.site.CardSelector, e.scrollOptions()); err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		slog.Warn("scroll incomplete", "site", e.site.Name, "error", err)
	}

	html, err := sess.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("read listing html: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse listing html: %w", err)
	}
	return doc, nil
}

func (e *Extractor) parseCards(cards *goquery.Selection) []Outcome {
	outcomes := make([]Outcome, 0, cards.Length())
	cards.Each(func(i int, card *goquery.Selection) {
		outcomes = append(outcomes, e.parseCard(i, card))
	})
	return outcomes
}

// parseCard turns a parser error or panic into a skip.
func (e *Extractor) parseCard(i int, card *goquery.Selection) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Err: &ExtractionError{Site: e.site.Name, Index: i, Reason: fmt.Errorf("panic: %v", r)}}
		}
	}()

	l, err := e.site.Parse(card, e.site.BaseURL)
	if err != nil {
		return Outcome{Err: &ExtractionError{Site: e.site.Name, Index: i, Reason: err}}
	}
	return Outcome{Listing: l}
}

// detailImage makes at most one product-page fetch and returns its
// og:image, or "" on any failure.
func (e *Extractor) detailImage(ctx context.Context, productURL string) string {
	if !e.site.DetailImage || e.detail == nil || productURL == "" {
		return ""
	}

	key := cache.Key(e.site.Name, productURL)
	if img, ok := e.images.Get(key); ok {
		return img
	}

	res, err := e.detail.Fetch(ctx, &engine.FetchRequest{
		URL:       productURL,
		UserAgent: e.pickUserAgent(),
		Timeout:   e.cfg.NavigationTimeout,
	})
	if err != nil {
		slog.Debug("detail image fetch failed", "site", e.site.Name, "url", productURL, "error", err)
		return ""
	}

	img := Absolute(e.site.BaseURL, engine.OGImage(res.HTML))
	if IsPlaceholderImage(img) {
		return ""
	}
	e.images.Set(key, img)
	return img
}

func (e *Extractor) sessionOptions() scraper.SessionOptions {
	opts := e.site.Session
	if e.site.RotateUserAgent {
		opts.UserAgent = e.pickUserAgent()
	}
	return opts
}

func (e *Extractor) pickUserAgent() string {
	if len(e.userAgents) == 0 {
		return ""
	}
	return e.userAgents[rand.IntN(len(e.userAgents))]
}

func (e *Extractor) navOptions() scraper.NavOptions {
	return scraper.NavOptions{
		MaxAttempts: e.cfg.NavigationAttempts,
		Timeout:     e.cfg.NavigationTimeout,
		Backoff:     e.cfg.RetryBackoff,
		Settle:      e.cfg.SettleDelay,
		Wait:        e.site.Wait,
	}
}

func (e *Extractor) scrollOptions() scraper.ScrollOptions {
	return scraper.ScrollOptions{
		Step:     e.cfg.ScrollStep,
		Pause:    e.cfg.ScrollPause,
		MaxSteps: e.cfg.ScrollMaxSteps,
	}
}

func titles(ls []Listing) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.Title
	}
	return out
}
