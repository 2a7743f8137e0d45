// Package aggregate fans a search out to every site concurrently and merges
// the results in a fixed site order.
package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/use-agent/dealscope/models"
	"golang.org/x/sync/errgroup"
)

// Scraper crawls one site. *sites.Extractor is the production implementation.
type Scraper interface {
	Name() string
	Scrape(ctx context.Context, keyword string, maxProducts, maxPages int) ([]models.RawItem, error)
}

// Source pairs a site scraper with its page budget.
type Source struct {
	Scraper  Scraper
	MaxPages int
}

// Aggregator runs all sources for one request. It holds no per-request
// state and is safe for concurrent use.
type Aggregator struct {
	sources []Source
	timeout time.Duration
}

// New creates an Aggregator over sources, whose order is the order of the
// merged items. A timeout of zero means no request-wide deadline.
func New(sources []Source, timeout time.Duration) *Aggregator {
	return &Aggregator{sources: sources, timeout: timeout}
}

// Sites returns the source names in merge order.
func (a *Aggregator) Sites() []string {
	names := make([]string, len(a.sources))
	for i, s := range a.sources {
		names[i] = s.Scraper.Name()
	}
	return names
}

type siteResult struct {
	items []models.RawItem
	err   error
}

// Aggregate scrapes every source concurrently. A failing or panicking
// source becomes an entry in SiteErrors and never affects the others.
// The returned error is reserved for failures not attributable to a site.
func (a *Aggregator) Aggregate(ctx context.Context, keyword string, maxProducts int) (*models.AggregateResult, error) {
	if len(a.sources) == 0 {
		return nil, models.NewScrapeError(models.ErrCodeInternal, "no sites configured", nil)
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	results := make([]siteResult, len(a.sources))

	// A plain Group: one site failing must not cancel the rest.
	var g errgroup.Group
	for i, src := range a.sources {
		g.Go(func() error {
			results[i] = runSource(ctx, src, keyword, maxProducts)
			return nil
		})
	}
	_ = g.Wait()

	out := &models.AggregateResult{
		Items:      []models.RawItem{},
		SiteErrors: map[string]string{},
	}
	for i, src := range a.sources {
		name := src.Scraper.Name()
		r := results[i]
		if r.err != nil {
			out.SiteErrors[name] = r.err.Error()
			continue
		}
		for _, item := range r.items {
			if item.Site == "" {
				item.Site = name
			}
			out.Items = append(out.Items, item)
		}
	}

	slog.Info("aggregate complete",
		"keyword", keyword,
		"items", len(out.Items),
		"failedSites", len(out.SiteErrors),
		"elapsed", time.Since(start),
	)
	return out, nil
}

func runSource(ctx context.Context, src Source, keyword string, maxProducts int) (res siteResult) {
	name := src.Scraper.Name()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("site scraper panicked", "site", name, "panic", r, "stack", string(debug.Stack()))
			res = siteResult{err: models.NewSiteError(name, fmt.Errorf("panic: %v", r))}
		}
	}()

	items, err := src.Scraper.Scrape(ctx, keyword, maxProducts, src.MaxPages)
	if err != nil {
		slog.Warn("site failed", "site", name, "error", err)
		return siteResult{err: err}
	}
	return siteResult{items: items}
}
