package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/dealscope/config"
	"github.com/use-agent/dealscope/filter"
	"github.com/use-agent/dealscope/models"
)

// Aggregator runs a search across all sites. *aggregate.Aggregator is the
// production implementation.
type Aggregator interface {
	Aggregate(ctx context.Context, keyword string, maxProducts int) (*models.AggregateResult, error)
	Sites() []string
}

// Scrape returns a handler for POST /api/scrape.
//
//  1. Parse the request and apply defaults.
//  2. Aggregate across every site; per-site failures land in site_errors.
//  3. Apply the optional discount threshold.
func Scrape(agg Aggregator, sites config.SitesConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		var req models.ScrapeRequest
		if err := bindJSON(c, &req); err != nil {
			badRequest(c, err.Error())
			return
		}
		req.Defaults(sites.DefaultMaxProducts)
		if limit := models.FlexInt(sites.MaxProductsLimit); limit > 0 && req.MaxProducts > limit {
			req.MaxProducts = limit
		}

		slog.Info("scrape request",
			"keyword", req.Keyword,
			"max_products", req.MaxProducts,
			"discount", string(req.Discount),
		)

		res, err := agg.Aggregate(c.Request.Context(), req.Keyword, int(req.MaxProducts))
		if err != nil {
			slog.Error("aggregate failed", "keyword", req.Keyword, "error", err)
			respondError(c, err)
			return
		}

		items := filter.ApplyThreshold(res.Items, string(req.Discount))

		slog.Info("scrape complete",
			"keyword", req.Keyword,
			"items", len(items),
			"site_errors", len(res.SiteErrors),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)

		c.JSON(http.StatusOK, models.ScrapeResponse{
			Success:    true,
			Keyword:    req.Keyword,
			CountAll:   len(items),
			SiteErrors: res.SiteErrors,
			Items:      items,
		})
	}
}
