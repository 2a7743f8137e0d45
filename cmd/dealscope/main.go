package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/dealscope/aggregate"
	"github.com/use-agent/dealscope/alerts"
	"github.com/use-agent/dealscope/api"
	"github.com/use-agent/dealscope/cache"
	"github.com/use-agent/dealscope/config"
	"github.com/use-agent/dealscope/engine"
	"github.com/use-agent/dealscope/scraper"
	"github.com/use-agent/dealscope/sites"
	"github.com/use-agent/dealscope/webhook"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("dealscope starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"detailEngine", cfg.Scraper.DetailEngine,
	)

	// ── 3. Launch the shared browser ────────────────────────────────
	browser, err := scraper.NewBrowser(cfg.Browser, cfg.Scraper)
	if err != nil {
		slog.Error("failed to launch browser", "error", err)
		os.Exit(1)
	}
	defer browser.Close()

	// ── 4. Detail-page engine for the image fallback ────────────────
	detail, err := engine.New(cfg.Scraper.DetailEngine, cfg.Browser.DefaultProxy, browser,
		scraper.SessionOptions{Stealth: true})
	if err != nil {
		slog.Error("failed to initialise detail engine", "error", err)
		os.Exit(1)
	}

	images := cache.New(cfg.Scraper.DetailCacheEntries, cfg.Scraper.DetailCacheTTL)
	defer images.Close()

	// ── 5. Per-site extractors and the aggregator ───────────────────
	var sources []aggregate.Source
	for _, site := range sites.All() {
		ex := sites.NewExtractor(site, browser, detail, cfg.Scraper, cfg.Browser.UserAgents).
			WithImageCache(images)
		sources = append(sources, aggregate.Source{
			Scraper:  ex,
			MaxPages: maxPages(cfg.Sites, site.Name),
		})
	}
	agg := aggregate.New(sources, cfg.Scraper.RequestTimeout)

	// ── 6. Alert store, optionally announcing changes by webhook ────
	var repo alerts.Repository = alerts.NewFileStore(cfg.Alerts.FilePath)
	var notifier *webhook.Notifier
	if cfg.Alerts.WebhookURL != "" {
		notifier = webhook.New(cfg.Alerts.WebhookURL, cfg.Alerts.WebhookSecret)
		repo = alerts.WithNotifier(repo, notifier)
		slog.Info("alert webhook enabled", "url", cfg.Alerts.WebhookURL)
	}

	// ── 7. Setup router ─────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(api.Deps{
		Aggregator: agg,
		Alerts:     repo,
		Sessions:   browser,
	}, cfg, startTime)

	// ── 8. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 9. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	if notifier != nil {
		notifier.Wait()
	}

	// browser.Close() runs via defer and kills Chrome.
	slog.Info("dealscope stopped")
}

// maxPages returns the configured crawl depth for a site.
func maxPages(cfg config.SitesConfig, site string) int {
	switch site {
	case "amazon":
		return cfg.AmazonMaxPages
	case "flipkart":
		return cfg.FlipkartMaxPages
	case "nykaa":
		return cfg.NykaaMaxPages
	}
	return 1
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
