package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Browser BrowserConfig
	Scraper ScraperConfig
	Sites   SitesConfig
	Alerts  AlertsConfig
	CORS    CORSConfig
	Log     LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 5000
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// DefaultProxy is the proxy URL for all sessions.
	DefaultProxy string

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// UserAgents is the pool sites with UA rotation pick from.
	UserAgents []string

	// MaxSessions is the number of open sessions above which health
	// reports "degraded".
	MaxSessions int // default: 24
}

// ScraperConfig controls navigation, settling and lazy-load behaviour.
type ScraperConfig struct {
	// NavigationAttempts is the number of tries per page load.
	NavigationAttempts int // default: 3

	// NavigationTimeout bounds a single navigation attempt.
	NavigationTimeout time.Duration // default: 90s

	// RetryBackoff is multiplied by the attempt number between tries.
	RetryBackoff time.Duration // default: 1.5s

	// SettleDelay is the pause after a successful navigation.
	SettleDelay time.Duration // default: 600ms

	// PopupTimeout bounds each popup dismissal attempt.
	PopupTimeout time.Duration // default: 2s

	// ScrollStep is the mouse wheel delta in pixels per scroll.
	ScrollStep float64 // default: 2000

	// ScrollPause is the wait between scroll steps.
	ScrollPause time.Duration // default: 500ms

	// ScrollMaxSteps caps the lazy-load poll loop.
	ScrollMaxSteps int // default: 20

	// RequestTimeout bounds one aggregate request across all sites.
	// Zero disables the deadline.
	RequestTimeout time.Duration // default: 0

	// BlockedResourceTypes lists resource types to block.
	// default: ["Font", "Media"]
	BlockedResourceTypes []string

	// BlockAds drops requests to known ad and tracking domains.
	BlockAds bool // default: true

	// DetailEngine picks how product pages are fetched for the image
	// fallback: "http" or "browser".
	DetailEngine string // default: "browser"

	// DetailCacheTTL keeps resolved product images for reuse across
	// requests. Zero disables the cache.
	DetailCacheTTL time.Duration // default: 0

	// DetailCacheEntries bounds the image cache.
	DetailCacheEntries int // default: 5000
}

// SitesConfig controls per-site crawl depth and request sizing.
type SitesConfig struct {
	AmazonMaxPages   int // default: 2
	FlipkartMaxPages int // default: 5
	NykaaMaxPages    int // default: 3

	// DefaultMaxProducts applies when a request omits max_products.
	DefaultMaxProducts int // default: 12

	// MaxProductsLimit is the largest max_products a request may ask for.
	MaxProductsLimit int // default: 100
}

// AlertsConfig controls the persisted alert store and its notifications.
type AlertsConfig struct {
	// FilePath is the JSON file backing the store.
	FilePath string // default: "alerts.json"

	// WebhookURL receives alert.created / alert.deleted events when set.
	WebhookURL string

	// WebhookSecret signs webhook bodies with HMAC-SHA256 when set.
	WebhookSecret string
}

// CORSConfig controls cross-origin access to the API.
type CORSConfig struct {
	AllowedOrigins []string // default: ["*"]
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:132.0) Gecko/20100101 Firefox/132.0",
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("DEALSCOPE_HOST", "0.0.0.0"),
			Port: envIntOr("DEALSCOPE_PORT", 5000),
			Mode: envOr("DEALSCOPE_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:     envBoolOr("DEALSCOPE_HEADLESS", true),
			DefaultProxy: os.Getenv("DEALSCOPE_PROXY"),
			NoSandbox:    envBoolOr("DEALSCOPE_NO_SANDBOX", false),
			BrowserBin:   os.Getenv("DEALSCOPE_BROWSER_BIN"),
			UserAgents:   envSliceSepOr("DEALSCOPE_USER_AGENTS", "|", defaultUserAgents),
			MaxSessions:  envIntOr("DEALSCOPE_MAX_SESSIONS", 24),
		},
		Scraper: ScraperConfig{
			NavigationAttempts: envIntOr("DEALSCOPE_NAV_ATTEMPTS", 3),
			NavigationTimeout:  envDurationOr("DEALSCOPE_NAV_TIMEOUT", 90*time.Second),
			RetryBackoff:       envDurationOr("DEALSCOPE_NAV_BACKOFF", 1500*time.Millisecond),
			SettleDelay:        envDurationOr("DEALSCOPE_SETTLE_DELAY", 600*time.Millisecond),
			PopupTimeout:       envDurationOr("DEALSCOPE_POPUP_TIMEOUT", 2*time.Second),
			ScrollStep:         envFloatOr("DEALSCOPE_SCROLL_STEP", 2000),
			ScrollPause:        envDurationOr("DEALSCOPE_SCROLL_PAUSE", 500*time.Millisecond),
			ScrollMaxSteps:     envIntOr("DEALSCOPE_SCROLL_MAX_STEPS", 20),
			RequestTimeout:     envDurationOr("DEALSCOPE_REQUEST_TIMEOUT", 0),
			BlockedResourceTypes: envSliceOr("DEALSCOPE_BLOCKED_RESOURCES", []string{
				"Font", "Media",
			}),
			BlockAds:           envBoolOr("DEALSCOPE_BLOCK_ADS", true),
			DetailEngine:       envOr("DEALSCOPE_DETAIL_ENGINE", "browser"),
			DetailCacheTTL:     envDurationOr("DEALSCOPE_DETAIL_CACHE_TTL", 0),
			DetailCacheEntries: envIntOr("DEALSCOPE_DETAIL_CACHE_ENTRIES", 5000),
		},
		Sites: SitesConfig{
			AmazonMaxPages:     envIntOr("DEALSCOPE_AMAZON_MAX_PAGES", 2),
			FlipkartMaxPages:   envIntOr("DEALSCOPE_FLIPKART_MAX_PAGES", 5),
			NykaaMaxPages:      envIntOr("DEALSCOPE_NYKAA_MAX_PAGES", 3),
			DefaultMaxProducts: envIntOr("DEALSCOPE_DEFAULT_MAX_PRODUCTS", 12),
			MaxProductsLimit:   envIntOr("DEALSCOPE_MAX_PRODUCTS_LIMIT", 100),
		},
		Alerts: AlertsConfig{
			FilePath:      envOr("DEALSCOPE_ALERTS_FILE", "alerts.json"),
			WebhookURL:    os.Getenv("DEALSCOPE_ALERT_WEBHOOK_URL"),
			WebhookSecret: os.Getenv("DEALSCOPE_ALERT_WEBHOOK_SECRET"),
		},
		CORS: CORSConfig{
			AllowedOrigins: envSliceOr("DEALSCOPE_CORS_ORIGINS", []string{"*"}),
		},
		Log: LogConfig{
			Level:  envOr("DEALSCOPE_LOG_LEVEL", "info"),
			Format: envOr("DEALSCOPE_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	return envSliceSepOr(key, ",", fallback)
}

// envSliceSepOr splits on sep; user agents contain commas so they use "|".
func envSliceSepOr(key, sep string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, sep)
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
