package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/dealscope/config"
	"github.com/use-agent/dealscope/models"
	"github.com/ysmood/gson"
)

// Browser owns one Chromium process. Each session gets its own incognito
// context, so cookies and storage never leak between concurrent site runs.
// It is safe for concurrent use.
type Browser struct {
	browser    *rod.Browser
	scraperCfg config.ScraperConfig
	active     atomic.Int32
}

// NewBrowser launches Chromium with automation tells switched off.
func NewBrowser(browserCfg config.BrowserConfig, scraperCfg config.ScraperConfig) (*Browser, error) {
	l := launcher.New().
		Headless(browserCfg.Headless).
		NoSandbox(browserCfg.NoSandbox)

	if browserCfg.BrowserBin != "" {
		l = l.Bin(browserCfg.BrowserBin)
	}
	if browserCfg.DefaultProxy != "" {
		l = l.Proxy(browserCfg.DefaultProxy)
	}

	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "TranslateUI")
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to launch browser", err)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to connect to browser", err)
	}

	return &Browser{browser: b, scraperCfg: scraperCfg}, nil
}

// ActiveSessions reports how many sessions are currently open.
func (b *Browser) ActiveSessions() int {
	return int(b.active.Load())
}

// Close kills the browser process.
func (b *Browser) Close() {
	slog.Info("closing browser", "activeSessions", b.ActiveSessions())
	if err := b.browser.Close(); err != nil {
		slog.Warn("browser close failed", "error", err)
	}
}

// NewSession opens an isolated browser context with a single page and
// applies opts to it. On error nothing is left open.
func (b *Browser) NewSession(ctx context.Context, opts SessionOptions) (Session, error) {
	incog, err := b.browser.Context(ctx).Incognito()
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to create browser context", err)
	}

	page, err := incog.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = incog.Close()
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to open page", err)
	}

	s := &rodSession{owner: b, incognito: incog, page: page}
	b.active.Add(1)

	if err := s.configure(opts, b.scraperCfg); err != nil {
		_ = s.Close()
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to configure page", err)
	}
	return s, nil
}

type rodSession struct {
	owner     *Browser
	incognito *rod.Browser
	page      *rod.Page
	router    *rod.HijackRouter
	closed    atomic.Bool
}

func (s *rodSession) configure(opts SessionOptions, cfg config.ScraperConfig) error {
	if opts.ViewportWidth > 0 && opts.ViewportHeight > 0 {
		if err := s.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             opts.ViewportWidth,
			Height:            opts.ViewportHeight,
			DeviceScaleFactor: 1,
		}); err != nil {
			return err
		}
	}

	if opts.UserAgent != "" {
		if err := s.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent:      opts.UserAgent,
			AcceptLanguage: opts.Headers["Accept-Language"],
		}); err != nil {
			return err
		}
	}

	if opts.Locale != "" {
		if err := (proto.EmulationSetLocaleOverride{Locale: opts.Locale}).Call(s.page); err != nil {
			return err
		}
	}

	if len(opts.Headers) > 0 {
		if err := (proto.NetworkSetExtraHTTPHeaders{Headers: toHeaders(opts.Headers)}).Call(s.page); err != nil {
			return err
		}
	}

	if opts.Stealth {
		if _, err := s.page.EvalOnNewDocument(stealth.JS); err != nil {
			return err
		}
	}

	s.router = installHijack(s.page, cfg.BlockedResourceTypes, cfg.BlockAds)
	return nil
}

func (s *rodSession) Navigate(ctx context.Context, rawURL string, wait WaitCondition) error {
	p := s.page.Context(ctx)

	var waitFn func()
	if event, ok := lifecycleEvent(wait); ok {
		waitFn = p.WaitNavigation(event)
	}

	if err := p.Navigate(rawURL); err != nil {
		return classifyNavigate(err)
	}
	if waitFn != nil {
		waitFn()
	}
	return ctx.Err()
}

func lifecycleEvent(w WaitCondition) (proto.PageLifecycleEventName, bool) {
	switch w {
	case WaitDOMContentLoaded:
		return proto.PageLifecycleEventNameDOMContentLoaded, true
	case WaitLoad:
		return proto.PageLifecycleEventNameLoad, true
	case WaitNetworkIdle:
		return proto.PageLifecycleEventNameNetworkIdle, true
	default:
		// commit: Navigate already returned once the response arrived.
		return "", false
	}
}

// classifyNavigate marks errors that another attempt cannot fix.
func classifyNavigate(err error) error {
	var navErr *rod.NavigationError
	if errors.As(err, &navErr) {
		reason := navErr.Reason
		if strings.Contains(reason, "ERR_INVALID_URL") || strings.Contains(reason, "ERR_NAME_NOT_RESOLVED") {
			return Permanent(err)
		}
	}
	return err
}

func (s *rodSession) Click(ctx context.Context, d Dismissal) error {
	p := s.page.Context(ctx)

	var (
		el  *rod.Element
		err error
	)
	if d.Text != "" {
		el, err = p.ElementR(d.Selector, d.Text)
	} else {
		el, err = p.Element(d.Selector)
	}
	if err != nil {
		return fmt.Errorf("element %q: %w", d.Selector, err)
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (s *rodSession) Scroll(ctx context.Context, dy float64) error {
	return s.page.Context(ctx).Mouse.Scroll(0, dy, 0)
}

func (s *rodSession) Count(ctx context.Context, selector string) (int, error) {
	res, err := s.page.Context(ctx).Eval(`(sel) => document.querySelectorAll(sel).length`, selector)
	if err != nil {
		return 0, err
	}
	return res.Value.Int(), nil
}

func (s *rodSession) HTML(ctx context.Context) (string, error) {
	return s.page.Context(ctx).HTML()
}

// Close tears down the hijack router, the page and the browser context.
// It is idempotent.
func (s *rodSession) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	defer s.owner.active.Add(-1)

	var errs []error
	if s.router != nil {
		errs = append(errs, s.router.Stop())
	}
	errs = append(errs, s.page.Close(), s.incognito.Close())
	return errors.Join(errs...)
}

// toHeaders converts a plain map into the CDP header object.
func toHeaders(h map[string]string) proto.NetworkHeaders {
	out := make(proto.NetworkHeaders, len(h))
	for k, v := range h {
		out[k] = gson.New(v)
	}
	return out
}
