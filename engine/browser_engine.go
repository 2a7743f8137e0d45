package engine

import (
	"context"
	"fmt"

	"github.com/use-agent/dealscope/scraper"
)

// BrowserEngine renders a page in a fresh browser session. It makes a
// single navigation attempt; the detail fallback is best effort.
type BrowserEngine struct {
	opener  scraper.Opener
	session scraper.SessionOptions
}

// NewBrowserEngine creates a BrowserEngine that opens sessions from opener
// with the given base options.
func NewBrowserEngine(opener scraper.Opener, opts scraper.SessionOptions) *BrowserEngine {
	return &BrowserEngine{opener: opener, session: opts}
}

func (e *BrowserEngine) Name() string { return "browser" }

func (e *BrowserEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	if e.opener == nil {
		return nil, fmt.Errorf("browser_engine: no browser configured")
	}

	opts := e.session
	if req.UserAgent != "" {
		opts.UserAgent = req.UserAgent
	}
	if len(req.Headers) > 0 {
		opts.Headers = req.Headers
	}

	sess, err := e.opener.NewSession(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("browser_engine: %w", err)
	}
	defer sess.Close()

	nav := scraper.NavOptions{MaxAttempts: 1, Timeout: req.Timeout, Wait: scraper.WaitDOMContentLoaded}
	if err := scraper.Navigate(ctx, sess, req.URL, nav); err != nil {
		return nil, fmt.Errorf("browser_engine: %w", err)
	}

	doc, err := sess.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("browser_engine: read html: %w", err)
	}

	return &FetchResult{
		HTML:       doc,
		StatusCode: 200,
		FinalURL:   req.URL,
		EngineName: e.Name(),
	}, nil
}

// New picks the engine named by kind. Unknown kinds fall back to http.
func New(kind, proxy string, opener scraper.Opener, opts scraper.SessionOptions) (Engine, error) {
	if kind == "browser" && opener != nil {
		return NewBrowserEngine(opener, opts), nil
	}
	return NewHTTPEngine(proxy)
}
