package sites

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/dealscope/cache"
	"github.com/use-agent/dealscope/config"
	"github.com/use-agent/dealscope/engine"
	"github.com/use-agent/dealscope/models"
	"github.com/use-agent/dealscope/scraper"
)

type fakeSession struct {
	pages   map[string]string
	navErrs map[string]error
	current string
	visited []string
	closed  bool
}

func (s *fakeSession) Navigate(ctx context.Context, url string, wait scraper.WaitCondition) error {
	s.visited = append(s.visited, url)
	if err := s.navErrs[url]; err != nil {
		return err
	}
	s.current = url
	return nil
}

func (s *fakeSession) Click(ctx context.Context, d scraper.Dismissal) error {
	return errors.New("no popup")
}

func (s *fakeSession) Scroll(ctx context.Context, dy float64) error { return nil }

func (s *fakeSession) Count(ctx context.Context, selector string) (int, error) { return 0, nil }

func (s *fakeSession) HTML(ctx context.Context) (string, error) {
	return s.pages[s.current], nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

type fakeOpener struct {
	sess *fakeSession
	opts scraper.SessionOptions
	err  error
}

func (o *fakeOpener) NewSession(ctx context.Context, opts scraper.SessionOptions) (scraper.Session, error) {
	o.opts = opts
	if o.err != nil {
		return nil, o.err
	}
	return o.sess, nil
}

type fakeDetail struct {
	mu    sync.Mutex
	calls []string
}

func (d *fakeDetail) Name() string { return "fake" }

func (d *fakeDetail) Fetch(ctx context.Context, req *engine.FetchRequest) (*engine.FetchResult, error) {
	d.mu.Lock()
	d.calls = append(d.calls, req.URL)
	d.mu.Unlock()
	if strings.Contains(req.URL, "broken") {
		return nil, errors.New("503")
	}
	return &engine.FetchResult{HTML: `<head><meta property="og:image" content="/og/` + lastSegment(req.URL) + `.jpg"></head>`}, nil
}

func lastSegment(u string) string {
	return u[strings.LastIndex(u, "/")+1:]
}

func testConfig() config.ScraperConfig {
	return config.ScraperConfig{
		NavigationAttempts: 1,
		NavigationTimeout:  time.Second,
		RetryBackoff:       time.Millisecond,
		PopupTimeout:       10 * time.Millisecond,
		ScrollMaxSteps:     1,
	}
}

func nykaaCard(title, price, href, img string) string {
	return fmt.Sprintf(`<div class="css-1rd7vky"><a href="%s"><img src="%s"></a>`+
		`<div class="css-xrzmfa">%s</div><span class="css-111z9ua">₹%s</span></div>`, href, img, title, price)
}

func nykaaPage(cards ...string) string {
	return "<html><body>" + strings.Join(cards, "") + "</body></html>"
}

var (
	page1 = nykaaPage(
		nykaaCard("Lakme Absolute Matte Lipstick Red", "650", "/p/lakme", ""),
		nykaaCard("Maybelline Superstay Vinyl Ink Peach", "799", "/p/maybelline", "https://img/m.jpg"),
		`<div class="css-1rd7vky"><div class="css-xrzmfa">No price card</div></div>`,
	)
	page2 = nykaaPage(
		nykaaCard("Sugar Smudge Me Not Liquid Lipstick", "499", "/p/sugar", "https://img/s.jpg"),
		nykaaCard("Kay Beauty Hydrating Creme Lipstick", "1,099", "/p/broken", ""),
	)
)

func newNykaa(sess *fakeSession, detail engine.Engine) (*Extractor, *Site) {
	site := Nykaa()
	return NewExtractor(site, &fakeOpener{sess: sess}, detail, testConfig(), nil), site
}

func TestExtractor_PagesAndDetailFallback(t *testing.T) {
	site := Nykaa()
	sess := &fakeSession{pages: map[string]string{
		site.SearchURL("lipstick", 1): page1,
		site.SearchURL("lipstick", 2): page2,
	}}
	detail := &fakeDetail{}
	ex, _ := newNykaa(sess, detail)

	items, err := ex.Scrape(context.Background(), "lipstick", 10, 3)
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if len(items) != 4 {
		t.Fatalf("items = %d, want 4", len(items))
	}
	for _, it := range items {
		if it.Site != "nykaa" {
			t.Errorf("Site = %q", it.Site)
		}
	}
	if items[0].Image != "https://www.nykaa.com/og/lakme.jpg" {
		t.Errorf("items[0].Image = %q, want og:image fallback", items[0].Image)
	}
	if items[1].Image != "https://img/m.jpg" {
		t.Errorf("items[1].Image = %q", items[1].Image)
	}
	if items[3].Image != "" {
		t.Errorf("items[3].Image = %q, want empty after failed detail fetch", items[3].Image)
	}
	if len(detail.calls) != 2 {
		t.Errorf("detail fetches = %v, want one per imageless item", detail.calls)
	}
	if len(sess.visited) != 3 {
		t.Errorf("visited = %v, want pages 1..3", sess.visited)
	}
	if !sess.closed {
		t.Error("session not closed")
	}
}

func TestExtractor_StopsAtMaxProducts(t *testing.T) {
	site := Nykaa()
	sess := &fakeSession{pages: map[string]string{
		site.SearchURL("lipstick", 1): page1,
		site.SearchURL("lipstick", 2): page2,
	}}
	ex, _ := newNykaa(sess, nil)

	items, err := ex.Scrape(context.Background(), "lipstick", 1, 3)
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if len(items) != 1 || items[0].Title != "Lakme Absolute Matte Lipstick Red" {
		t.Errorf("items = %+v", items)
	}
	if len(sess.visited) != 1 {
		t.Errorf("visited = %v, want only page 1", sess.visited)
	}
}

func TestExtractor_PartialResultsOnLateFailure(t *testing.T) {
	site := Nykaa()
	sess := &fakeSession{
		pages:   map[string]string{site.SearchURL("lipstick", 1): page1},
		navErrs: map[string]error{site.SearchURL("lipstick", 2): errors.New("net::ERR_TIMED_OUT")},
	}
	ex, _ := newNykaa(sess, nil)

	items, err := ex.Scrape(context.Background(), "lipstick", 10, 3)
	if err != nil {
		t.Fatalf("Scrape() error = %v, want partial success", err)
	}
	if len(items) != 2 {
		t.Errorf("items = %d, want the 2 from page 1", len(items))
	}
	if !sess.closed {
		t.Error("session not closed")
	}
}

func TestExtractor_FirstPageFailureIsSiteError(t *testing.T) {
	site := Nykaa()
	cause := errors.New("net::ERR_CONNECTION_RESET")
	sess := &fakeSession{navErrs: map[string]error{site.SearchURL("lipstick", 1): cause}}
	ex, _ := newNykaa(sess, nil)

	items, err := ex.Scrape(context.Background(), "lipstick", 10, 3)
	if len(items) != 0 {
		t.Errorf("items = %d, want none", len(items))
	}

	var se *models.ScrapeError
	if !errors.As(err, &se) || se.Code != models.ErrCodeSiteFailed {
		t.Fatalf("error = %v, want SITE_FAILED", err)
	}
	var navErr *scraper.NavigationError
	if !errors.As(err, &navErr) || !errors.Is(err, cause) {
		t.Errorf("error = %v, want wrapped NavigationError", err)
	}
	if !sess.closed {
		t.Error("session not closed on failure")
	}
}

func TestExtractor_RepeatedPageStops(t *testing.T) {
	site := Nykaa()
	sess := &fakeSession{pages: map[string]string{
		site.SearchURL("lipstick", 1): page1,
		site.SearchURL("lipstick", 2): page1,
		site.SearchURL("lipstick", 3): page2,
	}}
	ex, _ := newNykaa(sess, nil)

	items, err := ex.Scrape(context.Background(), "lipstick", 10, 3)
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if len(items) != 2 {
		t.Errorf("items = %d, want 2 (page 2 repeats page 1)", len(items))
	}
	if len(sess.visited) != 2 {
		t.Errorf("visited = %v, want stop after page 2", sess.visited)
	}
}

func TestExtractor_EmptyPageEndsPaging(t *testing.T) {
	site := Nykaa()
	sess := &fakeSession{pages: map[string]string{
		site.SearchURL("lipstick", 1): "<html><body><p>No results</p></body></html>",
	}}
	ex, _ := newNykaa(sess, nil)

	items, err := ex.Scrape(context.Background(), "lipstick", 10, 3)
	if err != nil || len(items) != 0 {
		t.Errorf("Scrape() = %d items, %v; want 0, nil", len(items), err)
	}
	if len(sess.visited) != 1 {
		t.Errorf("visited = %v", sess.visited)
	}
}

func TestExtractor_SessionFailure(t *testing.T) {
	ex := NewExtractor(Nykaa(), &fakeOpener{err: errors.New("browser gone")}, nil, testConfig(), nil)
	if _, err := ex.Scrape(context.Background(), "lipstick", 10, 1); err == nil {
		t.Fatal("expected error")
	}
}

func TestExtractor_ParsePanicSkipsCard(t *testing.T) {
	site := Nykaa()
	calls := 0
	site.Parse = func(card *goquery.Selection, base string) (Listing, error) {
		calls++
		if calls == 1 {
			panic("boom")
		}
		return parseNykaa(card, base)
	}
	sess := &fakeSession{pages: map[string]string{site.SearchURL("lipstick", 1): page1}}
	ex := NewExtractor(site, &fakeOpener{sess: sess}, nil, testConfig(), nil)

	items, err := ex.Scrape(context.Background(), "lipstick", 10, 1)
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if len(items) != 1 || items[0].Title != "Maybelline Superstay Vinyl Ink Peach" {
		t.Errorf("items = %+v", items)
	}
}

func TestExtractor_RotatesUserAgent(t *testing.T) {
	op := &fakeOpener{sess: &fakeSession{pages: map[string]string{}}}
	pool := []string{"ua-1", "ua-2"}
	ex := NewExtractor(Amazon(), op, nil, testConfig(), pool)

	if _, err := ex.Scrape(context.Background(), "laptop", 1, 1); err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if op.opts.UserAgent != "ua-1" && op.opts.UserAgent != "ua-2" {
		t.Errorf("UserAgent = %q, want one from the pool", op.opts.UserAgent)
	}
	if op.opts.Locale != "en-IN" || op.opts.ViewportWidth != 1280 {
		t.Errorf("session options = %+v", op.opts)
	}
}

func TestExtractor_ImageCacheSkipsRepeatFetch(t *testing.T) {
	site := Nykaa()
	sess := &fakeSession{pages: map[string]string{
		site.SearchURL("lipstick", 1): page1,
		site.SearchURL("lipstick", 2): page2,
	}}
	detail := &fakeDetail{}
	images := cache.New(10, time.Hour)
	defer images.Close()
	ex, _ := newNykaa(sess, detail)
	ex.WithImageCache(images)

	for run := 0; run < 2; run++ {
		items, err := ex.Scrape(context.Background(), "lipstick", 10, 2)
		if err != nil {
			t.Fatalf("run %d: Scrape() error = %v", run, err)
		}
		if items[0].Image != "https://www.nykaa.com/og/lakme.jpg" {
			t.Errorf("run %d: items[0].Image = %q", run, items[0].Image)
		}
	}

	// The found image is served from cache; the failed one is retried.
	if len(detail.calls) != 3 {
		t.Errorf("detail fetches = %v, want 3", detail.calls)
	}
}
