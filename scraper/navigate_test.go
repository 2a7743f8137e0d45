package scraper

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeNavigator struct {
	errs  []error // one per attempt; missing entries succeed
	calls int
	waits []WaitCondition
}

func (f *fakeNavigator) Navigate(ctx context.Context, url string, wait WaitCondition) error {
	f.calls++
	f.waits = append(f.waits, wait)
	if f.calls <= len(f.errs) {
		return f.errs[f.calls-1]
	}
	return nil
}

func fastNav() NavOptions {
	return NavOptions{MaxAttempts: 3, Timeout: time.Second, Backoff: time.Millisecond, Wait: WaitLoad}
}

func TestNavigate_RetriesThenSucceeds(t *testing.T) {
	nav := &fakeNavigator{errs: []error{errors.New("timeout"), errors.New("reset")}}

	if err := Navigate(context.Background(), nav, "https://example.com/s?k=x", fastNav()); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}
	if nav.calls != 3 {
		t.Errorf("calls = %d, want 3", nav.calls)
	}
	for _, w := range nav.waits {
		if w != WaitLoad {
			t.Errorf("wait = %q, want load", w)
		}
	}
}

func TestNavigate_ExhaustsAttempts(t *testing.T) {
	cause := errors.New("net::ERR_CONNECTION_RESET")
	nav := &fakeNavigator{errs: []error{cause, cause, cause, cause}}

	err := Navigate(context.Background(), nav, "https://example.com", fastNav())

	var navErr *NavigationError
	if !errors.As(err, &navErr) {
		t.Fatalf("error = %v, want *NavigationError", err)
	}
	if navErr.Attempts != 3 || nav.calls != 3 {
		t.Errorf("attempts = %d calls = %d, want 3/3", navErr.Attempts, nav.calls)
	}
	if !errors.Is(err, cause) {
		t.Error("NavigationError should wrap the last cause")
	}
}

func TestNavigate_PermanentStopsImmediately(t *testing.T) {
	nav := &fakeNavigator{errs: []error{Permanent(errors.New("net::ERR_INVALID_URL"))}}

	err := Navigate(context.Background(), nav, "https://example.com", fastNav())
	if err == nil || !IsPermanent(err) {
		t.Fatalf("error = %v, want permanent", err)
	}
	if nav.calls != 1 {
		t.Errorf("calls = %d, want 1", nav.calls)
	}
}

func TestNavigate_MalformedURL(t *testing.T) {
	for _, raw := range []string{"", "not a url", "/relative/path", "ftp://example.com", "https://"} {
		nav := &fakeNavigator{}
		err := Navigate(context.Background(), nav, raw, fastNav())
		if err == nil || !IsPermanent(err) {
			t.Errorf("Navigate(%q) error = %v, want permanent", raw, err)
		}
		if nav.calls != 0 {
			t.Errorf("Navigate(%q) made %d calls, want 0", raw, nav.calls)
		}
	}
}

func TestNavigate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	nav := &fakeNavigator{errs: []error{errors.New("boom"), errors.New("boom")}}

	opts := fastNav()
	opts.Backoff = time.Hour
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := Navigate(ctx, nav, "https://example.com", opts)
	if err == nil || !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("Navigate did not stop on cancellation")
	}
}

func TestNavOptions_Defaults(t *testing.T) {
	o := NavOptions{}.withDefaults()
	if o.MaxAttempts != 3 || o.Timeout != 90*time.Second || o.Wait != WaitDOMContentLoaded {
		t.Errorf("withDefaults() = %+v", o)
	}
}
