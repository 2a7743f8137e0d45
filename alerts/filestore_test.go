package alerts

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/use-agent/dealscope/models"
	"github.com/use-agent/dealscope/webhook"
)

func newStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "alerts.json")
	s := NewFileStore(path)
	s.now = func() time.Time { return time.Date(2026, 3, 1, 10, 30, 0, 0, time.FixedZone("IST", 19800)) }
	return s, path
}

func TestFileStore_SaveListDelete(t *testing.T) {
	s, path := newStore(t)
	ctx := context.Background()

	list, err := s.List(ctx)
	if err != nil || len(list) != 0 || list == nil {
		t.Fatalf("List() on missing file = %v, %v; want empty", list, err)
	}

	a, err := s.Save(ctx, models.Alert{Keyword: "laptop", Contact: "a@example.com", Method: "Email"})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if a.ID == "" {
		t.Error("Save() did not assign an ID")
	}
	if a.CreatedAt != "2026-03-01T05:00:00Z" {
		t.Errorf("CreatedAt = %q, want UTC RFC3339", a.CreatedAt)
	}
	b, _ := s.Save(ctx, models.Alert{Keyword: "lipstick", Contact: "b@example.com"})
	if a.ID == b.ID {
		t.Error("IDs must be unique")
	}

	list, _ = s.List(ctx)
	if len(list) != 2 || list[0].ID != a.ID || list[1].ID != b.ID {
		t.Errorf("List() = %+v", list)
	}

	n, err := s.Delete(ctx, a.ID)
	if err != nil || n != 1 {
		t.Fatalf("Delete() = %d, %v; want 1", n, err)
	}
	n, _ = s.Delete(ctx, "missing")
	if n != 0 {
		t.Errorf("Delete(missing) = %d, want 0", n)
	}

	reopened := NewFileStore(path)
	list, _ = reopened.List(ctx)
	if len(list) != 1 || list[0].Keyword != "lipstick" {
		t.Errorf("persisted = %+v", list)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want no temp files left", len(entries))
	}
}

func TestFileStore_CorruptFileReadsEmpty(t *testing.T) {
	s, path := newStore(t)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	list, err := s.List(context.Background())
	if err != nil || len(list) != 0 {
		t.Errorf("List() = %v, %v; want empty", list, err)
	}
	if _, err := s.Save(context.Background(), models.Alert{Contact: "c"}); err != nil {
		t.Errorf("Save() over corrupt file error = %v", err)
	}
}

func TestFileStore_ConcurrentSaves(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Save(ctx, models.Alert{Contact: "x"}); err != nil {
				t.Errorf("Save() error = %v", err)
			}
		}()
	}
	wg.Wait()

	list, _ := s.List(ctx)
	if len(list) != 20 {
		t.Errorf("List() = %d alerts, want 20", len(list))
	}
}

type recorder struct {
	mu     sync.Mutex
	events []*webhook.Event
}

func (r *recorder) Notify(e *webhook.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func TestWithNotifier(t *testing.T) {
	s, _ := newStore(t)
	rec := &recorder{}
	repo := WithNotifier(s, rec)
	ctx := context.Background()

	a, err := repo.Save(ctx, models.Alert{Contact: "x"})
	if err != nil {
		t.Fatal(err)
	}
	_, _ = repo.Delete(ctx, "missing")
	_, _ = repo.Delete(ctx, a.ID)

	if len(rec.events) != 2 {
		t.Fatalf("events = %d, want created + deleted", len(rec.events))
	}
	if rec.events[0].Type != webhook.EventAlertCreated || rec.events[0].AlertID != a.ID {
		t.Errorf("first event = %+v", rec.events[0])
	}
	if rec.events[1].Type != webhook.EventAlertDeleted {
		t.Errorf("second event = %+v", rec.events[1])
	}

	if WithNotifier(s, nil) != Repository(s) {
		t.Error("nil notifier should return the repository unchanged")
	}
}
