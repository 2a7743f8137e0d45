package alerts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/use-agent/dealscope/models"
)

// FileStore keeps alerts as a JSON array in one file. Writes go to a temp
// file that is renamed into place. A missing or unreadable-as-JSON file is
// an empty store.
type FileStore struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewFileStore returns a store backed by path. The file is created on the
// first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

func (s *FileStore) Save(ctx context.Context, a models.Alert) (models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return models.Alert{}, err
	}

	a.ID = uuid.NewString()
	a.CreatedAt = s.now().UTC().Format(time.RFC3339)
	all = append(all, a)

	if err := s.write(all); err != nil {
		return models.Alert{}, err
	}
	return a, nil
}

func (s *FileStore) List(ctx context.Context) ([]models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileStore) Delete(ctx context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return 0, err
	}

	kept := all[:0]
	for _, a := range all {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	removed := len(all) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := s.write(kept); err != nil {
		return 0, err
	}
	return removed, nil
}

func (s *FileStore) load() ([]models.Alert, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.Alert{}, nil
	}
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeAlertStore, "read alerts file", err)
	}

	var all []models.Alert
	if err := json.Unmarshal(data, &all); err != nil {
		slog.Warn("alerts file is corrupt, treating as empty", "path", s.path, "error", err)
		return []models.Alert{}, nil
	}
	if all == nil {
		all = []models.Alert{}
	}
	return all, nil
}

func (s *FileStore) write(all []models.Alert) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return models.NewScrapeError(models.ErrCodeAlertStore, "encode alerts", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return models.NewScrapeError(models.ErrCodeAlertStore, "create temp file", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return models.NewScrapeError(models.ErrCodeAlertStore, "write alerts", err)
	}
	if err := tmp.Close(); err != nil {
		return models.NewScrapeError(models.ErrCodeAlertStore, "close temp file", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return models.NewScrapeError(models.ErrCodeAlertStore, fmt.Sprintf("replace %s", s.path), err)
	}
	return nil
}
