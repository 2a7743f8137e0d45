// Package alerts persists price-drop subscriptions.
package alerts

import (
	"context"

	"github.com/use-agent/dealscope/models"
	"github.com/use-agent/dealscope/webhook"
)

// Repository stores alerts.
type Repository interface {
	// Save assigns an ID and creation time and stores a.
	Save(ctx context.Context, a models.Alert) (models.Alert, error)

	// List returns every stored alert in insertion order.
	List(ctx context.Context) ([]models.Alert, error)

	// Delete removes alerts with id and reports how many were removed.
	Delete(ctx context.Context, id string) (int, error)
}

// Notifier receives alert lifecycle events.
type Notifier interface {
	Notify(event *webhook.Event)
}

type notifying struct {
	Repository
	n Notifier
}

// WithNotifier wraps repo so successful saves and deletes emit events.
// A nil notifier returns repo unchanged.
func WithNotifier(repo Repository, n Notifier) Repository {
	if n == nil {
		return repo
	}
	return &notifying{Repository: repo, n: n}
}

func (r *notifying) Save(ctx context.Context, a models.Alert) (models.Alert, error) {
	saved, err := r.Repository.Save(ctx, a)
	if err == nil {
		r.n.Notify(webhook.NewEvent(webhook.EventAlertCreated, saved.ID, saved))
	}
	return saved, err
}

func (r *notifying) Delete(ctx context.Context, id string) (int, error) {
	n, err := r.Repository.Delete(ctx, id)
	if err == nil && n > 0 {
		r.n.Notify(webhook.NewEvent(webhook.EventAlertDeleted, id, nil))
	}
	return n, err
}
