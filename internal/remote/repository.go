// Package remote implements the remote store adapter: a CRUD surface over
// the authoritative relational table pair (subscriptions,
// notification_settings). Every failure crossing this boundary is classified
// into the errs taxonomy; nothing is thrown silently past it.
package remote

import (
	"context"

	"github.com/dmitrijs2005/subtrack/internal/models"
)

// SubscriptionRepository is the adapter surface for subscription rows.
type SubscriptionRepository interface {
	// List returns all subscriptions for ownerID ordered by renewal date
	// ascending. Ordering is the store's responsibility.
	List(ctx context.Context, ownerID string) ([]models.Subscription, error)

	// ReplaceAll replaces the owner's full subscription set. It is NOT
	// atomic: the delete and insert phases run as separate statements, and
	// a failure between them leaves the owner's rows empty.
	ReplaceAll(ctx context.Context, ownerID string, subs []models.Subscription) error

	// UpsertOne inserts or fully replaces a single subscription by id.
	UpsertOne(ctx context.Context, ownerID string, sub models.Subscription) error

	// DeleteOne removes a single subscription by id.
	DeleteOne(ctx context.Context, ownerID string, id string) error
}

// SettingsRepository is the adapter surface for notification settings. At
// most one row exists per owner; writes are upserts and rows are never
// deleted.
type SettingsRepository interface {
	// Get returns the owner's settings, or errs.ErrNotFound when the owner
	// has never written settings.
	Get(ctx context.Context, ownerID string) (*models.NotificationSettings, error)

	// Upsert creates or replaces the owner's settings row.
	Upsert(ctx context.Context, ownerID string, s *models.NotificationSettings) error
}
