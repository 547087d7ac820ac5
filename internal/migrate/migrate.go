// Package migrate implements the one-time transfer of cached subscriptions
// into the remote store for a newly resolved remote identity.
package migrate

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/subtrack/internal/logging"
	"github.com/dmitrijs2005/subtrack/internal/models"
)

// CacheSource is the slice of the local cache the migrator needs.
type CacheSource interface {
	Subscriptions(ctx context.Context, ownerKey string) ([]models.Subscription, error)
	Migrated(ctx context.Context, ownerID string) (bool, error)
	SetMigrated(ctx context.Context, ownerID string) error
}

// RemoteTarget is the slice of the remote adapter the migrator needs.
type RemoteTarget interface {
	ReplaceAll(ctx context.Context, ownerID string, subs []models.Subscription) error
}

// Migrator copies locally cached subscriptions to the remote store exactly
// once per remote identity.
type Migrator struct {
	cache  CacheSource
	remote RemoteTarget
	logger logging.Logger
}

// NewMigrator constructs a Migrator.
func NewMigrator(cache CacheSource, remote RemoteTarget, logger logging.Logger) *Migrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Migrator{cache: cache, remote: remote, logger: logger}
}

// MigrateIfNeeded checks the migration marker for ownerID and returns
// immediately when it is set, touching neither store. Otherwise it reads the
// cached subscriptions under ownerKey and, when non-empty, pushes them to
// the remote store via ReplaceAll. The marker is set after a successful push
// or when the cache was empty; a remote failure leaves it unset so the
// migration is retried on the next load. Cached data is never deleted
// afterwards, and the remote store never refreshes the cache.
func (m *Migrator) MigrateIfNeeded(ctx context.Context, ownerID, ownerKey string) error {
	done, err := m.cache.Migrated(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("migration marker check: %w", err)
	}
	if done {
		return nil
	}

	subs, err := m.cache.Subscriptions(ctx, ownerKey)
	if err != nil {
		return fmt.Errorf("cached subscriptions read: %w", err)
	}

	if len(subs) > 0 {
		if err := m.remote.ReplaceAll(ctx, ownerID, subs); err != nil {
			return fmt.Errorf("migration push: %w", err)
		}
		m.logger.Info(ctx, "migrated cached subscriptions to remote store",
			"owner", ownerID, "count", len(subs))
	}

	if err := m.cache.SetMigrated(ctx, ownerID); err != nil {
		return fmt.Errorf("migration marker set: %w", err)
	}
	return nil
}
