// Package store implements the persistence facade: the single surface the
// rest of the application calls for loading and saving subscription data.
// It orchestrates the remote store adapter, the local cache, and the
// migration engine behind a remote-first, cache-fallback policy.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/subtrack/internal/errs"
	"github.com/dmitrijs2005/subtrack/internal/logging"
	"github.com/dmitrijs2005/subtrack/internal/models"
	"github.com/dmitrijs2005/subtrack/internal/remote"
)

// Cache is the slice of the local cache store the facade needs.
type Cache interface {
	Subscriptions(ctx context.Context, ownerKey string) ([]models.Subscription, error)
	SetSubscriptions(ctx context.Context, ownerKey string, subs []models.Subscription) error
	Settings(ctx context.Context, ownerKey string) (*models.NotificationSettings, error)
	SetSettings(ctx context.Context, ownerKey string, s *models.NotificationSettings) error
	Migrated(ctx context.Context, ownerID string) (bool, error)
}

// Migrator is the migration engine surface.
type Migrator interface {
	MigrateIfNeeded(ctx context.Context, ownerID, ownerKey string) error
}

// Service is the persistence facade. The remote store is authoritative
// whenever it is reachable and migrated; the cache answers the local-only
// path and every remote failure.
type Service struct {
	cache    Cache
	remote   remote.SubscriptionRepository
	settings remote.SettingsRepository
	migrator Migrator
	logger   logging.Logger
	now      func() time.Time
}

// NewService constructs the facade. cache is mandatory; remoteRepo,
// settingsRepo, and migrator may be nil, which disables the remote path.
func NewService(cache Cache, remoteRepo remote.SubscriptionRepository, settingsRepo remote.SettingsRepository, migrator Migrator, logger logging.Logger) (*Service, error) {
	if cache == nil {
		return nil, errs.ErrNotAvailable
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		cache:    cache,
		remote:   remoteRepo,
		settings: settingsRepo,
		migrator: migrator,
		logger:   logger,
		now:      time.Now,
	}, nil
}

func (s *Service) remoteReady(ownerID string) bool {
	return ownerID != "" && s.remote != nil
}

// Load returns the subscription set for the resolved identity.
//
// Local path (empty ownerID): the cache answers directly.
//
// Remote path: the remote store is queried first. A non-empty result, or any
// result once the migration marker is set, is authoritative (an empty list
// is a legitimate answer once migrated). An empty, unmigrated remote
// triggers the one-time migration and a re-query. Any remote error degrades
// to the cache under ownerKey, logged but not surfaced.
func (s *Service) Load(ctx context.Context, ownerKey, ownerID string) ([]models.Subscription, error) {
	if !s.remoteReady(ownerID) {
		return s.cache.Subscriptions(ctx, ownerKey)
	}

	subs, err := s.remote.List(ctx, ownerID)
	if err != nil {
		s.logger.Warn(ctx, "remote load failed, falling back to cache", "owner", ownerID, "err", err)
		return s.cache.Subscriptions(ctx, ownerKey)
	}
	if len(subs) > 0 {
		return subs, nil
	}

	migrated, err := s.cache.Migrated(ctx, ownerID)
	if err != nil {
		s.logger.Warn(ctx, "migration marker check failed", "owner", ownerID, "err", err)
	}
	if migrated {
		return subs, nil
	}

	if s.migrator != nil {
		if err := s.migrator.MigrateIfNeeded(ctx, ownerID, ownerKey); err != nil {
			s.logger.Warn(ctx, "migration failed, falling back to cache", "owner", ownerID, "err", err)
			return s.cache.Subscriptions(ctx, ownerKey)
		}
	}

	subs, err = s.remote.List(ctx, ownerID)
	if err != nil {
		s.logger.Warn(ctx, "remote reload failed, falling back to cache", "owner", ownerID, "err", err)
		return s.cache.Subscriptions(ctx, ownerKey)
	}
	return subs, nil
}

// Save writes the full subscription set. On the remote path a failed
// ReplaceAll degrades to a cache write so the data survives locally; the
// remote copy is repaired by the next successful save. Last write wins;
// there is no conflict detection between concurrent writers.
func (s *Service) Save(ctx context.Context, subs []models.Subscription, ownerKey, ownerID string) error {
	if s.remoteReady(ownerID) {
		err := s.remote.ReplaceAll(ctx, ownerID, subs)
		if err == nil {
			return nil
		}
		s.logger.Warn(ctx, "remote save failed, writing cache instead", "owner", ownerID, "err", err)
	}
	return s.cache.SetSubscriptions(ctx, ownerKey, subs)
}

// AddOne validates and persists a newly created subscription. The remote
// path uses a targeted upsert rather than a full replace.
func (s *Service) AddOne(ctx context.Context, sub models.Subscription, ownerKey, ownerID string) error {
	if err := sub.Validate(s.now()); err != nil {
		return fmt.Errorf("add subscription: %w", err)
	}
	sub.RenewalDate = models.NormalizeDate(sub.RenewalDate)

	if s.remoteReady(ownerID) {
		err := s.remote.UpsertOne(ctx, ownerID, sub)
		if err == nil {
			return nil
		}
		s.logger.Warn(ctx, "remote add failed, writing cache instead", "owner", ownerID, "err", err)
	}
	return s.upsertCached(ctx, ownerKey, sub)
}

// UpdateOne persists a full-field replace of an existing subscription. The
// renewal date is not re-validated: an edited subscription may keep a date
// that has already come due.
func (s *Service) UpdateOne(ctx context.Context, sub models.Subscription, ownerKey, ownerID string) error {
	if err := sub.CheckFields(); err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	sub.RenewalDate = models.NormalizeDate(sub.RenewalDate)

	if s.remoteReady(ownerID) {
		err := s.remote.UpsertOne(ctx, ownerID, sub)
		if err == nil {
			return nil
		}
		s.logger.Warn(ctx, "remote update failed, writing cache instead", "owner", ownerID, "err", err)
	}
	return s.upsertCached(ctx, ownerKey, sub)
}

// DeleteOne removes a single subscription by id.
func (s *Service) DeleteOne(ctx context.Context, id, ownerKey, ownerID string) error {
	if s.remoteReady(ownerID) {
		err := s.remote.DeleteOne(ctx, ownerID, id)
		if err == nil {
			return nil
		}
		s.logger.Warn(ctx, "remote delete failed, updating cache instead", "owner", ownerID, "err", err)
	}
	return s.deleteCached(ctx, ownerKey, id)
}

// Settings returns the owner's notification settings, defaulting when the
// owner has never written any.
func (s *Service) Settings(ctx context.Context, ownerKey, ownerID string) (*models.NotificationSettings, error) {
	if ownerID != "" && s.settings != nil {
		settings, err := s.settings.Get(ctx, ownerID)
		if err == nil {
			return settings, nil
		}
		if errors.Is(err, errs.ErrNotFound) {
			return models.DefaultSettings(ownerKey), nil
		}
		s.logger.Warn(ctx, "remote settings load failed, falling back to cache", "owner", ownerID, "err", err)
	}
	return s.cache.Settings(ctx, ownerKey)
}

// SaveSettings upserts the owner's notification settings. Settings rows are
// created lazily on first write and never deleted.
func (s *Service) SaveSettings(ctx context.Context, settings *models.NotificationSettings, ownerKey, ownerID string) error {
	if ownerID != "" && s.settings != nil {
		err := s.settings.Upsert(ctx, ownerID, settings)
		if err == nil {
			return nil
		}
		s.logger.Warn(ctx, "remote settings save failed, writing cache instead", "owner", ownerID, "err", err)
	}
	return s.cache.SetSettings(ctx, ownerKey, settings)
}

// upsertCached does a read-modify-write against the cached list: replace by
// id when present, append otherwise.
func (s *Service) upsertCached(ctx context.Context, ownerKey string, sub models.Subscription) error {
	subs, err := s.cache.Subscriptions(ctx, ownerKey)
	if err != nil {
		return err
	}
	replaced := false
	for i := range subs {
		if subs[i].ID == sub.ID {
			subs[i] = sub
			replaced = true
			break
		}
	}
	if !replaced {
		subs = append(subs, sub)
	}
	return s.cache.SetSubscriptions(ctx, ownerKey, subs)
}

// deleteCached does a read-modify-write removal against the cached list.
func (s *Service) deleteCached(ctx context.Context, ownerKey, id string) error {
	subs, err := s.cache.Subscriptions(ctx, ownerKey)
	if err != nil {
		return err
	}
	filtered := subs[:0]
	for _, sub := range subs {
		if sub.ID != id {
			filtered = append(filtered, sub)
		}
	}
	return s.cache.SetSubscriptions(ctx, ownerKey, filtered)
}
