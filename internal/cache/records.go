package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/subtrack/internal/dbx"
	"github.com/dmitrijs2005/subtrack/internal/models"
)

// Key namespaces. Two owners never collide because every record key embeds
// the owner key after a fixed prefix.
const (
	subscriptionsKeyPrefix = "subscriptions:"
	settingsKeyPrefix      = "settings:"
	migratedKeyPrefix      = "migrated:"
	currentUserKey         = "current_user"

	dateLayout = "2006-01-02"
)

// subscriptionRecord is the JSON shape of one cached subscription. The
// renewal date is serialized as a plain calendar date so it round-trips
// losslessly regardless of time zone; cost is serialized through decimal's
// string form.
type subscriptionRecord struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Cost        decimal.Decimal `json:"cost"`
	RenewalDate string          `json:"renewal_date"`
	Cycle       string          `json:"cycle"`
	Status      string          `json:"status"`
	Category    string          `json:"category"`
}

func toRecord(s models.Subscription) subscriptionRecord {
	return subscriptionRecord{
		ID:          s.ID,
		Name:        s.Name,
		Cost:        s.Cost,
		RenewalDate: models.NormalizeDate(s.RenewalDate).Format(dateLayout),
		Cycle:       string(s.Cycle),
		Status:      string(s.Status),
		Category:    string(s.Category),
	}
}

func fromRecord(r subscriptionRecord, ownerKey string) (models.Subscription, error) {
	date, err := time.ParseInLocation(dateLayout, r.RenewalDate, time.UTC)
	if err != nil {
		return models.Subscription{}, fmt.Errorf("bad renewal date %q: %w", r.RenewalDate, err)
	}
	return models.Subscription{
		ID:          r.ID,
		OwnerKey:    ownerKey,
		Name:        r.Name,
		Cost:        r.Cost,
		RenewalDate: date,
		Cycle:       models.Cycle(r.Cycle),
		Status:      models.Status(r.Status),
		Category:    models.Category(r.Category),
	}, nil
}

// Subscriptions returns the cached subscription list for ownerKey. Absence
// yields an empty list. A corrupt payload also yields an empty list: the
// cache is a fallback, so deserialization failures are logged and swallowed
// rather than propagated.
func (s *Store) Subscriptions(ctx context.Context, ownerKey string) ([]models.Subscription, error) {
	raw, ok, err := s.Get(ctx, subscriptionsKeyPrefix+ownerKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.Subscription{}, nil
	}

	var records []subscriptionRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		s.logger.Warn(ctx, "corrupt cached subscriptions, treating as empty", "owner", ownerKey, "err", err)
		return []models.Subscription{}, nil
	}

	result := make([]models.Subscription, 0, len(records))
	for _, r := range records {
		sub, err := fromRecord(r, ownerKey)
		if err != nil {
			s.logger.Warn(ctx, "corrupt cached subscription, skipping", "owner", ownerKey, "err", err)
			continue
		}
		result = append(result, sub)
	}
	return result, nil
}

// SetSubscriptions replaces the cached subscription list for ownerKey.
func (s *Store) SetSubscriptions(ctx context.Context, ownerKey string, subs []models.Subscription) error {
	records := make([]subscriptionRecord, 0, len(subs))
	for _, sub := range subs {
		records = append(records, toRecord(sub))
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to serialize subscriptions: %w", err)
	}
	return s.Set(ctx, subscriptionsKeyPrefix+ownerKey, string(data))
}

// settingsRecord is the JSON shape of cached notification settings. One key
// per owner, mirroring the remote store's one-row-per-owner constraint.
type settingsRecord struct {
	EmailEnabled bool   `json:"email_enabled"`
	Timeframe    string `json:"timeframe"`
}

// Settings returns the cached notification settings for ownerKey, falling
// back to defaults when absent or corrupt.
func (s *Store) Settings(ctx context.Context, ownerKey string) (*models.NotificationSettings, error) {
	raw, ok, err := s.Get(ctx, settingsKeyPrefix+ownerKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return models.DefaultSettings(ownerKey), nil
	}
	var rec settingsRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		s.logger.Warn(ctx, "corrupt cached settings, using defaults", "owner", ownerKey, "err", err)
		return models.DefaultSettings(ownerKey), nil
	}
	return &models.NotificationSettings{
		OwnerKey:     ownerKey,
		EmailEnabled: rec.EmailEnabled,
		Timeframe:    models.Timeframe(rec.Timeframe),
	}, nil
}

// SetSettings stores the notification settings for ownerKey.
func (s *Store) SetSettings(ctx context.Context, ownerKey string, settings *models.NotificationSettings) error {
	data, err := json.Marshal(settingsRecord{
		EmailEnabled: settings.EmailEnabled,
		Timeframe:    string(settings.Timeframe),
	})
	if err != nil {
		return fmt.Errorf("failed to serialize settings: %w", err)
	}
	return s.Set(ctx, settingsKeyPrefix+ownerKey, string(data))
}

// Migrated reports whether the one-time migration marker is set for the
// given remote identity id.
func (s *Store) Migrated(ctx context.Context, ownerID string) (bool, error) {
	raw, ok, err := s.Get(ctx, migratedKeyPrefix+ownerID)
	if err != nil {
		return false, err
	}
	return ok && raw == "true", nil
}

// SetMigrated sets the migration marker for ownerID. The marker is created
// once and never cleared.
func (s *Store) SetMigrated(ctx context.Context, ownerID string) error {
	return s.Set(ctx, migratedKeyPrefix+ownerID, "true")
}

// Credential is the locally registered user record. The password itself is
// never stored, only an argon2id verifier and the salt it was derived with.
type Credential struct {
	Username string `json:"username"`
	Salt     []byte `json:"salt"`
	Verifier []byte `json:"verifier"`
}

// CurrentUser returns the locally stored credential record, if any. A
// malformed record is treated as absent.
func (s *Store) CurrentUser(ctx context.Context) (*Credential, error) {
	raw, ok, err := s.Get(ctx, currentUserKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var cred Credential
	if err := json.Unmarshal([]byte(raw), &cred); err != nil {
		s.logger.Warn(ctx, "corrupt current user record, treating as absent", "err", err)
		return nil, nil
	}
	if cred.Username == "" {
		return nil, nil
	}
	return &cred, nil
}

// SetCurrentUser stores the credential record in a single transaction.
func (s *Store) SetCurrentUser(ctx context.Context, cred *Credential) error {
	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to serialize credential: %w", err)
	}
	return s.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return setTx(ctx, tx, currentUserKey, string(data))
	})
}

// ClearCurrentUser removes the local credential record (logout).
func (s *Store) ClearCurrentUser(ctx context.Context) error {
	return s.Delete(ctx, currentUserKey)
}
