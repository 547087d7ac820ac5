package remote

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/subtrack/internal/dbx"
	"github.com/dmitrijs2005/subtrack/internal/errs"
	"github.com/dmitrijs2005/subtrack/internal/models"
)

// PostgresSettingsRepository implements SettingsRepository. The table holds
// at most one row per owner, enforced by a UNIQUE constraint; writes go
// through ON CONFLICT upsert.
type PostgresSettingsRepository struct {
	db dbx.DBTX
}

// NewPostgresSettingsRepository returns a repository bound to the given DBTX.
func NewPostgresSettingsRepository(db dbx.DBTX) *PostgresSettingsRepository {
	return &PostgresSettingsRepository{db: db}
}

func (r *PostgresSettingsRepository) Get(ctx context.Context, ownerID string) (*models.NotificationSettings, error) {
	query := `SELECT email_enabled, timeframe FROM notification_settings WHERE owner_id = $1`

	s := &models.NotificationSettings{OwnerKey: ownerID}
	var timeframe string
	err := r.db.QueryRowContext(ctx, query, ownerID).Scan(&s.EmailEnabled, &timeframe)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("settings for %s: %w", ownerID, errs.ErrNotFound)
	}
	if err != nil {
		return nil, mapError("get settings", err)
	}
	s.Timeframe = models.Timeframe(timeframe)
	return s, nil
}

func (r *PostgresSettingsRepository) Upsert(ctx context.Context, ownerID string, s *models.NotificationSettings) error {
	query := `INSERT INTO notification_settings (owner_id, email_enabled, timeframe)
		 VALUES ($1, $2, $3)
		 ON CONFLICT(owner_id) DO UPDATE SET
			email_enabled = excluded.email_enabled,
			timeframe = excluded.timeframe,
			updated_at = now()`

	_, err := r.db.ExecContext(ctx, query, ownerID, s.EmailEnabled, string(s.Timeframe))
	if err != nil {
		return mapError("upsert settings", err)
	}
	return nil
}
