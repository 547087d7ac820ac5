package remote

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/subtrack/internal/errs"
	"github.com/dmitrijs2005/subtrack/internal/models"
)

func newSettingsRepoWithMock(t *testing.T) (*PostgresSettingsRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresSettingsRepository(db), mock, db
}

const settingsGetQ = `(?s)^SELECT\s+email_enabled,\s*timeframe\s+FROM\s+notification_settings\s+WHERE\s+owner_id\s*=\s*\$1\s*$`

func TestSettingsGet(t *testing.T) {
	repo, mock, db := newSettingsRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"email_enabled", "timeframe"}).AddRow(true, "1w")
	mock.ExpectQuery(settingsGetQ).WithArgs("uid-1").WillReturnRows(rows)

	got, err := repo.Get(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, &models.NotificationSettings{
		OwnerKey:     "uid-1",
		EmailEnabled: true,
		Timeframe:    models.TimeframeOneWeek,
	}, got)
}

func TestSettingsGet_NoRowMapsToNotFound(t *testing.T) {
	repo, mock, db := newSettingsRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(settingsGetQ).WithArgs("uid-1").WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "uid-1")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestSettingsUpsert(t *testing.T) {
	repo, mock, db := newSettingsRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+notification_settings\s+\(owner_id,\s*email_enabled,\s*timeframe\)\s+VALUES\s+\(\$1,\s*\$2,\s*\$3\)\s+ON\s+CONFLICT`

	mock.ExpectExec(q).WithArgs("uid-1", true, "2w").WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), "uid-1", &models.NotificationSettings{
		OwnerKey:     "uid-1",
		EmailEnabled: true,
		Timeframe:    models.TimeframeTwoWeek,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
