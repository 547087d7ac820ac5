package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 13, 45, 0, 0, time.UTC)

func validSubscription() *Subscription {
	return New("alice", "Figma", decimal.NewFromInt(12), testNow.AddDate(0, 1, 0),
		CycleMonthly, StatusActive, CategoryDesign)
}

func TestNormalizeDate_DropsTimeOfDay(t *testing.T) {
	// 23:59 CET is 22:59 UTC on the same calendar day.
	in := time.Date(2025, 3, 7, 23, 59, 59, 123, time.FixedZone("CET", 3600))
	got := NormalizeDate(in)

	assert.Equal(t, time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC), got)
	// Normalizing twice is a no-op.
	assert.Equal(t, got, NormalizeDate(got))
}

func TestNew_AssignsIDAndNormalizesDate(t *testing.T) {
	s := validSubscription()

	require.NotEmpty(t, s.ID)
	assert.Equal(t, NormalizeDate(s.RenewalDate), s.RenewalDate)

	other := validSubscription()
	assert.NotEqual(t, s.ID, other.ID)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Subscription)
		wantErr error
	}{
		{"valid", func(s *Subscription) {}, nil},
		{"empty name", func(s *Subscription) { s.Name = "  " }, ErrEmptyName},
		{"zero cost", func(s *Subscription) { s.Cost = decimal.Zero }, ErrNonPositiveCost},
		{"negative cost", func(s *Subscription) { s.Cost = decimal.NewFromInt(-3) }, ErrNonPositiveCost},
		{"unknown cycle", func(s *Subscription) { s.Cycle = "weekly" }, ErrUnknownEnum},
		{"unknown status", func(s *Subscription) { s.Status = "paused" }, ErrUnknownEnum},
		{"unknown category", func(s *Subscription) { s.Category = "food" }, ErrUnknownEnum},
		{"renewal today", func(s *Subscription) { s.RenewalDate = testNow }, ErrRenewalNotFuture},
		{"renewal in the past", func(s *Subscription) { s.RenewalDate = testNow.AddDate(0, 0, -1) }, ErrRenewalNotFuture},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := validSubscription()
			tc.mutate(s)
			err := s.Validate(testNow)
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestValidate_TomorrowIsFuture(t *testing.T) {
	s := validSubscription()
	s.RenewalDate = NormalizeDate(testNow).AddDate(0, 0, 1)
	assert.NoError(t, s.Validate(testNow))
}

func TestCheckFields_IgnoresDate(t *testing.T) {
	s := validSubscription()
	s.RenewalDate = testNow.AddDate(0, 0, -30) // already came due
	assert.NoError(t, s.CheckFields())
}

func TestTimeframeDays(t *testing.T) {
	assert.Equal(t, 1, TimeframeOneDay.Days())
	assert.Equal(t, 3, TimeframeThreeDay.Days())
	assert.Equal(t, 7, TimeframeOneWeek.Days())
	assert.Equal(t, 14, TimeframeTwoWeek.Days())
	assert.Equal(t, 3, Timeframe("bogus").Days(), "unknown timeframe falls back to default")
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings("alice")
	assert.Equal(t, "alice", s.OwnerKey)
	assert.False(t, s.EmailEnabled)
	assert.Equal(t, TimeframeThreeDay, s.Timeframe)
}

func TestCategories_FixedSet(t *testing.T) {
	require.Len(t, Categories(), 5)
}
