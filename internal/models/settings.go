package models

// Timeframe is the advance-notice window for renewal notifications.
type Timeframe string

const (
	TimeframeOneDay   Timeframe = "1d"
	TimeframeThreeDay Timeframe = "3d"
	TimeframeOneWeek  Timeframe = "1w"
	TimeframeTwoWeek  Timeframe = "2w"
)

// Days converts a timeframe to its window length in days. Unknown values
// fall back to the default timeframe.
func (t Timeframe) Days() int {
	switch t {
	case TimeframeOneDay:
		return 1
	case TimeframeThreeDay:
		return 3
	case TimeframeOneWeek:
		return 7
	case TimeframeTwoWeek:
		return 14
	default:
		return TimeframeThreeDay.Days()
	}
}

// NotificationSettings holds per-owner notification preferences. There is at
// most one settings row per owner: the remote store enforces a uniqueness
// constraint, writes use upsert semantics, and the row is never deleted.
type NotificationSettings struct {
	OwnerKey     string
	EmailEnabled bool
	Timeframe    Timeframe
}

// DefaultSettings returns the settings an owner has before the first explicit
// write: email disabled, three-day notice.
func DefaultSettings(ownerKey string) *NotificationSettings {
	return &NotificationSettings{
		OwnerKey:     ownerKey,
		EmailEnabled: false,
		Timeframe:    TimeframeThreeDay,
	}
}
