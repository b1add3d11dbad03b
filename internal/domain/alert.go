package domain

import (
	"fmt"
	"time"
)

// AlertKind identifies what condition produced an alert.
type AlertKind string

const (
	AlertMissedSession    AlertKind = "missed_session"
	AlertMembershipExpiry AlertKind = "membership_expiry"
	AlertStreakAchieved   AlertKind = "streak_achieved"
)

// Severity drives how the notification center renders an alert.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
)

// DayFormat is the calendar-day layout used in dedup keys and metadata.
const DayFormat = "2006-01-02"

// Alert is the persisted notification record. The detector decides creation;
// read/is-read toggling happens through the notification API, never here.
type Alert struct {
	ID         string
	TenantID   string
	SubjectID  string
	Kind       AlertKind
	Title      string
	Message    string
	Severity   Severity
	IsRead     bool
	DedupKey   string
	DetectedOn time.Time
	Metadata   map[string]any
	CreatedAt  time.Time
}

// DedupKey builds the deterministic key that limits a subject to one alert
// per kind per calendar day.
func DedupKey(subjectID string, kind AlertKind, day time.Time) string {
	return fmt.Sprintf("%s:%s:%s", subjectID, kind, day.Format(DayFormat))
}
