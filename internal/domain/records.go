package domain

import "time"

// ScheduleStatus tracks the lifecycle of a planned training session.
type ScheduleStatus string

const (
	ScheduleStatusPlanned ScheduleStatus = "planned"
	ScheduleStatusDone    ScheduleStatus = "done"
	ScheduleStatusSkipped ScheduleStatus = "skipped"
)

// ScheduleEntry is a raw training-schedule row joined with the owning
// profile. Read-only to the detector.
type ScheduleEntry struct {
	SubjectID    string
	TenantID     string
	FullName     string
	ScheduledFor time.Time
	Status       ScheduleStatus
}

// MembershipRecord is a raw membership row joined with the owning profile.
// Read-only to the detector.
type MembershipRecord struct {
	SubjectID string
	TenantID  string
	FullName  string
	PlanName  string
	EndsAt    time.Time
	Status    string
}

// AthleteRecord is the per-subject aggregate used to pre-filter streak
// candidates.
type AthleteRecord struct {
	SubjectID    string
	TenantID     string
	FullName     string
	SessionsDone int
}
