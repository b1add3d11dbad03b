// Package detector implements the scheduled scan that turns raw schedule and
// membership rows into deduplicated alerts.
package detector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/OHANAGROUP/nexfit/internal/domain"
)

const (
	inactivityWindowDays = 7
	expiryWindowDays     = 7
	streakLookback       = 14
	streakMinSessions    = 7
)

// ScheduleSource provides read access to training-schedule rows.
type ScheduleSource interface {
	// OverduePlanned returns planned entries scheduled before the cutoff,
	// most recent first.
	OverduePlanned(ctx context.Context, before time.Time) ([]domain.ScheduleEntry, error)
	// RecentDoneDates returns the subject's completed-session dates, newest
	// first, capped at limit.
	RecentDoneDates(ctx context.Context, subjectID string, limit int) ([]time.Time, error)
}

// MembershipSource provides read access to membership rows.
type MembershipSource interface {
	// ExpiringActive returns active memberships ending inside [from, to].
	ExpiringActive(ctx context.Context, from, to time.Time) ([]domain.MembershipRecord, error)
}

// StatsSource provides the aggregate used to pre-filter streak candidates.
type StatsSource interface {
	ActiveAthletes(ctx context.Context, minSessions int) ([]domain.AthleteRecord, error)
}

// AlertStore persists alerts with insert-if-absent semantics. The store must
// back Insert with a uniqueness constraint on the dedup key; Exists is only
// the fast path.
type AlertStore interface {
	Exists(ctx context.Context, dedupKey string) (bool, error)
	// Insert returns false when the dedup constraint suppressed the row.
	Insert(ctx context.Context, alert domain.Alert) (bool, error)
}

// AlertPublisher fans inserted alerts out to downstream consumers.
type AlertPublisher interface {
	PublishAlertCreated(ctx context.Context, alert domain.Alert) error
}

// Counts reports inserted alerts per kind for one run.
type Counts struct {
	MissedSession    int `json:"missed_session"`
	MembershipExpiry int `json:"membership_expiry"`
	StreakAchieved   int `json:"streak_achieved"`
}

// Option configures optional behaviour for the Detector.
type Option func(*Detector)

// WithLogger overrides the logger used to report scan errors.
func WithLogger(logger *log.Logger) Option {
	return func(d *Detector) { d.logger = logger }
}

// WithClock overrides the clock used for expiry day math.
func WithClock(now func() time.Time) Option {
	return func(d *Detector) { d.now = now }
}

// WithPublisher attaches an event publisher for inserted alerts.
func WithPublisher(publisher AlertPublisher) Option {
	return func(d *Detector) { d.publisher = publisher }
}

// Detector runs the three scan categories against the sources. It is meant
// to run as a single scheduled invocation per day; overlapping runs are kept
// safe by the store's dedup-key constraint, not by the Exists check alone.
type Detector struct {
	schedule    ScheduleSource
	memberships MembershipSource
	stats       StatsSource
	alerts      AlertStore
	publisher   AlertPublisher
	logger      *log.Logger
	now         func() time.Time
}

// New constructs a Detector.
func New(schedule ScheduleSource, memberships MembershipSource, stats StatsSource, alerts AlertStore, opts ...Option) *Detector {
	d := &Detector{
		schedule:    schedule,
		memberships: memberships,
		stats:       stats,
		alerts:      alerts,
		logger:      log.New(log.Writer(), "[detector] ", log.LstdFlags|log.Lshortfile),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run executes all three categories for the reference day. Running it twice
// on the same day against unchanged data inserts nothing the second time.
// A failed category is logged, counted as a category error, and the rest of
// the run continues; only when every category fails does Run return an
// error, which signals the store itself is unreachable.
func (d *Detector) Run(ctx context.Context, referenceDate time.Time) (Counts, error) {
	day := referenceDate.UTC().Truncate(24 * time.Hour)
	var counts Counts

	categoryErrs := make([]error, 0, 3)
	if err := d.detectInactive(ctx, day, &counts); err != nil {
		d.logger.Printf("inactivity scan failed: %v", err)
		recordCategoryError(string(domain.AlertMissedSession))
		categoryErrs = append(categoryErrs, fmt.Errorf("inactivity: %w", err))
	}
	if err := d.detectExpiring(ctx, day, &counts); err != nil {
		d.logger.Printf("expiry scan failed: %v", err)
		recordCategoryError(string(domain.AlertMembershipExpiry))
		categoryErrs = append(categoryErrs, fmt.Errorf("expiry: %w", err))
	}
	if err := d.detectStreaks(ctx, day, &counts); err != nil {
		d.logger.Printf("streak scan failed: %v", err)
		recordCategoryError(string(domain.AlertStreakAchieved))
		categoryErrs = append(categoryErrs, fmt.Errorf("streak: %w", err))
	}

	if len(categoryErrs) == 3 {
		return counts, errors.Join(categoryErrs...)
	}
	recordRun()
	return counts, nil
}

// detectInactive flags subjects carrying a planned session older than the
// inactivity window. Only the first row per subject counts; the source
// returns rows most recent first.
func (d *Detector) detectInactive(ctx context.Context, day time.Time, counts *Counts) error {
	cutoff := day.AddDate(0, 0, -inactivityWindowDays)
	rows, err := d.schedule.OverduePlanned(ctx, cutoff)
	if err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if _, dup := seen[row.SubjectID]; dup {
			continue
		}
		seen[row.SubjectID] = struct{}{}

		name := displayName(row.FullName)
		alert := domain.Alert{
			ID:         uuid.NewString(),
			TenantID:   row.TenantID,
			SubjectID:  row.SubjectID,
			Kind:       domain.AlertMissedSession,
			Title:      "⚠️ Atleta Inactivo",
			Message:    fmt.Sprintf("%s lleva más de 7 días sin completar una sesión. Revisá su plan.", name),
			Severity:   domain.SeverityWarning,
			DedupKey:   domain.DedupKey(row.SubjectID, domain.AlertMissedSession, day),
			DetectedOn: day,
			Metadata:   map[string]any{"detected_at": day.Format(domain.DayFormat)},
		}

		inserted, err := d.emit(ctx, alert)
		if err != nil {
			d.logger.Printf("inactivity alert for %s: %v", row.SubjectID, err)
			continue
		}
		if inserted {
			counts.MissedSession++
		}
	}
	return nil
}

// detectExpiring flags active memberships ending within the expiry window.
func (d *Detector) detectExpiring(ctx context.Context, day time.Time, counts *Counts) error {
	rows, err := d.memberships.ExpiringActive(ctx, day, day.AddDate(0, 0, expiryWindowDays))
	if err != nil {
		return err
	}

	for _, memb := range rows {
		daysLeft := ceilDays(memb.EndsAt.Sub(d.now()))
		name := displayName(memb.FullName)
		plan := memb.PlanName
		if plan == "" {
			plan = "Plan"
		}

		alert := domain.Alert{
			ID:        uuid.NewString(),
			TenantID:  memb.TenantID,
			SubjectID: memb.SubjectID,
			Kind:      domain.AlertMembershipExpiry,
			Title:     "💳 Membresía por Vencer",
			Message: fmt.Sprintf("La membresía %q de %s vence en %d día%s. Renovar ahora.",
				plan, name, daysLeft, pluralSuffix(daysLeft)),
			Severity:   domain.SeverityWarning,
			DedupKey:   domain.DedupKey(memb.SubjectID, domain.AlertMembershipExpiry, day),
			DetectedOn: day,
			Metadata: map[string]any{
				"ends_at":   memb.EndsAt.Format(domain.DayFormat),
				"plan":      plan,
				"days_left": daysLeft,
			},
		}

		inserted, err := d.emit(ctx, alert)
		if err != nil {
			d.logger.Printf("expiry alert for %s: %v", memb.SubjectID, err)
			continue
		}
		if inserted {
			counts.MembershipExpiry++
		}
	}
	return nil
}

// detectStreaks walks each candidate's recent completed sessions and fires
// on weekly milestones. A subject whose session read fails is skipped and
// retried on the next scheduled run.
func (d *Detector) detectStreaks(ctx context.Context, day time.Time, counts *Counts) error {
	athletes, err := d.stats.ActiveAthletes(ctx, streakMinSessions)
	if err != nil {
		return err
	}

	for _, athlete := range athletes {
		dates, err := d.schedule.RecentDoneDates(ctx, athlete.SubjectID, streakLookback)
		if err != nil {
			d.logger.Printf("streak sessions for %s: %v", athlete.SubjectID, err)
			continue
		}

		streak := domain.StreakLength(dates)
		if !domain.IsStreakMilestone(streak) {
			continue
		}

		alert := domain.Alert{
			ID:        uuid.NewString(),
			TenantID:  athlete.TenantID,
			SubjectID: athlete.SubjectID,
			Kind:      domain.AlertStreakAchieved,
			Title:     fmt.Sprintf("🔥 Racha de %d Días", streak),
			Message: fmt.Sprintf("%s completó %d sesiones consecutivas. ¡Felicitar!",
				displayName(athlete.FullName), streak),
			Severity:   domain.SeveritySuccess,
			DedupKey:   domain.DedupKey(athlete.SubjectID, domain.AlertStreakAchieved, day),
			DetectedOn: day,
			Metadata: map[string]any{
				"streak":      streak,
				"detected_at": day.Format(domain.DayFormat),
			},
		}

		inserted, err := d.emit(ctx, alert)
		if err != nil {
			d.logger.Printf("streak alert for %s: %v", athlete.SubjectID, err)
			continue
		}
		if inserted {
			counts.StreakAchieved++
		}
	}
	return nil
}

// emit runs the dedup check-then-insert. The Exists lookup is the cheap
// application-level path; the store's unique constraint on the dedup key is
// what makes concurrent runs safe.
func (d *Detector) emit(ctx context.Context, alert domain.Alert) (bool, error) {
	exists, err := d.alerts.Exists(ctx, alert.DedupKey)
	if err != nil {
		return false, err
	}
	if exists {
		recordSkipped(string(alert.Kind))
		return false, nil
	}

	inserted, err := d.alerts.Insert(ctx, alert)
	if err != nil {
		return false, err
	}
	if !inserted {
		recordSkipped(string(alert.Kind))
		return false, nil
	}

	recordInserted(string(alert.Kind))
	if d.publisher != nil {
		if err := d.publisher.PublishAlertCreated(ctx, alert); err != nil {
			// The alert row is already durable; fan-out is best effort.
			d.logger.Printf("publish alert %s: %v", alert.ID, err)
		}
	}
	return true, nil
}

func ceilDays(delta time.Duration) int {
	return int(math.Ceil(delta.Hours() / 24))
}

func displayName(name string) string {
	if name == "" {
		return "Atleta"
	}
	return name
}

func pluralSuffix(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
