// Package snapshot assembles the analytics snapshot the coach engine
// consumes, falling back to a fixed demo dataset when the live stores are
// unreachable.
package snapshot

import (
	"context"
	"log"

	"github.com/OHANAGROUP/nexfit/internal/domain"
)

// CohortSummary carries the aggregated training metrics for a tenant.
type CohortSummary struct {
	AdherenceAvgPct     float64
	SessionsDone        int
	PendingAlerts       int
	UnreadNotifications int
}

// MembershipTotals carries the aggregated membership metrics for a tenant.
type MembershipTotals struct {
	Active         int
	Expiring       int
	MonthlyRevenue float64
}

// Source provides the aggregated reads the builder composes into a snapshot.
type Source interface {
	CohortSummary(ctx context.Context, tenantID string) (CohortSummary, error)
	Leaderboard(ctx context.Context, tenantID string, limit int) ([]domain.AthleteStat, error)
	MembershipTotals(ctx context.Context, tenantID string) (MembershipTotals, error)
	CurrentMesocycle(ctx context.Context, tenantID string) (*domain.Mesocycle, error)
	MuscleVolume(ctx context.Context, tenantID string) ([]domain.MuscleVolume, error)
}

// Option configures optional behaviour for the Builder.
type Option func(*Builder)

// WithLogger overrides the logger used to report degraded reads.
func WithLogger(logger *log.Logger) Option {
	return func(b *Builder) { b.logger = logger }
}

// Builder constructs snapshots. A fresh snapshot is built per request; the
// builder itself holds no per-tenant state.
type Builder struct {
	source           Source
	leaderboardLimit int
	logger           *log.Logger
}

// NewBuilder constructs a Builder over the given source.
func NewBuilder(source Source, opts ...Option) *Builder {
	b := &Builder{
		source:           source,
		leaderboardLimit: 10,
		logger:           log.New(log.Writer(), "[snapshot] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build returns the tenant's snapshot. When any of the core reads fails the
// whole snapshot degrades to the demo dataset and the second return reports
// the fallback, so callers can surface resilient mode to the UI. Failures on
// the optional reads (mesocycle, muscle volume) only blank those fields.
func (b *Builder) Build(ctx context.Context, tenantID string) (*domain.AnalyticsSnapshot, bool) {
	summary, err := b.source.CohortSummary(ctx, tenantID)
	if err != nil {
		b.logger.Printf("cohort summary unavailable, serving fallback: %v", err)
		return Fallback(), true
	}

	board, err := b.source.Leaderboard(ctx, tenantID, b.leaderboardLimit)
	if err != nil {
		b.logger.Printf("leaderboard unavailable, serving fallback: %v", err)
		return Fallback(), true
	}

	totals, err := b.source.MembershipTotals(ctx, tenantID)
	if err != nil {
		b.logger.Printf("membership totals unavailable, serving fallback: %v", err)
		return Fallback(), true
	}

	snap := &domain.AnalyticsSnapshot{
		AdherenceAvgPct:          summary.AdherenceAvgPct,
		SessionsDone:             summary.SessionsDone,
		MaxStreakDays:            maxStreak(board),
		PendingAlerts:            summary.PendingAlerts,
		UnreadNotifications:      summary.UnreadNotifications,
		Leaderboard:              board,
		ActiveMembershipsCount:   totals.Active,
		ExpiringMembershipsCount: totals.Expiring,
		MonthlyRevenue:           totals.MonthlyRevenue,
	}

	if meso, err := b.source.CurrentMesocycle(ctx, tenantID); err != nil {
		b.logger.Printf("mesocycle read failed for %s: %v", tenantID, err)
	} else {
		snap.CurrentMesocycle = meso
	}

	if volumes, err := b.source.MuscleVolume(ctx, tenantID); err != nil {
		b.logger.Printf("muscle volume read failed for %s: %v", tenantID, err)
	} else {
		snap.MuscleVolume = volumes
	}

	return snap, false
}

// maxStreak derives the cohort's longest active streak from the leaderboard.
func maxStreak(board []domain.AthleteStat) int {
	longest := 0
	for _, a := range board {
		if a.StreakDays > longest {
			longest = a.StreakDays
		}
	}
	return longest
}
