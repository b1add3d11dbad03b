package snapshot

import "github.com/OHANAGROUP/nexfit/internal/domain"

// Fallback returns the demo dataset served while the live stores are down.
// A fresh value is built per call so callers can never mutate shared state.
func Fallback() *domain.AnalyticsSnapshot {
	return &domain.AnalyticsSnapshot{
		AdherenceAvgPct: 88,
		SessionsDone:    66,
		MaxStreakDays:   7,
		PendingAlerts:   3,
		Leaderboard: []domain.AthleteStat{
			{DisplayName: "MARÍA GARCIA", AdherencePct: 95, SessionsDone: 19, StreakDays: 7},
			{DisplayName: "PABLO PALOMINOS", AdherencePct: 88, SessionsDone: 17, StreakDays: 3},
			{DisplayName: "JUAN PÉREZ", AdherencePct: 82, SessionsDone: 16, StreakDays: 5},
			{DisplayName: "ANA SOTO", AdherencePct: 72, SessionsDone: 14, StreakDays: 0},
		},
		ExpiringMembershipsCount: 1,
		ActiveMembershipsCount:   4,
		MonthlyRevenue:           180000,
		UnreadNotifications:      3,
	}
}
