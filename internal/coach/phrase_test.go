package coach

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/OHANAGROUP/nexfit/internal/domain"
)

func fixedClock(unix int64) Clock {
	return func() time.Time { return time.Unix(unix, 0) }
}

func quietSnapshot() *domain.AnalyticsSnapshot {
	// Adherence between 85 and 90 with no streak dodges every non-fallback rule.
	return &domain.AnalyticsSnapshot{
		AdherenceAvgPct:        87,
		SessionsDone:           42,
		MaxStreakDays:          5,
		ActiveMembershipsCount: 12,
	}
}

func TestSelectPhraseFinalWeekBeatsExpiringMemberships(t *testing.T) {
	selector := NewSelector(fixedClock(0))
	snap := quietSnapshot()
	snap.ExpiringMembershipsCount = 3
	snap.CurrentMesocycle = &domain.Mesocycle{Name: "Bloque Fuerza", WeekNumber: 4, TotalWeeks: 4, Goal: domain.GoalStrength}

	phrase := selector.SelectPhrase(snap)
	require.Contains(t, phrase, "Semana final del bloque")
	require.Contains(t, phrase, "Bloque Fuerza")
}

func TestSelectPhraseDeloadBeatsEverythingButFinalWeek(t *testing.T) {
	selector := NewSelector(fixedClock(0))
	snap := quietSnapshot()
	snap.ExpiringMembershipsCount = 2
	snap.CurrentMesocycle = &domain.Mesocycle{Name: "Descarga", WeekNumber: 1, TotalWeeks: 4, Goal: domain.GoalDeload}

	require.Contains(t, selector.SelectPhrase(snap), "descarga activa")
}

func TestSelectPhraseMidBlockMesocycleFallsThrough(t *testing.T) {
	selector := NewSelector(fixedClock(0))
	snap := quietSnapshot()
	snap.ExpiringMembershipsCount = 1
	snap.CurrentMesocycle = &domain.Mesocycle{Name: "Hipertrofia", WeekNumber: 2, TotalWeeks: 6, Goal: domain.GoalHypertrophy}

	require.Contains(t, selector.SelectPhrase(snap), "membresía vence esta semana")
}

func TestSelectPhraseExpiryPluralBoundary(t *testing.T) {
	selector := NewSelector(fixedClock(0))

	snap := quietSnapshot()
	snap.ExpiringMembershipsCount = 1
	require.Contains(t, selector.SelectPhrase(snap), "1 membresía vence")

	snap.ExpiringMembershipsCount = 2
	require.Contains(t, selector.SelectPhrase(snap), "2 membresías vencen")
}

func TestSelectPhraseAlertThresholds(t *testing.T) {
	selector := NewSelector(fixedClock(0))

	snap := quietSnapshot()
	snap.PendingAlerts = 3
	require.Contains(t, selector.SelectPhrase(snap), "3 alertas activas")

	snap = quietSnapshot()
	snap.PendingAlerts = 2
	snap.UnreadNotifications = 4
	require.Contains(t, selector.SelectPhrase(snap), "2 alertas activas")

	snap = quietSnapshot()
	snap.PendingAlerts = 2
	snap.UnreadNotifications = 3
	require.NotContains(t, selector.SelectPhrase(snap), "alertas activas")
}

func TestSelectPhraseAdherenceBands(t *testing.T) {
	selector := NewSelector(fixedClock(0))

	snap := quietSnapshot()
	snap.AdherenceAvgPct = 74
	require.Contains(t, selector.SelectPhrase(snap), "Muy por debajo del objetivo")

	snap.AdherenceAvgPct = 80
	require.Contains(t, selector.SelectPhrase(snap), "El equipo puede dar más")

	snap.AdherenceAvgPct = 95
	require.Contains(t, selector.SelectPhrase(snap), "MODO ÉLITE")

	snap.AdherenceAvgPct = 90
	require.Contains(t, selector.SelectPhrase(snap), "modo bestia")
}

func TestSelectPhraseStreakBeatsBeastMode(t *testing.T) {
	selector := NewSelector(fixedClock(0))
	snap := quietSnapshot()
	snap.AdherenceAvgPct = 91
	snap.MaxStreakDays = 14

	require.Contains(t, selector.SelectPhrase(snap), "Racha de 14 días activa")
}

func TestSelectPhraseFallbackIsTimeBucketed(t *testing.T) {
	snap := quietSnapshot()

	// Same 30-second bucket: identical output.
	a := NewSelector(fixedClock(10)).SelectPhrase(snap)
	b := NewSelector(fixedClock(29)).SelectPhrase(snap)
	require.Equal(t, a, b)

	// The four buckets rotate through the template list.
	require.Contains(t, NewSelector(fixedClock(0)).SelectPhrase(snap), "42 sesiones completadas")
	require.Contains(t, NewSelector(fixedClock(30)).SelectPhrase(snap), "Meta del equipo")
	require.Contains(t, NewSelector(fixedClock(60)).SelectPhrase(snap), "Racha máxima actual: 5 días")
	require.Contains(t, NewSelector(fixedClock(90)).SelectPhrase(snap), "12 atletas activos")
	require.Contains(t, NewSelector(fixedClock(120)).SelectPhrase(snap), "42 sesiones completadas")
}

func TestSelectPhraseNeverEmpty(t *testing.T) {
	selector := NewSelector(fixedClock(0))
	require.NotEmpty(t, selector.SelectPhrase(&domain.AnalyticsSnapshot{}))
}
