package coach

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/OHANAGROUP/nexfit/internal/domain"
)

func teamSnapshot() *domain.AnalyticsSnapshot {
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

func TestResolveInsightTeamSummary(t *testing.T) {
	resolver := NewResolver()
	answer := resolver.ResolveInsight("¿Cómo está el equipo?", teamSnapshot())

	require.Contains(t, answer, "88%")
	require.Contains(t, answer, "bueno")
	require.Contains(t, answer, "66")
	require.Contains(t, answer, "7 días")
}

func TestResolveInsightTeamSummaryVerdictBuckets(t *testing.T) {
	resolver := NewResolver()

	snap := teamSnapshot()
	snap.AdherenceAvgPct = 92
	require.Contains(t, resolver.ResolveInsight("resumen general", snap), "excelente")

	snap.AdherenceAvgPct = 76
	answer := resolver.ResolveInsight("resumen general", snap)
	require.Contains(t, answer, "bajo")
	require.Contains(t, answer, "Recomendación")
}

func TestResolveInsightPrecedenceIsDeclarationOrder(t *testing.T) {
	// "estado" (summary) and "alerta" (at-risk) both match; the summary
	// classifier is earlier and must win.
	resolver := NewResolver()
	answer := resolver.ResolveInsight("estado de alerta", teamSnapshot())
	require.Contains(t, answer, "rendimiento del equipo")
}

func TestResolveInsightAtRisk(t *testing.T) {
	resolver := NewResolver()
	answer := resolver.ResolveInsight("¿quién necesita atención?", teamSnapshot())

	require.Contains(t, answer, "atención urgente")
	// Ascending by adherence: Ana (72) first with a yellow marker.
	require.Contains(t, answer, "1. 🟡 **ANA SOTO** — 72% adherencia")
	require.Contains(t, answer, "2. 🟢 **JUAN PÉREZ**")
	require.Contains(t, answer, "3. 🟢 **PABLO PALOMINOS**")
	require.NotContains(t, answer, "MARÍA")
}

func TestResolveInsightAtRiskMarkers(t *testing.T) {
	resolver := NewResolver()
	snap := teamSnapshot()
	snap.Leaderboard = []domain.AthleteStat{
		{DisplayName: "A", AdherencePct: 55},
		{DisplayName: "B", AdherencePct: 70},
		{DisplayName: "C", AdherencePct: 85},
	}

	answer := resolver.ResolveInsight("riesgo", snap)
	require.Contains(t, answer, "🔴 **A**")
	require.Contains(t, answer, "🟡 **B**")
	require.Contains(t, answer, "🟢 **C**")
}

func TestResolveInsightAtRiskEmptyLeaderboard(t *testing.T) {
	resolver := NewResolver()
	snap := teamSnapshot()
	snap.Leaderboard = nil

	answer := resolver.ResolveInsight("¿quién necesita atención?", snap)
	require.Contains(t, answer, "al día")
	require.NotEmpty(t, answer)
}

func TestResolveInsightDoesNotReorderLeaderboard(t *testing.T) {
	resolver := NewResolver()
	snap := teamSnapshot()
	resolver.ResolveInsight("riesgo", snap)
	resolver.ResolveInsight("top 3", snap)

	require.Equal(t, "MARÍA GARCIA", snap.Leaderboard[0].DisplayName)
	require.Equal(t, "ANA SOTO", snap.Leaderboard[3].DisplayName)
}

func TestResolveInsightMembershipsPluralBoundary(t *testing.T) {
	resolver := NewResolver()

	snap := teamSnapshot()
	snap.ExpiringMembershipsCount = 1
	require.Contains(t, resolver.ResolveInsight("¿qué membresías vencen?", snap), "**1 membresía** vence en")

	snap.ExpiringMembershipsCount = 2
	require.Contains(t, resolver.ResolveInsight("¿qué membresías vencen?", snap), "**2 membresías** vencen en")
}

func TestResolveInsightMembershipsNoneExpiring(t *testing.T) {
	resolver := NewResolver()
	snap := teamSnapshot()
	snap.ExpiringMembershipsCount = 0

	answer := resolver.ResolveInsight("pagos y membresías", snap)
	require.Contains(t, answer, "Ninguna membresía vence")
	require.Contains(t, answer, "$180.000")
}

func TestResolveInsightStreakLeaderFirstOnTie(t *testing.T) {
	resolver := NewResolver()
	snap := teamSnapshot()
	snap.Leaderboard = []domain.AthleteStat{
		{DisplayName: "PRIMERA", StreakDays: 7},
		{DisplayName: "SEGUNDA", StreakDays: 7},
	}

	answer := resolver.ResolveInsight("¿cuál es la racha más larga?", snap)
	require.Contains(t, answer, "PRIMERA")
	require.NotContains(t, answer, "SEGUNDA")
}

func TestResolveInsightStreakNoActiveStreaks(t *testing.T) {
	resolver := NewResolver()
	snap := teamSnapshot()
	snap.Leaderboard = []domain.AthleteStat{{DisplayName: "A", StreakDays: 0}}
	snap.MaxStreakDays = 0

	answer := resolver.ResolveInsight("racha", snap)
	require.Contains(t, answer, "racha máxima del equipo")
	require.Contains(t, answer, "0 días")
}

func TestResolveInsightRevenue(t *testing.T) {
	resolver := NewResolver()

	answer := resolver.ResolveInsight("ingresos del mes", teamSnapshot())
	require.Contains(t, answer, "Resumen financiero")
	require.Contains(t, answer, "$180.000")
	require.Contains(t, answer, "Renovar las membresías")

	snap := teamSnapshot()
	snap.ExpiringMembershipsCount = 0
	require.Contains(t, resolver.ResolveInsight("ingresos", snap), "Todos los pagos al día")
}

func TestResolveInsightSessionsEstimate(t *testing.T) {
	resolver := NewResolver()

	// 66 done at 88% means 75 planned; 90% of 75 is 67.5, so 2 more sessions.
	answer := resolver.ResolveInsight("sesiones de entrenamiento", teamSnapshot())
	require.Contains(t, answer, "necesitás 2 sesiones más")

	snap := teamSnapshot()
	snap.AdherenceAvgPct = 93
	require.Contains(t, resolver.ResolveInsight("sesiones", snap), "nivel excepcional")
}

func TestResolveInsightSessionsZeroAdherenceGuard(t *testing.T) {
	resolver := NewResolver()
	snap := teamSnapshot()
	snap.AdherenceAvgPct = 0
	snap.SessionsDone = 0

	answer := resolver.ResolveInsight("workout", snap)
	require.NotContains(t, answer, "necesitás")
	require.NotContains(t, answer, "NaN")
}

func TestResolveInsightLeaderboardMedals(t *testing.T) {
	resolver := NewResolver()
	answer := resolver.ResolveInsight("top del ranking", teamSnapshot())

	require.Contains(t, answer, "🥇 **MARÍA GARCIA** — 95% adherencia")
	require.Contains(t, answer, "🥈 **PABLO PALOMINOS**")
	require.Contains(t, answer, "🥉 **JUAN PÉREZ**")
	require.NotContains(t, answer, "ANA")
}

func TestResolveInsightVolumeWithMesocycle(t *testing.T) {
	resolver := NewResolver()
	snap := teamSnapshot()
	snap.CurrentMesocycle = &domain.Mesocycle{Name: "Hipertrofia II", WeekNumber: 3, TotalWeeks: 6, Goal: domain.GoalHypertrophy}
	snap.MuscleVolume = []domain.MuscleVolume{
		{Name: "Espalda", TotalLoad: 12500},
		{Name: "Piernas", TotalLoad: 18200},
	}

	answer := resolver.ResolveInsight("volumen muscular", snap)
	require.Contains(t, answer, "Hipertrofia II")
	require.Contains(t, answer, "**3 de 6**")
	require.Contains(t, answer, "Piernas")
	require.NotContains(t, answer, "Espalda** (")
}

func TestResolveInsightVolumeWithoutMesocycle(t *testing.T) {
	resolver := NewResolver()
	answer := resolver.ResolveInsight("tonelaje por músculo", teamSnapshot())
	require.Contains(t, answer, "no hay un mesociclo activo")
}

func TestResolveInsightDefaultHelp(t *testing.T) {
	resolver := NewResolver()
	answer := resolver.ResolveInsight("gracias", teamSnapshot())

	require.Contains(t, answer, "Puedo analizar")
	require.Contains(t, answer, "**4** atletas activos")
	require.Contains(t, answer, "**88%** adherencia media")
}

func TestResolveInsightMultilineFormatting(t *testing.T) {
	resolver := NewResolver()
	answer := resolver.ResolveInsight("resumen", teamSnapshot())

	require.True(t, strings.Contains(answer, "\n\n"))
	require.True(t, strings.Contains(answer, "**"))
}
