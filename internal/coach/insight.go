package coach

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/OHANAGROUP/nexfit/internal/domain"
)

// intent pairs a keyword matcher with its renderer. Intents are evaluated in
// declaration order and the first hit wins, so ambiguous queries always
// resolve the same way. This must stay a slice, never a map.
type intent struct {
	name     string
	keywords []string
	render   func(*domain.AnalyticsSnapshot) string
}

// Resolver answers free-text questions against an analytics snapshot using
// ordered keyword classification. It holds no mutable state and is safe for
// concurrent use.
type Resolver struct {
	intents []intent
}

// NewResolver constructs a Resolver with the standard intent table.
func NewResolver() *Resolver {
	return &Resolver{intents: []intent{
		{
			name: "team_summary",
			keywords: []string{"equipo", "team", "semana", "week", "resumen", "summary",
				"general", "cómo", "como", "how", "estado", "status"},
			render: teamSummary,
		},
		{
			name: "at_risk",
			keywords: []string{"atención", "atencion", "attention", "urgente", "urgent",
				"riesgo", "risk", "peor", "worst", "bajo", "low", "inactiv", "alerta", "alert"},
			render: atRiskAthletes,
		},
		{
			name: "memberships",
			keywords: []string{"membresía", "membresia", "membership", "vence", "expir",
				"pago", "payment", "plan", "cobr", "charge", "renov", "renew"},
			render: memberships,
		},
		{
			name:     "streaks",
			keywords: []string{"racha", "streak", "consecutiv", "record", "récord"},
			render:   streaks,
		},
		{
			name:     "revenue",
			keywords: []string{"ingreso", "revenue", "dinero", "money", "plata", "cobro", "billing", "factur"},
			render:   revenue,
		},
		{
			name:     "sessions",
			keywords: []string{"sesión", "sesion", "session", "entrenamiento", "training", "workout"},
			render:   sessions,
		},
		{
			name: "leaderboard",
			keywords: []string{"top", "mejor", "best", "líder", "lider", "leader",
				"ranking", "podio", "podium", "campeón", "campeon", "champion"},
			render: leaderboard,
		},
		{
			name: "volume",
			keywords: []string{"volumen", "volume", "tonaje", "tonelaje", "tonnage",
				"músculo", "musculo", "muscle", "carga", "load", "mesociclo", "mesocycle",
				"bloque", "block"},
			render: volume,
		},
	}}
}

// ResolveInsight classifies the query and renders the matching answer.
// Unmatched input falls through to the help response; the function never
// fails and never returns an empty string.
func (r *Resolver) ResolveInsight(query string, snap *domain.AnalyticsSnapshot) string {
	q := strings.ToLower(strings.TrimSpace(query))
	for _, it := range r.intents {
		if containsAny(q, it.keywords) {
			recordIntent(it.name)
			return it.render(snap)
		}
	}
	recordIntent("default")
	return defaultHelp(snap)
}

func containsAny(q string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

func teamSummary(snap *domain.AnalyticsSnapshot) string {
	adherence := snap.AdherenceAvgPct
	verdict, icon := "bajo", "⚠️"
	switch {
	case adherence >= 90:
		verdict, icon = "excelente", "🔥"
	case adherence >= 80:
		verdict, icon = "bueno", "✅"
	}

	target := "(bajo objetivo del 90%)"
	if adherence >= 90 {
		target = "(sobre objetivo)"
	}
	closing := "¡El equipo va por buen camino! Mantené el ritmo."
	if adherence < 80 {
		closing = "⚡ Recomendación: revisá los planes de los atletas con adherencia <70%."
	}

	return fmt.Sprintf("%s El rendimiento del equipo está en nivel **%s**:\n\n", icon, verdict) +
		fmt.Sprintf("• Adherencia media: **%s%%** %s\n", formatPct(adherence), target) +
		fmt.Sprintf("• Sesiones completadas: **%d** este mes\n", snap.SessionsDone) +
		fmt.Sprintf("• Racha máxima activa: **%d días**\n", snap.MaxStreakDays) +
		fmt.Sprintf("• Alertas pendientes: **%d**\n\n", snap.PendingAlerts) +
		closing
}

func atRiskAthletes(snap *domain.AnalyticsSnapshot) string {
	if len(snap.Leaderboard) == 0 {
		return "✅ ¡Todos los atletas están al día! No hay casos urgentes esta semana."
	}

	atRisk := sortedByAdherence(snap.Leaderboard, true)
	if len(atRisk) > 3 {
		atRisk = atRisk[:3]
	}

	lines := make([]string, 0, len(atRisk))
	for i, a := range atRisk {
		marker := "🟢"
		switch {
		case a.AdherencePct < 60:
			marker = "🔴"
		case a.AdherencePct < 80:
			marker = "🟡"
		}
		lines = append(lines, fmt.Sprintf("%d. %s **%s** — %s%% adherencia",
			i+1, marker, a.DisplayName, formatPct(a.AdherencePct)))
	}

	return fmt.Sprintf("🚨 **Atletas que necesitan atención urgente:**\n\n%s\n\n", strings.Join(lines, "\n")) +
		"Contactar y revisar sus planes de entrenamiento cuanto antes."
}

func memberships(snap *domain.AnalyticsSnapshot) string {
	if snap.ExpiringMembershipsCount == 0 {
		return "✅ Ninguna membresía vence en los próximos 7 días.\n\n" +
			fmt.Sprintf("• Membresías activas: **%d**\n", snap.ActiveMembershipsCount) +
			fmt.Sprintf("• Ingreso mensual estimado: **$%s**", formatMoney(snap.MonthlyRevenue))
	}

	n := snap.ExpiringMembershipsCount
	return fmt.Sprintf("💳 **%d membresía%s** vence%s en los próximos 7 días.\n\n",
		n, plural(n, "", "s"), plural(n, "", "n")) +
		"• Ingreso en riesgo: estimado según planes activos\n" +
		fmt.Sprintf("• Membresías activas totales: **%d**\n", snap.ActiveMembershipsCount) +
		fmt.Sprintf("• Ingreso mensual actual: **$%s**\n\n", formatMoney(snap.MonthlyRevenue)) +
		"📲 Acción: ir a /membresias y contactar a los atletas afectados."
}

func streaks(snap *domain.AnalyticsSnapshot) string {
	var leader *domain.AthleteStat
	for i := range snap.Leaderboard {
		a := &snap.Leaderboard[i]
		if a.StreakDays <= 0 {
			continue
		}
		// Strict comparison keeps the first athlete on ties.
		if leader == nil || a.StreakDays > leader.StreakDays {
			leader = a
		}
	}

	if leader == nil {
		return fmt.Sprintf("📊 La racha máxima del equipo esta semana es de **%d días**.\n\n", snap.MaxStreakDays) +
			"¡Motivá a los atletas a mantener la consistencia!"
	}

	return fmt.Sprintf("🔥 **¡Racha máxima del equipo: %d días!**\n\n", snap.MaxStreakDays) +
		fmt.Sprintf("Líder actual: **%s** con **%d sesiones consecutivas**.\n\n", leader.DisplayName, leader.StreakDays) +
		"💡 Felicitalo hoy — el reconocimiento aumenta la retención un 40%."
}

func revenue(snap *domain.AnalyticsSnapshot) string {
	closing := "✅ Todos los pagos al día. Buen mes."
	if snap.ExpiringMembershipsCount > 0 {
		closing = "⚠️ Renovar las membresías vencientes evitaría perder ingresos potenciales."
	}

	return "💰 **Resumen financiero del mes:**\n\n" +
		fmt.Sprintf("• Membresías activas: **%d**\n", snap.ActiveMembershipsCount) +
		fmt.Sprintf("• Ingreso mensual: **$%s**\n", formatMoney(snap.MonthlyRevenue)) +
		fmt.Sprintf("• Membresías por vencer: **%d**\n\n", snap.ExpiringMembershipsCount) +
		closing
}

func sessions(snap *domain.AnalyticsSnapshot) string {
	out := "🏋️ **Resumen de sesiones:**\n\n" +
		fmt.Sprintf("• Total completadas: **%d** este mes\n", snap.SessionsDone) +
		fmt.Sprintf("• Adherencia media: **%s%%**\n", formatPct(snap.AdherenceAvgPct)) +
		fmt.Sprintf("• Racha máxima: **%d días**\n\n", snap.MaxStreakDays)

	if snap.AdherenceAvgPct >= 90 {
		return out + "🔥 ¡El equipo está en un nivel excepcional!"
	}
	needed, ok := sessionsToTarget(snap.SessionsDone, snap.AdherenceAvgPct)
	if !ok {
		return out + "💡 Registrá las primeras sesiones para proyectar la meta del 90%."
	}
	return out + fmt.Sprintf("💡 Para llegar al 90%%+ necesitás %d sesiones más.", needed)
}

func leaderboard(snap *domain.AnalyticsSnapshot) string {
	top := sortedByAdherence(snap.Leaderboard, false)
	if len(top) > 3 {
		top = top[:3]
	}

	medals := []string{"🥇", "🥈", "🥉"}
	lines := make([]string, 0, len(top))
	for i, a := range top {
		lines = append(lines, fmt.Sprintf("%s **%s** — %s%% adherencia",
			medals[i], a.DisplayName, formatPct(a.AdherencePct)))
	}

	return fmt.Sprintf("🏆 **Top 3 atletas del equipo:**\n\n%s\n\n¡Reconocer a los líderes motiva a todos!",
		strings.Join(lines, "\n"))
}

func volume(snap *domain.AnalyticsSnapshot) string {
	meso := snap.CurrentMesocycle
	if meso == nil {
		return "📊 Todavía no hay un mesociclo activo definido para este atleta. Definí uno en **/protocolos/mesociclos**."
	}

	out := "📉 **Estado de Planificación:**\n\n" +
		fmt.Sprintf("• Bloque actual: **%s**\n", meso.Name) +
		fmt.Sprintf("• Semana: **%d de %d** (%s)\n", meso.WeekNumber, meso.TotalWeeks, meso.Goal)

	if top := topMuscle(snap.MuscleVolume); top != nil {
		out += fmt.Sprintf("• Mayor carga acumulada: **%s** (%s kg total)\n\n", top.Name, formatMoney(top.TotalLoad))
	} else {
		out += "\n"
	}

	return out + fmt.Sprintf("💡 Sugerencia: mantené los RPE según lo planificado para este bloque de %s.", meso.Goal)
}

func defaultHelp(snap *domain.AnalyticsSnapshot) string {
	return "👋 Hola! Soy **Coach NexFit**. Puedo analizar:\n\n" +
		"• **\"¿Cómo está el equipo?\"** — resumen general\n" +
		"• **\"¿Quién necesita atención?\"** — atletas en riesgo\n" +
		"• **\"¿Qué membresías vencen?\"** — estado de pagos\n" +
		"• **\"¿Cómo va el volumen?\"** — carga por músculo\n" +
		"• **\"¿En qué fase estamos?\"** — mesociclos y periodización\n\n" +
		fmt.Sprintf("Actualmente: **%d** atletas activos, **%s%%** adherencia media. 💪",
			snap.ActiveMembershipsCount, formatPct(snap.AdherenceAvgPct))
}

// sessionsToTarget estimates how many extra sessions lift the cohort to 90%
// adherence. The estimate is meaningless at zero adherence, so the second
// return reports whether there is one; negative estimates clamp to zero.
func sessionsToTarget(sessionsDone int, adherencePct float64) (int, bool) {
	if adherencePct <= 0 {
		return 0, false
	}
	planned := float64(sessionsDone) / (adherencePct / 100)
	needed := int(math.Ceil(0.9*planned - float64(sessionsDone)))
	if needed < 0 {
		needed = 0
	}
	return needed, true
}

// sortedByAdherence returns a sorted copy so the caller's leaderboard slice
// keeps its source order.
func sortedByAdherence(list []domain.AthleteStat, ascending bool) []domain.AthleteStat {
	out := make([]domain.AthleteStat, len(list))
	copy(out, list)
	sort.SliceStable(out, func(i, j int) bool {
		if ascending {
			return out[i].AdherencePct < out[j].AdherencePct
		}
		return out[i].AdherencePct > out[j].AdherencePct
	})
	return out
}

func topMuscle(volumes []domain.MuscleVolume) *domain.MuscleVolume {
	var top *domain.MuscleVolume
	for i := range volumes {
		if top == nil || volumes[i].TotalLoad > top.TotalLoad {
			top = &volumes[i]
		}
	}
	return top
}
