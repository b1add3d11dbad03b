// Package coach implements the rule-based insight engine behind the
// dashboard companion: the ambient phrase cascade and the keyword-driven
// query resolver. Both are pure over the snapshot they receive.
package coach

import (
	"fmt"
	"time"

	"github.com/OHANAGROUP/nexfit/internal/domain"
)

// Clock supplies the current time. Injected so tests can pin the fallback
// rotation bucket; production wiring passes time.Now.
type Clock func() time.Time

// Selector picks the single ambient phrase shown next to the dashboard coach.
type Selector struct {
	clock Clock
}

// NewSelector constructs a Selector. A nil clock defaults to time.Now.
func NewSelector(clock Clock) *Selector {
	if clock == nil {
		clock = time.Now
	}
	return &Selector{clock: clock}
}

// SelectPhrase returns the most relevant phrase for the snapshot. The rules
// form an ordered cascade: periodization state, then financial risk, then
// engagement risk, then celebrations. First match wins, so the order of the
// branches is part of the contract.
func (s *Selector) SelectPhrase(snap *domain.AnalyticsSnapshot) string {
	if meso := snap.CurrentMesocycle; meso != nil {
		if meso.WeekNumber == meso.TotalWeeks {
			return fmt.Sprintf("🎯 Semana final del bloque %q. ¡Preparate para el pico de rendimiento!", meso.Name)
		}
		if meso.Goal == domain.GoalDeload {
			return "🧘 Semana de descarga activa. Recuperación prioritaria para el siguiente bloque."
		}
	}
	if n := snap.ExpiringMembershipsCount; n > 0 {
		return fmt.Sprintf("💳 %d membresía%s vence%s esta semana — ¡Renovar ya!",
			n, plural(n, "", "s"), plural(n, "", "n"))
	}
	if snap.PendingAlerts > 2 || snap.UnreadNotifications > 3 {
		return fmt.Sprintf("🚨 %d alertas activas — ¡El equipo necesita atención!", snap.PendingAlerts)
	}

	adherence := snap.AdherenceAvgPct
	switch {
	case adherence < 75:
		return fmt.Sprintf("📉 Adherencia en %s%% — ¡Muy por debajo del objetivo! Revisá los planes.", formatPct(adherence))
	case adherence < 85:
		return fmt.Sprintf("📊 Adherencia %s%% — El equipo puede dar más. ¡A motivarlos!", formatPct(adherence))
	case adherence >= 95:
		return fmt.Sprintf("🔥 ¡MODO ÉLITE! Adherencia del %s%%. ¡El equipo está imparable!", formatPct(adherence))
	}
	if snap.MaxStreakDays >= 14 {
		return fmt.Sprintf("⚡ Racha de %d días activa — ¡Eso es dedicación real! Felicitar ya.", snap.MaxStreakDays)
	}
	if adherence >= 90 {
		return fmt.Sprintf("✅ Adherencia %s%% — ¡Equipo en modo bestia! Sigan así.", formatPct(adherence))
	}

	// Time-bucketed rotation: deterministic within a 30-second window.
	fallbacks := []string{
		fmt.Sprintf("💪 %d sesiones completadas este mes. ¡Vamos por más!", snap.SessionsDone),
		fmt.Sprintf("🎯 Meta del equipo: superar %s%% de adherencia esta semana.", formatPct(adherence)),
		fmt.Sprintf("📈 Racha máxima actual: %d días. ¿Quién la bate?", snap.MaxStreakDays),
		fmt.Sprintf("🏋️ %d atletas activos en el sistema. ¡A por todos!", snap.ActiveMembershipsCount),
	}
	bucket := s.clock().Unix() / 30
	return fallbacks[int(bucket%int64(len(fallbacks)))]
}
