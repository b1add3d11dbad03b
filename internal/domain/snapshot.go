package domain

// MesocycleGoal enumerates the phase goals a training block can target.
type MesocycleGoal string

const (
	GoalStrength    MesocycleGoal = "strength"
	GoalHypertrophy MesocycleGoal = "hypertrophy"
	GoalPerformance MesocycleGoal = "performance"
	GoalHealth      MesocycleGoal = "health"
	GoalDeload      MesocycleGoal = "deload"
)

// Mesocycle describes the structured training block currently in progress.
type Mesocycle struct {
	Name       string
	WeekNumber int
	TotalWeeks int
	Goal       MesocycleGoal
}

// AthleteStat is a single leaderboard row. The display name is the identity
// the engine works with; rows keep the order the aggregation produced them in.
type AthleteStat struct {
	DisplayName  string
	AdherencePct float64
	SessionsDone int
	StreakDays   int
}

// MuscleVolume aggregates accumulated tonnage for one muscle group.
type MuscleVolume struct {
	Name      string
	TotalLoad float64
}

// AnalyticsSnapshot is an immutable read of aggregated cohort metrics. It is
// built fresh per request by the snapshot package and passed by reference to
// the coach engine, which never mutates it.
type AnalyticsSnapshot struct {
	AdherenceAvgPct          float64
	SessionsDone             int
	MaxStreakDays            int
	PendingAlerts            int
	Leaderboard              []AthleteStat
	ExpiringMembershipsCount int
	ActiveMembershipsCount   int
	MonthlyRevenue           float64
	UnreadNotifications      int
	CurrentMesocycle         *Mesocycle
	MuscleVolume             []MuscleVolume
}
