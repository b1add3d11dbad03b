package domain

import (
	"math"
	"time"
)

// StreakLength computes the consecutive-session streak from completed-session
// dates ordered newest first. A gap of up to two days between entries keeps
// the streak alive, which tolerates exactly one rest day; a wider gap stops
// the walk.
func StreakLength(dates []time.Time) int {
	if len(dates) == 0 {
		return 0
	}

	streak := 1
	last := dates[0]
	for _, d := range dates[1:] {
		gap := int(math.Round(last.Sub(d).Hours() / 24))
		if gap > 2 {
			break
		}
		streak++
		last = d
	}
	return streak
}

// IsStreakMilestone reports whether a streak should fire an alert. Alerts
// fire on weekly milestones only (7, 14, 21), never on the days in between.
func IsStreakMilestone(streak int) bool {
	return streak >= 7 && streak%7 == 0
}
