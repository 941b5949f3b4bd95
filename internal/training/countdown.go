package training

import (
	"github.com/tritrack/tritrack/internal/caldate"
	"github.com/tritrack/tritrack/internal/models"
)

// RaceCountdown is the time left until a race.
type RaceCountdown struct {
	Race          models.Race  `json:"race"`
	Today         caldate.Date `json:"today"`
	DaysUntil     int          `json:"days_until"`
	WeeksUntil    int          `json:"weeks_until"`
	DistanceLabel string       `json:"distance_label"`
	GoalTime      string       `json:"goal_time"`
}

// Countdown counts whole calendar days from today to the race date and the
// whole weeks they make up. Both are negative once the race has passed.
func Countdown(race models.Race, today caldate.Date) RaceCountdown {
	days := today.DaysUntil(race.RaceDate)
	return RaceCountdown{
		Race:          race,
		Today:         today,
		DaysUntil:     days,
		WeeksUntil:    floorDiv(days, 7),
		DistanceLabel: models.DistanceLabel(race.DistanceType),
		GoalTime:      FormatGoalTime(race.GoalFinishTimeMinutes),
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
