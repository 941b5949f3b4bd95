package training

import (
	"github.com/tritrack/tritrack/internal/caldate"
	"github.com/tritrack/tritrack/internal/models"
)

// taperDays is the gap between the end of a generated plan and race day.
const taperDays = 7

// PlanForRace lays out the training plan created alongside a new race: it
// starts today, ends one week before race day and lasts the number of weeks
// left, rounded up.
func PlanForRace(race models.Race, level string, today caldate.Date) models.TrainingPlan {
	raceID := race.ID
	weeks := (today.DaysUntil(race.RaceDate) + 6) / 7
	if weeks < 1 {
		weeks = 1
	}
	end := race.RaceDate.AddDays(-taperDays)
	if end.Before(today) {
		end = today
	}
	return models.TrainingPlan{
		UserID:        race.UserID,
		RaceID:        &raceID,
		PlanName:      race.RaceName + " Training Plan",
		StartDate:     today,
		EndDate:       end,
		WeeksDuration: weeks,
		PlanType:      level,
	}
}
