package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/tritrack/tritrack/internal/caldate"
)

// Race is a row of the user_races table. At most one race per user is
// flagged primary and drives the countdown.
type Race struct {
	ID                    uuid.UUID    `json:"id"`
	UserID                uuid.UUID    `json:"user_id"`
	RaceName              string       `json:"race_name"`
	RaceDate              caldate.Date `json:"race_date"`
	RaceLocation          *string      `json:"race_location"`
	DistanceType          string       `json:"distance_type"`
	GoalFinishTimeMinutes *int         `json:"goal_finish_time_minutes"`
	RegistrationStatus    *string      `json:"registration_status"`
	CourseNotes           *string      `json:"course_notes"`
	IsPrimary             bool         `json:"is_primary"`
	CreatedAt             time.Time    `json:"created_at"`
	UpdatedAt             time.Time    `json:"updated_at"`
}

// RaceInput is the writable subset of a race.
type RaceInput struct {
	RaceName              string       `json:"race_name" validate:"required"`
	RaceDate              caldate.Date `json:"race_date" validate:"required"`
	RaceLocation          *string      `json:"race_location"`
	DistanceType          string       `json:"distance_type" validate:"required,oneof=sprint olympic 70.3 ironman custom"`
	GoalFinishTimeMinutes *int         `json:"goal_finish_time_minutes" validate:"omitempty,gte=0"`
	RegistrationStatus    *string      `json:"registration_status"`
	CourseNotes           *string      `json:"course_notes"`
	IsPrimary             bool         `json:"is_primary"`
}

// RaceGoal is a row of the race_goals table: split targets for one race.
type RaceGoal struct {
	ID                uuid.UUID `json:"id"`
	RaceID            uuid.UUID `json:"race_id"`
	SwimGoalMinutes   *int      `json:"swim_goal_minutes" validate:"omitempty,gte=0"`
	T1GoalMinutes     *int      `json:"t1_goal_minutes" validate:"omitempty,gte=0"`
	BikeGoalMinutes   *int      `json:"bike_goal_minutes" validate:"omitempty,gte=0"`
	T2GoalMinutes     *int      `json:"t2_goal_minutes" validate:"omitempty,gte=0"`
	RunGoalMinutes    *int      `json:"run_goal_minutes" validate:"omitempty,gte=0"`
	NutritionStrategy *string   `json:"nutrition_strategy"`
	PacingStrategy    *string   `json:"pacing_strategy"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TotalMinutes sums the split goals that are set.
func (g RaceGoal) TotalMinutes() int {
	total := 0
	for _, m := range []*int{g.SwimGoalMinutes, g.T1GoalMinutes, g.BikeGoalMinutes, g.T2GoalMinutes, g.RunGoalMinutes} {
		if m != nil {
			total += *m
		}
	}
	return total
}

// TrainingPlan is a row of the training_plans table.
type TrainingPlan struct {
	ID                   uuid.UUID    `json:"id"`
	UserID               uuid.UUID    `json:"user_id"`
	RaceID               *uuid.UUID   `json:"race_id"`
	PlanName             string       `json:"plan_name"`
	StartDate            caldate.Date `json:"start_date"`
	EndDate              caldate.Date `json:"end_date"`
	WeeksDuration        int          `json:"weeks_duration"`
	WeeklyHoursAvailable *float64     `json:"weekly_hours_available"`
	PlanType             string       `json:"plan_type"`
	CreatedAt            time.Time    `json:"created_at"`
}

// OnboardingInput is the race setup wizard payload: the first primary race
// plus the athlete's experience level.
type OnboardingInput struct {
	RaceName        string       `json:"race_name" validate:"required"`
	RaceDate        caldate.Date `json:"race_date" validate:"required"`
	RaceLocation    *string      `json:"race_location"`
	DistanceType    string       `json:"distance_type" validate:"required,oneof=sprint olympic 70.3 ironman custom"`
	GoalTimeHours   *int         `json:"goal_time_hours" validate:"omitempty,gt=0"`
	ExperienceLevel string       `json:"experience_level" validate:"required,oneof=beginner intermediate advanced"`
}

// Race converts the wizard payload into the primary race it creates.
func (in OnboardingInput) Race() RaceInput {
	r := RaceInput{
		RaceName:     in.RaceName,
		RaceDate:     in.RaceDate,
		RaceLocation: in.RaceLocation,
		DistanceType: in.DistanceType,
		IsPrimary:    true,
	}
	if in.GoalTimeHours != nil {
		m := *in.GoalTimeHours * 60
		r.GoalFinishTimeMinutes = &m
	}
	return r
}
