package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/tritrack/tritrack/internal/caldate"
)

// PlannedWorkout is a row of the planned_workouts table.
type PlannedWorkout struct {
	ID                     uuid.UUID    `json:"id"`
	UserID                 uuid.UUID    `json:"user_id"`
	PlanID                 *uuid.UUID   `json:"plan_id"`
	WorkoutDate            caldate.Date `json:"workout_date"`
	Discipline             string       `json:"discipline"`
	WorkoutType            *string      `json:"workout_type"`
	PlannedDurationMinutes *int         `json:"planned_duration_minutes"`
	PlannedDistanceMeters  *float64     `json:"planned_distance_meters"`
	IntensityZone          *string      `json:"intensity_zone"`
	Description            *string      `json:"description"`
	Notes                  *string      `json:"notes"`
	CreatedAt              time.Time    `json:"created_at"`
}

// CompletedWorkout is a row of the completed_workouts table. PlannedWorkoutID
// is a nullable back-reference, not an ownership relation.
type CompletedWorkout struct {
	ID                    uuid.UUID    `json:"id"`
	UserID                uuid.UUID    `json:"user_id"`
	PlannedWorkoutID      *uuid.UUID   `json:"planned_workout_id"`
	WorkoutDate           caldate.Date `json:"workout_date"`
	Discipline            string       `json:"discipline"`
	ActualDurationMinutes int          `json:"actual_duration_minutes"`
	ActualDistanceMeters  *float64     `json:"actual_distance_meters"`
	AveragePacePerKm      *float64     `json:"average_pace_per_km"`
	AverageHeartRate      *int         `json:"average_heart_rate"`
	AveragePowerWatts     *int         `json:"average_power_watts"`
	ElevationGainMeters   *float64     `json:"elevation_gain_meters"`
	RPE                   *int         `json:"rpe"`
	WorkoutNotes          *string      `json:"workout_notes"`
	WeatherConditions     *string      `json:"weather_conditions"`
	EquipmentUsed         *string      `json:"equipment_used"`
	Feeling               *string      `json:"feeling"`
	CreatedAt             time.Time    `json:"created_at"`
	UpdatedAt             time.Time    `json:"updated_at"`
}

// PlannedWorkoutInput is the writable subset of a planned workout.
type PlannedWorkoutInput struct {
	PlanID                 *uuid.UUID   `json:"plan_id"`
	WorkoutDate            caldate.Date `json:"workout_date" validate:"required"`
	Discipline             string       `json:"discipline" validate:"required,discipline"`
	WorkoutType            *string      `json:"workout_type"`
	PlannedDurationMinutes *int         `json:"planned_duration_minutes" validate:"omitempty,gte=0"`
	PlannedDistanceMeters  *float64     `json:"planned_distance_meters" validate:"omitempty,gte=0"`
	IntensityZone          *string      `json:"intensity_zone"`
	Description            *string      `json:"description"`
	Notes                  *string      `json:"notes"`
}

// CompletedWorkoutInput is the writable subset of a completed workout.
type CompletedWorkoutInput struct {
	PlannedWorkoutID      *uuid.UUID   `json:"planned_workout_id"`
	WorkoutDate           caldate.Date `json:"workout_date" validate:"required"`
	Discipline            string       `json:"discipline" validate:"required,discipline"`
	ActualDurationMinutes int          `json:"actual_duration_minutes" validate:"gte=0"`
	ActualDistanceMeters  *float64     `json:"actual_distance_meters" validate:"omitempty,gte=0"`
	AveragePacePerKm      *float64     `json:"average_pace_per_km" validate:"omitempty,gte=0"`
	AverageHeartRate      *int         `json:"average_heart_rate" validate:"omitempty,gte=0,lte=220"`
	AveragePowerWatts     *int         `json:"average_power_watts" validate:"omitempty,gte=0"`
	ElevationGainMeters   *float64     `json:"elevation_gain_meters"`
	RPE                   *int         `json:"rpe" validate:"omitempty,gte=1,lte=10"`
	WorkoutNotes          *string      `json:"workout_notes"`
	WeatherConditions     *string      `json:"weather_conditions"`
	EquipmentUsed         *string      `json:"equipment_used"`
	Feeling               *string      `json:"feeling" validate:"omitempty,oneof=great good okay tired exhausted"`
}
