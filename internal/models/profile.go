package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is a row of the profiles table. ID equals the backend auth user id.
type Profile struct {
	ID              uuid.UUID `json:"id"`
	Email           string    `json:"email"`
	FullName        *string   `json:"full_name"`
	AvatarURL       *string   `json:"avatar_url"`
	WeightKg        *float64  `json:"weight_kg"`
	Age             *int      `json:"age"`
	Gender          *string   `json:"gender"`
	ExperienceLevel string    `json:"experience_level"`
	UnitsPreference string    `json:"units_preference"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ProfileInput is the writable subset of a profile.
type ProfileInput struct {
	FullName        *string  `json:"full_name"`
	AvatarURL       *string  `json:"avatar_url"`
	WeightKg        *float64 `json:"weight_kg" validate:"omitempty,gt=0"`
	Age             *int     `json:"age" validate:"omitempty,gt=0,lt=130"`
	Gender          *string  `json:"gender"`
	ExperienceLevel string   `json:"experience_level" validate:"omitempty,oneof=beginner intermediate advanced"`
	UnitsPreference string   `json:"units_preference" validate:"omitempty,oneof=metric imperial"`
}

// AthleteMetrics is a row of the athlete_metrics table.
type AthleteMetrics struct {
	ID                    uuid.UUID `json:"id"`
	UserID                uuid.UUID `json:"user_id"`
	FTPWatts              *int      `json:"ftp_watts" validate:"omitempty,gt=0"`
	SwimCSSPacePer100m    *float64  `json:"swim_css_pace_per_100m" validate:"omitempty,gt=0"`
	RunThresholdPacePerKm *float64  `json:"run_threshold_pace_per_km" validate:"omitempty,gt=0"`
	MaxHeartRate          *int      `json:"max_heart_rate" validate:"omitempty,gt=0,lte=250"`
	RestingHeartRate      *int      `json:"resting_heart_rate" validate:"omitempty,gt=0,lte=250"`
	UpdatedAt             time.Time `json:"updated_at"`
}
