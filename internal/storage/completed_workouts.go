package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tritrack/tritrack/internal/caldate"
	"github.com/tritrack/tritrack/internal/models"
)

const completedWorkoutColumns = `id, user_id, planned_workout_id, workout_date, discipline,
	actual_duration_minutes, actual_distance_meters, average_pace_per_km, average_heart_rate,
	average_power_watts, elevation_gain_meters, rpe, workout_notes, weather_conditions,
	equipment_used, feeling, created_at, updated_at`

func scanCompletedWorkout(row interface{ Scan(dest ...any) error }) (*models.CompletedWorkout, error) {
	var (
		w    models.CompletedWorkout
		date time.Time
	)
	err := row.Scan(&w.ID, &w.UserID, &w.PlannedWorkoutID, &date, &w.Discipline,
		&w.ActualDurationMinutes, &w.ActualDistanceMeters, &w.AveragePacePerKm, &w.AverageHeartRate,
		&w.AveragePowerWatts, &w.ElevationGainMeters, &w.RPE, &w.WorkoutNotes, &w.WeatherConditions,
		&w.EquipmentUsed, &w.Feeling, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	w.WorkoutDate = caldate.FromTime(date)
	return &w, nil
}

// ListCompletedWorkouts returns the completed workouts of userID within f.
// With a limit the most recent come first, otherwise the oldest.
func (db *DB) ListCompletedWorkouts(ctx context.Context, userID uuid.UUID, f DateFilter) ([]models.CompletedWorkout, error) {
	order := "workout_date ASC, created_at ASC"
	if f.Limit > 0 {
		order = "workout_date DESC, created_at DESC"
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT `+completedWorkoutColumns+`
		 FROM completed_workouts
		 WHERE user_id = $1
		   AND ($2::date IS NULL OR workout_date >= $2)
		   AND ($3::date IS NULL OR workout_date <= $3)
		 ORDER BY `+order+`
		 LIMIT $4`,
		userID, dateArg(f.Start), dateArg(f.End), limitArg(f.Limit))
	if err != nil {
		return nil, fmt.Errorf("querying completed workouts: %w", err)
	}
	defer rows.Close()

	var result []models.CompletedWorkout
	for rows.Next() {
		w, err := scanCompletedWorkout(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning completed workout: %w", err)
		}
		result = append(result, *w)
	}
	return result, rows.Err()
}

// GetCompletedWorkout returns one completed workout of userID.
func (db *DB) GetCompletedWorkout(ctx context.Context, userID, id uuid.UUID) (*models.CompletedWorkout, error) {
	w, err := scanCompletedWorkout(db.Pool.QueryRow(ctx,
		`SELECT `+completedWorkoutColumns+` FROM completed_workouts WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		return nil, wrapNoRows(err, "querying completed workout")
	}
	return w, nil
}

// CreateCompletedWorkout logs a completed workout for userID.
func (db *DB) CreateCompletedWorkout(ctx context.Context, userID uuid.UUID, in models.CompletedWorkoutInput) (*models.CompletedWorkout, error) {
	w, err := scanCompletedWorkout(db.Pool.QueryRow(ctx, `
		INSERT INTO completed_workouts (user_id, planned_workout_id, workout_date, discipline,
			actual_duration_minutes, actual_distance_meters, average_pace_per_km, average_heart_rate,
			average_power_watts, elevation_gain_meters, rpe, workout_notes, weather_conditions,
			equipment_used, feeling)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		RETURNING `+completedWorkoutColumns,
		userID, in.PlannedWorkoutID, in.WorkoutDate.Time(), in.Discipline,
		in.ActualDurationMinutes, in.ActualDistanceMeters, in.AveragePacePerKm, in.AverageHeartRate,
		in.AveragePowerWatts, in.ElevationGainMeters, in.RPE, in.WorkoutNotes, in.WeatherConditions,
		in.EquipmentUsed, in.Feeling))
	if err != nil {
		return nil, fmt.Errorf("inserting completed workout: %w", err)
	}
	return w, nil
}

// UpdateCompletedWorkout overwrites a completed workout of userID.
func (db *DB) UpdateCompletedWorkout(ctx context.Context, userID, id uuid.UUID, in models.CompletedWorkoutInput) (*models.CompletedWorkout, error) {
	w, err := scanCompletedWorkout(db.Pool.QueryRow(ctx, `
		UPDATE completed_workouts SET
			planned_workout_id = $3, workout_date = $4, discipline = $5,
			actual_duration_minutes = $6, actual_distance_meters = $7, average_pace_per_km = $8,
			average_heart_rate = $9, average_power_watts = $10, elevation_gain_meters = $11,
			rpe = $12, workout_notes = $13, weather_conditions = $14, equipment_used = $15,
			feeling = $16, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+completedWorkoutColumns,
		id, userID, in.PlannedWorkoutID, in.WorkoutDate.Time(), in.Discipline,
		in.ActualDurationMinutes, in.ActualDistanceMeters, in.AveragePacePerKm,
		in.AverageHeartRate, in.AveragePowerWatts, in.ElevationGainMeters,
		in.RPE, in.WorkoutNotes, in.WeatherConditions, in.EquipmentUsed, in.Feeling))
	if err != nil {
		return nil, wrapNoRows(err, "updating completed workout")
	}
	return w, nil
}

// DeleteCompletedWorkout removes a completed workout of userID.
func (db *DB) DeleteCompletedWorkout(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM completed_workouts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting completed workout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
