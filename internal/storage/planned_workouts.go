package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tritrack/tritrack/internal/caldate"
	"github.com/tritrack/tritrack/internal/models"
)

const plannedWorkoutColumns = `id, user_id, plan_id, workout_date, discipline, workout_type,
	planned_duration_minutes, planned_distance_meters, intensity_zone, description, notes, created_at`

func scanPlannedWorkout(row interface{ Scan(dest ...any) error }) (*models.PlannedWorkout, error) {
	var (
		w    models.PlannedWorkout
		date time.Time
	)
	err := row.Scan(&w.ID, &w.UserID, &w.PlanID, &date, &w.Discipline, &w.WorkoutType,
		&w.PlannedDurationMinutes, &w.PlannedDistanceMeters, &w.IntensityZone, &w.Description,
		&w.Notes, &w.CreatedAt)
	if err != nil {
		return nil, err
	}
	w.WorkoutDate = caldate.FromTime(date)
	return &w, nil
}

// ListPlannedWorkouts returns the planned workouts of userID within f,
// ordered by date.
func (db *DB) ListPlannedWorkouts(ctx context.Context, userID uuid.UUID, f DateFilter) ([]models.PlannedWorkout, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+plannedWorkoutColumns+`
		 FROM planned_workouts
		 WHERE user_id = $1
		   AND ($2::date IS NULL OR workout_date >= $2)
		   AND ($3::date IS NULL OR workout_date <= $3)
		 ORDER BY workout_date ASC, created_at ASC
		 LIMIT $4`,
		userID, dateArg(f.Start), dateArg(f.End), limitArg(f.Limit))
	if err != nil {
		return nil, fmt.Errorf("querying planned workouts: %w", err)
	}
	defer rows.Close()

	var result []models.PlannedWorkout
	for rows.Next() {
		w, err := scanPlannedWorkout(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning planned workout: %w", err)
		}
		result = append(result, *w)
	}
	return result, rows.Err()
}

// GetPlannedWorkout returns one planned workout of userID.
func (db *DB) GetPlannedWorkout(ctx context.Context, userID, id uuid.UUID) (*models.PlannedWorkout, error) {
	w, err := scanPlannedWorkout(db.Pool.QueryRow(ctx,
		`SELECT `+plannedWorkoutColumns+` FROM planned_workouts WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		return nil, wrapNoRows(err, "querying planned workout")
	}
	return w, nil
}

// CreatePlannedWorkout inserts a planned workout for userID.
func (db *DB) CreatePlannedWorkout(ctx context.Context, userID uuid.UUID, in models.PlannedWorkoutInput) (*models.PlannedWorkout, error) {
	w, err := scanPlannedWorkout(db.Pool.QueryRow(ctx, `
		INSERT INTO planned_workouts (user_id, plan_id, workout_date, discipline, workout_type,
			planned_duration_minutes, planned_distance_meters, intensity_zone, description, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING `+plannedWorkoutColumns,
		userID, in.PlanID, in.WorkoutDate.Time(), in.Discipline, in.WorkoutType,
		in.PlannedDurationMinutes, in.PlannedDistanceMeters, in.IntensityZone, in.Description, in.Notes))
	if err != nil {
		return nil, fmt.Errorf("inserting planned workout: %w", err)
	}
	return w, nil
}

// UpdatePlannedWorkout overwrites a planned workout of userID.
func (db *DB) UpdatePlannedWorkout(ctx context.Context, userID, id uuid.UUID, in models.PlannedWorkoutInput) (*models.PlannedWorkout, error) {
	w, err := scanPlannedWorkout(db.Pool.QueryRow(ctx, `
		UPDATE planned_workouts SET
			plan_id = $3, workout_date = $4, discipline = $5, workout_type = $6,
			planned_duration_minutes = $7, planned_distance_meters = $8, intensity_zone = $9,
			description = $10, notes = $11
		WHERE id = $1 AND user_id = $2
		RETURNING `+plannedWorkoutColumns,
		id, userID, in.PlanID, in.WorkoutDate.Time(), in.Discipline, in.WorkoutType,
		in.PlannedDurationMinutes, in.PlannedDistanceMeters, in.IntensityZone, in.Description, in.Notes))
	if err != nil {
		return nil, wrapNoRows(err, "updating planned workout")
	}
	return w, nil
}

// DeletePlannedWorkout removes a planned workout of userID. Completed
// workouts that referenced it become ad-hoc logs.
func (db *DB) DeletePlannedWorkout(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM planned_workouts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting planned workout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
