package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tritrack/tritrack/internal/caldate"
	"github.com/tritrack/tritrack/internal/models"
)

const trainingPlanColumns = `id, user_id, race_id, plan_name, start_date, end_date, weeks_duration,
	weekly_hours_available, plan_type, created_at`

func scanTrainingPlan(row interface{ Scan(dest ...any) error }) (*models.TrainingPlan, error) {
	var (
		p          models.TrainingPlan
		start, end time.Time
	)
	err := row.Scan(&p.ID, &p.UserID, &p.RaceID, &p.PlanName, &start, &end, &p.WeeksDuration,
		&p.WeeklyHoursAvailable, &p.PlanType, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.StartDate = caldate.FromTime(start)
	p.EndDate = caldate.FromTime(end)
	return &p, nil
}

// ListTrainingPlans returns the plans of userID, newest first.
func (db *DB) ListTrainingPlans(ctx context.Context, userID uuid.UUID) ([]models.TrainingPlan, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+trainingPlanColumns+` FROM training_plans WHERE user_id = $1 ORDER BY start_date DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying training plans: %w", err)
	}
	defer rows.Close()

	var result []models.TrainingPlan
	for rows.Next() {
		p, err := scanTrainingPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning training plan: %w", err)
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

func insertTrainingPlan(ctx context.Context, q querier, p models.TrainingPlan) (*models.TrainingPlan, error) {
	out, err := scanTrainingPlan(q.QueryRow(ctx, `
		INSERT INTO training_plans (user_id, race_id, plan_name, start_date, end_date, weeks_duration,
			weekly_hours_available, plan_type)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING `+trainingPlanColumns,
		p.UserID, p.RaceID, p.PlanName, p.StartDate.Time(), p.EndDate.Time(), p.WeeksDuration,
		p.WeeklyHoursAvailable, p.PlanType))
	if err != nil {
		return nil, fmt.Errorf("inserting training plan: %w", err)
	}
	return out, nil
}
