package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tritrack/tritrack/internal/models"
)

const athleteMetricsColumns = `id, user_id, ftp_watts, swim_css_pace_per_100m, run_threshold_pace_per_km,
	max_heart_rate, resting_heart_rate, updated_at`

func scanAthleteMetrics(row interface{ Scan(dest ...any) error }) (*models.AthleteMetrics, error) {
	var m models.AthleteMetrics
	err := row.Scan(&m.ID, &m.UserID, &m.FTPWatts, &m.SwimCSSPacePer100m, &m.RunThresholdPacePerKm,
		&m.MaxHeartRate, &m.RestingHeartRate, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetAthleteMetrics returns the threshold metrics of userID.
func (db *DB) GetAthleteMetrics(ctx context.Context, userID uuid.UUID) (*models.AthleteMetrics, error) {
	m, err := scanAthleteMetrics(db.Pool.QueryRow(ctx,
		`SELECT `+athleteMetricsColumns+` FROM athlete_metrics WHERE user_id = $1`, userID))
	if err != nil {
		return nil, wrapNoRows(err, "querying athlete metrics")
	}
	return m, nil
}

// UpsertAthleteMetrics stores the threshold metrics of userID.
func (db *DB) UpsertAthleteMetrics(ctx context.Context, userID uuid.UUID, in models.AthleteMetrics) (*models.AthleteMetrics, error) {
	m, err := scanAthleteMetrics(db.Pool.QueryRow(ctx, `
		INSERT INTO athlete_metrics (user_id, ftp_watts, swim_css_pace_per_100m, run_threshold_pace_per_km,
			max_heart_rate, resting_heart_rate)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (user_id) DO UPDATE SET
			ftp_watts = EXCLUDED.ftp_watts,
			swim_css_pace_per_100m = EXCLUDED.swim_css_pace_per_100m,
			run_threshold_pace_per_km = EXCLUDED.run_threshold_pace_per_km,
			max_heart_rate = EXCLUDED.max_heart_rate,
			resting_heart_rate = EXCLUDED.resting_heart_rate,
			updated_at = now()
		RETURNING `+athleteMetricsColumns,
		userID, in.FTPWatts, in.SwimCSSPacePer100m, in.RunThresholdPacePerKm,
		in.MaxHeartRate, in.RestingHeartRate))
	if err != nil {
		return nil, fmt.Errorf("upserting athlete metrics: %w", err)
	}
	return m, nil
}
