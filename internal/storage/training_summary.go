package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tritrack/tritrack/internal/caldate"
)

// DisciplinePeriodSummary holds completed volume for one discipline within a period.
type DisciplinePeriodSummary struct {
	Discipline      string   `json:"discipline"`
	Count           int      `json:"count"`
	DurationMinutes int      `json:"duration_minutes"`
	DistanceMeters  float64  `json:"distance_meters"`
	AvgHeartRate    *float64 `json:"avg_heart_rate,omitempty"`
	AvgRPE          *float64 `json:"avg_rpe,omitempty"`
}

// TrainingSummaryPeriod holds completed volume for one week or month.
type TrainingSummaryPeriod struct {
	Period      caldate.Date              `json:"period"`
	Disciplines []DisciplinePeriodSummary `json:"disciplines"`
}

// GetTrainingSummary returns completed volume per period and discipline
// between start and end inclusive. Weeks start on Sunday.
func (db *DB) GetTrainingSummary(ctx context.Context, userID uuid.UUID, start, end caldate.Date, bucket string) ([]TrainingSummaryPeriod, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+periodExpr(bucket)+` AS period,
		        lower(discipline) AS d,
		        COUNT(*)::int,
		        COALESCE(SUM(actual_duration_minutes), 0)::int,
		        COALESCE(SUM(actual_distance_meters), 0),
		        AVG(average_heart_rate)::float8,
		        AVG(rpe)::float8
		 FROM completed_workouts
		 WHERE user_id = $1 AND workout_date >= $2 AND workout_date <= $3
		 GROUP BY period, d
		 ORDER BY period ASC, d ASC`,
		userID, start.Time(), end.Time())
	if err != nil {
		return nil, fmt.Errorf("querying training summary: %w", err)
	}
	defer rows.Close()

	var result []TrainingSummaryPeriod
	for rows.Next() {
		var (
			periodTime time.Time
			ds         DisciplinePeriodSummary
		)
		if err := rows.Scan(&periodTime, &ds.Discipline, &ds.Count, &ds.DurationMinutes,
			&ds.DistanceMeters, &ds.AvgHeartRate, &ds.AvgRPE); err != nil {
			return nil, fmt.Errorf("scanning training summary: %w", err)
		}
		period := caldate.FromTime(periodTime)
		if n := len(result); n == 0 || result[n-1].Period != period {
			result = append(result, TrainingSummaryPeriod{Period: period})
		}
		last := &result[len(result)-1]
		last.Disciplines = append(last.Disciplines, ds)
	}
	return result, rows.Err()
}

// NormalizeBucket maps the accepted bucket spellings ("week", "1 week",
// "month", "1 month") to "week" or "month". Anything else is "month".
func NormalizeBucket(bucket string) string {
	switch bucket {
	case "week", "1 week":
		return "week"
	default:
		return "month"
	}
}

// periodExpr is the SQL expression for the first day of the bucket that
// holds workout_date. date_trunc weeks start on Monday, so weeks are
// computed from the day of week instead.
func periodExpr(bucket string) string {
	if NormalizeBucket(bucket) == "week" {
		return "(workout_date - EXTRACT(DOW FROM workout_date)::int)"
	}
	return "date_trunc('month', workout_date)::date"
}
