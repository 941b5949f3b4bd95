package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tritrack/tritrack/internal/caldate"
	"github.com/tritrack/tritrack/internal/models"
)

const raceColumns = `id, user_id, race_name, race_date, race_location, distance_type,
	goal_finish_time_minutes, registration_status, course_notes, is_primary, created_at, updated_at`

func scanRace(row interface{ Scan(dest ...any) error }) (*models.Race, error) {
	var (
		r        models.Race
		raceDate time.Time
	)
	err := row.Scan(&r.ID, &r.UserID, &r.RaceName, &raceDate, &r.RaceLocation, &r.DistanceType,
		&r.GoalFinishTimeMinutes, &r.RegistrationStatus, &r.CourseNotes, &r.IsPrimary,
		&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	r.RaceDate = caldate.FromTime(raceDate)
	return &r, nil
}

// ListRaces returns all races of userID, soonest first.
func (db *DB) ListRaces(ctx context.Context, userID uuid.UUID) ([]models.Race, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+raceColumns+` FROM user_races WHERE user_id = $1 ORDER BY race_date ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying races: %w", err)
	}
	defer rows.Close()

	var result []models.Race
	for rows.Next() {
		r, err := scanRace(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning race: %w", err)
		}
		result = append(result, *r)
	}
	return result, rows.Err()
}

// GetPrimaryRace returns the race flagged as the countdown target.
func (db *DB) GetPrimaryRace(ctx context.Context, userID uuid.UUID) (*models.Race, error) {
	r, err := scanRace(db.Pool.QueryRow(ctx,
		`SELECT `+raceColumns+` FROM user_races WHERE user_id = $1 AND is_primary LIMIT 1`, userID))
	if err != nil {
		return nil, wrapNoRows(err, "querying primary race")
	}
	return r, nil
}

// GetRace returns one race of userID.
func (db *DB) GetRace(ctx context.Context, userID, raceID uuid.UUID) (*models.Race, error) {
	r, err := scanRace(db.Pool.QueryRow(ctx,
		`SELECT `+raceColumns+` FROM user_races WHERE id = $1 AND user_id = $2`, raceID, userID))
	if err != nil {
		return nil, wrapNoRows(err, "querying race")
	}
	return r, nil
}

// CreateRace inserts a race. A primary race takes the flag from any other.
func (db *DB) CreateRace(ctx context.Context, userID uuid.UUID, in models.RaceInput) (*models.Race, error) {
	var race *models.Race
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		race, err = insertRace(ctx, tx, userID, in)
		return err
	})
	return race, err
}

func insertRace(ctx context.Context, q querier, userID uuid.UUID, in models.RaceInput) (*models.Race, error) {
	if in.IsPrimary {
		if err := clearPrimary(ctx, q, userID, uuid.Nil); err != nil {
			return nil, err
		}
	}
	r, err := scanRace(q.QueryRow(ctx, `
		INSERT INTO user_races (user_id, race_name, race_date, race_location, distance_type,
			goal_finish_time_minutes, registration_status, course_notes, is_primary)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING `+raceColumns,
		userID, in.RaceName, in.RaceDate.Time(), in.RaceLocation, in.DistanceType,
		in.GoalFinishTimeMinutes, in.RegistrationStatus, in.CourseNotes, in.IsPrimary))
	if err != nil {
		return nil, fmt.Errorf("inserting race: %w", err)
	}
	return r, nil
}

// UpdateRace overwrites a race of userID.
func (db *DB) UpdateRace(ctx context.Context, userID, raceID uuid.UUID, in models.RaceInput) (*models.Race, error) {
	var race *models.Race
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		if in.IsPrimary {
			if err := clearPrimary(ctx, tx, userID, raceID); err != nil {
				return err
			}
		}
		var err error
		race, err = scanRace(tx.QueryRow(ctx, `
			UPDATE user_races SET
				race_name = $3, race_date = $4, race_location = $5, distance_type = $6,
				goal_finish_time_minutes = $7, registration_status = $8, course_notes = $9,
				is_primary = $10, updated_at = now()
			WHERE id = $1 AND user_id = $2
			RETURNING `+raceColumns,
			raceID, userID, in.RaceName, in.RaceDate.Time(), in.RaceLocation, in.DistanceType,
			in.GoalFinishTimeMinutes, in.RegistrationStatus, in.CourseNotes, in.IsPrimary))
		if err != nil {
			return wrapNoRows(err, "updating race")
		}
		return nil
	})
	return race, err
}

// DeleteRace removes a race of userID along with its goals.
func (db *DB) DeleteRace(ctx context.Context, userID, raceID uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM user_races WHERE id = $1 AND user_id = $2`, raceID, userID)
	if err != nil {
		return fmt.Errorf("deleting race: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func clearPrimary(ctx context.Context, q querier, userID, except uuid.UUID) error {
	_, err := q.Exec(ctx,
		`UPDATE user_races SET is_primary = false, updated_at = now()
		 WHERE user_id = $1 AND is_primary AND id <> $2`, userID, except)
	if err != nil {
		return fmt.Errorf("clearing primary race: %w", err)
	}
	return nil
}

const raceGoalColumns = `g.id, g.race_id, g.swim_goal_minutes, g.t1_goal_minutes, g.bike_goal_minutes,
	g.t2_goal_minutes, g.run_goal_minutes, g.nutrition_strategy, g.pacing_strategy, g.updated_at`

func scanRaceGoal(row interface{ Scan(dest ...any) error }) (*models.RaceGoal, error) {
	var g models.RaceGoal
	err := row.Scan(&g.ID, &g.RaceID, &g.SwimGoalMinutes, &g.T1GoalMinutes, &g.BikeGoalMinutes,
		&g.T2GoalMinutes, &g.RunGoalMinutes, &g.NutritionStrategy, &g.PacingStrategy, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// GetRaceGoals returns the split goals of a race owned by userID.
func (db *DB) GetRaceGoals(ctx context.Context, userID, raceID uuid.UUID) (*models.RaceGoal, error) {
	g, err := scanRaceGoal(db.Pool.QueryRow(ctx,
		`SELECT `+raceGoalColumns+`
		 FROM race_goals g JOIN user_races r ON r.id = g.race_id
		 WHERE g.race_id = $1 AND r.user_id = $2`, raceID, userID))
	if err != nil {
		return nil, wrapNoRows(err, "querying race goals")
	}
	return g, nil
}

// UpsertRaceGoals stores the split goals of a race owned by userID.
func (db *DB) UpsertRaceGoals(ctx context.Context, userID, raceID uuid.UUID, in models.RaceGoal) (*models.RaceGoal, error) {
	g, err := scanRaceGoal(db.Pool.QueryRow(ctx, `
		INSERT INTO race_goals AS g (race_id, swim_goal_minutes, t1_goal_minutes, bike_goal_minutes,
			t2_goal_minutes, run_goal_minutes, nutrition_strategy, pacing_strategy)
		SELECT r.id, $3, $4, $5, $6, $7, $8, $9
		FROM user_races r WHERE r.id = $1 AND r.user_id = $2
		ON CONFLICT (race_id) DO UPDATE SET
			swim_goal_minutes = EXCLUDED.swim_goal_minutes,
			t1_goal_minutes = EXCLUDED.t1_goal_minutes,
			bike_goal_minutes = EXCLUDED.bike_goal_minutes,
			t2_goal_minutes = EXCLUDED.t2_goal_minutes,
			run_goal_minutes = EXCLUDED.run_goal_minutes,
			nutrition_strategy = EXCLUDED.nutrition_strategy,
			pacing_strategy = EXCLUDED.pacing_strategy,
			updated_at = now()
		RETURNING `+raceGoalColumns,
		raceID, userID, in.SwimGoalMinutes, in.T1GoalMinutes, in.BikeGoalMinutes,
		in.T2GoalMinutes, in.RunGoalMinutes, in.NutritionStrategy, in.PacingStrategy))
	if err != nil {
		return nil, wrapNoRows(err, "upserting race goals")
	}
	return g, nil
}

// Onboarding is everything the race setup wizard writes.
type Onboarding struct {
	Race    models.Race         `json:"race"`
	Plan    models.TrainingPlan `json:"plan"`
	Profile models.Profile      `json:"profile"`
}

// CompleteOnboarding creates the primary race, records the experience level,
// makes sure an athlete metrics row exists and creates the training plan
// that planFor derives from the new race, all in one transaction.
func (db *DB) CompleteOnboarding(ctx context.Context, userID uuid.UUID, in models.OnboardingInput,
	planFor func(models.Race) models.TrainingPlan) (*Onboarding, error) {
	var out Onboarding
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		race, err := insertRace(ctx, tx, userID, in.Race())
		if err != nil {
			return err
		}
		if err := setExperienceLevel(ctx, tx, userID, in.ExperienceLevel); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO athlete_metrics (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID); err != nil {
			return fmt.Errorf("inserting athlete metrics: %w", err)
		}
		plan, err := insertTrainingPlan(ctx, tx, planFor(*race))
		if err != nil {
			return err
		}
		profile, err := scanProfile(tx.QueryRow(ctx,
			`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, userID))
		if err != nil {
			return wrapNoRows(err, "querying profile")
		}
		out = Onboarding{Race: *race, Plan: *plan, Profile: *profile}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
