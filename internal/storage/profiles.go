package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tritrack/tritrack/internal/models"
)

const profileColumns = `id, email, full_name, avatar_url, weight_kg, age, gender,
	experience_level, units_preference, created_at, updated_at`

func scanProfile(row interface{ Scan(dest ...any) error }) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.ID, &p.Email, &p.FullName, &p.AvatarURL, &p.WeightKg, &p.Age, &p.Gender,
		&p.ExperienceLevel, &p.UnitsPreference, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// EnsureProfile creates the profile row for an authenticated user on first
// sight and refreshes the email on later calls.
func (db *DB) EnsureProfile(ctx context.Context, userID uuid.UUID, email string) (*models.Profile, error) {
	p, err := scanProfile(db.Pool.QueryRow(ctx, `
		INSERT INTO profiles (id, email)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE
			SET email = COALESCE(NULLIF($2, ''), profiles.email)
		RETURNING `+profileColumns,
		userID, email))
	if err != nil {
		return nil, fmt.Errorf("ensuring profile: %w", err)
	}
	return p, nil
}

// GetProfile returns the profile of userID.
func (db *DB) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	p, err := scanProfile(db.Pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, userID))
	if err != nil {
		return nil, wrapNoRows(err, "querying profile")
	}
	return p, nil
}

// GetProfileByEmail looks a profile up by login email.
func (db *DB) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	p, err := scanProfile(db.Pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE lower(email) = lower($1)`, email))
	if err != nil {
		return nil, wrapNoRows(err, "querying profile by email")
	}
	return p, nil
}

// UpdateProfile overwrites the editable profile fields. Empty enum fields
// keep their stored value.
func (db *DB) UpdateProfile(ctx context.Context, userID uuid.UUID, in models.ProfileInput) (*models.Profile, error) {
	p, err := scanProfile(db.Pool.QueryRow(ctx, `
		UPDATE profiles SET
			full_name = $2, avatar_url = COALESCE($3, avatar_url), weight_kg = $4, age = $5, gender = $6,
			experience_level = COALESCE(NULLIF($7, ''), experience_level),
			units_preference = COALESCE(NULLIF($8, ''), units_preference),
			updated_at = $9
		WHERE id = $1
		RETURNING `+profileColumns,
		userID, in.FullName, in.AvatarURL, in.WeightKg, in.Age, in.Gender,
		in.ExperienceLevel, in.UnitsPreference, time.Now()))
	if err != nil {
		return nil, wrapNoRows(err, "updating profile")
	}
	return p, nil
}

// SetAvatarURL records the object URL of an uploaded avatar.
func (db *DB) SetAvatarURL(ctx context.Context, userID uuid.UUID, url string) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE profiles SET avatar_url = $2, updated_at = now() WHERE id = $1`, userID, url)
	if err != nil {
		return fmt.Errorf("updating avatar: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func setExperienceLevel(ctx context.Context, q querier, userID uuid.UUID, level string) error {
	tag, err := q.Exec(ctx,
		`UPDATE profiles SET experience_level = $2, updated_at = now() WHERE id = $1`, userID, level)
	if err != nil {
		return fmt.Errorf("updating experience level: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
