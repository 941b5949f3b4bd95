// Package views assembles the read-only screens: it loads planned and
// completed workouts concurrently, merges them and derives the figures each
// screen shows. A failed read is logged and replaced by empty data so a
// screen always renders.
package views

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tritrack/tritrack/internal/caldate"
	"github.com/tritrack/tritrack/internal/models"
	"github.com/tritrack/tritrack/internal/observability"
	"github.com/tritrack/tritrack/internal/storage"
)

// Source is the subset of storage the views read from.
type Source interface {
	ListPlannedWorkouts(ctx context.Context, userID uuid.UUID, f storage.DateFilter) ([]models.PlannedWorkout, error)
	ListCompletedWorkouts(ctx context.Context, userID uuid.UUID, f storage.DateFilter) ([]models.CompletedWorkout, error)
	GetPrimaryRace(ctx context.Context, userID uuid.UUID) (*models.Race, error)
	GetTrainingSummary(ctx context.Context, userID uuid.UUID, start, end caldate.Date, bucket string) ([]storage.TrainingSummaryPeriod, error)
}

// RecentLimit is how many completed workouts the dashboard lists.
const RecentLimit = 5

// Service builds views for one user at a time.
type Service struct {
	src    Source
	loc    *time.Location
	now    func() time.Time
	logger *slog.Logger
}

// NewService creates a view service. Calendar days are observed in loc.
func NewService(src Source, loc *time.Location, logger *slog.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{src: src, loc: loc, now: time.Now, logger: logger}
}

// Today returns the current calendar day in the service's location.
func (s *Service) Today() caldate.Date {
	return caldate.FromTime(s.now().In(s.loc))
}

// workouts holds the two result sets a view merges.
type workouts struct {
	planned   []models.PlannedWorkout
	completed []models.CompletedWorkout
}

// loadWorkouts reads planned and completed workouts in f concurrently and
// waits for both. Either side falls back to empty on failure.
func (s *Service) loadWorkouts(ctx context.Context, userID uuid.UUID, f storage.DateFilter) workouts {
	var w workouts
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		planned, err := s.src.ListPlannedWorkouts(gctx, userID, f)
		if err != nil {
			s.fallback("planned_workouts", userID, err)
			return nil
		}
		w.planned = planned
		return nil
	})
	g.Go(func() error {
		completed, err := s.src.ListCompletedWorkouts(gctx, userID, f)
		if err != nil {
			s.fallback("completed_workouts", userID, err)
			return nil
		}
		w.completed = completed
		return nil
	})
	_ = g.Wait()
	return w
}

func (s *Service) loadCompleted(ctx context.Context, userID uuid.UUID, f storage.DateFilter) []models.CompletedWorkout {
	completed, err := s.src.ListCompletedWorkouts(ctx, userID, f)
	if err != nil {
		s.fallback("completed_workouts", userID, err)
		return nil
	}
	return completed
}

func (s *Service) loadPrimaryRace(ctx context.Context, userID uuid.UUID) *models.Race {
	race, err := s.src.GetPrimaryRace(ctx, userID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.fallback("primary_race", userID, err)
		}
		return nil
	}
	return race
}

func (s *Service) fallback(source string, userID uuid.UUID, err error) {
	s.logger.Warn("view read failed, using empty data", "source", source, "user_id", userID, "error", err)
	observability.RecordViewFallback(source)
}
