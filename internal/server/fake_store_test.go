package server

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tritrack/tritrack/internal/blob"
	"github.com/tritrack/tritrack/internal/caldate"
	"github.com/tritrack/tritrack/internal/events"
	"github.com/tritrack/tritrack/internal/models"
	"github.com/tritrack/tritrack/internal/storage"
)

// fakeStore keeps rows in memory and scopes every lookup by user id the way
// the SQL does.
type fakeStore struct {
	mu sync.Mutex

	pingErr error
	listErr error

	profiles  map[uuid.UUID]*models.Profile
	races     map[uuid.UUID]*models.Race
	goals     map[uuid.UUID]*models.RaceGoal
	metrics   map[uuid.UUID]*models.AthleteMetrics
	plans     []models.TrainingPlan
	planned   map[uuid.UUID]*models.PlannedWorkout
	completed map[uuid.UUID]*models.CompletedWorkout

	ensured []uuid.UUID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles:  map[uuid.UUID]*models.Profile{},
		races:     map[uuid.UUID]*models.Race{},
		goals:     map[uuid.UUID]*models.RaceGoal{},
		metrics:   map[uuid.UUID]*models.AthleteMetrics{},
		planned:   map[uuid.UUID]*models.PlannedWorkout{},
		completed: map[uuid.UUID]*models.CompletedWorkout{},
	}
}

func inRange(d caldate.Date, f storage.DateFilter) bool {
	if !f.Start.IsZero() && d.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && d.After(f.End) {
		return false
	}
	return true
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) EnsureProfile(_ context.Context, userID uuid.UUID, email string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensured = append(f.ensured, userID)
	p, ok := f.profiles[userID]
	if !ok {
		p = &models.Profile{ID: userID, ExperienceLevel: "beginner", UnitsPreference: "metric"}
		f.profiles[userID] = p
	}
	if email != "" {
		p.Email = email
	}
	out := *p
	return &out, nil
}

func (f *fakeStore) GetProfile(_ context.Context, userID uuid.UUID) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *p
	return &out, nil
}

func (f *fakeStore) GetProfileByEmail(_ context.Context, email string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if strings.EqualFold(p.Email, email) {
			out := *p
			return &out, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStore) UpdateProfile(_ context.Context, userID uuid.UUID, in models.ProfileInput) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	p.FullName, p.WeightKg, p.Age, p.Gender = in.FullName, in.WeightKg, in.Age, in.Gender
	if in.ExperienceLevel != "" {
		p.ExperienceLevel = in.ExperienceLevel
	}
	out := *p
	return &out, nil
}

func (f *fakeStore) SetAvatarURL(_ context.Context, userID uuid.UUID, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return storage.ErrNotFound
	}
	p.AvatarURL = &url
	return nil
}

func (f *fakeStore) ListRaces(_ context.Context, userID uuid.UUID) ([]models.Race, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Race
	for _, r := range f.races {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeStore) GetPrimaryRace(_ context.Context, userID uuid.UUID) (*models.Race, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.races {
		if r.UserID == userID && r.IsPrimary {
			out := *r
			return &out, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStore) GetRace(_ context.Context, userID, raceID uuid.UUID) (*models.Race, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.races[raceID]
	if !ok || r.UserID != userID {
		return nil, storage.ErrNotFound
	}
	out := *r
	return &out, nil
}

func (f *fakeStore) CreateRace(_ context.Context, userID uuid.UUID, in models.RaceInput) (*models.Race, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insertRace(userID, in), nil
}

func (f *fakeStore) insertRace(userID uuid.UUID, in models.RaceInput) *models.Race {
	if in.IsPrimary {
		for _, r := range f.races {
			if r.UserID == userID {
				r.IsPrimary = false
			}
		}
	}
	r := &models.Race{
		ID: uuid.New(), UserID: userID, RaceName: in.RaceName, RaceDate: in.RaceDate,
		DistanceType: in.DistanceType, GoalFinishTimeMinutes: in.GoalFinishTimeMinutes, IsPrimary: in.IsPrimary,
	}
	f.races[r.ID] = r
	out := *r
	return &out
}

func (f *fakeStore) UpdateRace(_ context.Context, userID, raceID uuid.UUID, in models.RaceInput) (*models.Race, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.races[raceID]
	if !ok || r.UserID != userID {
		return nil, storage.ErrNotFound
	}
	r.RaceName, r.RaceDate, r.DistanceType = in.RaceName, in.RaceDate, in.DistanceType
	out := *r
	return &out, nil
}

func (f *fakeStore) DeleteRace(_ context.Context, userID, raceID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.races[raceID]
	if !ok || r.UserID != userID {
		return storage.ErrNotFound
	}
	delete(f.races, raceID)
	return nil
}

func (f *fakeStore) GetRaceGoals(_ context.Context, userID, raceID uuid.UUID) (*models.RaceGoal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.races[raceID]
	g, found := f.goals[raceID]
	if !ok || r.UserID != userID || !found {
		return nil, storage.ErrNotFound
	}
	out := *g
	return &out, nil
}

func (f *fakeStore) UpsertRaceGoals(_ context.Context, userID, raceID uuid.UUID, in models.RaceGoal) (*models.RaceGoal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.races[raceID]
	if !ok || r.UserID != userID {
		return nil, storage.ErrNotFound
	}
	in.ID, in.RaceID = uuid.New(), raceID
	f.goals[raceID] = &in
	out := in
	return &out, nil
}

func (f *fakeStore) CompleteOnboarding(_ context.Context, userID uuid.UUID, in models.OnboardingInput,
	planFor func(models.Race) models.TrainingPlan) (*storage.Onboarding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	race := f.insertRace(userID, in.Race())
	p.ExperienceLevel = in.ExperienceLevel
	plan := planFor(*race)
	plan.ID = uuid.New()
	f.plans = append(f.plans, plan)
	return &storage.Onboarding{Race: *race, Plan: plan, Profile: *p}, nil
}

func (f *fakeStore) GetAthleteMetrics(_ context.Context, userID uuid.UUID) (*models.AthleteMetrics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.metrics[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *m
	return &out, nil
}

func (f *fakeStore) UpsertAthleteMetrics(_ context.Context, userID uuid.UUID, in models.AthleteMetrics) (*models.AthleteMetrics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	in.UserID = userID
	f.metrics[userID] = &in
	out := in
	return &out, nil
}

func (f *fakeStore) ListTrainingPlans(_ context.Context, userID uuid.UUID) ([]models.TrainingPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.TrainingPlan
	for _, p := range f.plans {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) ListPlannedWorkouts(_ context.Context, userID uuid.UUID, df storage.DateFilter) ([]models.PlannedWorkout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.PlannedWorkout
	for _, p := range f.planned {
		if p.UserID == userID && inRange(p.WorkoutDate, df) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeStore) GetPlannedWorkout(_ context.Context, userID, id uuid.UUID) (*models.PlannedWorkout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.planned[id]
	if !ok || p.UserID != userID {
		return nil, storage.ErrNotFound
	}
	out := *p
	return &out, nil
}

func (f *fakeStore) CreatePlannedWorkout(_ context.Context, userID uuid.UUID, in models.PlannedWorkoutInput) (*models.PlannedWorkout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := &models.PlannedWorkout{
		ID: uuid.New(), UserID: userID, PlanID: in.PlanID, WorkoutDate: in.WorkoutDate,
		Discipline: in.Discipline, PlannedDurationMinutes: in.PlannedDurationMinutes,
		PlannedDistanceMeters: in.PlannedDistanceMeters, Description: in.Description, CreatedAt: time.Now(),
	}
	f.planned[p.ID] = p
	out := *p
	return &out, nil
}

func (f *fakeStore) UpdatePlannedWorkout(_ context.Context, userID, id uuid.UUID, in models.PlannedWorkoutInput) (*models.PlannedWorkout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.planned[id]
	if !ok || p.UserID != userID {
		return nil, storage.ErrNotFound
	}
	p.WorkoutDate, p.Discipline, p.PlannedDurationMinutes = in.WorkoutDate, in.Discipline, in.PlannedDurationMinutes
	out := *p
	return &out, nil
}

func (f *fakeStore) DeletePlannedWorkout(_ context.Context, userID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.planned[id]
	if !ok || p.UserID != userID {
		return storage.ErrNotFound
	}
	delete(f.planned, id)
	return nil
}

func (f *fakeStore) ListCompletedWorkouts(_ context.Context, userID uuid.UUID, df storage.DateFilter) ([]models.CompletedWorkout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.CompletedWorkout
	for _, c := range f.completed {
		if c.UserID == userID && inRange(c.WorkoutDate, df) {
			out = append(out, *c)
		}
	}
	if df.Limit > 0 && len(out) > df.Limit {
		out = out[:df.Limit]
	}
	return out, nil
}

func (f *fakeStore) GetCompletedWorkout(_ context.Context, userID, id uuid.UUID) (*models.CompletedWorkout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.completed[id]
	if !ok || c.UserID != userID {
		return nil, storage.ErrNotFound
	}
	out := *c
	return &out, nil
}

func (f *fakeStore) CreateCompletedWorkout(_ context.Context, userID uuid.UUID, in models.CompletedWorkoutInput) (*models.CompletedWorkout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := &models.CompletedWorkout{
		ID: uuid.New(), UserID: userID, PlannedWorkoutID: in.PlannedWorkoutID, WorkoutDate: in.WorkoutDate,
		Discipline: in.Discipline, ActualDurationMinutes: in.ActualDurationMinutes,
		ActualDistanceMeters: in.ActualDistanceMeters, RPE: in.RPE, Feeling: in.Feeling,
	}
	f.completed[c.ID] = c
	out := *c
	return &out, nil
}

func (f *fakeStore) UpdateCompletedWorkout(_ context.Context, userID, id uuid.UUID, in models.CompletedWorkoutInput) (*models.CompletedWorkout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.completed[id]
	if !ok || c.UserID != userID {
		return nil, storage.ErrNotFound
	}
	c.PlannedWorkoutID, c.WorkoutDate, c.Discipline = in.PlannedWorkoutID, in.WorkoutDate, in.Discipline
	c.ActualDurationMinutes = in.ActualDurationMinutes
	out := *c
	return &out, nil
}

func (f *fakeStore) DeleteCompletedWorkout(_ context.Context, userID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.completed[id]
	if !ok || c.UserID != userID {
		return storage.ErrNotFound
	}
	delete(f.completed, id)
	return nil
}

func (f *fakeStore) GetTrainingSummary(context.Context, uuid.UUID, caldate.Date, caldate.Date, string) ([]storage.TrainingSummaryPeriod, error) {
	return nil, nil
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

// fakeAvatars presigns against a fixed host.
type fakeAvatars struct {
	err error
}

func (a *fakeAvatars) PresignAvatarUpload(_ context.Context, userID uuid.UUID, contentType string) (*blob.Upload, error) {
	if a.err != nil {
		return nil, a.err
	}
	key, err := blob.AvatarKey(userID, contentType)
	if err != nil {
		return nil, err
	}
	return &blob.Upload{URL: "https://s3.test/" + key + "?sig=put", Method: "PUT", ObjectKey: key, ContentType: contentType}, nil
}

func (a *fakeAvatars) PresignDownload(_ context.Context, key string) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	return "https://s3.test/" + key + "?sig=get", nil
}

var errStoreDown = errors.New("connection refused")
