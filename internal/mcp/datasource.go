package mcp

import (
	"context"

	"github.com/google/uuid"

	"github.com/tritrack/tritrack/internal/caldate"
	"github.com/tritrack/tritrack/internal/models"
	"github.com/tritrack/tritrack/internal/training"
	"github.com/tritrack/tritrack/internal/views"
)

// DataSource abstracts where the tools read from. Local (in-process view
// service) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	Week(ctx context.Context, userID uuid.UUID, offset int) (views.WeekView, error)
	Calendar(ctx context.Context, userID uuid.UUID, offset int) (views.CalendarView, error)
	Day(ctx context.Context, userID uuid.UUID, d caldate.Date) (views.DayView, error)
	Dashboard(ctx context.Context, userID uuid.UUID) (views.DashboardView, error)
	Stats(ctx context.Context, userID uuid.UUID) (training.Stats, error)
	Summary(ctx context.Context, userID uuid.UUID, bucket string, r caldate.Range) (views.SummaryView, error)
	Countdown(ctx context.Context, userID uuid.UUID) (*training.RaceCountdown, error)
	Recent(ctx context.Context, userID uuid.UUID, limit int) ([]models.CompletedWorkout, error)
}

// Local serves tools from the in-process view service. Views never fail,
// so every error is nil.
type Local struct {
	svc *views.Service
}

// Compile-time check: Local satisfies DataSource.
var _ DataSource = (*Local)(nil)

// NewLocal wraps a view service.
func NewLocal(svc *views.Service) *Local {
	return &Local{svc: svc}
}

func (l *Local) Week(ctx context.Context, userID uuid.UUID, offset int) (views.WeekView, error) {
	return l.svc.Week(ctx, userID, offset), nil
}

func (l *Local) Calendar(ctx context.Context, userID uuid.UUID, offset int) (views.CalendarView, error) {
	return l.svc.Calendar(ctx, userID, offset), nil
}

func (l *Local) Day(ctx context.Context, userID uuid.UUID, d caldate.Date) (views.DayView, error) {
	if d.IsZero() {
		d = l.svc.Today()
	}
	return l.svc.Day(ctx, userID, d), nil
}

func (l *Local) Dashboard(ctx context.Context, userID uuid.UUID) (views.DashboardView, error) {
	return l.svc.Dashboard(ctx, userID), nil
}

func (l *Local) Stats(ctx context.Context, userID uuid.UUID) (training.Stats, error) {
	return l.svc.Stats(ctx, userID), nil
}

func (l *Local) Summary(ctx context.Context, userID uuid.UUID, bucket string, r caldate.Range) (views.SummaryView, error) {
	def := views.DefaultSummaryRange(bucket, l.svc.Today())
	if r.Start.IsZero() {
		r.Start = def.Start
	}
	if r.End.IsZero() {
		r.End = def.End
	}
	return l.svc.Summary(ctx, userID, bucket, r), nil
}

func (l *Local) Countdown(ctx context.Context, userID uuid.UUID) (*training.RaceCountdown, error) {
	return l.svc.Countdown(ctx, userID), nil
}

func (l *Local) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]models.CompletedWorkout, error) {
	return l.svc.Recent(ctx, userID, limit), nil
}
