package views

import (
	"context"

	"github.com/google/uuid"

	"github.com/tritrack/tritrack/internal/caldate"
	"github.com/tritrack/tritrack/internal/storage"
	"github.com/tritrack/tritrack/internal/training"
)

// WeekView is the week overview: every workout of a Sunday-to-Saturday
// week, bucketed per day, with totals.
type WeekView struct {
	Offset  int                  `json:"offset"`
	Label   string               `json:"label"`
	Range   caldate.Range        `json:"range"`
	Today   caldate.Date         `json:"today"`
	Entries []training.Entry     `json:"entries"`
	Days    []training.DayBucket `json:"days"`
	Totals  training.Totals      `json:"totals"`
	Bars    []training.Bar       `json:"bars"`
}

// Week builds the overview of the week offset weeks from the current one.
func (s *Service) Week(ctx context.Context, userID uuid.UUID, offset int) WeekView {
	today := s.Today()
	r := caldate.WeekRange(today, offset)
	w := s.loadWorkouts(ctx, userID, storage.RangeFilter(r))

	entries := training.Merge(w.planned, w.completed)
	training.SortByDate(entries)

	return WeekView{
		Offset:  offset,
		Label:   caldate.WeekLabel(today, offset),
		Range:   r,
		Today:   today,
		Entries: nonNil(entries),
		Days:    training.BucketByDay(entries, r),
		Totals:  training.Summarize(entries),
		Bars:    training.DisciplineBars(entries),
	}
}

// DayView is the detail of one calendar day.
type DayView struct {
	Date      caldate.Date     `json:"date"`
	Completed []training.Entry `json:"completed"`
	Planned   []training.Entry `json:"planned"`
	Totals    training.Totals  `json:"totals"`
	Duration  string           `json:"duration"`
	Distance  string           `json:"distance"`
	// Remaining is the planned target still open for the day.
	Remaining         string `json:"remaining"`
	RemainingDistance string `json:"remaining_distance"`
	// PlannedCompleted counts completed entries that fulfilled a plan.
	PlannedCompleted int `json:"planned_completed"`
}

// Day builds the detail view of day d.
func (s *Service) Day(ctx context.Context, userID uuid.UUID, d caldate.Date) DayView {
	w := s.loadWorkouts(ctx, userID, storage.DateFilter{Start: d, End: d})
	entries := training.ForDate(training.Merge(w.planned, w.completed), d)
	done, pending := training.Split(entries)
	totals := training.Summarize(entries)

	var (
		remaining     int
		remainingDist float64
		fromPlan      int
	)
	for _, e := range pending {
		remaining += e.Duration()
		remainingDist += e.Distance()
	}
	for _, e := range done {
		if e.Planned() {
			fromPlan++
		}
	}

	return DayView{
		Date:      d,
		Completed: nonNil(done),
		Planned:   nonNil(pending),
		Totals:    totals,
		Duration:  training.FormatDuration(totals.DurationMinutes),
		Distance:  training.FormatDistance(totals.DistanceMeters),

		Remaining:         training.FormatDuration(remaining),
		RemainingDistance: training.FormatDistance(remainingDist),
		PlannedCompleted:  fromPlan,
	}
}

func nonNil(entries []training.Entry) []training.Entry {
	if entries == nil {
		return []training.Entry{}
	}
	return entries
}
