package views

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tritrack/tritrack/internal/caldate"
	"github.com/tritrack/tritrack/internal/models"
	"github.com/tritrack/tritrack/internal/storage"
	"github.com/tritrack/tritrack/internal/training"
)

// QuickStats are the headline numbers of the dashboard.
type QuickStats struct {
	ThisWeekWorkouts   int     `json:"this_week_workouts"`
	ThisWeekMinutes    int     `json:"this_week_minutes"`
	ThisWeekDistanceKm float64 `json:"this_week_distance_km"`
	ThisMonthWorkouts  int     `json:"this_month_workouts"`
	SwimCount          int     `json:"swim_count"`
	BikeCount          int     `json:"bike_count"`
	RunCount           int     `json:"run_count"`
}

// DashboardView is the landing screen.
type DashboardView struct {
	Today      caldate.Date              `json:"today"`
	QuickStats QuickStats                `json:"quick_stats"`
	Countdown  *training.RaceCountdown   `json:"countdown"`
	Recent     []models.CompletedWorkout `json:"recent_workouts"`
	WeekPie    []training.PieSlice       `json:"week_pie"`
	Week       WeekView                  `json:"week"`
}

// Dashboard builds the landing screen. Its reads run concurrently.
func (s *Service) Dashboard(ctx context.Context, userID uuid.UUID) DashboardView {
	today := s.Today()
	month := caldate.MonthRange(today, 0)

	var (
		view      = DashboardView{Today: today}
		monthDone []models.CompletedWorkout
		race      *models.Race
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		view.Week = s.Week(gctx, userID, 0)
		return nil
	})
	g.Go(func() error {
		monthDone = s.loadCompleted(gctx, userID, storage.RangeFilter(month))
		return nil
	})
	g.Go(func() error {
		view.Recent = s.loadCompleted(gctx, userID, storage.DateFilter{Limit: RecentLimit})
		return nil
	})
	g.Go(func() error {
		race = s.loadPrimaryRace(gctx, userID)
		return nil
	})
	_ = g.Wait()

	done, _ := training.Split(view.Week.Entries)
	counts := training.Counts(done)
	totals := training.Summarize(done)
	view.QuickStats = QuickStats{
		ThisWeekWorkouts:   totals.Completed,
		ThisWeekMinutes:    totals.DurationMinutes,
		ThisWeekDistanceKm: totals.DistanceKm,
		ThisMonthWorkouts:  len(monthDone),
		SwimCount:          counts[models.DisciplineSwim],
		BikeCount:          counts[models.DisciplineBike],
		RunCount:           counts[models.DisciplineRun],
	}
	view.WeekPie = training.PieSeries(counts)
	if view.WeekPie == nil {
		view.WeekPie = []training.PieSlice{}
	}
	if view.Recent == nil {
		view.Recent = []models.CompletedWorkout{}
	}
	if race != nil {
		cd := training.Countdown(*race, today)
		view.Countdown = &cd
	}
	return view
}

// Countdown returns the countdown to the primary race, or nil without one.
func (s *Service) Countdown(ctx context.Context, userID uuid.UUID) *training.RaceCountdown {
	race := s.loadPrimaryRace(ctx, userID)
	if race == nil {
		return nil
	}
	cd := training.Countdown(*race, s.Today())
	return &cd
}

// Recent lists the latest completed workouts, newest first.
func (s *Service) Recent(ctx context.Context, userID uuid.UUID, limit int) []models.CompletedWorkout {
	if limit <= 0 {
		limit = RecentLimit
	}
	recent := s.loadCompleted(ctx, userID, storage.DateFilter{Limit: limit})
	if recent == nil {
		return []models.CompletedWorkout{}
	}
	return recent
}

// Stats computes the all-time training statistics.
func (s *Service) Stats(ctx context.Context, userID uuid.UUID) training.Stats {
	return training.StatsOf(training.FromCompleted(s.loadCompleted(ctx, userID, storage.DateFilter{})))
}

// SummaryView is completed volume per week or month.
type SummaryView struct {
	Bucket  string                          `json:"bucket"`
	Range   caldate.Range                   `json:"range"`
	Periods []storage.TrainingSummaryPeriod `json:"periods"`
	Bars    []training.Bar                  `json:"bars"`
}

// Summary aggregates completed volume by bucket ("week" or "month") over
// r and pairs it with the planned minutes of the same periods.
func (s *Service) Summary(ctx context.Context, userID uuid.UUID, bucket string, r caldate.Range) SummaryView {
	bucket = storage.NormalizeBucket(bucket)

	var (
		periods []storage.TrainingSummaryPeriod
		planned []models.PlannedWorkout
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.src.GetTrainingSummary(gctx, userID, r.Start, r.End, bucket)
		if err != nil {
			s.fallback("training_summary", userID, err)
			return nil
		}
		periods = p
		return nil
	})
	g.Go(func() error {
		p, err := s.src.ListPlannedWorkouts(gctx, userID, storage.RangeFilter(r))
		if err != nil {
			s.fallback("planned_workouts", userID, err)
			return nil
		}
		planned = p
		return nil
	})
	_ = g.Wait()

	if periods == nil {
		periods = []storage.TrainingSummaryPeriod{}
	}
	return SummaryView{
		Bucket:  bucket,
		Range:   r,
		Periods: periods,
		Bars:    periodBars(bucket, periods, planned),
	}
}

// periodStart is the first day of the bucket holding d, matching the
// grouping the summary query uses.
func periodStart(bucket string, d caldate.Date) caldate.Date {
	if bucket == "week" {
		return caldate.WeekRange(d, 0).Start
	}
	return caldate.MonthRange(d, 0).Start
}

func periodBars(bucket string, periods []storage.TrainingSummaryPeriod, planned []models.PlannedWorkout) []training.Bar {
	plannedBy := make(map[caldate.Date]float64)
	for _, p := range planned {
		if p.PlannedDurationMinutes != nil {
			plannedBy[periodStart(bucket, p.WorkoutDate)] += float64(*p.PlannedDurationMinutes)
		}
	}

	seen := make(map[caldate.Date]bool, len(periods))
	var order []caldate.Date
	doneBy := make(map[caldate.Date]float64)
	for _, p := range periods {
		if !seen[p.Period] {
			seen[p.Period] = true
			order = append(order, p.Period)
		}
		for _, d := range p.Disciplines {
			doneBy[p.Period] += float64(d.DurationMinutes)
		}
	}
	for d := range plannedBy {
		if !seen[d] {
			seen[d] = true
			order = append(order, d)
		}
	}
	sortDates(order)

	points := make([]training.BarPoint, 0, len(order))
	for _, d := range order {
		points = append(points, training.BarPoint{
			Label:     periodLabel(bucket, d),
			Planned:   plannedBy[d],
			Completed: doneBy[d],
			Color:     training.ColorTotal,
		})
	}
	return training.BarSeries(points)
}

func periodLabel(bucket string, d caldate.Date) string {
	if bucket == "week" {
		return d.Time().Format("Jan 2")
	}
	return d.Time().Format("Jan 2006")
}

func sortDates(dates []caldate.Date) {
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
}

// DefaultSummaryRange is the span a summary covers when the caller gives no
// bounds: the last twelve weeks or the last six months, ending with the
// period holding today.
func DefaultSummaryRange(bucket string, today caldate.Date) caldate.Range {
	if storage.NormalizeBucket(bucket) == "week" {
		return caldate.Range{
			Start: caldate.WeekRange(today, -11).Start,
			End:   caldate.WeekRange(today, 0).End,
		}
	}
	return caldate.Range{
		Start: caldate.MonthRange(today, -5).Start,
		End:   caldate.MonthRange(today, 0).End,
	}
}
