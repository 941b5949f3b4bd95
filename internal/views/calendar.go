package views

import (
	"context"

	"github.com/google/uuid"

	"github.com/tritrack/tritrack/internal/caldate"
	"github.com/tritrack/tritrack/internal/storage"
	"github.com/tritrack/tritrack/internal/training"
)

// CalendarDay is one cell of the month grid. Cells outside the month have
// a zero date and no entries.
type CalendarDay struct {
	Date    caldate.Date     `json:"date"`
	InMonth bool             `json:"in_month"`
	IsToday bool             `json:"is_today"`
	Entries []training.Entry `json:"entries"`
}

// CalendarWeek is one row of the month grid with its weekly summary.
type CalendarWeek struct {
	Days    [7]CalendarDay  `json:"days"`
	Summary training.Totals `json:"summary"`
}

// CalendarView is a month grid with per-week summaries and month stats.
type CalendarView struct {
	Offset int             `json:"offset"`
	Title  string          `json:"title"`
	Range  caldate.Range   `json:"range"`
	Weeks  []CalendarWeek  `json:"weeks"`
	Stats  training.Totals `json:"stats"`
}

// Calendar builds the month offset months from the current one.
func (s *Service) Calendar(ctx context.Context, userID uuid.UUID, offset int) CalendarView {
	today := s.Today()
	r := caldate.MonthRange(today, offset)
	w := s.loadWorkouts(ctx, userID, storage.RangeFilter(r))

	entries := training.Merge(w.planned, w.completed)
	training.SortByDate(entries)

	byDay := make(map[caldate.Date][]training.Entry)
	for _, e := range entries {
		byDay[e.WorkoutDate] = append(byDay[e.WorkoutDate], e)
	}

	grid := caldate.MonthGrid(r.Start)
	weeks := make([]CalendarWeek, 0, len(grid))
	for _, row := range grid {
		var week CalendarWeek
		var anchor caldate.Date
		for i, d := range row {
			cell := CalendarDay{Date: d, Entries: []training.Entry{}}
			if !d.IsZero() {
				cell.InMonth = true
				cell.IsToday = d == today
				if es := byDay[d]; es != nil {
					cell.Entries = es
				}
				if anchor.IsZero() {
					anchor = d
				}
			}
			week.Days[i] = cell
		}
		week.Summary = training.Summarize(training.ForRange(entries, caldate.WeekRange(anchor, 0)))
		weeks = append(weeks, week)
	}

	return CalendarView{
		Offset: offset,
		Title:  r.Start.Time().Format("January 2006"),
		Range:  r,
		Weeks:  weeks,
		Stats:  training.Summarize(entries),
	}
}
