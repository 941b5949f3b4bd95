package training

import (
	"math"
	"strings"

	"github.com/tritrack/tritrack/internal/caldate"
	"github.com/tritrack/tritrack/internal/models"
)

// DisciplineTotals is the completed volume of one discipline.
type DisciplineTotals struct {
	Count           int     `json:"count"`
	DurationMinutes int     `json:"duration_minutes"`
	DistanceMeters  float64 `json:"distance_meters"`
	DistanceKm      float64 `json:"distance_km"`
}

// Totals summarizes a set of entries. Duration and distance count completed
// entries only. ByDiscipline always holds swim, bike and run; other
// disciplines only contribute to the overall figures.
type Totals struct {
	Workouts               int                         `json:"workouts"`
	Completed              int                         `json:"completed"`
	PlannedOnly            int                         `json:"planned_only"`
	DurationMinutes        int                         `json:"duration_minutes"`
	DistanceMeters         float64                     `json:"distance_meters"`
	DistanceKm             float64                     `json:"distance_km"`
	PlannedDurationMinutes int                         `json:"planned_duration_minutes"`
	ByDiscipline           map[string]DisciplineTotals `json:"by_discipline"`
}

// Summarize folds entries into Totals. Disciplines match case-insensitively.
func Summarize(entries []Entry) Totals {
	t := Totals{ByDiscipline: make(map[string]DisciplineTotals, len(models.EnduranceDisciplines))}
	for _, d := range models.EnduranceDisciplines {
		t.ByDiscipline[d] = DisciplineTotals{}
	}

	for _, e := range entries {
		t.Workouts++
		if e.PlannedDurationMinutes != nil {
			t.PlannedDurationMinutes += *e.PlannedDurationMinutes
		}
		if !e.Completed {
			t.PlannedOnly++
			continue
		}
		t.Completed++

		var dur int
		var dist float64
		if e.ActualDurationMinutes != nil {
			dur = *e.ActualDurationMinutes
		}
		if e.ActualDistanceMeters != nil {
			dist = *e.ActualDistanceMeters
		}
		t.DurationMinutes += dur
		t.DistanceMeters += dist

		key := strings.ToLower(e.Discipline)
		if dt, ok := t.ByDiscipline[key]; ok {
			dt.Count++
			dt.DurationMinutes += dur
			dt.DistanceMeters += dist
			t.ByDiscipline[key] = dt
		}
	}

	t.DistanceKm = Kilometers(t.DistanceMeters)
	for k, dt := range t.ByDiscipline {
		dt.DistanceKm = Kilometers(dt.DistanceMeters)
		t.ByDiscipline[k] = dt
	}
	return t
}

// Kilometers converts meters to kilometers rounded to one decimal.
func Kilometers(meters float64) float64 {
	return math.Round(meters/1000*10) / 10
}

// Counts tallies completed entries per lowercased discipline.
func Counts(entries []Entry) map[string]int {
	counts := make(map[string]int)
	for _, e := range entries {
		if e.Completed {
			counts[strings.ToLower(e.Discipline)]++
		}
	}
	return counts
}

// AveragePerWeek is the number of completed entries divided by the whole
// weeks between the earliest and latest of them, rounded up and at least one.
// The result is rounded to one decimal.
func AveragePerWeek(entries []Entry) float64 {
	var (
		n      int
		lo, hi caldate.Date
	)
	for _, e := range entries {
		if !e.Completed {
			continue
		}
		if n == 0 || e.WorkoutDate.Before(lo) {
			lo = e.WorkoutDate
		}
		if n == 0 || e.WorkoutDate.After(hi) {
			hi = e.WorkoutDate
		}
		n++
	}
	if n == 0 {
		return 0
	}
	weeks := (lo.DaysUntil(hi) + 6) / 7
	if weeks < 1 {
		weeks = 1
	}
	return math.Round(float64(n)/float64(weeks)*10) / 10
}

// Stats are the all-time figures of the training statistics panel.
type Stats struct {
	TotalWorkouts        int     `json:"total_workouts"`
	TotalDurationMinutes int     `json:"total_duration_minutes"`
	TotalDistanceKm      float64 `json:"total_distance_km"`
	AveragePerWeek       float64 `json:"average_per_week"`
	// ByDiscipline counts completed workouts per discipline.
	ByDiscipline map[string]int `json:"by_discipline"`
}

// StatsOf computes Stats over the completed entries.
func StatsOf(entries []Entry) Stats {
	t := Summarize(entries)
	return Stats{
		TotalWorkouts:        t.Completed,
		TotalDurationMinutes: t.DurationMinutes,
		TotalDistanceKm:      t.DistanceKm,
		AveragePerWeek:       AveragePerWeek(entries),
		ByDiscipline:         Counts(entries),
	}
}
