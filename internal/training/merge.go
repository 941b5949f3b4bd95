// Package training merges planned and completed workouts into a single view
// and derives the totals, series and countdowns shown by every screen.
// Everything here is pure: no I/O, no clock, no shared state.
package training

import (
	"sort"

	"github.com/google/uuid"
	"github.com/tritrack/tritrack/internal/caldate"
	"github.com/tritrack/tritrack/internal/models"
)

// Entry is one logical workout in a merged view. A planned workout appears
// with its targets and, once done, the actuals of the completed workout that
// references it. An ad-hoc log appears with actuals only.
type Entry struct {
	ID                     uuid.UUID    `json:"id"`
	PlannedWorkoutID       *uuid.UUID   `json:"planned_workout_id"`
	CompletedWorkoutID     *uuid.UUID   `json:"completed_workout_id"`
	WorkoutDate            caldate.Date `json:"workout_date"`
	Discipline             string       `json:"discipline"`
	WorkoutType            *string      `json:"workout_type,omitempty"`
	IntensityZone          *string      `json:"intensity_zone,omitempty"`
	Description            *string      `json:"description,omitempty"`
	PlannedDurationMinutes *int         `json:"planned_duration_minutes"`
	PlannedDistanceMeters  *float64     `json:"planned_distance_meters"`
	ActualDurationMinutes  *int         `json:"actual_duration_minutes"`
	ActualDistanceMeters   *float64     `json:"actual_distance_meters"`
	AverageHeartRate       *int         `json:"average_heart_rate,omitempty"`
	RPE                    *int         `json:"rpe,omitempty"`
	Feeling                *string      `json:"feeling,omitempty"`
	Completed              bool         `json:"completed"`
}

// Planned reports whether the entry originates from a planned workout.
func (e Entry) Planned() bool { return e.PlannedWorkoutID != nil }

// Duration is the actual duration when completed, else the planned target.
func (e Entry) Duration() int {
	if e.Completed && e.ActualDurationMinutes != nil {
		return *e.ActualDurationMinutes
	}
	if e.PlannedDurationMinutes != nil {
		return *e.PlannedDurationMinutes
	}
	return 0
}

// Distance is the actual distance when completed, else the planned target.
func (e Entry) Distance() float64 {
	if e.Completed && e.ActualDistanceMeters != nil {
		return *e.ActualDistanceMeters
	}
	if e.PlannedDistanceMeters != nil {
		return *e.PlannedDistanceMeters
	}
	return 0
}

// Merge joins planned and completed workouts. It emits one entry per planned
// workout, in input order, carrying the actuals of the first completed
// workout that references it. Every completed workout not consumed that way
// (no reference, a reference outside planned, or a second reference to an
// already matched plan) follows as a standalone entry in input order.
func Merge(planned []models.PlannedWorkout, completed []models.CompletedWorkout) []Entry {
	entries := make([]Entry, 0, len(planned)+len(completed))

	byPlan := make(map[uuid.UUID][]int, len(completed))
	for i, c := range completed {
		if c.PlannedWorkoutID != nil {
			byPlan[*c.PlannedWorkoutID] = append(byPlan[*c.PlannedWorkoutID], i)
		}
	}
	consumed := make([]bool, len(completed))

	for _, p := range planned {
		e := fromPlanned(p)
		if idx := byPlan[p.ID]; len(idx) > 0 {
			i := idx[0]
			byPlan[p.ID] = idx[1:]
			consumed[i] = true
			applyActuals(&e, completed[i])
		}
		entries = append(entries, e)
	}

	for i, c := range completed {
		if consumed[i] {
			continue
		}
		e := Entry{
			ID:          c.ID,
			WorkoutDate: c.WorkoutDate,
			Discipline:  c.Discipline,
		}
		applyActuals(&e, c)
		entries = append(entries, e)
	}
	return entries
}

// FromCompleted wraps completed workouts as standalone entries, for views
// that never load the plan.
func FromCompleted(completed []models.CompletedWorkout) []Entry {
	return Merge(nil, completed)
}

func fromPlanned(p models.PlannedWorkout) Entry {
	id := p.ID
	return Entry{
		ID:                     p.ID,
		PlannedWorkoutID:       &id,
		WorkoutDate:            p.WorkoutDate,
		Discipline:             p.Discipline,
		WorkoutType:            p.WorkoutType,
		IntensityZone:          p.IntensityZone,
		Description:            p.Description,
		PlannedDurationMinutes: p.PlannedDurationMinutes,
		PlannedDistanceMeters:  p.PlannedDistanceMeters,
	}
}

func applyActuals(e *Entry, c models.CompletedWorkout) {
	id := c.ID
	dur := c.ActualDurationMinutes
	e.CompletedWorkoutID = &id
	e.ActualDurationMinutes = &dur
	e.ActualDistanceMeters = c.ActualDistanceMeters
	e.AverageHeartRate = c.AverageHeartRate
	e.RPE = c.RPE
	e.Feeling = c.Feeling
	e.Completed = true
}

// SortByDate orders entries by workout date, oldest first. Entries on the
// same day keep their merge order.
func SortByDate(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].WorkoutDate.Before(entries[j].WorkoutDate)
	})
}

// ForDate returns the entries on day d.
func ForDate(entries []Entry, d caldate.Date) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.WorkoutDate == d {
			out = append(out, e)
		}
	}
	return out
}

// ForRange returns the entries whose date falls within r.
func ForRange(entries []Entry, r caldate.Range) []Entry {
	var out []Entry
	for _, e := range entries {
		if r.Contains(e.WorkoutDate) {
			out = append(out, e)
		}
	}
	return out
}

// Split separates completed entries from those still only planned.
func Split(entries []Entry) (done, pending []Entry) {
	for _, e := range entries {
		if e.Completed {
			done = append(done, e)
		} else {
			pending = append(pending, e)
		}
	}
	return done, pending
}

// DayBucket groups the entries of one calendar day.
type DayBucket struct {
	Date    caldate.Date `json:"date"`
	Entries []Entry      `json:"entries"`
}

// BucketByDay returns one bucket per day of r, in order, each holding the
// entries dated that day. Days without entries get an empty slice.
func BucketByDay(entries []Entry, r caldate.Range) []DayBucket {
	days := r.Days()
	buckets := make([]DayBucket, len(days))
	index := make(map[caldate.Date]int, len(days))
	for i, d := range days {
		buckets[i] = DayBucket{Date: d, Entries: []Entry{}}
		index[d] = i
	}
	for _, e := range entries {
		if i, ok := index[e.WorkoutDate]; ok {
			buckets[i].Entries = append(buckets[i].Entries, e)
		}
	}
	return buckets
}
