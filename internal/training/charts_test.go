package training

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tritrack/tritrack/internal/models"
)

func TestPieSeries(t *testing.T) {
	slices := PieSeries(map[string]int{"swim": 1, "bike": 0, "run": 3, "strength": 5})

	require.Len(t, slices, 2)
	assert.Equal(t, PieSlice{Label: "Swim", Value: 1, Color: ColorSwim, Percent: 25}, slices[0])
	assert.Equal(t, PieSlice{Label: "Run", Value: 3, Color: ColorRun, Percent: 75}, slices[1])

	assert.Empty(t, PieSeries(nil))
}

// TestBarSeriesKeepsLengthAndClamps verifies one bar per point and no
// negative values.
func TestBarSeriesKeepsLengthAndClamps(t *testing.T) {
	bars := BarSeries([]BarPoint{
		{Label: "Mon", Planned: 60, Completed: -5, Color: ColorRun},
		{Label: "Tue", Planned: -1, Completed: 30},
		{Label: "Wed"},
	})
	require.Len(t, bars, 3)
	assert.Equal(t, 60.0, bars[0].Planned)
	assert.Equal(t, 0.0, bars[0].Completed)
	assert.Equal(t, 0.0, bars[1].Planned)
	assert.Equal(t, "Wed", bars[2].Label)
}

func TestDisciplineBars(t *testing.T) {
	p1 := uuid.New()
	entries := Merge(
		[]models.PlannedWorkout{planned(p1, "2024-03-11", "Bike", intp(90))},
		[]models.CompletedWorkout{completed(uuid.New(), idp(p1), "2024-03-11", "bike", 80)},
	)
	bars := DisciplineBars(entries)
	require.Len(t, bars, 3)
	assert.Equal(t, "Bike", bars[1].Label)
	assert.Equal(t, 90.0, bars[1].Planned)
	assert.Equal(t, 80.0, bars[1].Completed)
	assert.Equal(t, 0.0, bars[0].Planned)
}
