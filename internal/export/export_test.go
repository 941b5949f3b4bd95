package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tritrack/tritrack/internal/caldate"
	"github.com/tritrack/tritrack/internal/models"
	"github.com/tritrack/tritrack/internal/training"
)

func sampleEntries() []training.Entry {
	p := models.PlannedWorkout{ID: uuid.New(), WorkoutDate: caldate.MustParse("2024-03-12"), Discipline: "swim"}
	dur := 45
	p.PlannedDurationMinutes = &dur
	dist := 1500.0
	feeling := "good"
	c := models.CompletedWorkout{
		ID: uuid.New(), WorkoutDate: caldate.MustParse("2024-03-13"), Discipline: "run",
		ActualDurationMinutes: 50, ActualDistanceMeters: &dist, Feeling: &feeling,
	}
	return training.Merge([]models.PlannedWorkout{p}, []models.CompletedWorkout{c})
}

func TestToCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ToCSV(&buf, sampleEntries()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, Header, records[0])
	assert.Equal(t, []string{"2024-03-12", "swim", "planned", "45", "", "", "", "", "", "", ""}, records[1])
	assert.Equal(t, []string{"2024-03-13", "run", "completed", "", "", "50", "1500", "", "", "good", ""}, records[2])
}

func TestToCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ToCSV(&buf, nil))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestToJSON(t *testing.T) {
	var buf bytes.Buffer
	r := caldate.Range{Start: caldate.MustParse("2024-03-10"), End: caldate.MustParse("2024-03-16")}
	now := time.Date(2024, 3, 16, 8, 0, 0, 0, time.UTC)
	require.NoError(t, ToJSON(&buf, r, sampleEntries(), now))

	var doc struct {
		ExportedAt string `json:"exported_at"`
		Count      int    `json:"count"`
		Range      struct {
			Start string `json:"start"`
		} `json:"range"`
		Totals struct {
			DurationMinutes int `json:"duration_minutes"`
		} `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "2024-03-16T08:00:00Z", doc.ExportedAt)
	assert.Equal(t, 2, doc.Count)
	assert.Equal(t, "2024-03-10", doc.Range.Start)
	assert.Equal(t, 50, doc.Totals.DurationMinutes)
}
