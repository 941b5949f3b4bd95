// Package export writes merged workout entries as CSV or JSON.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/tritrack/tritrack/internal/training"
)

// Header is the CSV column order. The import client reads the same layout.
var Header = []string{
	"date", "discipline", "status",
	"planned_duration_minutes", "planned_distance_meters",
	"actual_duration_minutes", "actual_distance_meters",
	"average_heart_rate", "rpe", "feeling", "description",
}

// ToCSV writes entries with a header row.
func ToCSV(w io.Writer, entries []training.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range entries {
		status := "planned"
		if e.Completed {
			status = "completed"
		}
		record := []string{
			e.WorkoutDate.String(),
			e.Discipline,
			status,
			intCell(e.PlannedDurationMinutes),
			floatCell(e.PlannedDistanceMeters),
			intCell(e.ActualDurationMinutes),
			floatCell(e.ActualDistanceMeters),
			intCell(e.AverageHeartRate),
			intCell(e.RPE),
			strCell(e.Feeling),
			strCell(e.Description),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func intCell(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func floatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func strCell(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
