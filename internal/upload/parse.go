package upload

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/tritrack/tritrack/internal/caldate"
	"github.com/tritrack/tritrack/internal/models"
)

// columnAliases maps accepted header names to the canonical column. The
// canonical names match the server's CSV export, so an export can be fed
// straight back in.
var columnAliases = map[string]string{
	"date":                    "date",
	"workout_date":            "date",
	"discipline":              "discipline",
	"sport":                   "discipline",
	"activity":                "discipline",
	"status":                  "status",
	"actual_duration_minutes": "duration",
	"duration_minutes":        "duration",
	"duration":                "duration",
	"actual_distance_meters":  "distance",
	"distance_meters":         "distance",
	"average_heart_rate":      "heart_rate",
	"avg_hr":                  "heart_rate",
	"average_power_watts":     "power",
	"elevation_gain_meters":   "elevation",
	"rpe":                     "rpe",
	"feeling":                 "feeling",
	"workout_notes":           "notes",
	"notes":                   "notes",
}

// RowError describes a data row that could not be turned into a workout.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Row is a completed workout read from one CSV line.
type Row struct {
	Line    int
	Workout models.CompletedWorkoutInput
}

// Key identifies the row's content, independent of its line number, so an
// edited or reordered file still recognizes rows it already sent.
func (r Row) Key() string {
	b, _ := json.Marshal(r.Workout)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// ParseResult is the outcome of reading one CSV file.
type ParseResult struct {
	Rows []Row
	// Planned counts rows whose status column says the workout was never done.
	Planned int
	Invalid []RowError
}

// ParseCSV reads completed workouts from r. The first row is the header;
// date, discipline and duration columns are required. Rows with a status
// other than "completed" are counted and skipped, and malformed rows are
// collected in Invalid without aborting the file.
func ParseCSV(r io.Reader) (*ParseResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty csv")
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := map[string]int{}
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if canonical, ok := columnAliases[name]; ok {
			if _, dup := cols[canonical]; !dup {
				cols[canonical] = i
			}
		}
	}
	for _, required := range []string{"date", "discipline", "duration"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing %s column", required)
		}
	}

	res := &ParseResult{}
	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return res, fmt.Errorf("reading line %d: %w", line, err)
		}
		row := csvRow{cols: cols, record: record}

		if status := strings.ToLower(row.get("status")); status != "" && status != "completed" {
			res.Planned++
			continue
		}

		w, err := row.workout()
		if err != nil {
			res.Invalid = append(res.Invalid, RowError{Line: line, Err: err})
			continue
		}
		res.Rows = append(res.Rows, Row{Line: line, Workout: w})
	}
	return res, nil
}

type csvRow struct {
	cols   map[string]int
	record []string
}

func (r csvRow) get(col string) string {
	i, ok := r.cols[col]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

func (r csvRow) workout() (models.CompletedWorkoutInput, error) {
	var w models.CompletedWorkoutInput

	date, err := caldate.Parse(r.get("date"))
	if err != nil {
		return w, err
	}
	w.WorkoutDate = date

	raw := r.get("discipline")
	discipline, ok := models.NormalizeDiscipline(raw)
	if !ok {
		return w, fmt.Errorf("unknown discipline %q", raw)
	}
	w.Discipline = discipline

	duration, err := strconv.Atoi(r.get("duration"))
	if err != nil {
		return w, fmt.Errorf("duration: %w", err)
	}
	if duration < 0 {
		return w, fmt.Errorf("duration must be >= 0, got %d", duration)
	}
	w.ActualDurationMinutes = duration

	if w.ActualDistanceMeters, err = r.optFloat("distance"); err != nil {
		return w, err
	}
	if w.ElevationGainMeters, err = r.optFloat("elevation"); err != nil {
		return w, err
	}
	if w.AverageHeartRate, err = r.optInt("heart_rate"); err != nil {
		return w, err
	}
	if w.AveragePowerWatts, err = r.optInt("power"); err != nil {
		return w, err
	}
	if w.RPE, err = r.optInt("rpe"); err != nil {
		return w, err
	}
	if w.RPE != nil && (*w.RPE < 1 || *w.RPE > 10) {
		return w, fmt.Errorf("rpe must be between 1 and 10, got %d", *w.RPE)
	}

	if feeling := strings.ToLower(r.get("feeling")); feeling != "" {
		if !slices.Contains(models.Feelings, feeling) {
			return w, fmt.Errorf("unknown feeling %q", feeling)
		}
		w.Feeling = &feeling
	}
	if notes := r.get("notes"); notes != "" {
		w.WorkoutNotes = &notes
	}
	return w, nil
}

func (r csvRow) optInt(col string) (*int, error) {
	s := r.get(col)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", col, err)
	}
	return &v, nil
}

func (r csvRow) optFloat(col string) (*float64, error) {
	s := r.get(col)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", col, err)
	}
	return &v, nil
}
