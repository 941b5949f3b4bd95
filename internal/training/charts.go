package training

import (
	"math"
	"strings"
)

// Chart colors per discipline.
const (
	ColorSwim = "#06b6d4"
	ColorBike = "#10b981"
	ColorRun  = "#f97316"

	// ColorTotal is used for bars that are not split by discipline.
	ColorTotal = "#3b82f6"
)

var seriesOrder = []struct {
	key, label, color string
}{
	{"swim", "Swim", ColorSwim},
	{"bike", "Bike", ColorBike},
	{"run", "Run", ColorRun},
}

// PieSlice is one labelled share of a pie chart.
type PieSlice struct {
	Label   string  `json:"label"`
	Value   int     `json:"value"`
	Color   string  `json:"color"`
	Percent float64 `json:"percent"`
}

// PieSeries turns discipline counts into swim, bike and run slices. Slices
// with no workouts are left out; percentages are of the slices kept.
func PieSeries(counts map[string]int) []PieSlice {
	var (
		slices []PieSlice
		total  int
	)
	for _, s := range seriesOrder {
		v := counts[s.key]
		if v <= 0 {
			continue
		}
		slices = append(slices, PieSlice{Label: s.label, Value: v, Color: s.color})
		total += v
	}
	for i := range slices {
		slices[i].Percent = math.Round(float64(slices[i].Value)/float64(total)*1000) / 10
	}
	return slices
}

// BarPoint is one input group of a planned-versus-completed bar chart.
type BarPoint struct {
	Label     string
	Planned   float64
	Completed float64
	Color     string
}

// Bar is a chart-ready bar group. Values are never negative.
type Bar struct {
	Label     string  `json:"label"`
	Planned   float64 `json:"planned"`
	Completed float64 `json:"completed"`
	Color     string  `json:"color"`
}

// BarSeries shapes points into bars, one per point, clamping negative values
// to zero.
func BarSeries(points []BarPoint) []Bar {
	bars := make([]Bar, len(points))
	for i, p := range points {
		bars[i] = Bar{
			Label:     p.Label,
			Planned:   math.Max(p.Planned, 0),
			Completed: math.Max(p.Completed, 0),
			Color:     p.Color,
		}
	}
	return bars
}

// DisciplineBars compares planned and completed minutes per endurance
// discipline over entries.
func DisciplineBars(entries []Entry) []Bar {
	planned := map[string]float64{}
	done := Summarize(entries).ByDiscipline
	for _, e := range entries {
		if e.PlannedDurationMinutes != nil {
			planned[strings.ToLower(e.Discipline)] += float64(*e.PlannedDurationMinutes)
		}
	}
	points := make([]BarPoint, 0, len(seriesOrder))
	for _, s := range seriesOrder {
		points = append(points, BarPoint{
			Label:     s.label,
			Planned:   planned[s.key],
			Completed: float64(done[s.key].DurationMinutes),
			Color:     s.color,
		})
	}
	return BarSeries(points)
}
