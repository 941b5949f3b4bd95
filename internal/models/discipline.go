package models

import "strings"

// Canonical discipline names as stored in planned_workouts and completed_workouts.
const (
	DisciplineSwim     = "swim"
	DisciplineBike     = "bike"
	DisciplineRun      = "run"
	DisciplineBrick    = "brick"
	DisciplineStrength = "strength"
	DisciplineRest     = "rest"
)

// Disciplines lists every discipline in display order.
var Disciplines = []string{
	DisciplineSwim, DisciplineBike, DisciplineRun,
	DisciplineBrick, DisciplineStrength, DisciplineRest,
}

// EnduranceDisciplines are the three disciplines broken out in statistics.
var EnduranceDisciplines = []string{DisciplineSwim, DisciplineBike, DisciplineRun}

// disciplineAliases maps lowercased names seen in watch and app exports to
// the canonical discipline.
var disciplineAliases = map[string]string{
	"swim":            DisciplineSwim,
	"swimming":        DisciplineSwim,
	"pool swim":       DisciplineSwim,
	"open water":      DisciplineSwim,
	"open water swim": DisciplineSwim,

	"bike":           DisciplineBike,
	"ride":           DisciplineBike,
	"cycling":        DisciplineBike,
	"virtual ride":   DisciplineBike,
	"indoor cycling": DisciplineBike,

	"run":           DisciplineRun,
	"running":       DisciplineRun,
	"trail run":     DisciplineRun,
	"treadmill":     DisciplineRun,
	"treadmill run": DisciplineRun,

	"brick": DisciplineBrick,

	"strength":                      DisciplineStrength,
	"strength training":             DisciplineStrength,
	"weight training":               DisciplineStrength,
	"traditional strength training": DisciplineStrength,

	"rest": DisciplineRest,
}

// NormalizeDiscipline maps a free-form activity name to its canonical
// discipline. Returns the canonical name and true if recognized, or the
// original string and false if unknown.
func NormalizeDiscipline(raw string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := disciplineAliases[lower]; ok {
		return canonical, true
	}
	return raw, false
}

// Feelings are the accepted values of completed_workouts.feeling.
var Feelings = []string{"great", "good", "okay", "tired", "exhausted"}

// distanceLabels are the display names of user_races.distance_type.
var distanceLabels = map[string]string{
	"sprint":  "Sprint Distance",
	"olympic": "Olympic Distance",
	"70.3":    "Half Ironman 70.3",
	"ironman": "Full Ironman",
	"custom":  "Custom Distance",
}

// DistanceLabel returns the display name for a race distance type, or the
// raw value when it is not one of the standard distances.
func DistanceLabel(distanceType string) string {
	if label, ok := distanceLabels[distanceType]; ok {
		return label
	}
	return distanceType
}
