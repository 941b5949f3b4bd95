package caldate

import "time"

// Range is an inclusive span of calendar days.
type Range struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// Contains reports whether d falls within r, bounds included.
func (r Range) Contains(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Days lists every day of r in order.
func (r Range) Days() []Date {
	n := r.Start.DaysUntil(r.End) + 1
	if n <= 0 {
		return nil
	}
	days := make([]Date, 0, n)
	for i := 0; i < n; i++ {
		days = append(days, r.Start.AddDays(i))
	}
	return days
}

// WeekRange returns the Sunday-to-Saturday week containing ref, shifted by
// offset weeks. Offset 0 always contains ref.
func WeekRange(ref Date, offset int) Range {
	start := ref.AddDays(-int(ref.Weekday()) + offset*7)
	return Range{Start: start, End: start.AddDays(6)}
}

// MonthRange returns the first and last day of the month offset months away
// from ref's month.
func MonthRange(ref Date, offset int) Range {
	first := New(ref.Year, ref.Month+time.Month(offset), 1)
	last := New(first.Year, first.Month+1, 0)
	return Range{Start: first, End: last}
}

// MonthGrid lays out the month containing ref as Sunday-first calendar rows.
// Cells before the first and after the last day of the month are zero Dates.
func MonthGrid(ref Date) [][7]Date {
	month := MonthRange(ref, 0)
	var (
		rows [][7]Date
		row  [7]Date
	)
	col := int(month.Start.Weekday())
	for _, d := range month.Days() {
		row[col] = d
		col++
		if col == 7 {
			rows = append(rows, row)
			row = [7]Date{}
			col = 0
		}
	}
	if col > 0 {
		rows = append(rows, row)
	}
	return rows
}

// WeekLabel names the week at offset from ref: relative names for the
// current and adjacent weeks, otherwise the span, e.g. "Mar 2 - Mar 8".
func WeekLabel(ref Date, offset int) string {
	switch offset {
	case 0:
		return "This Week"
	case 1:
		return "Next Week"
	case -1:
		return "Last Week"
	}
	r := WeekRange(ref, offset)
	return r.Start.Time().Format("Jan 2") + " - " + r.End.Time().Format("Jan 2")
}
