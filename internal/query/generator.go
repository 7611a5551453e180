package query

import (
	"fmt"

	"twse-announcements/pkg/calendar"
)

// Bound selects which side of an open-ended range a single date limits.
type Bound int

const (
	Lower Bound = iota
	Upper
)

// RangeConditions returns the OR-able predicates covering [start, end] for
// ISO inputs: a range on each date field in the ISO, padded local and
// unpadded local spellings, plus one slash-date regex per field.
//
// The regex for a multi-day range only pins the start year and accepts any
// month and day, so it over-matches. Results must go through
// DateRange.Contains before they are returned.
func RangeConditions(start, end string) []Condition {
	conds := rangeOverDates(start, end)

	if localStart, ok := calendar.ToLocal(start); ok {
		if localEnd, ok := calendar.ToLocal(end); ok {
			conds = append(conds, rangeOverDates(localStart, localEnd)...)

			shortStart, okStart := calendar.ToLocalUnpadded(start)
			shortEnd, okEnd := calendar.ToLocalUnpadded(end)
			if okStart && okEnd {
				conds = append(conds, rangeOverDates(shortStart, shortEnd)...)
			}
		}
	}

	if pattern, ok := rangePattern(start, end); ok {
		conds = append(conds, regexOverDates(pattern)...)
	}
	return conds
}

// BoundConditions returns the predicates for an open range starting (Lower)
// or ending (Upper) at date.
func BoundConditions(date string, bound Bound) []Condition {
	op := OpGTE
	if bound == Upper {
		op = OpLTE
	}

	conds := boundOverDates(op, date)
	if local, ok := calendar.ToLocal(date); ok {
		conds = append(conds, boundOverDates(op, local)...)
	}
	if short, ok := calendar.ToLocalUnpadded(date); ok {
		conds = append(conds, boundOverDates(op, short)...)
	}
	if d, ok := calendar.ParseISO(date); ok {
		if local, ok := d.ToLocal(); ok {
			conds = append(conds, regexOverDates(DayPattern(local.Year, d.Year, d.Month, d.Day))...)
		}
	}
	return conds
}

// FallbackConditions is the plain ISO range used when nothing else could be
// generated.
func FallbackConditions(start, end string) []Condition {
	return rangeOverDates(start, end)
}

// DayPattern matches one day in slash notation with either the local or the
// Gregorian year and optionally zero-padded month and day.
func DayPattern(localYear, year, month, day int) string {
	return fmt.Sprintf(`^(%d|%d)/(0?%d|%d)/(0?%d|%d)$`, localYear, year, month, month, day, day)
}

// YearPattern matches any valid-looking month and day of the given year in
// slash notation.
func YearPattern(localYear, year int) string {
	return fmt.Sprintf(`^(%d|%d)/(0?[1-9]|1[0-2])/(0?[1-9]|[12][0-9]|3[01])$`, localYear, year)
}

func rangePattern(start, end string) (string, bool) {
	s, ok := calendar.ParseISO(start)
	if !ok {
		return "", false
	}
	e, ok := calendar.ParseISO(end)
	if !ok {
		return "", false
	}
	localStart, ok := s.ToLocal()
	if !ok {
		return "", false
	}
	if _, ok := e.ToLocal(); !ok {
		return "", false
	}
	if start == end {
		return DayPattern(localStart.Year, s.Year, s.Month, s.Day), true
	}
	return YearPattern(localStart.Year, s.Year), true
}

func rangeOverDates(from, to string) []Condition {
	conds := make([]Condition, 0, len(DateFields))
	for _, f := range DateFields {
		conds = append(conds, Condition{Field: f, Op: OpRange, Value: from, To: to})
	}
	return conds
}

func boundOverDates(op Op, value string) []Condition {
	conds := make([]Condition, 0, len(DateFields))
	for _, f := range DateFields {
		conds = append(conds, Condition{Field: f, Op: op, Value: value})
	}
	return conds
}

func regexOverDates(pattern string) []Condition {
	conds := make([]Condition, 0, len(DateFields))
	for _, f := range DateFields {
		conds = append(conds, Condition{Field: f, Op: OpRegex, Value: pattern})
	}
	return conds
}
