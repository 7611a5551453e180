// Package calendar converts between Gregorian dates and the exchange's local
// (ROC) calendar, whose year is the Gregorian year minus 1911.
//
// Stored records mix three spellings of the same day:
//
//	2025-08-15   Gregorian ISO
//	114/08/15    local, zero-padded month and day
//	114/8/15     local, unpadded
//
// Dates are parsed once into a tagged Date value and rendered back into
// whichever spelling a caller needs.
package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Offset is the difference between a Gregorian year and its local year.
const Offset = 1911

// Calendar identifies the year numbering a Date uses.
type Calendar int

const (
	Gregorian Calendar = iota
	Local
)

func (c Calendar) String() string {
	switch c {
	case Gregorian:
		return "gregorian"
	case Local:
		return "local"
	default:
		return fmt.Sprintf("calendar(%d)", int(c))
	}
}

// Date is a calendar-tagged day. Month and day are not range-checked; the
// source data is compared lexically and numerically, never against a real
// calendar.
type Date struct {
	Calendar Calendar
	Year     int
	Month    int
	Day      int
}

// ParseISO parses a dash-separated Gregorian date such as "2025-08-15".
func ParseISO(s string) (Date, bool) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return Date{}, false
	}
	y, m, d, ok := atoi3(parts)
	if !ok {
		return Date{}, false
	}
	return Date{Calendar: Gregorian, Year: y, Month: m, Day: d}, true
}

// ParseSlash parses a slash-separated date. A year below 1000 is read as a
// local-calendar year; anything else is Gregorian slash notation.
func ParseSlash(s string) (Date, bool) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return Date{}, false
	}
	y, m, d, ok := atoi3(parts)
	if !ok {
		return Date{}, false
	}
	cal := Gregorian
	if y < 1000 {
		cal = Local
	}
	return Date{Calendar: cal, Year: y, Month: m, Day: d}, true
}

// Parse accepts either spelling.
func Parse(s string) (Date, bool) {
	if strings.Contains(s, "/") {
		return ParseSlash(s)
	}
	return ParseISO(s)
}

// ToGregorian returns d expressed in the Gregorian calendar.
func (d Date) ToGregorian() Date {
	if d.Calendar == Local {
		return Date{Calendar: Gregorian, Year: d.Year + Offset, Month: d.Month, Day: d.Day}
	}
	return d
}

// ToLocal returns d expressed in the local calendar. It reports false when the
// local year would be zero or negative.
func (d Date) ToLocal() (Date, bool) {
	if d.Calendar == Local {
		return d, d.Year > 0
	}
	y := d.Year - Offset
	if y <= 0 {
		return Date{}, false
	}
	return Date{Calendar: Local, Year: y, Month: d.Month, Day: d.Day}, true
}

// ISO renders the Gregorian form as YYYY-MM-DD.
func (d Date) ISO() string {
	g := d.ToGregorian()
	return fmt.Sprintf("%04d-%02d-%02d", g.Year, g.Month, g.Day)
}

// Padded renders the date with zero-padded month and day: 114/08/15.
func (d Date) Padded() string {
	return fmt.Sprintf("%d/%02d/%02d", d.Year, d.Month, d.Day)
}

// Unpadded renders the date without padding: 114/8/15.
func (d Date) Unpadded() string {
	return fmt.Sprintf("%d/%d/%d", d.Year, d.Month, d.Day)
}

// Key renders the canonical YYYYMMDD comparison key.
func (d Date) Key() string {
	g := d.ToGregorian()
	return fmt.Sprintf("%04d%02d%02d", g.Year, g.Month, g.Day)
}

func (d Date) String() string {
	if d.Calendar == Local {
		return d.Padded()
	}
	return d.ISO()
}

// MaxDays bounds the length of a Days expansion.
const MaxDays = 366

// ErrInvalidRange is returned by Days for impossible days or reversed or
// oversized ranges.
var ErrInvalidRange = errors.New("invalid date range")

// Days returns every day from start through end, inclusive, in the Gregorian
// calendar.
func Days(start, end Date) ([]Date, error) {
	from, ok := start.toTime()
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a calendar day", ErrInvalidRange, start)
	}
	to, ok := end.toTime()
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a calendar day", ErrInvalidRange, end)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: %s is before %s", ErrInvalidRange, end, start)
	}
	n := int(to.Sub(from).Hours()/24) + 1
	if n > MaxDays {
		return nil, fmt.Errorf("%w: %d days exceeds %d", ErrInvalidRange, n, MaxDays)
	}

	days := make([]Date, 0, n)
	for t := from; !t.After(to); t = t.AddDate(0, 0, 1) {
		days = append(days, Date{Calendar: Gregorian, Year: t.Year(), Month: int(t.Month()), Day: t.Day()})
	}
	return days, nil
}

func (d Date) toTime() (time.Time, bool) {
	g := d.ToGregorian()
	t := time.Date(g.Year, time.Month(g.Month), g.Day, 0, 0, 0, 0, time.UTC)
	return t, t.Year() == g.Year && int(t.Month()) == g.Month && t.Day() == g.Day
}

func atoi3(parts []string) (int, int, int, bool) {
	var out [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, 0, 0, false
		}
		out[i] = n
	}
	return out[0], out[1], out[2], true
}
