package query

import (
	"regexp"
	"strings"

	"twse-announcements/internal/entity"
	"twse-announcements/pkg/calendar"
)

const (
	DefaultLimit = 50
	MaxLimit     = 1000
)

// Params are the caller-facing listing parameters. Dates are ISO strings.
type Params struct {
	Company   string
	Date      string
	StartDate string
	EndDate   string
	Search    string
	Limit     int
}

// DateRange is the ISO range a result set is re-validated against.
type DateRange struct {
	Start string
	End   string
}

// Contains reports whether any of the record's date fields (date, query_date,
// fact_date) falls within the range.
func (r DateRange) Contains(a *entity.Announcement) bool {
	for _, v := range a.DateFields() {
		if calendar.InRange(v, r.Start, r.End) {
			return true
		}
	}
	return false
}

// Filter is a storage-agnostic announcement query. DateConditions are OR-ed;
// every other member is AND-ed with them.
type Filter struct {
	Company        string
	QueryDate      string
	DateConditions []Condition
	Search         string
	Limit          int

	// PostFilter is set for closed ranges. Stores return candidates; callers
	// keep only those PostFilter.Contains accepts.
	PostFilter *DateRange
}

// SortKey is one level of the listing order.
type SortKey struct {
	Field      string
	Descending bool
}

// DefaultOrder lists newest first: date, then time, then insertion time.
var DefaultOrder = []SortKey{
	{Field: "date", Descending: true},
	{Field: "time", Descending: true},
	{Field: "created_at", Descending: true},
}

// Build turns listing parameters into a Filter. A closed range takes
// precedence over a single bound, which takes precedence over date.
func Build(p Params) Filter {
	f := Filter{
		Company: strings.TrimSpace(p.Company),
		Search:  SanitizeSearch(p.Search),
		Limit:   ClampLimit(p.Limit),
	}

	start := strings.TrimSpace(p.StartDate)
	end := strings.TrimSpace(p.EndDate)
	date := strings.TrimSpace(p.Date)

	switch {
	case start != "" && end != "":
		f.DateConditions = RangeConditions(start, end)
		if len(f.DateConditions) == 0 {
			f.DateConditions = FallbackConditions(start, end)
		}
		f.PostFilter = &DateRange{Start: start, End: end}
	case start != "":
		f.DateConditions = BoundConditions(start, Lower)
	case end != "":
		f.DateConditions = BoundConditions(end, Upper)
	case date != "":
		f.QueryDate = date
	}
	return f
}

// ClampLimit applies the default and the hard cap.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// SanitizeSearch returns search as a usable pattern, quoting it when it is
// not a valid regular expression.
func SanitizeSearch(search string) string {
	search = strings.TrimSpace(search)
	if search == "" {
		return ""
	}
	if _, err := regexp.Compile(search); err != nil {
		return regexp.QuoteMeta(search)
	}
	return search
}

// Match evaluates the whole filter, except Limit and PostFilter, in memory.
func (f Filter) Match(a *entity.Announcement) bool {
	if f.Company != "" && a.CompanyCode != f.Company {
		return false
	}
	if f.QueryDate != "" {
		if v, ok := ValueOf(a, FieldQueryDate); !ok || v != f.QueryDate {
			return false
		}
	}
	if len(f.DateConditions) > 0 && !AnyMatch(f.DateConditions, a) {
		return false
	}
	if f.Search != "" {
		if !(Condition{Field: FieldTitle, Op: OpRegex, Value: f.Search}).Match(a) {
			return false
		}
	}
	return true
}

// Apply drops candidates the post-filter rejects. Without a post-filter the
// input is returned unchanged.
func (f Filter) Apply(candidates []entity.Announcement) (kept []entity.Announcement, rejected int) {
	if f.PostFilter == nil {
		return candidates, 0
	}
	kept = make([]entity.Announcement, 0, len(candidates))
	for i := range candidates {
		if f.PostFilter.Contains(&candidates[i]) {
			kept = append(kept, candidates[i])
			continue
		}
		rejected++
	}
	return kept, rejected
}

// Less orders a before b according to DefaultOrder.
func Less(a, b *entity.Announcement) bool {
	if a.Date != b.Date {
		return a.Date > b.Date
	}
	if a.Time != b.Time {
		return a.Time > b.Time
	}
	return a.CreatedAt.After(b.CreatedAt)
}
