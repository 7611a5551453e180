// Package query builds the storage filters used to find announcements by
// date when stored records mix Gregorian and local-calendar spellings.
package query

import (
	"regexp"
	"sync"

	"twse-announcements/internal/entity"
)

// Field names a filterable announcement column.
type Field string

const (
	FieldQueryDate   Field = "query_date"
	FieldDate        Field = "date"
	FieldFactDate    Field = "fact_date"
	FieldCompanyCode Field = "company_code"
	FieldTitle       Field = "title"
)

// DateFields are the fields a date query fans out over.
var DateFields = []Field{FieldQueryDate, FieldDate, FieldFactDate}

// Op is a predicate operator.
type Op string

const (
	OpRange Op = "range" // Value <= v <= To
	OpGTE   Op = "gte"
	OpLTE   Op = "lte"
	OpEq    Op = "eq"
	OpRegex Op = "regex" // case-insensitive
)

// Condition is a single predicate on one field. Comparisons are plain string
// comparisons, the same ordering the store applies.
type Condition struct {
	Field Field
	Op    Op
	Value string
	To    string
}

// ValueOf returns the stored value of field on a, and false when it is unset.
func ValueOf(a *entity.Announcement, field Field) (string, bool) {
	switch field {
	case FieldQueryDate:
		return deref(a.QueryDate)
	case FieldDate:
		return a.Date, true
	case FieldFactDate:
		return deref(a.FactDate)
	case FieldCompanyCode:
		return a.CompanyCode, true
	case FieldTitle:
		return a.Title, true
	default:
		return "", false
	}
}

// Match evaluates the condition against a record the way the store would.
// Unset fields never match.
func (c Condition) Match(a *entity.Announcement) bool {
	v, ok := ValueOf(a, c.Field)
	if !ok {
		return false
	}
	switch c.Op {
	case OpRange:
		return v >= c.Value && v <= c.To
	case OpGTE:
		return v >= c.Value
	case OpLTE:
		return v <= c.Value
	case OpEq:
		return v == c.Value
	case OpRegex:
		re, err := compile(c.Value)
		if err != nil {
			return false
		}
		return re.MatchString(v)
	default:
		return false
	}
}

// AnyMatch reports whether at least one condition matches.
func AnyMatch(conds []Condition, a *entity.Announcement) bool {
	for _, c := range conds {
		if c.Match(a) {
			return true
		}
	}
	return false
}

var regexCache sync.Map

func compile(pattern string) (*regexp.Regexp, error) {
	if re, ok := regexCache.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, err
	}
	regexCache.Store(pattern, re)
	return re, nil
}

func deref(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	return *s, true
}
