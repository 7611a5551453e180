package extractor

import (
	"errors"
	"fmt"
	"strings"

	"twse-announcements/pkg/calendar"
)

// ErrAmbiguousField is returned when a hidden field name cannot be classified
// with certainty.
var ErrAmbiguousField = errors.New("ambiguous hidden field")

const (
	factDateLabel    = "事實發生日"
	matchedClauseTag = "符合條款"
	fullWidthColon   = "："
)

// FieldClass identifies what a hidden row field carries. The source marks the
// class only by the last character of the field name (h06, h16, h26 ...).
type FieldClass int

const (
	FieldUnclassified FieldClass = iota
	FieldClauseCode
	FieldFactOccurrenceDate
	FieldDetail
)

func (c FieldClass) String() string {
	switch c {
	case FieldClauseCode:
		return "clause_code"
	case FieldFactOccurrenceDate:
		return "fact_occurrence_date"
	case FieldDetail:
		return "detail"
	default:
		return "unclassified"
	}
}

var suffixClasses = map[byte]FieldClass{
	'6': FieldClauseCode,
	'7': FieldFactOccurrenceDate,
	'8': FieldDetail,
}

// Classify maps a hidden field name to its class. Names that are empty or
// padded with whitespace are rejected rather than guessed at.
func Classify(name string) (FieldClass, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return FieldUnclassified, fmt.Errorf("%w: empty name", ErrAmbiguousField)
	}
	if trimmed != name {
		return FieldUnclassified, fmt.Errorf("%w: name %q has surrounding whitespace", ErrAmbiguousField, name)
	}
	if class, ok := suffixClasses[trimmed[len(trimmed)-1]]; ok {
		return class, nil
	}
	return FieldUnclassified, nil
}

// HiddenField is one name/value pair from an input[type=hidden] in a row.
type HiddenField struct {
	Name  string
	Value string
}

// RawRow is a table row before it becomes an announcement.
type RawRow struct {
	Cells  []string
	Hidden []HiddenField
	Markup string
}

// Decoded holds the metadata recovered from a row's hidden fields.
type Decoded struct {
	DetailContent      *string
	AnnouncementType   *string
	FactDate           *string
	ClauseCode         *string
	FactOccurrenceDate *string
	RawMarkup          string
}

type fieldDecoder func(value string, out *Decoded)

var decoders = map[FieldClass]fieldDecoder{
	FieldClauseCode:         decodeClauseCode,
	FieldFactOccurrenceDate: decodeFactOccurrenceDate,
	FieldDetail:             decodeDetail,
}

// FieldIssue describes a hidden field that was not decoded cleanly.
type FieldIssue struct {
	Name   string
	Value  string
	Reason string
}

// DecodeRow recovers structured metadata from the row's hidden fields.
// Unclassified fields are returned as issues for diagnostics. When one class
// appears more than once with different values the later value wins and the
// conflict is reported.
func DecodeRow(row RawRow) (Decoded, []FieldIssue) {
	out := Decoded{RawMarkup: row.Markup}
	var issues []FieldIssue
	seen := make(map[FieldClass]HiddenField)

	for _, f := range row.Hidden {
		class, err := Classify(f.Name)
		if err != nil {
			issues = append(issues, FieldIssue{Name: f.Name, Value: f.Value, Reason: err.Error()})
			continue
		}
		decode, ok := decoders[class]
		if !ok {
			if strings.TrimSpace(f.Value) != "" {
				issues = append(issues, FieldIssue{Name: f.Name, Value: f.Value, Reason: "unclassified"})
			}
			continue
		}
		if strings.TrimSpace(f.Value) == "" {
			continue
		}
		if prev, dup := seen[class]; dup && strings.TrimSpace(prev.Value) != strings.TrimSpace(f.Value) {
			issues = append(issues, FieldIssue{
				Name:   f.Name,
				Value:  f.Value,
				Reason: fmt.Sprintf("conflicts with %s for %s", prev.Name, class),
			})
		}
		seen[class] = f
		decode(f.Value, &out)
	}
	return out, issues
}

func decodeClauseCode(value string, out *Decoded) {
	v := strings.TrimSpace(value)
	out.ClauseCode = &v
}

func decodeFactOccurrenceDate(value string, out *Decoded) {
	v := calendar.ExpandCompact(strings.TrimSpace(value))
	out.FactOccurrenceDate = &v
}

func decodeDetail(value string, out *Decoded) {
	detail := strings.TrimSpace(value)
	out.DetailContent = &detail

	if line, ok := firstLineContaining(value, factDateLabel); ok {
		if parts := strings.Split(line, fullWidthColon); len(parts) > 1 {
			factDate := strings.TrimSpace(parts[1])
			out.FactDate = &factDate
		}
	}
	if line, ok := firstLineContaining(value, matchedClauseTag); ok {
		kind := strings.TrimSpace(line)
		out.AnnouncementType = &kind
	}
}

func firstLineContaining(text, needle string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.Contains(line, needle) {
			return line, true
		}
	}
	return "", false
}
