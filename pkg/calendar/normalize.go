package calendar

import "strings"

// ToLocal converts an ISO date to the zero-padded local spelling (114/08/15).
// It reports false when the input is not an ISO date or the local year is not
// positive.
func ToLocal(iso string) (string, bool) {
	d, ok := ParseISO(iso)
	if !ok {
		return "", false
	}
	local, ok := d.ToLocal()
	if !ok {
		return "", false
	}
	return local.Padded(), true
}

// ToLocalUnpadded converts an ISO date to the unpadded local spelling (114/8/15).
func ToLocalUnpadded(iso string) (string, bool) {
	d, ok := ParseISO(iso)
	if !ok {
		return "", false
	}
	local, ok := d.ToLocal()
	if !ok {
		return "", false
	}
	return local.Unpadded(), true
}

// NormalizeForCompare produces an 8-digit YYYYMMDD key from either spelling.
// A 10-character dashed value has its dashes stripped as-is; a slash value is
// parsed, with 1911 added back when the year is a local year.
func NormalizeForCompare(s string) (string, bool) {
	if strings.Contains(s, "-") && len(s) == 10 {
		return strings.ReplaceAll(s, "-", ""), true
	}
	if strings.Contains(s, "/") {
		d, ok := ParseSlash(s)
		if !ok {
			return "", false
		}
		return d.Key(), true
	}
	return "", false
}

// InRange reports whether value lies within [start, end]. When any of the three
// fails to normalize the comparison falls back to plain string ordering.
func InRange(value, start, end string) bool {
	v, okV := NormalizeForCompare(value)
	s, okS := NormalizeForCompare(start)
	e, okE := NormalizeForCompare(end)
	if okV && okS && okE {
		return v >= s && v <= e
	}
	return value >= start && value <= end
}

// ExpandCompact rewrites an 8-digit YYYYMMDD value as YYYY-MM-DD. Any other
// value is returned unchanged.
func ExpandCompact(s string) string {
	if len(s) != 8 {
		return s
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return s
		}
	}
	return s[0:4] + "-" + s[4:6] + "-" + s[6:8]
}

// Format labels the spelling a stored date string uses.
type Format string

const (
	FormatISO          Format = "YYYY-MM-DD"
	FormatOtherDash    Format = "other_dash"
	FormatLocalSlash   Format = "YYY/MM/DD_roc"
	FormatGregSlash    Format = "YYYY/MM/DD"
	FormatOtherSlash   Format = "other_slash"
	FormatInvalidSlash Format = "invalid_slash"
	FormatUnknown      Format = "unknown"
)

// DetectFormat classifies s by its separators and year width.
func DetectFormat(s string) Format {
	switch {
	case strings.Contains(s, "-"):
		if len(s) == 10 && strings.Count(s, "-") == 2 {
			return FormatISO
		}
		return FormatOtherDash
	case strings.Contains(s, "/"):
		parts := strings.Split(s, "/")
		if len(parts) != 3 {
			return FormatInvalidSlash
		}
		switch len(parts[0]) {
		case 3:
			return FormatLocalSlash
		case 4:
			return FormatGregSlash
		default:
			return FormatOtherSlash
		}
	default:
		return FormatUnknown
	}
}
