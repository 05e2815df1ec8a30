// Package core provides value inference for record cells.
//
// This file contains the pipeline that turns the rendered text of a cell
// into a typed sort key: a number, a date or a lower-cased string.
package core

import (
	"cmp"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindNumber Kind = iota
	KindDate
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	case KindText:
		return "text"
	}
	return "unknown"
}

// Value is the typed comparison key inferred from a cell's text.
type Value struct {
	Kind Kind
	Num  float64
	Time time.Time
	Text string
}

// Number returns a numeric Value.
func Number(n float64) Value { return Value{Kind: KindNumber, Num: n} }

// Date returns a chronological Value.
func Date(t time.Time) Value { return Value{Kind: KindDate, Time: t} }

// Text returns a string Value. The caller decides on casing.
func Text(s string) Value { return Value{Kind: KindText, Text: s} }

var datePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// Layouts tried, in order, once the leading YYYY-MM-DD pattern matched.
// A space between date and time is normalized to 'T' first.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate recognizes a leading YYYY-MM-DD pattern, optionally followed by
// a time separated by a space or 'T'. Values without a zone are read as UTC.
func ParseDate(raw string) (time.Time, bool) {
	v := strings.TrimSpace(raw)
	if !datePrefix.MatchString(v) {
		return time.Time{}, false
	}
	iso := v
	if !strings.Contains(iso, "T") {
		iso = strings.Replace(iso, " ", "T", 1)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, iso); err == nil {
			return t.UTC(), true
		}
	}
	// Trailing text after the date part ("2024-01-15 (pending)") still sorts by the date.
	if t, err := time.Parse("2006-01-02", v[:10]); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// ParseValue infers the sort key of a cell:
//
//	ParseValue("1.234,56")   -> Number(1234.56)
//	ParseValue("1,234.56")   -> Number(1234.56)
//	ParseValue("3,5")        -> Number(3.5)
//	ParseValue("2024-01-15") -> Date(2024-01-15)
//	ParseValue("Abc")        -> Text("abc")
//	ParseValue("  ")         -> Text("")
func ParseValue(raw string) Value {
	val := strings.TrimSpace(raw)
	if val == "" {
		return Text("")
	}

	if t, ok := ParseDate(val); ok {
		return Date(t)
	}

	candidate := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '-' || r == ',' || r == '.' {
			return r
		}
		return -1
	}, val)

	if candidate == "" {
		return Text(strings.ToLower(val))
	}

	dot := strings.Index(candidate, ".")
	comma := strings.Index(candidate, ",")
	switch {
	case dot != -1 && comma != -1:
		if dot < comma {
			candidate = strings.ReplaceAll(candidate, ".", "")
			candidate = strings.ReplaceAll(candidate, ",", ".")
		} else {
			candidate = strings.ReplaceAll(candidate, ",", "")
		}
	case comma != -1:
		candidate = strings.ReplaceAll(candidate, ",", ".")
	}

	// Keep only a leading minus.
	if rest := strings.ReplaceAll(candidate[1:], "-", ""); len(rest) != len(candidate)-1 {
		candidate = candidate[:1] + rest
	}

	if n, ok := parseLeadingFloat(candidate); ok {
		return Number(n)
	}
	return Text(strings.ToLower(val))
}

// parseLeadingFloat parses the longest prefix of s shaped like -?digits[.digits].
// "1.234.567" yields 1.234 and "-" yields nothing.
func parseLeadingFloat(s string) (float64, bool) {
	end := 0
	if end < len(s) && s[end] == '-' {
		end++
	}
	digits := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
		digits++
	}
	if end < len(s) && s[end] == '.' {
		frac := end + 1
		for frac < len(s) && s[frac] >= '0' && s[frac] <= '9' {
			frac++
		}
		if frac > end+1 {
			digits += frac - end - 1
			end = frac
		} else if digits > 0 {
			// "5." parses as 5
			end++
		}
	}
	if digits == 0 {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	// out of range yields ±Inf, still a number
	return n, true
}

// Compare orders two values. Mixed kinds order Number < Date < Text.
func Compare(a, b Value) int {
	if a.Kind != b.Kind {
		return cmp.Compare(a.Kind, b.Kind)
	}
	switch a.Kind {
	case KindNumber:
		return cmp.Compare(a.Num, b.Num)
	case KindDate:
		return a.Time.Compare(b.Time)
	default:
		return strings.Compare(a.Text, b.Text)
	}
}

// String renders the value for diagnostics.
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindDate:
		return v.Time.Format(time.RFC3339)
	default:
		return strconv.Quote(v.Text)
	}
}
