package core

import (
	"math"
	"strings"
	"testing"
	"time"
)

func TestParseValueNumbers(t *testing.T) {
	cases := []struct {
		in  string
		out float64
	}{
		{"1.234,56", 1234.56},
		{"1,234.56", 1234.56},
		{"3,5", 3.5},
		{"42", 42},
		{" € 12,30 ", 12.30},
		{"-7.5", -7.5},
		{"1-2-3", 123},
		{"-1-2", -12},
		{"1.234.567", 1.234},
		{"5.", 5},
		{".5", 0.5},
		{"12 %", 12},
	}
	for _, tc := range cases {
		v := ParseValue(tc.in)
		if v.Kind != KindNumber || v.Num != tc.out {
			t.Fatalf("%q expected number %v, got %s %v", tc.in, tc.out, v.Kind, v)
		}
	}
}

func TestParseValueOverflowIsInfinite(t *testing.T) {
	huge := "1" + strings.Repeat("0", 400)
	v := ParseValue(huge)
	if v.Kind != KindNumber || !math.IsInf(v.Num, 1) {
		t.Fatalf("%d digits: expected +Inf number, got %s %v", len(huge), v.Kind, v)
	}
	if v := ParseValue("-" + huge); v.Kind != KindNumber || !math.IsInf(v.Num, -1) {
		t.Fatalf("expected -Inf number, got %s %v", v.Kind, v)
	}
	if Compare(Number(1e300), v) >= 0 {
		t.Fatalf("expected 1e300 before %v", v)
	}
}

func TestParseValueDates(t *testing.T) {
	day := ParseValue("2024-01-15")
	withTime := ParseValue("2024-01-15 10:00:00")
	isoTime := ParseValue("2024-01-15T10:00:00")
	for _, v := range []Value{day, withTime, isoTime} {
		if v.Kind != KindDate {
			t.Fatalf("expected date, got %s %v", v.Kind, v)
		}
	}
	if got := day.Time; !got.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected day %v", got)
	}
	if Compare(day, withTime) >= 0 {
		t.Fatalf("expected %v before %v", day, withTime)
	}
	if Compare(withTime, isoTime) != 0 {
		t.Fatalf("space and T separators should agree: %v vs %v", withTime, isoTime)
	}
	if v := ParseValue("2024-01-15 (pending)"); v.Kind != KindDate {
		t.Fatalf("expected trailing text to keep the date, got %s", v.Kind)
	}
}

func TestParseValueText(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"abc", "abc"},
		{"Groceries", "groceries"},
		{"   ", ""},
		{"", ""},
		{"-", "-"},
		{"n/a", "n/a"},
	}
	for _, tc := range cases {
		v := ParseValue(tc.in)
		if v.Kind != KindText || v.Text != tc.out {
			t.Fatalf("%q expected text %q, got %s %v", tc.in, tc.out, v.Kind, v)
		}
	}
}

func TestCompareAcrossKinds(t *testing.T) {
	n := Number(1000)
	d := Date(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	s := Text("a")
	if Compare(n, d) >= 0 || Compare(d, s) >= 0 || Compare(n, s) >= 0 {
		t.Fatalf("expected Number < Date < Text")
	}
	if Compare(s, n) <= 0 {
		t.Fatalf("expected Text after Number")
	}
	if Compare(Number(2), Number(10)) >= 0 {
		t.Fatalf("numbers should compare numerically")
	}
	if Compare(Text("b"), Text("a")) <= 0 {
		t.Fatalf("text should compare lexicographically")
	}
}
