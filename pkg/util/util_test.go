package util

import (
	"reflect"
	"testing"

	"YieldDesk/pkg/date"
)

func TestSplitList(t *testing.T) {
	got := SplitList("10 Year, 2 Year", "", " 30 Year ,,")
	want := []string{"10 Year", "2 Year", "30 Year"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
	if SplitList("", " , ") != nil {
		t.Fatalf("expected nil for blank input")
	}
}

func TestParseIntDefault(t *testing.T) {
	if got := ParseIntDefault("", 7); got != 7 {
		t.Fatalf("empty: got %d", got)
	}
	if got := ParseIntDefault("x", 7); got != 7 {
		t.Fatalf("invalid: got %d", got)
	}
	if got := ParseIntDefault("42", 7); got != 42 {
		t.Fatalf("valid: got %d", got)
	}
}

func TestParseDate(t *testing.T) {
	def := date.New(2024, 1, 2)
	if got, err := ParseDateDefault("", def); err != nil || got != def {
		t.Fatalf("empty: got %v %v", got, err)
	}
	if _, err := ParseDateDefault("bad", def); err == nil {
		t.Fatalf("invalid: expected error, not the default")
	}
	if got, err := ParseDateDefault("2020-03-04", def); err != nil || got != date.New(2020, 3, 4) {
		t.Fatalf("valid: got %v %v", got, err)
	}
	d, err := ParseDate("")
	if err != nil || !d.IsZero() {
		t.Fatalf("empty: got %v %v", d, err)
	}
	if _, err := ParseDate("2020-13-01"); err == nil {
		t.Fatalf("expected error for bad month")
	}
}
