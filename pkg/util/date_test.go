package util

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-10-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected date %v", got)
	}
}

func TestParseDateInvalid(t *testing.T) {
	if _, err := ParseDate("10/10/2024"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDaysBetween(t *testing.T) {
	from := time.Date(2024, 10, 1, 9, 15, 0, 0, time.UTC)
	to := time.Date(2024, 10, 3, 15, 30, 0, 0, time.UTC)
	if got := DaysBetween(from, to); got != 3 {
		t.Fatalf("expected 3 days, got %d", got)
	}
	if got := DaysBetween(to, from); got != 0 {
		t.Fatalf("expected 0 for inverted range, got %d", got)
	}
	if got := DaysBetween(from, from); got != 1 {
		t.Fatalf("expected 1 for same day, got %d", got)
	}
}

func TestDaysInRange(t *testing.T) {
	from := time.Date(2024, 10, 30, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 11, 2, 0, 0, 0, 0, time.UTC)
	days := DaysInRange(from, to)
	if len(days) != 4 {
		t.Fatalf("expected 4 days, got %d", len(days))
	}
	if FormatDate(days[1]) != "2024-10-31" || FormatDate(days[2]) != "2024-11-01" {
		t.Fatalf("unexpected days %v", days)
	}
}

func TestDayEnd(t *testing.T) {
	at := time.Date(2024, 10, 10, 12, 0, 0, 0, time.UTC)
	want := time.Date(2024, 10, 10, 23, 59, 59, 0, time.UTC)
	if got := DayEnd(at); !got.Equal(want) {
		t.Fatalf("unexpected day end %v", got)
	}
}
