package pg

import (
	"testing"
	"time"
)

func TestRound2(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{3.14159, 3.14},
		{7.896, 7.9},
		{0, 0},
		{12.5, 12.5},
	}
	for _, tc := range cases {
		if got := round2(tc.in); got != tc.want {
			t.Errorf("round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	if got := daysBetween(base, base.AddDate(0, 0, 14)); got != 14 {
		t.Fatalf("14 days ahead = %d", got)
	}
	if got := daysBetween(base, base.AddDate(0, 0, -3)); got != -3 {
		t.Fatalf("3 days overdue = %d, want negative", got)
	}
	// Call sites truncate both ends to midnight, so time-of-day never
	// shifts the count.
	late := base.Add(23 * time.Hour)
	if got := daysBetween(truncateDay(late), truncateDay(base.AddDate(0, 0, 1))); got != 1 {
		t.Fatalf("truncated day count = %d, want 1", got)
	}
}

func TestTruncateDay(t *testing.T) {
	ts := time.Date(2026, 8, 29, 17, 42, 13, 999, time.Local)
	got := truncateDay(ts)
	if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 || got.Nanosecond() != 0 {
		t.Fatalf("time components survived: %v", got)
	}
	if got.Year() != 2026 || got.Month() != time.August || got.Day() != 29 {
		t.Fatalf("date changed: %v", got)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Port != 5432 {
		t.Fatalf("port = %d, want 5432", cfg.Port)
	}
	if cfg.SSLMode != "disable" {
		t.Fatalf("sslmode = %q, want disable", cfg.SSLMode)
	}
}
