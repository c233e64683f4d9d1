package utils

import (
	"testing"
	"time"
)

func TestMonthKey_FixedTimezone(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}

	cases := []struct {
		name     string
		instant  time.Time
		loc      *time.Location
		expected string
	}{
		{
			name:     "february in reference timezone",
			instant:  time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC),
			loc:      paris,
			expected: "2026-02",
		},
		{
			// 23:30 UTC on Jan 31 is already Feb 1 in Paris (UTC+1).
			name:     "month boundary crosses with offset",
			instant:  time.Date(2026, 1, 31, 23, 30, 0, 0, time.UTC),
			loc:      paris,
			expected: "2026-02",
		},
		{
			name:     "same instant in UTC stays in january",
			instant:  time.Date(2026, 1, 31, 23, 30, 0, 0, time.UTC),
			loc:      time.UTC,
			expected: "2026-01",
		},
		{
			name:     "single digit month is zero padded",
			instant:  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			loc:      time.UTC,
			expected: "2025-03",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MonthKey(tc.instant, tc.loc); got != tc.expected {
				t.Fatalf("MonthKey(%s, %s) = %q, expected %q", tc.instant, tc.loc, got, tc.expected)
			}
		})
	}
}

func TestMonthKey_IndependentOfCallerTimezone(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}

	instant := time.Date(2026, 2, 10, 3, 0, 0, 0, time.UTC)
	// The same instant expressed in a different wall clock must not change
	// the result: only the reference location matters.
	if a, b := MonthKey(instant, paris), MonthKey(instant.In(tokyo), paris); a != b {
		t.Fatalf("month key depends on the caller's representation: %q vs %q", a, b)
	}
}

func TestIsValidMonthKey(t *testing.T) {
	valid := []string{"2026-01", "1999-12", "2026-02"}
	for _, s := range valid {
		if !IsValidMonthKey(s) {
			t.Fatalf("expected %q to be valid", s)
		}
	}
	invalid := []string{"", "2026-1", "2026/01", "202601", "2026-001", "26-01", "2026-01-01", "abcd-ef"}
	for _, s := range invalid {
		if IsValidMonthKey(s) {
			t.Fatalf("expected %q to be invalid", s)
		}
	}
}
