package timeago

import (
	"strings"
	"testing"
	"time"
)

func TestHumanize(t *testing.T) {
	tests := []struct {
		name     string
		elapsed  time.Duration
		maxUnits int
		want     string
	}{
		{"zero", 0, 2, "just now"},
		{"nanoseconds", 5, 2, "just now"},
		{"sub second", 999 * time.Millisecond, 2, "just now"},
		{"negative", -time.Hour, 2, "just now"},
		{"one second", time.Second, 2, "1 second ago"},
		{"seconds", 5 * time.Second, 2, "5 seconds ago"},
		{"day hour minute second", 90061 * time.Second, 2, "1 day, 1 hour ago"},
		{"two hours", 7200 * time.Second, 2, "2 hours ago"},
		{"zero rung consumes precision", (86400 + 60) * time.Second, 2, "1 day ago"},
		{"single unit precision", 90061 * time.Second, 1, "1 day ago"},
		{"full precision", 90061 * time.Second, 4, "1 day, 1 hour, 1 minute, 1 second ago"},
		{"no cutoff", 90061 * time.Second, 0, "1 day, 1 hour, 1 minute, 1 second ago"},
		{"weeks", 15 * 24 * time.Hour, 2, "2 weeks, 1 day ago"},
		{"flat month", 30 * 24 * time.Hour, 2, "1 month ago"},
		{"flat year", 365 * 24 * time.Hour, 3, "1 year ago"},
		{"decennium", 3650*24*time.Hour + 2*time.Hour, 2, "1 decennium ago"},
		{"decennia", 2 * 3650 * 24 * time.Hour, 2, "2 decennia ago"},
		{"truncates fractions", 61*time.Second + 900*time.Millisecond, 2, "1 minute, 1 second ago"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Humanize(tt.elapsed, tt.maxUnits); got != tt.want {
				t.Errorf("Humanize(%v, %d) = %q, want %q", tt.elapsed, tt.maxUnits, got, tt.want)
			}
		})
	}
}

func TestHumanizeSecondsLargeRungs(t *testing.T) {
	tests := []struct {
		seconds  int64
		maxUnits int
		want     string
	}{
		{31536000000, 2, "1 millennium ago"},
		{2*31536000000 + 3153600000, 2, "2 millennia, 1 century ago"},
		{3 * 3153600000, 2, "3 centuries ago"},
		{3153600000 + 315360000 + 31536000, 3, "1 century, 1 decennium, 1 year ago"},
	}
	for _, tt := range tests {
		if got := HumanizeSeconds(tt.seconds, tt.maxUnits); got != tt.want {
			t.Errorf("HumanizeSeconds(%d, %d) = %q, want %q", tt.seconds, tt.maxUnits, got, tt.want)
		}
	}
}

func TestHumanizeTermCountBounded(t *testing.T) {
	samples := []int64{1, 59, 61, 3599, 3601, 86399, 90061, 604801, 2592001, 31536001, 315360001, 3153600001, 31536000001, 98765432101}
	for _, s := range samples {
		for maxUnits := 1; maxUnits <= len(ladder); maxUnits++ {
			got := HumanizeSeconds(s, maxUnits)
			if !strings.HasSuffix(got, " ago") {
				t.Fatalf("HumanizeSeconds(%d, %d) = %q, want suffix \" ago\"", s, maxUnits, got)
			}
			terms := len(strings.Split(strings.TrimSuffix(got, " ago"), ", "))
			if terms < 1 || terms > maxUnits {
				t.Errorf("HumanizeSeconds(%d, %d) = %q has %d terms", s, maxUnits, got, terms)
			}
		}
	}
}

func TestSince(t *testing.T) {
	now := time.Date(2024, 10, 15, 14, 30, 0, 0, time.UTC)
	if got := Since(now.Add(-2*time.Hour-3*time.Minute), now, DefaultUnits); got != "2 hours, 3 minutes ago" {
		t.Errorf("Since = %q", got)
	}
}
