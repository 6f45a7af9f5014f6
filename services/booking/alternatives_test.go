package booking

import (
	"strings"
	"testing"
	"time"

	"tailortalk/models"
)

func TestFallbackAlternatives(t *testing.T) {
	tests := []struct {
		name      string
		requested time.Time
		wantHours []time.Time
	}{
		{
			name:      "afternoon request",
			requested: time.Date(2025, 1, 16, 14, 0, 0, 0, time.UTC),
			wantHours: []time.Time{
				time.Date(2025, 1, 16, 9, 0, 0, 0, time.UTC),
				time.Date(2025, 1, 16, 11, 0, 0, 0, time.UTC),
				time.Date(2025, 1, 17, 10, 0, 0, 0, time.UTC),
			},
		},
		{
			name:      "requested hour is skipped",
			requested: time.Date(2025, 1, 16, 9, 0, 0, 0, time.UTC),
			wantHours: []time.Time{
				time.Date(2025, 1, 16, 11, 0, 0, 0, time.UTC),
				time.Date(2025, 1, 16, 14, 0, 0, 0, time.UTC),
				time.Date(2025, 1, 17, 10, 0, 0, 0, time.UTC),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FallbackAlternatives(tt.requested, 30)
			if len(got) != len(tt.wantHours) {
				t.Fatalf("got %d alternatives, want %d", len(got), len(tt.wantHours))
			}
			for i, want := range tt.wantHours {
				if !got[i].Start.Equal(want) {
					t.Errorf("alternative %d starts %v, want %v", i, got[i].Start, want)
				}
				if d := got[i].End.Sub(got[i].Start); d != 30*time.Minute {
					t.Errorf("alternative %d lasts %v, want 30m", i, d)
				}
			}
		})
	}
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		message string
		looks   bool
		want    int
	}{
		{"2", true, 2},
		{" 3. ", true, 3},
		{"option 1", true, 1},
		{"I'll take the second", true, 2},
		{"3rd", true, 3},
		{"choice 2 please", true, 2},
		{"4", false, 0},
		{"book a meeting tomorrow", false, 0},
		{"hello", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			if got := LooksLikeSelection(tt.message); got != tt.looks {
				t.Errorf("LooksLikeSelection(%q) = %v, want %v", tt.message, got, tt.looks)
			}
			if got := ParseSelection(tt.message); got != tt.want {
				t.Errorf("ParseSelection(%q) = %d, want %d", tt.message, got, tt.want)
			}
		})
	}
}

func TestSelectAlternative(t *testing.T) {
	offered := FallbackAlternatives(time.Date(2025, 1, 16, 14, 0, 0, 0, time.UTC), 60)

	got, ok := SelectAlternative("2", offered)
	if !ok || !got.Start.Equal(offered[1].Start) {
		t.Errorf("SelectAlternative(2) = %v, %v; want %v", got, ok, offered[1])
	}

	if _, ok := SelectAlternative("3", offered[:2]); ok {
		t.Error("picking past the end of the list should fail")
	}
	if _, ok := SelectAlternative("1", nil); ok {
		t.Error("picking with nothing offered should fail")
	}
}

func TestFormatAlternatives(t *testing.T) {
	if got := FormatAlternatives(nil); got != "No alternative times found." {
		t.Errorf("FormatAlternatives(nil) = %q", got)
	}

	alts := []models.TimeRange{
		models.RangeFor(time.Date(2025, 1, 16, 14, 0, 0, 0, time.UTC), 60),
		models.RangeFor(time.Date(2025, 1, 17, 9, 30, 0, 0, time.UTC), 60),
	}
	got := FormatAlternatives(alts)
	want := "1. Thursday, Jan 16 at 02:00 PM\n2. Friday, Jan 17 at 09:30 AM"
	if got != want {
		t.Errorf("FormatAlternatives() = %q, want %q", got, want)
	}
	if strings.Count(got, "\n") != len(alts)-1 {
		t.Errorf("expected one line per alternative, got %q", got)
	}
}

func TestSelectionSlotsRoundTrip(t *testing.T) {
	r := models.RangeFor(time.Date(2025, 1, 17, 16, 0, 0, 0, time.UTC), 60)
	date, clock := selectionSlots(r)
	got, ok := ResolveDateTime(date, clock, refNow)
	if !ok || !got.Equal(r.Start) {
		t.Errorf("selection %q %q resolved to %v, want %v", date, clock, got, r.Start)
	}
}
