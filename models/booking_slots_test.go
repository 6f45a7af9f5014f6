package models

import (
	"testing"
	"time"
)

func TestMergeKeepsCollectedFields(t *testing.T) {
	s := NewBookingSlots()
	s.Merge(BookingSlots{Title: "Meeting", Date: "tomorrow"})
	s.Merge(BookingSlots{Time: " 2 pm ", Title: "  ", Confidence: 1.4})

	if s.Title != "Meeting" || s.Date != "tomorrow" || s.Time != "2 pm" {
		t.Errorf("slots = %+v", s)
	}
	if s.DurationMinutes != DefaultDurationMinutes {
		t.Errorf("duration = %d, want default", s.DurationMinutes)
	}
	if s.Confidence != 1 {
		t.Errorf("confidence = %v, want clamped to 1", s.Confidence)
	}
}

func TestMissing(t *testing.T) {
	tests := []struct {
		slots BookingSlots
		want  int
	}{
		{BookingSlots{}, 3},
		{BookingSlots{Title: "Call"}, 2},
		{BookingSlots{Title: "Call", Date: "today", Time: "9"}, 0},
	}
	for _, tt := range tests {
		if got := tt.slots.Missing(); len(got) != tt.want {
			t.Errorf("Missing(%+v) = %v, want %d fields", tt.slots, got, tt.want)
		}
	}
}

func TestTimeRangeOverlaps(t *testing.T) {
	base := time.Date(2025, 1, 16, 14, 0, 0, 0, time.UTC)
	r := RangeFor(base, 60)

	if !r.Overlaps(RangeFor(base.Add(30*time.Minute), 60)) {
		t.Error("partial overlap not detected")
	}
	if r.Overlaps(RangeFor(base.Add(time.Hour), 60)) {
		t.Error("adjacent ranges must not overlap")
	}
	if _, err := NewTimeRange(base, base); err != ErrInvalidRange {
		t.Errorf("NewTimeRange(empty) err = %v", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	now := time.Date(2025, 1, 16, 14, 0, 0, 0, time.UTC)
	s := NewConversationState("a", now)
	s.Append(RoleUser, "hi", now)
	s.Offered = []TimeRange{RangeFor(now, 60)}

	c := s.Clone()
	c.Append(RoleAssistant, "hello", now)
	c.Offered[0] = RangeFor(now.Add(time.Hour), 60)

	if len(s.History) != 1 || !s.Offered[0].Start.Equal(now) {
		t.Error("Clone shares slices with the original")
	}
	if sum := c.Summary(); sum.MessageCount != 2 || sum.LastActivity == nil {
		t.Errorf("Summary = %+v", sum)
	}
}
