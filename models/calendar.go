package models

import (
	"errors"
	"time"
)

// ErrInvalidRange is returned when a range does not start before it ends.
var ErrInvalidRange = errors.New("time range start must be before end")

// TimeRange is a half-open interval [Start, End).
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewTimeRange validates start < end.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if !start.Before(end) {
		return TimeRange{}, ErrInvalidRange
	}
	return TimeRange{Start: start, End: end}, nil
}

// RangeFor builds the range starting at start lasting minutes.
func RangeFor(start time.Time, minutes int) TimeRange {
	return TimeRange{Start: start, End: start.Add(time.Duration(minutes) * time.Minute)}
}

// Overlaps reports whether the two half-open ranges intersect.
func (r TimeRange) Overlaps(o TimeRange) bool {
	return r.Start.Before(o.End) && o.Start.Before(r.End)
}

// Conflict is a busy block overlapping a requested range.
type Conflict struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Label string    `json:"label"`
}

// AvailabilityResult is the outcome of an availability check.
type AvailabilityResult struct {
	Available bool       `json:"available"`
	Conflicts []Conflict `json:"conflicts,omitempty"`
	Message   string     `json:"message,omitempty"`
}

// CalendarEvent is an existing calendar entry.
type CalendarEvent struct {
	ID          string    `json:"id"`
	Summary     string    `json:"summary"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Attendees   []string  `json:"attendees,omitempty"`
	Link        string    `json:"link,omitempty"`
}

// Range returns the event's time span.
func (e CalendarEvent) Range() TimeRange {
	return TimeRange{Start: e.Start, End: e.End}
}

// EventRequest asks the calendar to create an entry.
type EventRequest struct {
	Title         string    `json:"title" binding:"required"`
	Description   string    `json:"description,omitempty"`
	Range         TimeRange `json:"range"`
	Location      string    `json:"location,omitempty"`
	AttendeeEmail string    `json:"attendee_email,omitempty"`
}

// EventResult reports the outcome of an event creation.
type EventResult struct {
	Success   bool   `json:"success"`
	EventID   string `json:"event_id,omitempty"`
	EventLink string `json:"event_link,omitempty"`
	Error     string `json:"error,omitempty"`
}
