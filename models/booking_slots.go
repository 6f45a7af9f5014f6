package models

import "strings"

// DefaultDurationMinutes is used until the user states a duration.
const DefaultDurationMinutes = 60

// BookingSlots holds the booking fields collected across conversational turns.
type BookingSlots struct {
	Title           string  `json:"title,omitempty"`          // e.g. "Meeting"
	Date            string  `json:"date,omitempty"`           // natural language, resolved later ("tomorrow", "2025-03-02")
	Time            string  `json:"time,omitempty"`           // natural language ("2 pm", "14:00")
	DurationMinutes int     `json:"duration_minutes"`         // defaults to 60
	Description     string  `json:"description,omitempty"`    // free text for the calendar entry
	Location        string  `json:"location,omitempty"`       // where the meeting happens
	AttendeeEmail   string  `json:"attendee_email,omitempty"` // invited guest
	Confidence      float64 `json:"confidence"`               // extraction confidence in [0,1]
}

// NewBookingSlots returns empty slots with the default duration.
func NewBookingSlots() BookingSlots {
	return BookingSlots{DurationMinutes: DefaultDurationMinutes}
}

// Merge copies every non-empty field of src onto s. Only the fixed booking
// fields are considered; zero values never overwrite collected data.
func (s *BookingSlots) Merge(src BookingSlots) {
	if v := strings.TrimSpace(src.Title); v != "" {
		s.Title = v
	}
	if v := strings.TrimSpace(src.Date); v != "" {
		s.Date = v
	}
	if v := strings.TrimSpace(src.Time); v != "" {
		s.Time = v
	}
	if src.DurationMinutes > 0 {
		s.DurationMinutes = src.DurationMinutes
	}
	if v := strings.TrimSpace(src.Description); v != "" {
		s.Description = v
	}
	if v := strings.TrimSpace(src.Location); v != "" {
		s.Location = v
	}
	if v := strings.TrimSpace(src.AttendeeEmail); v != "" {
		s.AttendeeEmail = v
	}
	if src.Confidence > 0 {
		s.Confidence = clampUnit(src.Confidence)
	}
}

// Duration returns the stated duration or the default one.
func (s BookingSlots) Duration() int {
	if s.DurationMinutes <= 0 {
		return DefaultDurationMinutes
	}
	return s.DurationMinutes
}

// Missing lists the required fields still absent, in asking order.
func (s BookingSlots) Missing() []string {
	var missing []string
	if s.Title == "" {
		missing = append(missing, "what type of appointment")
	}
	if s.Date == "" {
		missing = append(missing, "the date")
	}
	if s.Time == "" {
		missing = append(missing, "the time")
	}
	return missing
}

// IsEmpty reports whether no booking field was found.
func (s BookingSlots) IsEmpty() bool {
	return s.Title == "" && s.Date == "" && s.Time == "" && s.DurationMinutes <= 0 &&
		s.Description == "" && s.Location == "" && s.AttendeeEmail == ""
}

func clampUnit(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
