package calendar

import (
	"context"
	"errors"

	"tailortalk/models"
)

// ErrUnavailable means no calendar backend is configured or reachable.
var ErrUnavailable = errors.New("calendar service not available")

// Calendar is the external calendar of record.
type Calendar interface {
	// ListEvents returns events overlapping r, ordered by start time.
	ListEvents(ctx context.Context, r models.TimeRange, max int) ([]models.CalendarEvent, error)
	CreateEvent(ctx context.Context, req models.EventRequest) (models.EventResult, error)
	Status(ctx context.Context) Status
}

// Status describes the calendar backend for the status endpoint.
type Status struct {
	Backend            string `json:"backend"`
	ServiceInitialized bool   `json:"service_initialized"`
	CalendarID         string `json:"calendar_id,omitempty"`
	CredentialsPath    string `json:"credentials_path,omitempty"`
	Connected          bool   `json:"connected"`
	CalendarCount      int    `json:"calendar_count,omitempty"`
	Error              string `json:"error,omitempty"`
	Timezone           string `json:"timezone"`
}

// Unavailable stands in when the real backend failed to initialise. Every
// call fails with ErrUnavailable so callers take their fallback paths.
type Unavailable struct {
	Reason   string
	Timezone string
}

func (u Unavailable) ListEvents(context.Context, models.TimeRange, int) ([]models.CalendarEvent, error) {
	return nil, ErrUnavailable
}

func (u Unavailable) CreateEvent(context.Context, models.EventRequest) (models.EventResult, error) {
	return models.EventResult{Success: false, Error: ErrUnavailable.Error()}, ErrUnavailable
}

func (u Unavailable) Status(context.Context) Status {
	return Status{Backend: "unavailable", Error: u.Reason, Timezone: u.Timezone}
}
