package calendar

import (
	"context"
	"slices"
	"sync"

	"tailortalk/models"

	"github.com/google/uuid"
)

// MemoryCalendar keeps events in process. It backs local development and tests.
type MemoryCalendar struct {
	mu     sync.RWMutex
	events []models.CalendarEvent
	// FailCreate, when set, is returned by CreateEvent.
	FailCreate error
}

func NewMemoryCalendar(events ...models.CalendarEvent) *MemoryCalendar {
	m := &MemoryCalendar{}
	for _, ev := range events {
		m.Add(ev)
	}
	return m
}

// Add inserts an event, assigning an id when it has none.
func (m *MemoryCalendar) Add(ev models.CalendarEvent) models.CalendarEvent {
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	slices.SortStableFunc(m.events, func(a, b models.CalendarEvent) int {
		return a.Start.Compare(b.Start)
	})
	return ev
}

func (m *MemoryCalendar) ListEvents(ctx context.Context, r models.TimeRange, max int) ([]models.CalendarEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.CalendarEvent
	for _, ev := range m.events {
		if !ev.Range().Overlaps(r) {
			continue
		}
		out = append(out, ev)
		if max > 0 && len(out) >= max {
			break
		}
	}
	return out, nil
}

func (m *MemoryCalendar) CreateEvent(ctx context.Context, req models.EventRequest) (models.EventResult, error) {
	if err := ctx.Err(); err != nil {
		return models.EventResult{Success: false, Error: err.Error()}, err
	}
	if m.FailCreate != nil {
		return models.EventResult{Success: false, Error: m.FailCreate.Error()}, m.FailCreate
	}
	ev := models.CalendarEvent{
		Summary:     req.Title,
		Start:       req.Range.Start,
		End:         req.Range.End,
		Description: req.Description,
		Location:    req.Location,
	}
	if req.AttendeeEmail != "" {
		ev.Attendees = []string{req.AttendeeEmail}
	}
	ev = m.Add(ev)
	return models.EventResult{Success: true, EventID: ev.ID}, nil
}

func (m *MemoryCalendar) Status(context.Context) Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Status{Backend: "memory", ServiceInitialized: true, Connected: true, CalendarCount: 1}
}

// Events returns a copy of everything stored.
func (m *MemoryCalendar) Events() []models.CalendarEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.CalendarEvent(nil), m.events...)
}
