package calendar

import (
	"context"
	"fmt"
	"time"

	"tailortalk/models"
)

const (
	alternativesWindowDays = 7
	upcomingMaxResults     = 50
)

// Oracle answers availability questions against a Calendar.
type Oracle struct {
	Cal           Calendar
	BusinessStart int
	BusinessEnd   int
	WeekdaysOnly  bool
	Now           func() time.Time
}

func NewOracle(cal Calendar, businessStart, businessEnd int, weekdaysOnly bool) *Oracle {
	return &Oracle{
		Cal:           cal,
		BusinessStart: businessStart,
		BusinessEnd:   businessEnd,
		WeekdaysOnly:  weekdaysOnly,
		Now:           time.Now,
	}
}

// Check reports r as available iff no event overlaps it.
func (o *Oracle) Check(ctx context.Context, r models.TimeRange) (models.AvailabilityResult, error) {
	if !r.Start.Before(r.End) {
		return models.AvailabilityResult{}, models.ErrInvalidRange
	}
	events, err := o.Cal.ListEvents(ctx, r, 0)
	if err != nil {
		return models.AvailabilityResult{Available: false, Message: err.Error()}, err
	}

	var conflicts []models.Conflict
	for _, ev := range events {
		if ev.Range().Overlaps(r) {
			conflicts = append(conflicts, models.Conflict{Start: ev.Start, End: ev.End, Label: ev.Summary})
		}
	}
	if len(conflicts) == 0 {
		return models.AvailabilityResult{Available: true, Message: "Time slot is available"}, nil
	}
	return models.AvailabilityResult{
		Available: false,
		Conflicts: conflicts,
		Message:   fmt.Sprintf("Time slot is busy with %d event(s)", len(conflicts)),
	}, nil
}

// FreeSlots lists hourly-aligned free slots inside [startHour, endHour) on
// every qualifying day from r.Start's date to r.End's date, in order.
// Candidates before the oracle clock's now are skipped.
func (o *Oracle) FreeSlots(ctx context.Context, r models.TimeRange, durationMinutes, startHour, endHour int, weekdaysOnly bool) ([]models.TimeRange, error) {
	if r.End.Before(r.Start) || startHour < 0 || endHour > 24 || startHour >= endHour {
		return nil, models.ErrInvalidRange
	}
	if durationMinutes <= 0 {
		durationMinutes = models.DefaultDurationMinutes
	}

	loc := r.Start.Location()
	firstDay := time.Date(r.Start.Year(), r.Start.Month(), r.Start.Day(), 0, 0, 0, 0, loc)
	endIn := r.End.In(loc)
	lastDay := time.Date(endIn.Year(), endIn.Month(), endIn.Day(), 0, 0, 0, 0, loc)

	window := models.TimeRange{
		Start: firstDay.Add(time.Duration(startHour) * time.Hour),
		End:   lastDay.Add(time.Duration(endHour) * time.Hour),
	}
	busy, err := o.Cal.ListEvents(ctx, window, 0)
	if err != nil {
		return nil, err
	}

	now := o.now()
	var free []models.TimeRange
	for day := firstDay; !day.After(lastDay); day = day.AddDate(0, 0, 1) {
		if weekdaysOnly && (day.Weekday() == time.Saturday || day.Weekday() == time.Sunday) {
			continue
		}
		dayEnd := day.Add(time.Duration(endHour) * time.Hour)
		for cand := day.Add(time.Duration(startHour) * time.Hour); ; cand = cand.Add(time.Hour) {
			slot := models.RangeFor(cand, durationMinutes)
			if slot.End.After(dayEnd) {
				break
			}
			if cand.Before(now) || overlapsAny(slot, busy) {
				continue
			}
			free = append(free, slot)
		}
	}
	return free, nil
}

// SuggestAlternatives returns the first count free slots in the seven days
// following preferred, using the configured business hours.
func (o *Oracle) SuggestAlternatives(ctx context.Context, preferred time.Time, durationMinutes, count int) ([]models.TimeRange, error) {
	r := models.TimeRange{Start: preferred, End: preferred.AddDate(0, 0, alternativesWindowDays)}
	slots, err := o.FreeSlots(ctx, r, durationMinutes, o.BusinessStart, o.BusinessEnd, o.WeekdaysOnly)
	if err != nil {
		return nil, err
	}
	if count >= 0 && len(slots) > count {
		slots = slots[:count]
	}
	return slots, nil
}

// Upcoming lists events from now through daysAhead days.
func (o *Oracle) Upcoming(ctx context.Context, daysAhead int) ([]models.CalendarEvent, error) {
	if daysAhead <= 0 {
		daysAhead = 7
	}
	now := o.now()
	return o.Cal.ListEvents(ctx, models.TimeRange{Start: now, End: now.AddDate(0, 0, daysAhead)}, upcomingMaxResults)
}

func (o *Oracle) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

func overlapsAny(r models.TimeRange, events []models.CalendarEvent) bool {
	for _, ev := range events {
		if ev.Range().Overlaps(r) {
			return true
		}
	}
	return false
}
