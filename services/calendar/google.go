package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tailortalk/models"
	"tailortalk/utils"

	"go.uber.org/zap"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const allDayLayout = "2006-01-02"

// errEnoughEvents stops paging once max events are collected.
var errEnoughEvents = errors.New("enough events")

// GoogleCalendar talks to the Google Calendar v3 API with a service account.
type GoogleCalendar struct {
	svc             *gcal.Service
	calendarID      string
	credentialsPath string
	loc             *time.Location
}

// NewGoogleCalendar loads service account credentials from credentialsPath.
func NewGoogleCalendar(ctx context.Context, credentialsPath, calendarID string, loc *time.Location) (*GoogleCalendar, error) {
	svc, err := gcal.NewService(ctx,
		option.WithCredentialsFile(credentialsPath),
		option.WithScopes(gcal.CalendarScope),
	)
	if err != nil {
		return nil, fmt.Errorf("init google calendar: %w", err)
	}
	utils.GetLogger().Info("Google Calendar service initialized", zap.String("calendarID", calendarID))
	return &GoogleCalendar{svc: svc, calendarID: calendarID, credentialsPath: credentialsPath, loc: loc}, nil
}

func (g *GoogleCalendar) ListEvents(ctx context.Context, r models.TimeRange, max int) ([]models.CalendarEvent, error) {
	call := g.svc.Events.List(g.calendarID).
		TimeMin(r.Start.Format(time.RFC3339)).
		TimeMax(r.End.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime")
	if max > 0 {
		call = call.MaxResults(int64(max))
	}

	var out []models.CalendarEvent
	err := call.Pages(ctx, func(page *gcal.Events) error {
		out = g.collect(out, page.Items, max)
		if max > 0 && len(out) >= max {
			return errEnoughEvents
		}
		return nil
	})
	if err != nil && !errors.Is(err, errEnoughEvents) {
		return nil, fmt.Errorf("calendar API error: %w", err)
	}
	return out, nil
}

// collect converts items onto out, stopping at max when max > 0.
func (g *GoogleCalendar) collect(out []models.CalendarEvent, items []*gcal.Event, max int) []models.CalendarEvent {
	for _, item := range items {
		if max > 0 && len(out) >= max {
			break
		}
		ev, err := g.toEvent(item)
		if err != nil {
			utils.GetLogger().Warn("Skipping unreadable calendar event", zap.String("eventID", item.Id), zap.Error(err))
			continue
		}
		out = append(out, ev)
	}
	return out
}

func (g *GoogleCalendar) toEvent(item *gcal.Event) (models.CalendarEvent, error) {
	start, err := g.parseWhen(item.Start)
	if err != nil {
		return models.CalendarEvent{}, err
	}
	end, err := g.parseWhen(item.End)
	if err != nil {
		return models.CalendarEvent{}, err
	}
	summary := item.Summary
	if summary == "" {
		summary = "Busy"
	}
	ev := models.CalendarEvent{
		ID:          item.Id,
		Summary:     summary,
		Start:       start,
		End:         end,
		Description: item.Description,
		Location:    item.Location,
		Link:        item.HtmlLink,
	}
	for _, a := range item.Attendees {
		ev.Attendees = append(ev.Attendees, a.Email)
	}
	return ev, nil
}

// parseWhen reads either a timed or an all-day boundary.
func (g *GoogleCalendar) parseWhen(dt *gcal.EventDateTime) (time.Time, error) {
	if dt == nil {
		return time.Time{}, fmt.Errorf("event has no start or end")
	}
	if dt.DateTime != "" {
		return time.Parse(time.RFC3339, dt.DateTime)
	}
	return time.ParseInLocation(allDayLayout, dt.Date, g.loc)
}

func (g *GoogleCalendar) CreateEvent(ctx context.Context, req models.EventRequest) (models.EventResult, error) {
	ev := &gcal.Event{
		Summary:     req.Title,
		Description: req.Description,
		Location:    req.Location,
		Start: &gcal.EventDateTime{
			DateTime: req.Range.Start.Format(time.RFC3339),
			TimeZone: g.loc.String(),
		},
		End: &gcal.EventDateTime{
			DateTime: req.Range.End.Format(time.RFC3339),
			TimeZone: g.loc.String(),
		},
	}
	if req.AttendeeEmail != "" {
		ev.Attendees = []*gcal.EventAttendee{{Email: req.AttendeeEmail}}
	}

	created, err := g.svc.Events.Insert(g.calendarID, ev).Context(ctx).Do()
	if err != nil {
		err = fmt.Errorf("calendar API error: %w", err)
		return models.EventResult{Success: false, Error: err.Error()}, err
	}
	utils.GetLogger().Info("Event created", zap.String("eventID", created.Id))
	return models.EventResult{Success: true, EventID: created.Id, EventLink: created.HtmlLink}, nil
}

func (g *GoogleCalendar) Status(ctx context.Context) Status {
	st := Status{
		Backend:            "google",
		ServiceInitialized: true,
		CalendarID:         g.calendarID,
		CredentialsPath:    g.credentialsPath,
		Timezone:           g.loc.String(),
	}
	list, err := g.svc.CalendarList.List().Context(ctx).Do()
	if err != nil {
		st.Error = err.Error()
		return st
	}
	st.Connected = true
	st.CalendarCount = len(list.Items)
	return st
}
