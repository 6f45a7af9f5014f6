package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"tailortalk/models"
	"tailortalk/services/calendar"
	ai "tailortalk/services/intelligence"
	"tailortalk/services/session"
)

type extractFunc func(ctx context.Context, message string) models.Extraction

func (f extractFunc) Extract(ctx context.Context, message string) models.Extraction {
	return f(ctx, message)
}

// brokenOracle fails every calendar call.
type brokenOracle struct{}

func (brokenOracle) Check(context.Context, models.TimeRange) (models.AvailabilityResult, error) {
	return models.AvailabilityResult{}, calendar.ErrUnavailable
}

func (brokenOracle) SuggestAlternatives(context.Context, time.Time, int, int) ([]models.TimeRange, error) {
	return nil, calendar.ErrUnavailable
}

type fixture struct {
	engine *DefaultConversationEngine
	store  *session.MemoryStore
	cal    *calendar.MemoryCalendar
}

func newFixture(t *testing.T, events ...models.CalendarEvent) *fixture {
	t.Helper()
	clock := func() time.Time { return refNow }

	store := session.NewMemoryStore(time.Hour, 100).WithClock(clock)
	cal := calendar.NewMemoryCalendar(events...)
	oracle := calendar.NewOracle(cal, 9, 17, true)
	oracle.Now = clock

	extractor := ai.NewSlotExtractor(ai.BackendNone, nil, nil)
	engine := NewConversationEngine(store, extractor, oracle, cal, time.Second)
	engine.Now = clock

	n := 0
	engine.NewID = func() string {
		n++
		return fmt.Sprintf("session-%d", n)
	}
	return &fixture{engine: engine, store: store, cal: cal}
}

func (f *fixture) send(t *testing.T, text, sessionID string) *models.ChatResponse {
	t.Helper()
	resp, err := f.engine.ProcessMessage(context.Background(), text, sessionID)
	if err != nil {
		t.Fatalf("ProcessMessage(%q): %v", text, err)
	}
	return resp
}

func (f *fixture) state(t *testing.T, sessionID string) *models.ConversationState {
	t.Helper()
	st, err := f.store.Get(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("Get(%q): %v", sessionID, err)
	}
	return st
}

func busyAt(start time.Time) models.CalendarEvent {
	return models.CalendarEvent{Summary: "Standup", Start: start, End: start.Add(time.Hour)}
}

func TestBookingHappyPath(t *testing.T) {
	f := newFixture(t)

	resp := f.send(t, "Book a meeting tomorrow at 2 PM", "")
	if resp.SessionID != "session-1" {
		t.Fatalf("SessionID = %q, want a freshly allocated id", resp.SessionID)
	}
	if resp.CurrentStep != models.StepConfirming {
		t.Fatalf("step = %s, want confirming (reply %q)", resp.CurrentStep, resp.Response)
	}
	if resp.ExtractedData.Title != "Meeting" {
		t.Errorf("title = %q, want Meeting", resp.ExtractedData.Title)
	}
	if !strings.Contains(resp.Response, "is available") {
		t.Errorf("reply %q should say the slot is available", resp.Response)
	}
	if resp.SuggestedNextAction != NextAction(models.StepConfirming) {
		t.Errorf("next action = %q", resp.SuggestedNextAction)
	}

	resp = f.send(t, "yes", resp.SessionID)
	if resp.CurrentStep != models.StepCompleted {
		t.Fatalf("step = %s, want completed (reply %q)", resp.CurrentStep, resp.Response)
	}

	events := f.cal.Events()
	if len(events) != 1 {
		t.Fatalf("calendar has %d events, want 1", len(events))
	}
	want := time.Date(2025, 1, 16, 14, 0, 0, 0, time.UTC)
	if !events[0].Start.Equal(want) || events[0].End.Sub(events[0].Start) != time.Hour {
		t.Errorf("event spans %v-%v, want one hour from %v", events[0].Start, events[0].End, want)
	}
	if events[0].Summary != "Meeting" {
		t.Errorf("event summary = %q", events[0].Summary)
	}

	hist, err := f.engine.History(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if !hist.ConfirmedBooking {
		t.Error("history should report a confirmed booking")
	}
	if len(hist.ConversationHistory) != 4 {
		t.Fatalf("history has %d entries, want 4", len(hist.ConversationHistory))
	}
	roles := []string{models.RoleUser, models.RoleAssistant, models.RoleUser, models.RoleAssistant}
	for i, e := range hist.ConversationHistory {
		if e.Role != roles[i] {
			t.Errorf("entry %d role = %s, want %s", i, e.Role, roles[i])
		}
	}
}

func TestGreetingWithoutIntent(t *testing.T) {
	f := newFixture(t)

	resp := f.send(t, "What's the weather like?", "")
	if resp.CurrentStep != models.StepGreeting {
		t.Errorf("step = %s, want greeting", resp.CurrentStep)
	}
	if resp.Response != greetingReply {
		t.Errorf("reply = %q, want the greeting", resp.Response)
	}
}

func TestCollectsMissingFields(t *testing.T) {
	f := newFixture(t)

	resp := f.send(t, "I want to book a meeting", "")
	if resp.CurrentStep != models.StepCollectingInfo {
		t.Fatalf("step = %s, want collecting_info", resp.CurrentStep)
	}
	if !strings.Contains(resp.Response, "the date and the time") {
		t.Errorf("reply %q should ask for the date and the time", resp.Response)
	}

	resp = f.send(t, "schedule it tomorrow at 3pm", resp.SessionID)
	if resp.CurrentStep != models.StepConfirming {
		t.Fatalf("step = %s, want confirming (reply %q)", resp.CurrentStep, resp.Response)
	}
	if resp.ExtractedData.Date != "tomorrow" || resp.ExtractedData.Time != "3pm" {
		t.Errorf("slots = %+v", resp.ExtractedData)
	}
}

func TestUnresolvableDateAsksAgain(t *testing.T) {
	f := newFixture(t)
	ext := extractFunc(func(context.Context, string) models.Extraction {
		return models.Extraction{
			Intent: models.IntentBooking,
			Slots:  models.BookingSlots{Title: "Meeting", Date: "the day after the holidays", Time: "2 pm"},
		}
	})
	f.engine.Extractor = ext

	resp := f.send(t, "book it", "")
	if resp.CurrentStep != models.StepCollectingInfo {
		t.Fatalf("step = %s, want collecting_info", resp.CurrentStep)
	}
	if !strings.Contains(resp.Response, "the day after the holidays") {
		t.Errorf("reply %q should quote the unresolved date", resp.Response)
	}
	if len(f.cal.Events()) != 0 {
		t.Error("nothing should be booked")
	}
}

func TestBusySlotOffersAlternatives(t *testing.T) {
	f := newFixture(t, busyAt(time.Date(2025, 1, 16, 14, 0, 0, 0, time.UTC)))

	resp := f.send(t, "Book a meeting tomorrow at 2 PM", "")
	if resp.CurrentStep != models.StepCollectingInfo {
		t.Fatalf("step = %s, want collecting_info (reply %q)", resp.CurrentStep, resp.Response)
	}
	for _, line := range []string{"1. ", "2. ", "3. "} {
		if !strings.Contains(resp.Response, line) {
			t.Errorf("reply %q is missing option %q", resp.Response, line)
		}
	}

	st := f.state(t, resp.SessionID)
	if len(st.Offered) != MaxAlternatives {
		t.Fatalf("offered %d alternatives, want %d", len(st.Offered), MaxAlternatives)
	}
	for i := 1; i < len(st.Offered); i++ {
		if !st.Offered[i-1].Start.Before(st.Offered[i].Start) {
			t.Errorf("alternatives out of order: %v then %v", st.Offered[i-1].Start, st.Offered[i].Start)
		}
	}
	second := st.Offered[1]

	resp = f.send(t, "2", resp.SessionID)
	if resp.CurrentStep != models.StepConfirming {
		t.Fatalf("step = %s, want confirming (reply %q)", resp.CurrentStep, resp.Response)
	}
	wantDate, wantTime := selectionSlots(second)
	if resp.ExtractedData.Date != wantDate || resp.ExtractedData.Time != wantTime {
		t.Errorf("slots = %s %s, want %s %s", resp.ExtractedData.Date, resp.ExtractedData.Time, wantDate, wantTime)
	}
	if st := f.state(t, resp.SessionID); len(st.Offered) != 0 {
		t.Error("offered alternatives should be cleared once a slot is accepted")
	}
}

func TestInvalidSelectionLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	seed := models.NewConversationState("picky", refNow)
	seed.CurrentStep = models.StepCollectingInfo
	seed.Slots = models.BookingSlots{Title: "Meeting", Date: "tomorrow", Time: "2 pm", DurationMinutes: 60}
	seed.Offered = FallbackAlternatives(time.Date(2025, 1, 16, 14, 0, 0, 0, time.UTC), 60)[:2]
	if err := f.store.Save(ctx, seed); err != nil {
		t.Fatalf("Save: %v", err)
	}

	resp := f.send(t, "3", "picky")
	if resp.Response != invalidPickReply {
		t.Errorf("reply = %q, want the invalid pick reply", resp.Response)
	}

	st := f.state(t, "picky")
	if st.CurrentStep != seed.CurrentStep || st.Slots != seed.Slots || len(st.Offered) != 2 {
		t.Errorf("state changed: %+v", st)
	}
	if len(st.History) != 2 {
		t.Errorf("history has %d entries, want 2", len(st.History))
	}
}

func TestConfirmationFailureReturnsToCollecting(t *testing.T) {
	f := newFixture(t)
	f.cal.FailCreate = errors.New("quota exceeded")

	resp := f.send(t, "Book a meeting tomorrow at 2 PM", "")
	resp = f.send(t, "yes please", resp.SessionID)
	if resp.CurrentStep != models.StepCollectingInfo {
		t.Fatalf("step = %s, want collecting_info", resp.CurrentStep)
	}
	if !strings.Contains(resp.Response, "quota exceeded") {
		t.Errorf("reply %q should carry the calendar error", resp.Response)
	}
	if f.state(t, resp.SessionID).Confirmed {
		t.Error("failed booking must not be confirmed")
	}
}

func TestDeclineClearsDateAndTime(t *testing.T) {
	f := newFixture(t)

	resp := f.send(t, "Book a meeting tomorrow at 2 PM", "")
	resp = f.send(t, "no, not then", resp.SessionID)
	if resp.CurrentStep != models.StepCollectingInfo {
		t.Fatalf("step = %s, want collecting_info", resp.CurrentStep)
	}
	if resp.Response != declinedReply {
		t.Errorf("reply = %q", resp.Response)
	}
	if resp.ExtractedData.Date != "" || resp.ExtractedData.Time != "" {
		t.Errorf("date/time should be cleared, got %+v", resp.ExtractedData)
	}
	if resp.ExtractedData.Title != "Meeting" {
		t.Errorf("title should survive a decline, got %q", resp.ExtractedData.Title)
	}
}

func TestDeclineWithNewTimeKeepsDate(t *testing.T) {
	f := newFixture(t)
	resp := f.send(t, "Book a meeting tomorrow at 2 PM", "")

	f.engine.Extractor = extractFunc(func(context.Context, string) models.Extraction {
		return models.Extraction{Intent: models.IntentBooking, Slots: models.BookingSlots{Time: "4pm"}}
	})
	resp = f.send(t, "no, make it 4pm", resp.SessionID)
	if resp.CurrentStep != models.StepCollectingInfo {
		t.Fatalf("step = %s, want collecting_info", resp.CurrentStep)
	}
	if resp.ExtractedData.Date != "tomorrow" || resp.ExtractedData.Time != "4pm" {
		t.Errorf("slots = %+v, want tomorrow at 4pm", resp.ExtractedData)
	}
	if missing := resp.ExtractedData.Missing(); len(missing) != 0 {
		t.Errorf("nothing should be missing after a time correction, got %v", missing)
	}
}

func TestCompletedSessionStartsOver(t *testing.T) {
	f := newFixture(t)

	resp := f.send(t, "Book a meeting tomorrow at 2 PM", "")
	f.send(t, "yes", resp.SessionID)

	resp = f.send(t, "hi again", resp.SessionID)
	if resp.CurrentStep != models.StepGreeting {
		t.Errorf("step = %s, want greeting", resp.CurrentStep)
	}
	if f.state(t, resp.SessionID).Confirmed {
		t.Error("a new booking round should reset the confirmation flag")
	}
}

func TestCalendarOutageUsesFallbackAlternatives(t *testing.T) {
	f := newFixture(t)
	f.engine.Oracle = brokenOracle{}

	resp := f.send(t, "Book a meeting tomorrow at 2 PM", "")
	if resp.CurrentStep != models.StepCollectingInfo {
		t.Fatalf("step = %s, want collecting_info", resp.CurrentStep)
	}
	if !strings.HasPrefix(resp.Response, calendarDownPrefix) {
		t.Errorf("reply %q should explain the calendar is unreachable", resp.Response)
	}

	want := FallbackAlternatives(time.Date(2025, 1, 16, 14, 0, 0, 0, time.UTC), 60)
	got := f.state(t, resp.SessionID).Offered
	if len(got) != len(want) {
		t.Fatalf("offered %d alternatives, want %d", len(got), len(want))
	}
	for i := range want {
		if !got[i].Start.Equal(want[i].Start) {
			t.Errorf("alternative %d = %v, want %v", i, got[i].Start, want[i].Start)
		}
	}
}

func TestPanicRestoresState(t *testing.T) {
	f := newFixture(t)
	f.engine.Extractor = extractFunc(func(context.Context, string) models.Extraction {
		panic("boom")
	})

	resp := f.send(t, "book something", "")
	if resp.Response != apologyReply {
		t.Errorf("reply = %q, want the apology", resp.Response)
	}
	if resp.CurrentStep != models.StepGreeting {
		t.Errorf("step = %s, want greeting", resp.CurrentStep)
	}
	if st := f.state(t, resp.SessionID); len(st.History) != 2 {
		t.Errorf("history has %d entries, want 2", len(st.History))
	}
}

func TestStepsStayValid(t *testing.T) {
	f := newFixture(t, busyAt(time.Date(2025, 1, 16, 14, 0, 0, 0, time.UTC)))
	messages := []string{
		"hello", "book a meeting", "tomorrow at 2 pm", "option 1", "no",
		"3", "tomorrow 4pm", "yes", "again?", "book an appointment today at 4pm", "ok",
	}

	id := ""
	for _, m := range messages {
		resp := f.send(t, m, id)
		id = resp.SessionID
		if !resp.CurrentStep.Valid() {
			t.Fatalf("after %q step %q is not valid", m, resp.CurrentStep)
		}
		if resp.CurrentStep == models.StepCheckingAvailability {
			t.Fatalf("after %q the session rests in checking_availability", m)
		}
		if resp.Response == "" {
			t.Fatalf("after %q the reply is empty", m)
		}
	}
	if n := len(f.state(t, id).History); n != 2*len(messages) {
		t.Errorf("history has %d entries, want %d", n, 2*len(messages))
	}
}

func TestConcurrentMessagesOnOneSession(t *testing.T) {
	f := newFixture(t)
	f.send(t, "hello", "shared")

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.engine.ProcessMessage(context.Background(), "hello there", "shared"); err != nil {
				t.Errorf("ProcessMessage: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := len(f.state(t, "shared").History); n != 2*(workers+1) {
		t.Errorf("history has %d entries, want %d", n, 2*(workers+1))
	}
	if held := f.engine.Locks.Held(); held != 0 {
		t.Errorf("%d session locks still held", held)
	}
}

func TestHistoryAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.engine.History(ctx, "missing"); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("History(missing) err = %v, want ErrNotFound", err)
	}
	if err := f.engine.DeleteSession(ctx, "missing"); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("DeleteSession(missing) err = %v, want ErrNotFound", err)
	}

	resp := f.send(t, "hello", "")
	first, err := f.engine.History(ctx, resp.SessionID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	second, err := f.engine.History(ctx, resp.SessionID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(first.ConversationHistory) != len(second.ConversationHistory) || first.CurrentStep != second.CurrentStep {
		t.Error("reading history changed the session")
	}

	sessions, err := f.engine.ListSessions(ctx)
	if err != nil || len(sessions) != 1 || sessions[0].MessageCount != 2 {
		t.Fatalf("ListSessions = %+v, %v", sessions, err)
	}

	if err := f.engine.DeleteSession(ctx, resp.SessionID); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if _, err := f.engine.History(ctx, resp.SessionID); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("History after delete err = %v, want ErrNotFound", err)
	}
}

// stalledOracle never answers until the caller gives up.
type stalledOracle struct{}

func (stalledOracle) Check(ctx context.Context, _ models.TimeRange) (models.AvailabilityResult, error) {
	<-ctx.Done()
	return models.AvailabilityResult{}, ctx.Err()
}

func (stalledOracle) SuggestAlternatives(ctx context.Context, _ time.Time, _, _ int) ([]models.TimeRange, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type stalledCompleter struct{}

func (stalledCompleter) Complete(ctx context.Context, _, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestSlowCollaboratorsTimeOut(t *testing.T) {
	f := newFixture(t)
	f.engine.Timeout = 20 * time.Millisecond
	f.engine.Oracle = stalledOracle{}
	f.engine.Extractor = ai.NewSlotExtractor(ai.BackendCompletion, stalledCompleter{}, nil)

	start := time.Now()
	resp := f.send(t, "Book a meeting tomorrow at 2 PM", "")
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("reply took %v, collaborator calls are not bounded", elapsed)
	}

	if resp.CurrentStep != models.StepCollectingInfo {
		t.Fatalf("step = %s, want collecting_info (reply %q)", resp.CurrentStep, resp.Response)
	}
	if !strings.HasPrefix(resp.Response, calendarDownPrefix) {
		t.Errorf("reply %q should explain the calendar is unreachable", resp.Response)
	}
	if resp.ExtractedData.Title != "Meeting" {
		t.Errorf("title = %q, want the pattern extraction result", resp.ExtractedData.Title)
	}

	want := FallbackAlternatives(time.Date(2025, 1, 16, 14, 0, 0, 0, time.UTC), 60)
	got := f.state(t, resp.SessionID).Offered
	if len(got) != len(want) {
		t.Fatalf("offered %d alternatives, want %d", len(got), len(want))
	}
	for i := range want {
		if !got[i].Start.Equal(want[i].Start) || !got[i].End.Equal(want[i].End) {
			t.Errorf("alternative %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSlowEventCreationFailsBooking(t *testing.T) {
	f := newFixture(t)
	resp := f.send(t, "Book a meeting tomorrow at 2 PM", "")

	f.engine.Timeout = 20 * time.Millisecond
	f.engine.Events = stalledCreator{}
	resp = f.send(t, "yes", resp.SessionID)
	if resp.CurrentStep != models.StepCollectingInfo {
		t.Fatalf("step = %s, want collecting_info", resp.CurrentStep)
	}
	if !strings.Contains(resp.Response, context.DeadlineExceeded.Error()) {
		t.Errorf("reply %q should report the timeout", resp.Response)
	}
	if f.state(t, resp.SessionID).Confirmed {
		t.Error("timed out booking must not be confirmed")
	}
}

type stalledCreator struct{}

func (stalledCreator) CreateEvent(ctx context.Context, _ models.EventRequest) (models.EventResult, error) {
	<-ctx.Done()
	return models.EventResult{}, ctx.Err()
}
