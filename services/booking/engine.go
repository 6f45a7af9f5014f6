package booking

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"tailortalk/models"
	"tailortalk/services/session"
	"tailortalk/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Legal step changes. checking_availability is only ever passed through
// within a single message.
var transitions = map[models.Step][]models.Step{
	models.StepGreeting:             {models.StepGreeting, models.StepCollectingInfo, models.StepCheckingAvailability},
	models.StepCollectingInfo:       {models.StepCollectingInfo, models.StepCheckingAvailability},
	models.StepCheckingAvailability: {models.StepConfirming, models.StepCollectingInfo},
	models.StepConfirming:           {models.StepCompleted, models.StepCollectingInfo},
	models.StepCompleted:            {models.StepGreeting},
}

// DefaultConversationEngine implements ConversationService on top of a
// session Store and the extractor and calendar collaborators.
type DefaultConversationEngine struct {
	Store     session.Store
	Locks     *session.Locker
	Extractor Extractor
	Oracle    AvailabilityOracle
	Events    EventCreator
	// Budget for each collaborator call.
	Timeout time.Duration
	Now     func() time.Time
	NewID   func() string
}

// NewConversationEngine wires an engine with wall-clock time and uuid session ids.
func NewConversationEngine(store session.Store, extractor Extractor, oracle AvailabilityOracle, events EventCreator, timeout time.Duration) *DefaultConversationEngine {
	return &DefaultConversationEngine{
		Store:     store,
		Locks:     session.NewLocker(),
		Extractor: extractor,
		Oracle:    oracle,
		Events:    events,
		Timeout:   timeout,
		Now:       time.Now,
		NewID:     func() string { return uuid.New().String() },
	}
}

// ProcessMessage runs one user message through the state machine. Only
// storage failures are returned as errors; everything else becomes a reply.
func (e *DefaultConversationEngine) ProcessMessage(ctx context.Context, text, sessionID string) (*models.ChatResponse, error) {
	logger := utils.GetLogger()
	if sessionID == "" {
		sessionID = e.NewID()
	}

	unlock := e.Locks.Lock(sessionID)
	defer unlock()

	now := e.Now()
	state, err := e.Store.Get(ctx, sessionID)
	if errors.Is(err, session.ErrNotFound) {
		state = models.NewConversationState(sessionID, now)
	} else if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	working := state.Clone()
	reply, err := e.run(ctx, working, text, now)
	if err != nil {
		logger.Error("Conversation step failed, restoring previous state",
			zap.String("sessionID", sessionID),
			zap.String("step", string(state.CurrentStep)),
			zap.Error(err))
		working = state.Clone()
		reply = apologyReply
	}
	if reply == "" {
		reply = fallbackReply
		working.CurrentStep = models.StepGreeting
	}

	working.Append(models.RoleUser, text, now)
	working.Append(models.RoleAssistant, reply, now)
	if err := e.Store.Save(ctx, working); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	logger.Debug("Processed chat message",
		zap.String("sessionID", sessionID),
		zap.String("from", string(state.CurrentStep)),
		zap.String("to", string(working.CurrentStep)))

	return &models.ChatResponse{
		Response:            reply,
		SessionID:           sessionID,
		CurrentStep:         working.CurrentStep,
		ExtractedData:       working.Slots,
		SuggestedNextAction: NextAction(working.CurrentStep),
	}, nil
}

// run dispatches on the current step and turns panics into errors.
func (e *DefaultConversationEngine) run(ctx context.Context, s *models.ConversationState, text string, now time.Time) (reply string, err error) {
	defer func() {
		if r := recover(); r != nil {
			reply, err = "", newInternalError(r)
		}
	}()

	switch s.CurrentStep {
	case models.StepCompleted:
		if err := moveTo(s, models.StepGreeting); err != nil {
			return "", err
		}
		s.Slots.Date, s.Slots.Time = "", ""
		s.Confirmed = false
		s.Offered = nil
		return e.onGreeting(ctx, s, text, now)
	case models.StepGreeting:
		return e.onGreeting(ctx, s, text, now)
	case models.StepCollectingInfo:
		return e.onCollecting(ctx, s, text, now)
	case models.StepCheckingAvailability:
		// Left behind by an interrupted turn; resume collecting.
		if err := moveTo(s, models.StepCollectingInfo); err != nil {
			return "", err
		}
		return e.onCollecting(ctx, s, text, now)
	case models.StepConfirming:
		return e.onConfirming(ctx, s, text, now)
	}
	return "", nil
}

func moveTo(s *models.ConversationState, to models.Step) error {
	if !slices.Contains(transitions[s.CurrentStep], to) {
		return newTransitionError(string(s.CurrentStep), string(to))
	}
	s.CurrentStep = to
	return nil
}

func (e *DefaultConversationEngine) onGreeting(ctx context.Context, s *models.ConversationState, text string, now time.Time) (string, error) {
	ext := e.extract(ctx, text)
	s.Slots.Merge(ext.Slots)

	hasBookingData := s.Slots.Title != "" && (s.Slots.Date != "" || s.Slots.Time != "")
	if ext.Intent != models.IntentBooking && !hasBookingData {
		return greetingReply, nil
	}

	if len(s.Slots.Missing()) == 0 {
		return e.checkAndRespond(ctx, s, now, false)
	}
	if err := moveTo(s, models.StepCollectingInfo); err != nil {
		return "", err
	}
	return "I'll help you book an appointment. " + missingReply(s.Slots.Missing()), nil
}

func (e *DefaultConversationEngine) onCollecting(ctx context.Context, s *models.ConversationState, text string, now time.Time) (string, error) {
	if LooksLikeSelection(text) {
		picked, ok := SelectAlternative(text, s.Offered)
		if !ok {
			utils.GetLogger().Debug("Unmatched alternative selection",
				zap.String("sessionID", s.SessionID),
				zap.Error(NewInvalidSelectionError(text)))
			return invalidPickReply, nil
		}
		s.Slots.Date, s.Slots.Time = selectionSlots(picked)
		return e.checkAndRespond(ctx, s, now, true)
	}

	s.Slots.Merge(e.extract(ctx, text).Slots)
	if missing := s.Slots.Missing(); len(missing) > 0 {
		return missingReply(missing), nil
	}
	return e.checkAndRespond(ctx, s, now, false)
}

func (e *DefaultConversationEngine) onConfirming(ctx context.Context, s *models.ConversationState, text string, now time.Time) (string, error) {
	if !IsAffirmative(text) {
		// A bare refusal drops the rejected slot; a correction only replaces
		// what it names.
		ext := e.extract(ctx, text)
		if ext.Slots.Date == "" && ext.Slots.Time == "" {
			s.Slots.Date, s.Slots.Time = "", ""
		}
		s.Slots.Merge(ext.Slots)
		if err := moveTo(s, models.StepCollectingInfo); err != nil {
			return "", err
		}
		return declinedReply, nil
	}

	result := e.createEvent(ctx, s.Slots, now)
	if !result.Success {
		if err := moveTo(s, models.StepCollectingInfo); err != nil {
			return "", err
		}
		return bookingFailedReply(result.Error), nil
	}
	if err := moveTo(s, models.StepCompleted); err != nil {
		return "", err
	}
	s.Confirmed = true
	s.Offered = nil
	utils.GetLogger().Info("Booking confirmed",
		zap.String("sessionID", s.SessionID),
		zap.String("eventID", result.EventID))
	return bookedReply(s.Slots), nil
}

// checkAndRespond resolves the collected slots and asks the oracle about
// them. It serves both the greeting shortcut and collecting_info.
func (e *DefaultConversationEngine) checkAndRespond(ctx context.Context, s *models.ConversationState, now time.Time, picked bool) (string, error) {
	start, ok := ResolveDateTime(s.Slots.Date, s.Slots.Time, now)
	if !ok {
		utils.GetLogger().Debug("Asking user to clarify date",
			zap.String("sessionID", s.SessionID),
			zap.Error(NewUnresolvedDateTimeError(s.Slots.Date, s.Slots.Time)))
		if s.CurrentStep != models.StepCollectingInfo {
			if err := moveTo(s, models.StepCollectingInfo); err != nil {
				return "", err
			}
		}
		return unresolvedReply(s.Slots), nil
	}

	if err := moveTo(s, models.StepCheckingAvailability); err != nil {
		return "", err
	}
	requested := models.RangeFor(start, s.Slots.Duration())
	result, checkErr := e.check(ctx, requested)

	if result.Available {
		if err := moveTo(s, models.StepConfirming); err != nil {
			return "", err
		}
		s.Offered = nil
		if picked {
			return selectedReply(s.Slots), nil
		}
		return availableReply(s.Slots), nil
	}

	alternatives := e.alternatives(ctx, start, s.Slots.Duration())
	s.Offered = alternatives
	if err := moveTo(s, models.StepCollectingInfo); err != nil {
		return "", err
	}

	var reply string
	if picked {
		reply = takenReply(alternatives)
	} else {
		reply = unavailableReply(s.Slots, alternatives)
	}
	if checkErr != nil {
		reply = calendarDownPrefix + reply
	}
	return reply, nil
}

func (e *DefaultConversationEngine) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.Timeout)
}

func (e *DefaultConversationEngine) extract(ctx context.Context, text string) models.Extraction {
	cctx, cancel := e.callCtx(ctx)
	defer cancel()
	return e.Extractor.Extract(cctx, text)
}

// check treats any oracle failure as "not available".
func (e *DefaultConversationEngine) check(ctx context.Context, r models.TimeRange) (models.AvailabilityResult, error) {
	cctx, cancel := e.callCtx(ctx)
	defer cancel()
	result, err := e.Oracle.Check(cctx, r)
	if err != nil {
		utils.GetLogger().Warn("Availability check failed", zap.Error(err))
		return models.AvailabilityResult{Available: false, Message: err.Error()}, err
	}
	return result, nil
}

// alternatives asks the oracle first and falls back to the fixed heuristic.
func (e *DefaultConversationEngine) alternatives(ctx context.Context, start time.Time, minutes int) []models.TimeRange {
	cctx, cancel := e.callCtx(ctx)
	defer cancel()
	slots, err := e.Oracle.SuggestAlternatives(cctx, start, minutes, MaxAlternatives)
	if err != nil {
		utils.GetLogger().Warn("Alternative lookup failed, using fallback slots", zap.Error(err))
	}
	if err != nil || len(slots) == 0 {
		return FallbackAlternatives(start, minutes)
	}
	if len(slots) > MaxAlternatives {
		slots = slots[:MaxAlternatives]
	}
	return slots
}

func (e *DefaultConversationEngine) createEvent(ctx context.Context, slots models.BookingSlots, now time.Time) models.EventResult {
	start, ok := ResolveDateTime(slots.Date, slots.Time, now)
	if !ok {
		return models.EventResult{Success: false, Error: "Could not parse date/time"}
	}
	req := models.EventRequest{
		Title:         slots.Title,
		Description:   slots.Description,
		Range:         models.RangeFor(start, slots.Duration()),
		Location:      slots.Location,
		AttendeeEmail: slots.AttendeeEmail,
	}
	if req.Title == "" {
		req.Title = defaultEventTitle
	}
	if req.Description == "" {
		req.Description = defaultEventDescription
	}

	cctx, cancel := e.callCtx(ctx)
	defer cancel()
	result, err := e.Events.CreateEvent(cctx, req)
	if err != nil {
		utils.GetLogger().Error("Event creation failed", zap.Error(err))
		return models.EventResult{Success: false, Error: err.Error()}
	}
	return result
}

// History returns the stored conversation. It never mutates state.
func (e *DefaultConversationEngine) History(ctx context.Context, sessionID string) (*models.HistoryResponse, error) {
	state, err := e.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &models.HistoryResponse{
		SessionID:           state.SessionID,
		CurrentStep:         state.CurrentStep,
		ConversationHistory: state.History,
		ExtractedData:       state.Slots,
		ConfirmedBooking:    state.Confirmed,
	}, nil
}

func (e *DefaultConversationEngine) DeleteSession(ctx context.Context, sessionID string) error {
	unlock := e.Locks.Lock(sessionID)
	defer unlock()
	return e.Store.Delete(ctx, sessionID)
}

func (e *DefaultConversationEngine) ListSessions(ctx context.Context) ([]models.SessionSummary, error) {
	return e.Store.List(ctx)
}
