package models

import "time"

// Step is the position of a conversation in the booking state machine.
type Step string

const (
	StepGreeting             Step = "greeting"
	StepCollectingInfo       Step = "collecting_info"
	StepCheckingAvailability Step = "checking_availability"
	StepConfirming           Step = "confirming"
	StepCompleted            Step = "completed"
)

// Valid reports whether s is one of the five known steps.
func (s Step) Valid() bool {
	switch s {
	case StepGreeting, StepCollectingInfo, StepCheckingAvailability, StepConfirming, StepCompleted:
		return true
	}
	return false
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// HistoryEntry is one utterance in a conversation.
type HistoryEntry struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationState holds context between chat turns for one session.
type ConversationState struct {
	SessionID   string         `json:"session_id"`
	CurrentStep Step           `json:"current_step"`
	Slots       BookingSlots   `json:"slots"`
	History     []HistoryEntry `json:"history"`
	Confirmed   bool           `json:"confirmed"`
	// Alternatives last offered to the user, in the order they were listed.
	Offered   []TimeRange `json:"offered_alternatives,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewConversationState starts a conversation at the greeting step.
func NewConversationState(sessionID string, now time.Time) *ConversationState {
	return &ConversationState{
		SessionID:   sessionID,
		CurrentStep: StepGreeting,
		Slots:       NewBookingSlots(),
		History:     []HistoryEntry{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Clone returns a deep copy so callers never share slices with a store.
func (s *ConversationState) Clone() *ConversationState {
	if s == nil {
		return nil
	}
	out := *s
	out.History = append([]HistoryEntry(nil), s.History...)
	if out.History == nil {
		out.History = []HistoryEntry{}
	}
	out.Offered = append([]TimeRange(nil), s.Offered...)
	return &out
}

// Append records one utterance.
func (s *ConversationState) Append(role, text string, at time.Time) {
	s.History = append(s.History, HistoryEntry{Role: role, Text: text, Timestamp: at})
	s.UpdatedAt = at
}

// LastActivity is the timestamp of the latest history entry, if any.
func (s *ConversationState) LastActivity() *time.Time {
	if len(s.History) == 0 {
		return nil
	}
	ts := s.History[len(s.History)-1].Timestamp
	return &ts
}

// Summary condenses the state for session listings.
func (s *ConversationState) Summary() SessionSummary {
	return SessionSummary{
		SessionID:    s.SessionID,
		CurrentStep:  s.CurrentStep,
		MessageCount: len(s.History),
		Confirmed:    s.Confirmed,
		LastActivity: s.LastActivity(),
	}
}

// SessionSummary is one row of the session listing.
type SessionSummary struct {
	SessionID    string     `json:"session_id"`
	CurrentStep  Step       `json:"current_step"`
	MessageCount int        `json:"message_count"`
	Confirmed    bool       `json:"confirmed_booking"`
	LastActivity *time.Time `json:"last_activity"`
}
