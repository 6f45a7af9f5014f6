package booking

import (
	"context"
	"time"

	"tailortalk/models"
)

// ConversationService drives the booking dialogue for chat sessions.
type ConversationService interface {
	ProcessMessage(ctx context.Context, text, sessionID string) (*models.ChatResponse, error)
	History(ctx context.Context, sessionID string) (*models.HistoryResponse, error)
	DeleteSession(ctx context.Context, sessionID string) error
	ListSessions(ctx context.Context) ([]models.SessionSummary, error)
}

// Extractor reads intent and booking slots out of one message. It never
// fails; backends degrade to a deterministic parser internally.
type Extractor interface {
	Extract(ctx context.Context, message string) models.Extraction
}

// AvailabilityOracle answers calendar questions for the engine.
type AvailabilityOracle interface {
	Check(ctx context.Context, r models.TimeRange) (models.AvailabilityResult, error)
	SuggestAlternatives(ctx context.Context, preferred time.Time, durationMinutes, count int) ([]models.TimeRange, error)
}

// EventCreator books the confirmed slot in the calendar of record.
type EventCreator interface {
	CreateEvent(ctx context.Context, req models.EventRequest) (models.EventResult, error)
}
