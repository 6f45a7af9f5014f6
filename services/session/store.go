package session

import (
	"context"
	"errors"

	"tailortalk/models"
)

// ErrNotFound is returned for unknown, deleted or expired session ids.
var ErrNotFound = errors.New("session not found")

// Store keeps conversation state between chat turns. Implementations must be
// safe for concurrent use across sessions; callers serialise access to a
// single session with a Locker.
type Store interface {
	Get(ctx context.Context, sessionID string) (*models.ConversationState, error)
	Save(ctx context.Context, state *models.ConversationState) error
	Delete(ctx context.Context, sessionID string) error
	List(ctx context.Context) ([]models.SessionSummary, error)
}
