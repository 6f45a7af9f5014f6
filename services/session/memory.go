package session

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"tailortalk/models"
)

type memoryEntry struct {
	state   *models.ConversationState
	touched time.Time
}

// MemoryStore is an in-process Store with an idle TTL and a capacity bound.
// When full, the least recently saved session is evicted.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*memoryEntry
	ttl      time.Duration
	capacity int
	now      func() time.Time
}

// NewMemoryStore builds a store. ttl <= 0 disables expiry and capacity <= 0
// disables the size bound.
func NewMemoryStore(ttl time.Duration, capacity int) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*memoryEntry),
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
	}
}

// WithClock replaces the clock used for expiry; tests only.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) expired(e *memoryEntry, now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.touched) > s.ttl
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (*models.ConversationState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sessions[sessionID]
	if !ok || s.expired(e, s.now()) {
		return nil, ErrNotFound
	}
	return e.state.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, state *models.ConversationState) error {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[state.SessionID]; !exists && s.capacity > 0 && len(s.sessions) >= s.capacity {
		s.sweepLocked(now)
		if len(s.sessions) >= s.capacity {
			s.evictOldestLocked()
		}
	}
	s.sessions[state.SessionID] = &memoryEntry{state: state.Clone(), touched: now}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	delete(s.sessions, sessionID)
	if s.expired(e, s.now()) {
		return ErrNotFound
	}
	return nil
}

// List returns summaries of live sessions ordered by creation time.
func (s *MemoryStore) List(_ context.Context) ([]models.SessionSummary, error) {
	now := s.now()
	s.mu.RLock()
	states := make([]*models.ConversationState, 0, len(s.sessions))
	for _, e := range s.sessions {
		if !s.expired(e, now) {
			states = append(states, e.state)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(states, func(a, b *models.ConversationState) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.SessionID, b.SessionID)
	})
	out := make([]models.SessionSummary, 0, len(states))
	for _, st := range states {
		out = append(out, st.Summary())
	}
	return out, nil
}

// Len counts stored sessions, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep drops expired sessions and reports how many were removed.
func (s *MemoryStore) Sweep(_ context.Context) int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(now)
}

func (s *MemoryStore) sweepLocked(now time.Time) int {
	removed := 0
	for id, e := range s.sessions {
		if s.expired(e, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, e := range s.sessions {
		if oldestID == "" || e.touched.Before(oldest) {
			oldestID, oldest = id, e.touched
		}
	}
	if oldestID != "" {
		delete(s.sessions, oldestID)
	}
}
