package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"tailortalk/models"
	"tailortalk/utils"

	"github.com/go-redis/redis/v8"
)

// RedisStore keeps each conversation as a JSON value under
// utils.SessionCachePrefix+sessionID. The key TTL is refreshed on every save.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) key(sessionID string) string {
	return utils.SessionCachePrefix + sessionID
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*models.ConversationState, error) {
	data, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session %s: %w", sessionID, err)
	}
	var state models.ConversationState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	if state.History == nil {
		state.History = []models.HistoryEntry{}
	}
	return &state, nil
}

func (s *RedisStore) Save(ctx context.Context, state *models.ConversationState) error {
	b, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", state.SessionID, err)
	}
	if err := s.client.Set(ctx, s.key(state.SessionID), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session %s: %w", state.SessionID, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	n, err := s.client.Del(ctx, s.key(sessionID)).Result()
	if err != nil {
		return fmt.Errorf("redis del session %s: %w", sessionID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// List scans the session keyspace. Keys that vanish mid-scan are skipped.
func (s *RedisStore) List(ctx context.Context) ([]models.SessionSummary, error) {
	var out []models.SessionSummary
	iter := s.client.Scan(ctx, 0, utils.SessionCachePrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		id := iter.Val()[len(utils.SessionCachePrefix):]
		state, err := s.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, state.Summary())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan sessions: %w", err)
	}
	slices.SortFunc(out, func(a, b models.SessionSummary) int {
		switch {
		case a.SessionID < b.SessionID:
			return -1
		case a.SessionID > b.SessionID:
			return 1
		}
		return 0
	})
	if out == nil {
		out = []models.SessionSummary{}
	}
	return out, nil
}
