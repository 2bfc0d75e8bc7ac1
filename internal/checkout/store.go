package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists wizard state across requests and page reloads for
// the lifetime of a browsing session.
type Store interface {
	Load(ctx context.Context, sessionID string) (*State, error)
	Save(ctx context.Context, sessionID string, state *State) error
	Clear(ctx context.Context, sessionID string) error
}

// RedisStore keeps one JSON state document per session key with a
// rolling TTL. The payload round-trips through the client's session,
// so it is treated as untrusted on load: anything that fails shape
// validation is replaced by a fresh state rather than rejected.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore builds a RedisStore. ttl bounds how long an abandoned
// checkout survives; every Save renews it.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func sessionKey(sessionID string) string { return "checkout:" + sessionID }

// Load returns the session's wizard state, or a fresh empty state
// when none exists or the stored payload is malformed.
func (s *RedisStore) Load(ctx context.Context, sessionID string) (*State, error) {
	raw, err := s.rdb.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return NewState(0), nil
	}
	if err != nil {
		return nil, err
	}
	state, ok := decodeState(raw)
	if !ok {
		return NewState(0), nil
	}
	return state, nil
}

// Save persists the state and renews the session TTL.
func (s *RedisStore) Save(ctx context.Context, sessionID string, state *State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, sessionKey(sessionID), raw, s.ttl).Err()
}

// Clear removes the session's state. Called after a successful
// reservation submission.
func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, sessionKey(sessionID)).Err()
}

// decodeState parses and validates a persisted payload. It rejects
// unknown versions, out-of-range steps and a missing form map, so a
// tampered or stale session can never put the wizard into a state its
// own operations could not reach.
func decodeState(raw []byte) (*State, bool) {
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, false
	}
	if st.Version != stateVersion {
		return nil, false
	}
	if st.CurrentStep < FirstStep || st.CurrentStep > LastStep {
		return nil, false
	}
	if st.FormData == nil {
		st.FormData = map[string]string{}
	}
	return &st, true
}
