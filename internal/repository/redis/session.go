package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/kango-hamed/musia-guide/internal/domain"
	"github.com/rs/zerolog/log"
)

const sessionKeyPrefix = "session:"

// SessionStore keeps visitor sessions in Redis with a fixed TTL. When the
// backend errors, the store switches to a process-local map for the rest of
// the process lifetime and keeps serving; backend outages are never
// surfaced to callers. The in-memory fallback does not expire entries.
type SessionStore struct {
	backend Backend
	ttl     time.Duration

	mu       sync.RWMutex
	memory   map[string][]byte
	degraded bool
}

// NewSessionStore creates a session store backed by the given key-value
// backend with the given time-to-live for remote entries.
func NewSessionStore(backend Backend, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionStore{
		backend: backend,
		ttl:     ttl,
		memory:  make(map[string][]byte),
	}
}

// Degraded reports whether the store has fallen back to process memory.
func (s *SessionStore) Degraded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.degraded
}

func (s *SessionStore) fallBack(id string, err error) {
	s.mu.Lock()
	if !s.degraded {
		s.degraded = true
		log.Warn().Msg("session store falling back to in-memory map (entries will not expire)")
	}
	s.mu.Unlock()
	log.Error().Err(err).Str("session_id", id).Msg("session backend error")
}

// Create stores a new session
func (s *SessionStore) Create(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.write(ctx, session.ID, data)
}

// Update replaces the stored session whole and re-applies the TTL
func (s *SessionStore) Update(ctx context.Context, session *domain.Session) error {
	return s.Create(ctx, session)
}

func (s *SessionStore) write(ctx context.Context, id string, data []byte) error {
	if !s.Degraded() {
		err := s.backend.SetEx(ctx, sessionKeyPrefix+id, data, s.ttl)
		if err == nil {
			return nil
		}
		s.fallBack(id, err)
	}
	s.mu.Lock()
	s.memory[id] = data
	s.mu.Unlock()
	return nil
}

// Get retrieves a session. A missing session is (nil, nil), not an error.
func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	var data []byte

	if !s.Degraded() {
		remote, err := s.backend.Get(ctx, sessionKeyPrefix+id)
		switch {
		case err == nil:
			data = remote
		case errors.Is(err, ErrNil):
			// Genuine remote miss; the fallback map may still hold the
			// session if it was written during an earlier outage.
		default:
			s.fallBack(id, err)
		}
	}

	if data == nil {
		s.mu.RLock()
		data = s.memory[id]
		s.mu.RUnlock()
	}
	if data == nil {
		return nil, nil
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Delete removes a session from both tiers
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if !s.Degraded() {
		if err := s.backend.Del(ctx, sessionKeyPrefix+id); err != nil {
			s.fallBack(id, err)
		}
	}
	s.mu.Lock()
	delete(s.memory, id)
	s.mu.Unlock()
	return nil
}

// Touch extends the TTL of a remote session to the full window. It is a
// no-op on the in-memory fallback.
func (s *SessionStore) Touch(ctx context.Context, id string) error {
	if s.Degraded() {
		return nil
	}
	if err := s.backend.Expire(ctx, sessionKeyPrefix+id, s.ttl); err != nil {
		s.fallBack(id, err)
	}
	return nil
}
