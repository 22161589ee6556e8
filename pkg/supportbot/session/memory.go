package session

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps histories in process memory. Histories do not survive a
// restart; use it for local runs and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*memSession
}

type memSession struct {
	mu        sync.RWMutex
	turns     []Turn
	updatedAt time.Time
}

var (
	_ Store  = &MemoryStore{}
	_ Lister = &MemoryStore{}
)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*memSession)}
}

func (s *MemoryStore) get(sessionID string, create bool) *memSession {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok || !create {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok = s.sessions[sessionID]; !ok {
		sess = &memSession{}
		s.sessions[sessionID] = sess
	}
	return sess
}

func (s *MemoryStore) Append(_ context.Context, sessionID string, turn Turn) error {
	turn, err := prepareTurn(sessionID, turn)
	if err != nil {
		return err
	}
	sess := s.get(sessionID, true)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.turns = append(sess.turns, turn)
	sess.updatedAt = turn.CreatedAt
	return nil
}

func (s *MemoryStore) History(_ context.Context, sessionID string) ([]Turn, error) {
	if err := validateID(sessionID); err != nil {
		return nil, err
	}
	sess := s.get(sessionID, false)
	if sess == nil {
		return []Turn{}, nil
	}
	sess.mu.RLock()
	defer sess.mu.RUnlock()
	out := make([]Turn, len(sess.turns))
	copy(out, sess.turns)
	return out, nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	if err := validateID(sessionID); err != nil {
		return err
	}
	sess := s.get(sessionID, false)
	if sess == nil {
		return nil
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.turns = nil
	sess.updatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) Sessions(_ context.Context) ([]Summary, error) {
	s.mu.RLock()
	out := make([]Summary, 0, len(s.sessions))
	for id, sess := range s.sessions {
		sess.mu.RLock()
		out = append(out, Summary{ID: id, Turns: len(sess.turns), UpdatedAt: sess.updatedAt})
		sess.mu.RUnlock()
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
