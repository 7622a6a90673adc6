package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/zhouzirui/manga-thumb/backend/internal/model/chat"
)

var (
	ErrUserKeyRequired = errors.New("user key is required")
	ErrSessionNotFound = errors.New("session not found")
)

// Service keeps questionnaire sessions in memory, keyed by transport user key.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]chat.Session
	now      func() time.Time
}

// NewService bootstraps an empty in-memory session store.
func NewService() *Service {
	return &Service{
		sessions: make(map[string]chat.Session),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start provisions a fresh session for the user, replacing any existing one.
func (s *Service) Start(_ context.Context, userKey string) (chat.Session, error) {
	if userKey == "" {
		return chat.Session{}, ErrUserKeyRequired
	}

	now := s.now()
	session := chat.Session{
		UserKey:   userKey,
		State:     chat.StateName,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.sessions[userKey] = session
	s.mu.Unlock()

	return session, nil
}

// Get retrieves the active session of a user.
func (s *Service) Get(_ context.Context, userKey string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[userKey]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return session, nil
}

// Save stores the mutated session. The session must have been started.
func (s *Service) Save(_ context.Context, session chat.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.UserKey]; !ok {
		return ErrSessionNotFound
	}

	session.UpdatedAt = s.now()
	s.sessions[session.UserKey] = session
	return nil
}

// Discard removes the user's session and returns it so callers can release its artifacts.
func (s *Service) Discard(_ context.Context, userKey string) (chat.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[userKey]
	if ok {
		delete(s.sessions, userKey)
	}
	return session, ok
}

// Len returns the number of active sessions.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
