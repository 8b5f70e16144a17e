package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/thermopolio/thermopolio/internal/models"
)

// MemoryStore keeps sessions in a map. Used by tests and local runs
// without Redis. Expiry is checked on read.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
	ttl      time.Duration
}

// NewMemoryStore returns an empty in-memory session store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*models.Session),
		ttl:      ttl,
	}
}

// Create starts a session for the user and returns the cookie token.
func (s *MemoryStore) Create(_ context.Context, userUID string) (string, error) {
	token, err := generateToken(32)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = &models.Session{
		Token:     token,
		UserUID:   userUID,
		ExpiresAt: time.Now().Add(s.ttl),
	}
	return token, nil
}

// Get returns the session for token, or ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, token string) (*models.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if sess.Expired() {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, ErrNotFound
	}

	cp := *sess
	return &cp, nil
}

// SaveUser caches the user record into the session.
func (s *MemoryStore) SaveUser(_ context.Context, token string, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok || sess.Expired() {
		return ErrNotFound
	}
	sess.User = user
	return nil
}

// Destroy removes the session.
func (s *MemoryStore) Destroy(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
