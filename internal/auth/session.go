// Sequanix - Laboratory Information Management for Sequencing Facilities
// Copyright 2026 Sequanix Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sequanix/sequanix

package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrSessionNotFound is returned when a session id is unknown.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired is returned when a session exists but has expired.
	ErrSessionExpired = errors.New("session expired")
)

// ImpersonationRecord links the pre-switch principal to the assumed one.
// It lives on the session record, not inside the authority set, so exit
// can find it by session id. At most one record exists per session;
// switching again overwrites it.
type ImpersonationRecord struct {
	Original *Principal `json:"original"`
	Assumed  *Principal `json:"assumed"`
}

// Session binds a principal to a browser session.
type Session struct {
	// ID is the opaque session identifier held in the cookie.
	ID string `json:"id"`

	// Principal is the active identity for this session.
	Principal *Principal `json:"principal"`

	// Impersonation is set while an administrator operates under another
	// user's identity.
	Impersonation *ImpersonationRecord `json:"impersonation,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired reports whether the session has expired.
func (s *Session) IsExpired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// NewSession creates a session for the principal with the given lifetime.
func NewSession(principal *Principal, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		Principal: principal,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// SessionStore persists sessions.
type SessionStore interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// Get retrieves a session by id. Returns ErrSessionNotFound or
	// ErrSessionExpired as appropriate.
	Get(ctx context.Context, id string) (*Session, error)

	// Update replaces an existing session.
	Update(ctx context.Context, session *Session) error

	// Delete removes a session by id. Deleting a missing session is not
	// an error.
	Delete(ctx context.Context, id string) error
}

// MemorySessionStore implements SessionStore with an in-process map.
// Suitable for development and tests.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*Session)}
}

// Create stores a new session.
func (s *MemorySessionStore) Create(_ context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = copySession(session)
	return nil
}

// Get retrieves a session by id.
func (s *MemorySessionStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.IsExpired() {
		return nil, ErrSessionExpired
	}
	return copySession(session), nil
}

// Update replaces an existing session.
func (s *MemorySessionStore) Update(_ context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.ID]; !ok {
		return ErrSessionNotFound
	}
	s.sessions[session.ID] = copySession(session)
	return nil
}

// Delete removes a session by id.
func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// copySession clones a session so callers cannot mutate stored state.
func copySession(session *Session) *Session {
	copied := *session
	copied.Principal = session.Principal.Clone()
	if session.Impersonation != nil {
		copied.Impersonation = &ImpersonationRecord{
			Original: session.Impersonation.Original.Clone(),
			Assumed:  session.Impersonation.Assumed.Clone(),
		}
	}
	return &copied
}
