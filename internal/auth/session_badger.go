// Sequanix - Laboratory Information Management for Sequencing Facilities
// Copyright 2026 Sequanix Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sequanix/sequanix

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// sessionKeyPrefix namespaces session records in BadgerDB.
const sessionKeyPrefix = "session:"

// BadgerSessionStore implements SessionStore on BadgerDB, so sessions
// survive restarts. Records carry a Badger TTL matching the session
// expiry, so expired sessions are reclaimed without a cleanup routine.
type BadgerSessionStore struct {
	db *badger.DB
}

// NewBadgerSessionStore creates a BadgerDB-backed session store.
func NewBadgerSessionStore(db *badger.DB) *BadgerSessionStore {
	return &BadgerSessionStore{db: db}
}

// Create stores a new session.
func (s *BadgerSessionStore) Create(_ context.Context, session *Session) error {
	return s.put(session)
}

// Get retrieves a session by id.
func (s *BadgerSessionStore) Get(_ context.Context, id string) (*Session, error) {
	var session Session

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(sessionKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &session)
		})
	})
	if err != nil {
		return nil, err
	}

	if session.IsExpired() {
		return nil, ErrSessionExpired
	}
	return &session, nil
}

// Update replaces an existing session.
func (s *BadgerSessionStore) Update(ctx context.Context, session *Session) error {
	if _, err := s.Get(ctx, session.ID); err != nil {
		if errors.Is(err, ErrSessionExpired) {
			return ErrSessionNotFound
		}
		return err
	}
	return s.put(session)
}

// Delete removes a session by id.
func (s *BadgerSessionStore) Delete(_ context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(sessionKeyPrefix + id))
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete session: %w", err)
		}
		return nil
	})
}

// put serializes and writes a session with a TTL matching its expiry.
func (s *BadgerSessionStore) put(session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(sessionKeyPrefix+session.ID), data)
		if ttl := time.Until(session.ExpiresAt); ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		if err := txn.SetEntry(entry); err != nil {
			return fmt.Errorf("set session: %w", err)
		}
		return nil
	})
}
