// Sequanix - Laboratory Information Management for Sequencing Facilities
// Copyright 2026 Sequanix Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sequanix/sequanix

package audit

import (
	"context"
	"sync"
)

// MemoryStore implements Store with an in-process ring buffer. Suitable
// for development and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	events   []*Event
	capacity int
}

// NewMemoryStore creates a store that retains up to capacity events,
// discarding the oldest when full.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = 10000
	}
	return &MemoryStore{capacity: capacity}
}

// Save appends an event, evicting the oldest when over capacity.
func (s *MemoryStore) Save(_ context.Context, event *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, event)
	if len(s.events) > s.capacity {
		s.events = s.events[len(s.events)-s.capacity:]
	}
	return nil
}

// Query returns matching events, newest first.
func (s *MemoryStore) Query(_ context.Context, filter QueryFilter) ([]*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Event
	for i := len(s.events) - 1; i >= 0; i-- {
		event := s.events[i]
		if !matches(event, filter) {
			continue
		}
		out = append(out, event)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

// matches reports whether an event passes the filter.
func matches(event *Event, filter QueryFilter) bool {
	if len(filter.Types) > 0 {
		found := false
		for _, t := range filter.Types {
			if event.Type == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.ActorID != 0 && event.Actor.ID != filter.ActorID {
		return false
	}
	if filter.SessionID != "" && event.SessionID != filter.SessionID {
		return false
	}
	if filter.StartTime != nil && event.Timestamp.Before(*filter.StartTime) {
		return false
	}
	if filter.EndTime != nil && event.Timestamp.After(*filter.EndTime) {
		return false
	}
	return true
}
