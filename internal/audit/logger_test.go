// Sequanix - Laboratory Information Management for Sequencing Facilities
// Copyright 2026 Sequanix Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sequanix/sequanix

package audit

import (
	"context"
	"testing"
	"time"
)

func TestLoggerWritesEvents(t *testing.T) {
	store := NewMemoryStore(100)
	logger := NewLogger(store, &Config{Enabled: true, BufferSize: 10})

	logger.Log(&Event{
		Type:    EventTypeAuthSuccess,
		Outcome: OutcomeSuccess,
		Actor:   Actor{ID: 1, Email: "jane@example.com"},
	})
	logger.Close()

	events, err := store.Query(context.Background(), QueryFilter{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}

	event := events[0]
	if event.ID == "" {
		t.Error("event id not filled in")
	}
	if event.Timestamp.IsZero() {
		t.Error("event timestamp not filled in")
	}
	if event.Severity != SeverityInfo {
		t.Errorf("severity = %q, want info default", event.Severity)
	}
}

func TestLoggerDisabled(t *testing.T) {
	store := NewMemoryStore(100)
	logger := NewLogger(store, &Config{Enabled: false, BufferSize: 10})

	logger.Log(&Event{Type: EventTypeAuthSuccess})
	logger.Close()

	events, err := store.Query(context.Background(), QueryFilter{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("got %d events, want 0", len(events))
	}
}

func TestLoggerNilReceiver(t *testing.T) {
	var logger *Logger
	// Must not panic; services treat a nil logger as disabled.
	logger.Log(&Event{Type: EventTypeAuthSuccess})
}

func TestLoggerDrainsOnClose(t *testing.T) {
	store := NewMemoryStore(1000)
	logger := NewLogger(store, &Config{Enabled: true, BufferSize: 100})

	const n = 50
	for i := 0; i < n; i++ {
		logger.Log(&Event{Type: EventTypeAuthFailure, Outcome: OutcomeFailure})
	}
	logger.Close()

	events, err := store.Query(context.Background(), QueryFilter{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(events) != n {
		t.Fatalf("got %d events after close, want %d", len(events), n)
	}
}

func TestMemoryStoreQueryFilters(t *testing.T) {
	store := NewMemoryStore(100)
	ctx := context.Background()
	base := time.Now()

	save := func(typ EventType, actorID int64, sessionID string, at time.Time) {
		if err := store.Save(ctx, &Event{Type: typ, Actor: Actor{ID: actorID}, SessionID: sessionID, Timestamp: at}); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	save(EventTypeAuthSuccess, 1, "s1", base)
	save(EventTypeAuthFailure, 1, "s1", base.Add(time.Minute))
	save(EventTypeAuthFailure, 2, "s2", base.Add(2*time.Minute))

	byType, err := store.Query(ctx, QueryFilter{Types: []EventType{EventTypeAuthFailure}})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(byType) != 2 {
		t.Errorf("type filter: got %d, want 2", len(byType))
	}

	byActor, err := store.Query(ctx, QueryFilter{ActorID: 2})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(byActor) != 1 {
		t.Errorf("actor filter: got %d, want 1", len(byActor))
	}

	limited, err := store.Query(ctx, QueryFilter{Limit: 1})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("limit: got %d, want 1", len(limited))
	}
	// Newest first.
	if limited[0].Actor.ID != 2 {
		t.Errorf("newest event actor = %d, want 2", limited[0].Actor.ID)
	}
}

func TestMemoryStoreEvictsOldest(t *testing.T) {
	store := NewMemoryStore(2)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		if err := store.Save(ctx, &Event{Actor: Actor{ID: i}}); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	events, err := store.Query(ctx, QueryFilter{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Actor.ID != 3 || events[1].Actor.ID != 2 {
		t.Errorf("retained actors = %d,%d, want 3,2", events[0].Actor.ID, events[1].Actor.ID)
	}
}
