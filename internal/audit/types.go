// Sequanix - Laboratory Information Management for Sequencing Facilities
// Copyright 2026 Sequanix Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sequanix/sequanix

// Package audit records security-relevant events for compliance and
// forensic analysis.
package audit

import (
	"context"
	"time"

	"github.com/goccy/go-json"
)

// EventType categorizes audit events.
type EventType string

const (
	// Authentication events
	EventTypeAuthSuccess  EventType = "auth.success"
	EventTypeAuthFailure  EventType = "auth.failure"
	EventTypeAuthLockout  EventType = "auth.lockout"
	EventTypeAuthDisabled EventType = "auth.disabled"
	EventTypeAuthUnlock   EventType = "auth.unlock"
	EventTypeLogout       EventType = "auth.logout"

	// Authorization events
	EventTypeAuthzDenied EventType = "authz.denied"

	// Impersonation events
	EventTypeImpersonationStart EventType = "impersonation.start"
	EventTypeImpersonationExit  EventType = "impersonation.exit"

	// Account management events
	EventTypePasswordChanged EventType = "user.password_changed"
)

// Severity indicates the severity level of an audit event.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Outcome indicates whether an action succeeded or failed.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Event is a single security audit record.
type Event struct {
	// ID is a unique identifier for this event.
	ID string `json:"id"`

	// Timestamp when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Type categorizes the event.
	Type EventType `json:"type"`

	// Severity of the event.
	Severity Severity `json:"severity"`

	// Outcome indicates success or failure.
	Outcome Outcome `json:"outcome"`

	// Actor who performed the action.
	Actor Actor `json:"actor"`

	// Target of the action (optional).
	Target *Target `json:"target,omitempty"`

	// Description provides human-readable details.
	Description string `json:"description"`

	// SessionID of the originating session, when known.
	SessionID string `json:"session_id,omitempty"`

	// Metadata contains event-specific details.
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// Actor identifies who performed an action.
type Actor struct {
	// ID is the user id, or 0 for anonymous attempts.
	ID int64 `json:"id"`

	// Email of the actor, when known.
	Email string `json:"email,omitempty"`

	// Roles held by the actor at the time of the event.
	Roles []string `json:"roles,omitempty"`
}

// Target identifies the object of an action.
type Target struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

// Store persists audit events.
type Store interface {
	// Save persists an audit event.
	Save(ctx context.Context, event *Event) error

	// Query retrieves events matching the filter, newest first.
	Query(ctx context.Context, filter QueryFilter) ([]*Event, error)
}

// QueryFilter narrows audit queries.
type QueryFilter struct {
	Types     []EventType `json:"types,omitempty"`
	ActorID   int64       `json:"actor_id,omitempty"`
	SessionID string      `json:"session_id,omitempty"`
	StartTime *time.Time  `json:"start_time,omitempty"`
	EndTime   *time.Time  `json:"end_time,omitempty"`
	Limit     int         `json:"limit,omitempty"`
}
