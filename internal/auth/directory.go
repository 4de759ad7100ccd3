// Sequanix - Laboratory Information Management for Sequencing Facilities
// Copyright 2026 Sequanix Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sequanix/sequanix

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/sequanix/sequanix/internal/logging"
)

// Directory is the narrow contract for the external directory service
// (corporate LDAP). The wire protocol is out of scope; implementations
// adapt a concrete client to this interface.
type Directory interface {
	// ResolveUsername maps an email address to the directory username.
	// Returns "" (no error) when the email is not in the directory.
	ResolveUsername(ctx context.Context, email string) (string, error)

	// Verify checks a plaintext secret against the directory entry.
	Verify(ctx context.Context, username, secret string) (bool, error)
}

// ResilientDirectory wraps a Directory with a per-call timeout and a
// circuit breaker. Timeouts and an open breaker surface as
// ErrDirectoryUnavailable, which the authenticator treats as a failed
// directory check.
type ResilientDirectory struct {
	inner   Directory
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[any]
}

// NewResilientDirectory wraps inner with the given per-call timeout.
func NewResilientDirectory(inner Directory, timeout time.Duration) *ResilientDirectory {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:    "directory",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("directory breaker state change")
		},
	})

	return &ResilientDirectory{
		inner:   inner,
		timeout: timeout,
		breaker: breaker,
	}
}

// ResolveUsername maps an email to a directory username.
func (d *ResilientDirectory) ResolveUsername(ctx context.Context, email string) (string, error) {
	result, err := d.execute(ctx, func(ctx context.Context) (any, error) {
		return d.inner.ResolveUsername(ctx, email)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// Verify checks a secret against the directory.
func (d *ResilientDirectory) Verify(ctx context.Context, username, secret string) (bool, error) {
	result, err := d.execute(ctx, func(ctx context.Context) (any, error) {
		return d.inner.Verify(ctx, username, secret)
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

// execute runs fn behind the breaker with the configured timeout.
func (d *ResilientDirectory) execute(ctx context.Context, fn func(context.Context) (any, error)) (any, error) {
	result, err := d.breaker.Execute(func() (any, error) {
		callCtx, cancel := context.WithTimeout(ctx, d.timeout)
		defer cancel()
		return fn(callCtx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) ||
			errors.Is(err, gobreaker.ErrTooManyRequests) ||
			errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrDirectoryUnavailable
		}
		return nil, err
	}
	return result, nil
}
