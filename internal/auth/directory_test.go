// Sequanix - Laboratory Information Management for Sequencing Facilities
// Copyright 2026 Sequanix Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sequanix/sequanix

package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

type scriptedDirectory struct {
	resolveErr error
	verifyErr  error
	username   string
	valid      bool
	delay      time.Duration

	calls int
}

func (d *scriptedDirectory) ResolveUsername(ctx context.Context, _ string) (string, error) {
	d.calls++
	if d.delay > 0 {
		select {
		case <-time.After(d.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return d.username, d.resolveErr
}

func (d *scriptedDirectory) Verify(ctx context.Context, _, _ string) (bool, error) {
	d.calls++
	if d.delay > 0 {
		select {
		case <-time.After(d.delay):
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	return d.valid, d.verifyErr
}

func TestResilientDirectoryPassthrough(t *testing.T) {
	inner := &scriptedDirectory{username: "jane", valid: true}
	d := NewResilientDirectory(inner, time.Second)
	ctx := context.Background()

	username, err := d.ResolveUsername(ctx, "jane@example.com")
	if err != nil {
		t.Fatalf("ResolveUsername: %v", err)
	}
	if username != "jane" {
		t.Errorf("username = %q, want jane", username)
	}

	valid, err := d.Verify(ctx, "jane", "s3cret")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !valid {
		t.Error("Verify = false, want true")
	}
}

func TestResilientDirectoryTimeout(t *testing.T) {
	inner := &scriptedDirectory{username: "jane", delay: 200 * time.Millisecond}
	d := NewResilientDirectory(inner, 10*time.Millisecond)

	_, err := d.ResolveUsername(context.Background(), "jane@example.com")
	if !errors.Is(err, ErrDirectoryUnavailable) {
		t.Fatalf("err = %v, want ErrDirectoryUnavailable", err)
	}
}

func TestResilientDirectoryBreakerOpens(t *testing.T) {
	inner := &scriptedDirectory{resolveErr: errors.New("connection refused")}
	d := NewResilientDirectory(inner, time.Second)
	ctx := context.Background()

	// Three consecutive failures trip the breaker.
	for i := 0; i < 3; i++ {
		if _, err := d.ResolveUsername(ctx, "jane@example.com"); err == nil {
			t.Fatalf("attempt %d: expected error", i+1)
		}
	}

	callsBefore := inner.calls
	_, err := d.ResolveUsername(ctx, "jane@example.com")
	if !errors.Is(err, ErrDirectoryUnavailable) {
		t.Fatalf("err = %v, want ErrDirectoryUnavailable", err)
	}
	if inner.calls != callsBefore {
		t.Error("open breaker still reached the inner directory")
	}
}

func TestResilientDirectoryInnerErrorPassthrough(t *testing.T) {
	innerErr := errors.New("protocol error")
	d := NewResilientDirectory(&scriptedDirectory{verifyErr: innerErr}, time.Second)

	_, err := d.Verify(context.Background(), "jane", "s3cret")
	if !errors.Is(err, innerErr) {
		t.Fatalf("err = %v, want inner error", err)
	}
}
