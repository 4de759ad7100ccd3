// Sequanix - Laboratory Information Management for Sequencing Facilities
// Copyright 2026 Sequanix Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sequanix/sequanix

// Package auth implements the authentication core: the sign-in governor
// with lockout policy and directory fallback, principals and sessions,
// role validation, and the switch-user (impersonation) service.
package auth

import "errors"

var (
	// ErrUnknownAccount is returned when the identifier matches no
	// account. Callers must not reveal which part of the check failed.
	ErrUnknownAccount = errors.New("unknown account")

	// ErrDisabledAccount is returned for inactive accounts. Terminal until
	// an administrator reactivates the account.
	ErrDisabledAccount = errors.New("account disabled")

	// ErrLockedAccount is returned while the lockout window is active.
	ErrLockedAccount = errors.New("account temporarily locked")

	// ErrBadCredentials is returned when the secret is wrong; it
	// contributes to lockout counting.
	ErrBadCredentials = errors.New("bad credentials")

	// ErrNotAuthorized is returned when the caller lacks the role required
	// for an operation.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrNoOriginalUser is returned by ExitSwitchUser when the session
	// holds no impersonation record.
	ErrNoOriginalUser = errors.New("no original user to switch back to")

	// ErrDirectoryUnavailable indicates the directory service could not be
	// reached (timeout or open circuit breaker).
	ErrDirectoryUnavailable = errors.New("directory service unavailable")
)
