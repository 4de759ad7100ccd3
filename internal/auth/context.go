// Sequanix - Laboratory Information Management for Sequencing Facilities
// Copyright 2026 Sequanix Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sequanix/sequanix

package auth

import "context"

// AuthContext carries the authenticated principal for one request. It is
// built once at the HTTP boundary from the session and passed explicitly
// into every authorization call; there is no ambient security context.
type AuthContext struct {
	// Principal is nil for anonymous requests.
	Principal *Principal

	// SessionID identifies the backing session record, empty for
	// anonymous requests.
	SessionID string
}

// Authenticated reports whether a principal is attached.
func (a *AuthContext) Authenticated() bool {
	return a != nil && a.Principal != nil
}

type contextKey string

const authContextKey contextKey = "auth"

// WithAuthContext attaches an AuthContext to the request context.
func WithAuthContext(ctx context.Context, auth *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, auth)
}

// FromContext extracts the AuthContext from a request context. Returns nil
// for anonymous requests.
func FromContext(ctx context.Context) *AuthContext {
	auth, _ := ctx.Value(authContextKey).(*AuthContext)
	return auth
}
