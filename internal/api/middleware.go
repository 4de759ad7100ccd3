// Sequanix - Laboratory Information Management for Sequencing Facilities
// Copyright 2026 Sequanix Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sequanix/sequanix

package api

import (
	"errors"
	"net/http"

	"github.com/sequanix/sequanix/internal/auth"
	"github.com/sequanix/sequanix/internal/logging"
)

// sessionCookieName is the cookie holding the opaque session id.
const sessionCookieName = "sequanix_session"

// Authenticate resolves the session cookie into an AuthContext and attaches
// it to the request context. Requests without a valid session are rejected.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authCtx, err := h.resolveSession(r)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "NOT_AUTHENTICATED", "Authentication required", nil)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithAuthContext(r.Context(), authCtx)))
	})
}

// MaybeAuthenticate attaches an AuthContext when a valid session cookie is
// present, and an anonymous context otherwise. Used on routes that answer
// differently for signed-in users but do not require sign-in.
func (h *Handler) MaybeAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authCtx, err := h.resolveSession(r)
		if err != nil {
			authCtx = &auth.AuthContext{}
		}

		next.ServeHTTP(w, r.WithContext(auth.WithAuthContext(r.Context(), authCtx)))
	})
}

// RequireRole allows the request through only when the current principal
// carries at least one of the roles. Must run after Authenticate.
func (h *Handler) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := auth.FromContext(r.Context())
			if !h.roles.HasAnyRole(authCtx, roles...) {
				respondError(w, http.StatusForbidden, "FORBIDDEN", "Insufficient privileges", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// resolveSession loads the session named by the cookie and builds the
// request's AuthContext.
func (h *Handler) resolveSession(r *http.Request) (*auth.AuthContext, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, http.ErrNoCookie
	}

	session, err := h.sessions.Get(r.Context(), cookie.Value)
	if err != nil {
		if !errors.Is(err, auth.ErrSessionNotFound) && !errors.Is(err, auth.ErrSessionExpired) {
			logging.Error().Err(err).Msg("load session")
		}
		return nil, err
	}

	return &auth.AuthContext{
		Principal: session.Principal,
		SessionID: session.ID,
	}, nil
}
