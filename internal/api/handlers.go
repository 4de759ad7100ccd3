// Sequanix - Laboratory Information Management for Sequencing Facilities
// Copyright 2026 Sequanix Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sequanix/sequanix

// Package api provides the HTTP surface: session handling at the boundary,
// sign-in and impersonation endpoints, and permission queries.
package api

import (
	"net/http"
	"time"

	"github.com/sequanix/sequanix/internal/audit"
	"github.com/sequanix/sequanix/internal/auth"
	"github.com/sequanix/sequanix/internal/authz"
	"github.com/sequanix/sequanix/internal/config"
	"github.com/sequanix/sequanix/internal/database"
)

// Handler holds the services behind the HTTP endpoints.
type Handler struct {
	config        *config.Config
	authenticator *auth.Authenticator
	sessions      auth.SessionStore
	roles         *auth.RoleValidator
	switchUser    *auth.SwitchUserService
	engine        *authz.Engine
	users         database.UserRepository
	audit         *audit.Logger
	auditStore    audit.Store
}

// NewHandler creates the HTTP handler set. auditLogger and auditStore may
// be nil when auditing is disabled.
func NewHandler(
	cfg *config.Config,
	authenticator *auth.Authenticator,
	sessions auth.SessionStore,
	roles *auth.RoleValidator,
	switchUser *auth.SwitchUserService,
	engine *authz.Engine,
	users database.UserRepository,
	auditLogger *audit.Logger,
	auditStore audit.Store,
) *Handler {
	return &Handler{
		config:        cfg,
		authenticator: authenticator,
		sessions:      sessions,
		roles:         roles,
		switchUser:    switchUser,
		engine:        engine,
		users:         users,
		audit:         auditLogger,
		auditStore:    auditStore,
	}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	respondData(w, http.StatusOK, map[string]string{"status": "ok"})
}

// setSessionCookie installs the session cookie on the response.
func setSessionCookie(w http.ResponseWriter, r *http.Request, sessionID string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearSessionCookie expires the session cookie.
func clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
}
