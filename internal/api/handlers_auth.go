// Sequanix - Laboratory Information Management for Sequencing Facilities
// Copyright 2026 Sequanix Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sequanix/sequanix

package api

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/sequanix/sequanix/internal/audit"
	"github.com/sequanix/sequanix/internal/auth"
	"github.com/sequanix/sequanix/internal/logging"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoginRequest is the sign-in request body.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// PrincipalResponse describes the active identity.
type PrincipalResponse struct {
	UserID              int64    `json:"user_id"`
	Email               string   `json:"email"`
	Name                string   `json:"name"`
	Authorities         []string `json:"authorities"`
	Impersonating       bool     `json:"impersonating"`
	ForcePasswordChange bool     `json:"force_password_change"`
}

func principalResponse(p *auth.Principal, impersonating bool) PrincipalResponse {
	return PrincipalResponse{
		UserID:              p.UserID,
		Email:               p.Email,
		Name:                p.Name,
		Authorities:         p.Authorities,
		Impersonating:       impersonating,
		ForcePasswordChange: p.ForcePasswordChange(),
	}
}

// Login authenticates the credentials and starts a session. Unknown
// accounts and wrong passwords are indistinguishable to the caller.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err)
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Email and password are required", nil)
		return
	}

	principal, err := h.authenticator.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUnknownAccount), errors.Is(err, auth.ErrBadCredentials):
			respondError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password", nil)
		case errors.Is(err, auth.ErrLockedAccount):
			respondError(w, http.StatusLocked, "ACCOUNT_LOCKED", "Account is temporarily locked", nil)
		case errors.Is(err, auth.ErrDisabledAccount):
			respondError(w, http.StatusForbidden, "ACCOUNT_DISABLED", "Account is disabled", nil)
		default:
			respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Authentication failed", err)
		}
		return
	}

	session := auth.NewSession(principal, h.config.Security.SessionTimeout)
	if err := h.sessions.Create(r.Context(), session); err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create session", err)
		return
	}

	setSessionCookie(w, r, session.ID, session.ExpiresAt)
	respondData(w, http.StatusOK, principalResponse(principal, false))
}

// Logout ends the session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.FromContext(r.Context())

	if err := h.sessions.Delete(r.Context(), authCtx.SessionID); err != nil {
		logging.Error().Err(err).Msg("delete session")
	}
	clearSessionCookie(w, r)

	h.audit.Log(&audit.Event{
		Type:        audit.EventTypeLogout,
		Outcome:     audit.OutcomeSuccess,
		Actor:       audit.Actor{ID: authCtx.Principal.UserID, Email: authCtx.Principal.Email},
		SessionID:   authCtx.SessionID,
		Description: "signed out",
	})
	respondData(w, http.StatusOK, map[string]string{"status": "signed out"})
}

// Me returns the active identity for the session.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.FromContext(r.Context())

	session, err := h.sessions.Get(r.Context(), authCtx.SessionID)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "NOT_AUTHENTICATED", "Authentication required", nil)
		return
	}

	respondData(w, http.StatusOK, principalResponse(session.Principal, session.Impersonation != nil))
}

// ChangePasswordRequest is the password-change request body.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// ChangePassword replaces the caller's password. Completing the change
// clears the expired-password state and reloads the session's authorities.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.FromContext(r.Context())

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err)
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "New password must be at least 8 characters", nil)
		return
	}

	user, err := h.roles.CurrentUser(r.Context(), authCtx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "NOT_AUTHENTICATED", "Authentication required", nil)
		return
	}

	if !auth.VerifySecret(req.CurrentPassword, user.HashedPassword) {
		respondError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Current password is incorrect", nil)
		return
	}

	hash, err := auth.HashSecret(req.NewPassword, h.config.Security.BcryptCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to hash password", err)
		return
	}
	user.HashedPassword = hash
	user.ExpiredPassword = false
	if err := h.users.Save(r.Context(), user); err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save user", err)
		return
	}

	if err := h.roles.ReloadAuthorities(r.Context(), authCtx); err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to reload authorities", err)
		return
	}

	h.audit.Log(&audit.Event{
		Type:        audit.EventTypePasswordChanged,
		Outcome:     audit.OutcomeSuccess,
		Actor:       audit.Actor{ID: user.ID, Email: user.Email},
		SessionID:   authCtx.SessionID,
		Description: "password changed",
	})
	respondData(w, http.StatusOK, principalResponse(authCtx.Principal, false))
}

// SwitchUserRequest names the user to impersonate.
type SwitchUserRequest struct {
	UserID int64 `json:"user_id" validate:"required,min=1"`
}

// SwitchUser assumes another user's identity. Admin only.
func (h *Handler) SwitchUser(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.FromContext(r.Context())

	var req SwitchUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err)
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "user_id is required", nil)
		return
	}

	assumed, err := h.switchUser.SwitchUser(r.Context(), authCtx, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrNotAuthorized):
			respondError(w, http.StatusForbidden, "FORBIDDEN", "Only administrators may switch user", nil)
		case errors.Is(err, auth.ErrUnknownAccount):
			respondError(w, http.StatusNotFound, "UNKNOWN_ACCOUNT", "No such user", nil)
		case errors.Is(err, auth.ErrDisabledAccount):
			respondError(w, http.StatusConflict, "ACCOUNT_DISABLED", "Target account is disabled", nil)
		case errors.Is(err, auth.ErrLockedAccount):
			respondError(w, http.StatusConflict, "ACCOUNT_LOCKED", "Target account is locked", nil)
		default:
			respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Switch user failed", err)
		}
		return
	}

	respondData(w, http.StatusOK, principalResponse(assumed, true))
}

// ExitSwitchUser reverts to the identity held before the switch.
func (h *Handler) ExitSwitchUser(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.FromContext(r.Context())

	original, err := h.switchUser.ExitSwitchUser(r.Context(), authCtx)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrNoOriginalUser):
			respondError(w, http.StatusConflict, "NOT_IMPERSONATING", "No impersonation in progress", nil)
		case errors.Is(err, auth.ErrNotAuthorized):
			respondError(w, http.StatusUnauthorized, "NOT_AUTHENTICATED", "Authentication required", nil)
		default:
			respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Exit switch user failed", err)
		}
		return
	}

	respondData(w, http.StatusOK, principalResponse(original, false))
}

// ReactivateRequest names the account to reactivate.
type ReactivateRequest struct {
	UserID int64 `json:"user_id" validate:"required,min=1"`
}

// Reactivate re-enables a disabled account and clears its attempt counter.
// Admin only.
func (h *Handler) Reactivate(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.FromContext(r.Context())

	var req ReactivateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err)
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "user_id is required", nil)
		return
	}

	if err := h.authenticator.Reactivate(r.Context(), authCtx, req.UserID); err != nil {
		switch {
		case errors.Is(err, auth.ErrNotAuthorized):
			respondError(w, http.StatusForbidden, "FORBIDDEN", "Only administrators may reactivate accounts", nil)
		case errors.Is(err, auth.ErrUnknownAccount):
			respondError(w, http.StatusNotFound, "UNKNOWN_ACCOUNT", "No such user", nil)
		default:
			respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Reactivation failed", err)
		}
		return
	}

	respondData(w, http.StatusOK, map[string]string{"status": "reactivated"})
}

// AuditEvents returns recent audit events, newest first. Admin only.
func (h *Handler) AuditEvents(w http.ResponseWriter, r *http.Request) {
	if h.auditStore == nil {
		respondError(w, http.StatusServiceUnavailable, "AUDIT_DISABLED", "Audit store not configured", nil)
		return
	}

	filter := audit.QueryFilter{Limit: 100}
	if t := r.URL.Query().Get("type"); t != "" {
		filter.Types = []audit.EventType{audit.EventType(t)}
	}

	events, err := h.auditStore.Query(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Audit query failed", err)
		return
	}
	respondData(w, http.StatusOK, events)
}
