// Sequanix - Laboratory Information Management for Sequencing Facilities
// Copyright 2026 Sequanix Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sequanix/sequanix

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sequanix/sequanix/internal/audit"
	"github.com/sequanix/sequanix/internal/database"
	"github.com/sequanix/sequanix/internal/logging"
	"github.com/sequanix/sequanix/internal/metrics"
	"github.com/sequanix/sequanix/internal/models"
)

// SwitchUserService lets an administrator assume another user's identity
// and later revert. The pre-switch principal is kept in an explicit
// ImpersonationRecord on the session record, looked up by session id.
//
// Impersonation nests at most one level: switching while already
// impersonating overwrites the record's original with the current
// pre-switch principal.
type SwitchUserService struct {
	users    database.UserRepository
	sessions SessionStore
	config   AuthenticatorConfig
	audit    *audit.Logger
}

// NewSwitchUserService creates a switch-user service. The authenticator
// config supplies the lockout policy for the target's account-status check.
func NewSwitchUserService(users database.UserRepository, sessions SessionStore, config AuthenticatorConfig, auditLogger *audit.Logger) *SwitchUserService {
	return &SwitchUserService{
		users:    users,
		sessions: sessions,
		config:   config,
		audit:    auditLogger,
	}
}

// SwitchUser installs the target user's principal as the session's active
// identity. The caller must hold ADMIN; the target account must be active
// and not locked. Returns the assumed principal.
func (s *SwitchUserService) SwitchUser(ctx context.Context, authCtx *AuthContext, targetUserID int64) (*Principal, error) {
	if !authCtx.Authenticated() || !authCtx.Principal.HasAuthority(models.RoleAdmin) {
		metrics.Impersonations.WithLabelValues("start", "failure").Inc()
		return nil, ErrNotAuthorized
	}

	target, err := s.users.FindByID(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrUnknownAccount
		}
		return nil, fmt.Errorf("find target user: %w", err)
	}

	if err := s.checkAccountStatus(target); err != nil {
		metrics.Impersonations.WithLabelValues("start", "failure").Inc()
		return nil, err
	}

	session, err := s.sessions.Get(ctx, authCtx.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	original := authCtx.Principal
	assumed := BuildPrincipal(target)

	session.Principal = assumed
	session.Impersonation = &ImpersonationRecord{
		Original: original,
		Assumed:  assumed,
	}
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	authCtx.Principal = assumed

	metrics.Impersonations.WithLabelValues("start", "success").Inc()
	s.audit.Log(&audit.Event{
		Type:        audit.EventTypeImpersonationStart,
		Severity:    audit.SeverityWarning,
		Outcome:     audit.OutcomeSuccess,
		Actor:       audit.Actor{ID: original.UserID, Email: original.Email, Roles: original.Authorities},
		Target:      &audit.Target{ID: target.ID, Type: string(models.EntityUser), Name: target.Email},
		SessionID:   authCtx.SessionID,
		Description: "administrator assumed user identity",
	})
	logging.Info().
		Str("admin", original.Email).
		Str("target", target.Email).
		Msg("switched user")

	return assumed, nil
}

// ExitSwitchUser restores the original principal recorded at switch time.
// Returns ErrNoOriginalUser when the session holds no impersonation record.
func (s *SwitchUserService) ExitSwitchUser(ctx context.Context, authCtx *AuthContext) (*Principal, error) {
	if !authCtx.Authenticated() {
		return nil, ErrNotAuthorized
	}

	session, err := s.sessions.Get(ctx, authCtx.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	if session.Impersonation == nil || session.Impersonation.Original == nil {
		metrics.Impersonations.WithLabelValues("exit", "failure").Inc()
		return nil, ErrNoOriginalUser
	}

	assumed := session.Principal
	original := session.Impersonation.Original

	session.Principal = original
	session.Impersonation = nil
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	authCtx.Principal = original

	metrics.Impersonations.WithLabelValues("exit", "success").Inc()
	s.audit.Log(&audit.Event{
		Type:        audit.EventTypeImpersonationExit,
		Outcome:     audit.OutcomeSuccess,
		Actor:       audit.Actor{ID: original.UserID, Email: original.Email},
		Target:      &audit.Target{ID: assumed.UserID, Type: string(models.EntityUser), Name: assumed.Email},
		SessionID:   authCtx.SessionID,
		Description: "administrator reverted to own identity",
	})
	logging.Info().
		Str("admin", original.Email).
		Str("target", assumed.Email).
		Msg("exited switch user")

	return original, nil
}

// checkAccountStatus mirrors the sign-in status checks for the target.
func (s *SwitchUserService) checkAccountStatus(user *models.User) error {
	if !user.Active {
		return ErrDisabledAccount
	}
	if accountLocked(user, s.config, time.Now()) {
		return ErrLockedAccount
	}
	return nil
}
