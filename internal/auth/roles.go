// Sequanix - Laboratory Information Management for Sequencing Facilities
// Copyright 2026 Sequanix Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sequanix/sequanix

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/sequanix/sequanix/internal/database"
	"github.com/sequanix/sequanix/internal/logging"
	"github.com/sequanix/sequanix/internal/models"
)

// RoleRestricted is implemented by types that declare which roles may
// access them. Types without the interface are accessible to everyone.
type RoleRestricted interface {
	AllowedRoles() []string
}

// RoleValidator answers role-membership queries against an AuthContext's
// authority set. All query methods return false (never an error) for
// anonymous contexts.
type RoleValidator struct {
	users    database.UserRepository
	sessions SessionStore
}

// NewRoleValidator creates a role validator. users and sessions are only
// needed by ReloadAuthorities and CurrentUser; pass nil when the validator
// is used purely for role queries.
func NewRoleValidator(users database.UserRepository, sessions SessionStore) *RoleValidator {
	return &RoleValidator{users: users, sessions: sessions}
}

// HasRole reports whether the current principal carries the role.
func (v *RoleValidator) HasRole(authCtx *AuthContext, role string) bool {
	if !authCtx.Authenticated() {
		return false
	}
	return authCtx.Principal.HasAuthority(role)
}

// HasAnyRole reports whether the current principal carries at least one of
// the roles.
func (v *RoleValidator) HasAnyRole(authCtx *AuthContext, roles ...string) bool {
	for _, role := range roles {
		if v.HasRole(authCtx, role) {
			return true
		}
	}
	return false
}

// HasAllRoles reports whether the current principal carries every one of
// the roles.
func (v *RoleValidator) HasAllRoles(authCtx *AuthContext, roles ...string) bool {
	for _, role := range roles {
		if !v.HasRole(authCtx, role) {
			return false
		}
	}
	return true
}

// IsAuthorized reports whether the current principal may access the
// target. When the target declares allowed roles (RoleRestricted) this
// reduces to HasAnyRole; otherwise access is allowed.
func (v *RoleValidator) IsAuthorized(authCtx *AuthContext, target any) bool {
	restricted, ok := target.(RoleRestricted)
	if !ok {
		return true
	}
	return v.HasAnyRole(authCtx, restricted.AllowedRoles()...)
}

// IsAnonymous reports whether no principal is attached.
func (v *RoleValidator) IsAnonymous(authCtx *AuthContext) bool {
	return !authCtx.Authenticated()
}

// CurrentUser loads the user record backing the current principal.
func (v *RoleValidator) CurrentUser(ctx context.Context, authCtx *AuthContext) (*models.User, error) {
	if !authCtx.Authenticated() {
		return nil, ErrNotAuthorized
	}
	user, err := v.users.FindByID(ctx, authCtx.Principal.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrUnknownAccount
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// ReloadAuthorities re-derives the authority set from the backing user
// record, replacing the session's principal in place. Only acts when the
// current principal carries the force-password-change authority; used
// after a password change completes so role changes take effect without a
// fresh sign-in.
func (v *RoleValidator) ReloadAuthorities(ctx context.Context, authCtx *AuthContext) error {
	if !v.HasRole(authCtx, models.AuthorityForcePasswordChange) {
		return nil
	}

	user, err := v.users.FindByID(ctx, authCtx.Principal.UserID)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}

	principal := BuildPrincipal(user)
	logging.Debug().Str("user", user.Email).Msg("reloaded authorities")

	authCtx.Principal = principal

	if v.sessions != nil && authCtx.SessionID != "" {
		session, err := v.sessions.Get(ctx, authCtx.SessionID)
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		session.Principal = principal
		if err := v.sessions.Update(ctx, session); err != nil {
			return fmt.Errorf("update session: %w", err)
		}
	}

	return nil
}
