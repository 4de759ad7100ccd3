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

	"github.com/sequanix/sequanix/internal/database"
	"github.com/sequanix/sequanix/internal/models"
)

type restrictedReport struct {
	roles []string
}

func (r *restrictedReport) AllowedRoles() []string { return r.roles }

func userContext(authorities ...string) *AuthContext {
	return &AuthContext{
		Principal: &Principal{UserID: 1, Email: "jane@example.com", Authorities: authorities},
	}
}

func TestHasRole(t *testing.T) {
	v := NewRoleValidator(nil, nil)

	if !v.HasRole(userContext(models.RoleUser, models.RoleManager), models.RoleManager) {
		t.Error("HasRole(MANAGER) = false for manager")
	}
	if v.HasRole(userContext(models.RoleUser), models.RoleAdmin) {
		t.Error("HasRole(ADMIN) = true for plain user")
	}
	if v.HasRole(&AuthContext{}, models.RoleUser) {
		t.Error("HasRole = true for anonymous context")
	}
}

func TestHasAnyRole(t *testing.T) {
	v := NewRoleValidator(nil, nil)
	ctx := userContext(models.RoleUser)

	if !v.HasAnyRole(ctx, models.RoleAdmin, models.RoleUser) {
		t.Error("HasAnyRole = false, want true")
	}
	if v.HasAnyRole(ctx, models.RoleAdmin, models.RoleManager) {
		t.Error("HasAnyRole = true, want false")
	}
	if v.HasAnyRole(ctx) {
		t.Error("HasAnyRole with no roles = true")
	}
}

func TestHasAllRoles(t *testing.T) {
	v := NewRoleValidator(nil, nil)
	ctx := userContext(models.RoleUser, models.RoleManager)

	if !v.HasAllRoles(ctx, models.RoleUser, models.RoleManager) {
		t.Error("HasAllRoles = false, want true")
	}
	if v.HasAllRoles(ctx, models.RoleUser, models.RoleAdmin) {
		t.Error("HasAllRoles = true, want false")
	}
	if !v.HasAllRoles(ctx) {
		t.Error("HasAllRoles with no roles = false, want true")
	}
}

func TestIsAuthorized(t *testing.T) {
	v := NewRoleValidator(nil, nil)
	ctx := userContext(models.RoleUser)

	if !v.IsAuthorized(ctx, "unrestricted value") {
		t.Error("IsAuthorized = false for unrestricted target")
	}
	if !v.IsAuthorized(ctx, &restrictedReport{roles: []string{models.RoleUser}}) {
		t.Error("IsAuthorized = false, want true")
	}
	if v.IsAuthorized(ctx, &restrictedReport{roles: []string{models.RoleAdmin}}) {
		t.Error("IsAuthorized = true, want false")
	}
	if v.IsAuthorized(&AuthContext{}, &restrictedReport{roles: []string{models.RoleUser}}) {
		t.Error("IsAuthorized = true for anonymous context")
	}
}

func TestIsAnonymous(t *testing.T) {
	v := NewRoleValidator(nil, nil)

	if !v.IsAnonymous(&AuthContext{}) {
		t.Error("IsAnonymous = false for empty context")
	}
	if v.IsAnonymous(userContext(models.RoleUser)) {
		t.Error("IsAnonymous = true for authenticated context")
	}
}

func TestCurrentUser(t *testing.T) {
	store := database.NewMemoryStore()
	user := &models.User{Email: "jane@example.com", Active: true}
	if err := store.Users().Save(context.Background(), user); err != nil {
		t.Fatalf("Save: %v", err)
	}
	v := NewRoleValidator(store.Users(), nil)

	authCtx := &AuthContext{Principal: BuildPrincipal(user)}
	got, err := v.CurrentUser(context.Background(), authCtx)
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("user id = %d, want %d", got.ID, user.ID)
	}

	if _, err := v.CurrentUser(context.Background(), &AuthContext{}); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("anonymous err = %v, want ErrNotAuthorized", err)
	}
}

func TestReloadAuthorities(t *testing.T) {
	store := database.NewMemoryStore()
	user := &models.User{
		Email:           "jane@example.com",
		Active:          true,
		ExpiredPassword: true,
		LaboratoryID:    1,
	}
	if err := store.Users().Save(context.Background(), user); err != nil {
		t.Fatalf("Save: %v", err)
	}

	sessions := NewMemorySessionStore()
	principal := BuildPrincipal(user)
	session := NewSession(principal, time.Hour)
	if err := sessions.Create(context.Background(), session); err != nil {
		t.Fatalf("Create: %v", err)
	}
	authCtx := &AuthContext{Principal: principal, SessionID: session.ID}

	if !authCtx.Principal.ForcePasswordChange() {
		t.Fatal("precondition: principal should carry force-password-change")
	}

	// Password change completed, and the user was promoted in the meantime.
	user.ExpiredPassword = false
	user.Manager = true
	if err := store.Users().Save(context.Background(), user); err != nil {
		t.Fatalf("Save: %v", err)
	}

	v := NewRoleValidator(store.Users(), sessions)
	if err := v.ReloadAuthorities(context.Background(), authCtx); err != nil {
		t.Fatalf("ReloadAuthorities: %v", err)
	}

	if authCtx.Principal.ForcePasswordChange() {
		t.Error("force-password-change authority survived the reload")
	}
	if !authCtx.Principal.HasAuthority(models.RoleManager) {
		t.Error("reloaded principal missing MANAGER")
	}

	stored, err := sessions.Get(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !stored.Principal.Equal(authCtx.Principal) {
		t.Error("session principal not replaced by reload")
	}
}

func TestReloadAuthoritiesNoopWithoutForceChange(t *testing.T) {
	store := database.NewMemoryStore()
	user := &models.User{Email: "jane@example.com", Active: true}
	if err := store.Users().Save(context.Background(), user); err != nil {
		t.Fatalf("Save: %v", err)
	}

	principal := BuildPrincipal(user)
	authCtx := &AuthContext{Principal: principal}

	// Role changes in the store must not leak in without the trigger.
	user.Manager = true
	if err := store.Users().Save(context.Background(), user); err != nil {
		t.Fatalf("Save: %v", err)
	}

	v := NewRoleValidator(store.Users(), nil)
	if err := v.ReloadAuthorities(context.Background(), authCtx); err != nil {
		t.Fatalf("ReloadAuthorities: %v", err)
	}
	if authCtx.Principal.HasAuthority(models.RoleManager) {
		t.Error("authorities reloaded without force-password-change")
	}
}
