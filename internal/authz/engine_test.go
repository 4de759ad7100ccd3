// Sequanix - Laboratory Information Management for Sequencing Facilities
// Copyright 2026 Sequanix Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sequanix/sequanix

package authz

import (
	"context"
	"testing"

	"github.com/sequanix/sequanix/internal/auth"
	"github.com/sequanix/sequanix/internal/database"
	"github.com/sequanix/sequanix/internal/models"
)

type engineFixture struct {
	engine *Engine
	store  *database.MemoryStore
	acl    *MemoryAclOverlay

	admin    *models.User // no laboratory
	manager  *models.User // manager of lab 1
	owner    *models.User // member of lab 1
	labMate  *models.User // member of lab 1
	outsider *models.User // member of lab 2
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	store := database.NewMemoryStore()
	store.AddLaboratory(&models.Laboratory{ID: 1, Name: "Genomics"})
	store.AddLaboratory(&models.Laboratory{ID: 2, Name: "Proteomics"})

	f := &engineFixture{
		store:    store,
		acl:      NewMemoryAclOverlay(),
		admin:    &models.User{Email: "admin@example.com", Active: true, Admin: true},
		manager:  &models.User{Email: "manager@example.com", Active: true, Manager: true, LaboratoryID: 1},
		owner:    &models.User{Email: "owner@example.com", Active: true, LaboratoryID: 1},
		labMate:  &models.User{Email: "mate@example.com", Active: true, LaboratoryID: 1},
		outsider: &models.User{Email: "outsider@example.com", Active: true, LaboratoryID: 2},
	}
	for _, u := range []*models.User{f.admin, f.manager, f.owner, f.labMate, f.outsider} {
		if err := store.Users().Save(context.Background(), u); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	f.engine = NewEngine(store, f.acl, nil)
	return f
}

func contextFor(user *models.User) *auth.AuthContext {
	return &auth.AuthContext{Principal: auth.BuildPrincipal(user)}
}

func TestEngineOwnedEntity(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	dataset := &models.Dataset{ID: 10, Name: "run-42", Owner: f.owner}

	tests := []struct {
		name       string
		authCtx    *auth.AuthContext
		permission Permission
		want       bool
	}{
		{"anonymous read denied", &auth.AuthContext{}, PermissionRead, false},
		{"admin read", contextFor(f.admin), PermissionRead, true},
		{"admin write", contextFor(f.admin), PermissionWrite, true},
		{"owner read", contextFor(f.owner), PermissionRead, true},
		{"owner write", contextFor(f.owner), PermissionWrite, true},
		{"lab mate read", contextFor(f.labMate), PermissionRead, true},
		{"lab mate write denied", contextFor(f.labMate), PermissionWrite, false},
		{"manager same lab write", contextFor(f.manager), PermissionWrite, true},
		{"outsider read denied", contextFor(f.outsider), PermissionRead, false},
		{"outsider write denied", contextFor(f.outsider), PermissionWrite, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.engine.HasPermission(ctx, tt.authCtx, dataset, tt.permission); got != tt.want {
				t.Errorf("HasPermission = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEngineUnsavedEntityAllowed(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	unsaved := &models.Dataset{Name: "draft"}
	if !f.engine.HasPermission(ctx, contextFor(f.outsider), unsaved, PermissionWrite) {
		t.Error("unsaved entity denied to authenticated user")
	}
	if f.engine.HasPermission(ctx, &auth.AuthContext{}, unsaved, PermissionWrite) {
		t.Error("unsaved entity allowed to anonymous")
	}
}

func TestEngineOwnerlessEntityDenied(t *testing.T) {
	f := newEngineFixture(t)

	orphan := &models.Dataset{ID: 11, Name: "orphan"}
	if f.engine.HasPermission(context.Background(), contextFor(f.owner), orphan, PermissionRead) {
		t.Error("entity without an owner allowed to non-admin")
	}
	if !f.engine.HasPermission(context.Background(), contextFor(f.admin), orphan, PermissionRead) {
		t.Error("entity without an owner denied to admin")
	}
}

func TestEngineAclExtendsRead(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	dataset := &models.Dataset{ID: 10, Name: "run-42", Owner: f.owner}

	// Lab 2 gets READ on the dataset through the overlay.
	f.acl.Grant(AclGrant{
		EntityType: models.EntityDataset,
		EntityID:   10,
		Authority:  models.LaboratoryMember(2),
		Permission: PermissionRead,
	})

	if !f.engine.HasPermission(ctx, contextFor(f.outsider), dataset, PermissionRead) {
		t.Error("ACL grant did not extend READ")
	}
	if f.engine.HasPermission(ctx, contextFor(f.outsider), dataset, PermissionWrite) {
		t.Error("ACL grant extended WRITE")
	}

	other := &models.Dataset{ID: 99, Name: "other", Owner: f.owner}
	if f.engine.HasPermission(ctx, contextFor(f.outsider), other, PermissionRead) {
		t.Error("ACL grant leaked to another entity")
	}
}

// Protocols have no overlay; a grant row for one must not take effect.
func TestEngineAclNotConsultedForProtocols(t *testing.T) {
	f := newEngineFixture(t)
	protocol := &models.Protocol{ID: 20, Name: "extraction", Owner: f.owner}

	f.acl.Grant(AclGrant{
		EntityType: models.EntityProtocol,
		EntityID:   20,
		Authority:  models.LaboratoryMember(2),
		Permission: PermissionRead,
	})

	if f.engine.HasPermission(context.Background(), contextFor(f.outsider), protocol, PermissionRead) {
		t.Error("overlay consulted for a protocol")
	}
}

func TestEngineAclRevoke(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	dataset := &models.Dataset{ID: 10, Name: "run-42", Owner: f.owner}

	grant := AclGrant{
		EntityType: models.EntityDataset,
		EntityID:   10,
		Authority:  models.LaboratoryMember(2),
		Permission: PermissionRead,
	}
	f.acl.Grant(grant)
	f.acl.Revoke(models.EntityDataset, 10, models.LaboratoryMember(2))

	if f.engine.HasPermission(ctx, contextFor(f.outsider), dataset, PermissionRead) {
		t.Error("revoked grant still effective")
	}
}

func TestEngineUserEntity(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		authCtx    *auth.AuthContext
		target     *models.User
		permission Permission
		want       bool
	}{
		{"admin writes anyone", contextFor(f.admin), f.outsider, PermissionWrite, true},
		{"self read", contextFor(f.owner), f.owner, PermissionRead, true},
		{"self write", contextFor(f.owner), f.owner, PermissionWrite, true},
		{"lab mate read", contextFor(f.labMate), f.owner, PermissionRead, true},
		{"lab mate write denied", contextFor(f.labMate), f.owner, PermissionWrite, false},
		{"manager writes lab member", contextFor(f.manager), f.owner, PermissionWrite, true},
		{"manager write outside lab denied", contextFor(f.manager), f.outsider, PermissionWrite, false},
		{"admin target denied to manager", contextFor(f.manager), f.admin, PermissionRead, false},
		{"outsider read denied", contextFor(f.outsider), f.owner, PermissionRead, false},
		{"anonymous denied", &auth.AuthContext{}, f.owner, PermissionRead, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.engine.HasPermission(ctx, tt.authCtx, tt.target, tt.permission); got != tt.want {
				t.Errorf("HasPermission = %v, want %v", got, tt.want)
			}
		})
	}
}

// A write proposing a different laboratory than the persisted record is
// denied to non-admins, even a manager of the target laboratory.
func TestEngineUserLaboratoryMoveDenied(t *testing.T) {
	f := newEngineFixture(t)

	moved := *f.owner
	moved.LaboratoryID = 1 // unchanged; manager may write
	if !f.engine.HasPermission(context.Background(), contextFor(f.manager), &moved, PermissionWrite) {
		t.Fatal("manager denied an in-lab write")
	}

	moved.LaboratoryID = 2
	if f.engine.HasPermission(context.Background(), contextFor(f.manager), &moved, PermissionWrite) {
		t.Error("laboratory move allowed to non-admin")
	}
	if !f.engine.HasPermission(context.Background(), contextFor(f.admin), &moved, PermissionWrite) {
		t.Error("laboratory move denied to admin")
	}
}

func TestEngineLaboratoryEntity(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	lab := &models.Laboratory{ID: 1, Name: "Genomics"}

	tests := []struct {
		name       string
		authCtx    *auth.AuthContext
		permission Permission
		want       bool
	}{
		{"admin write", contextFor(f.admin), PermissionWrite, true},
		{"member read", contextFor(f.labMate), PermissionRead, true},
		{"member write denied", contextFor(f.labMate), PermissionWrite, false},
		{"manager write", contextFor(f.manager), PermissionWrite, true},
		{"non-member read denied", contextFor(f.outsider), PermissionRead, false},
		{"anonymous denied", &auth.AuthContext{}, PermissionRead, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.engine.HasPermission(ctx, tt.authCtx, lab, tt.permission); got != tt.want {
				t.Errorf("HasPermission = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEngineUnknownTargetDenied(t *testing.T) {
	f := newEngineFixture(t)

	if f.engine.HasPermission(context.Background(), contextFor(f.admin), "not an entity", PermissionRead) {
		t.Error("unknown target type allowed")
	}
	if f.engine.HasPermissionByID(context.Background(), contextFor(f.admin), "widget", 1, PermissionRead) {
		t.Error("unknown type tag allowed")
	}
}

func TestEngineHasPermissionByID(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	sample := &models.Sample{ID: 30, Name: "S-1", Owner: f.owner}
	f.store.AddOwned(models.EntitySample, sample)

	if !f.engine.HasPermissionByID(ctx, contextFor(f.labMate), "sample", 30, PermissionRead) {
		t.Error("lab mate denied READ by id")
	}
	if f.engine.HasPermissionByID(ctx, contextFor(f.labMate), "sample", 30, PermissionWrite) {
		t.Error("lab mate allowed WRITE by id")
	}

	// Missing target denies, even for admins.
	if f.engine.HasPermissionByID(ctx, contextFor(f.admin), "sample", 999, PermissionRead) {
		t.Error("missing target allowed")
	}
}

func TestEngineCollectionPermission(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	mine := &models.Experiment{ID: 40, Name: "e-1", Owner: f.owner}
	theirs := &models.Experiment{ID: 41, Name: "e-2", Owner: f.outsider}

	if !f.engine.HasCollectionPermission(ctx, contextFor(f.owner), []any{mine}, PermissionWrite) {
		t.Error("single-owned collection denied")
	}
	if f.engine.HasCollectionPermission(ctx, contextFor(f.owner), []any{mine, theirs}, PermissionWrite) {
		t.Error("mixed collection allowed")
	}
	if !f.engine.HasCollectionPermission(ctx, &auth.AuthContext{}, nil, PermissionWrite) {
		t.Error("empty collection denied")
	}
}
