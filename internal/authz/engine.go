// Sequanix - Laboratory Information Management for Sequencing Facilities
// Copyright 2026 Sequanix Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sequanix/sequanix

package authz

import (
	"context"

	"github.com/sequanix/sequanix/internal/audit"
	"github.com/sequanix/sequanix/internal/auth"
	"github.com/sequanix/sequanix/internal/database"
	"github.com/sequanix/sequanix/internal/metrics"
	"github.com/sequanix/sequanix/internal/models"
)

// Evaluator decides permissions for one entity family.
type Evaluator interface {
	// HasPermission evaluates a decision for a loaded target.
	HasPermission(ctx context.Context, principal *auth.Principal, target any, permission Permission) bool

	// HasPermissionByID loads the target by id and evaluates. A missing
	// target denies.
	HasPermissionByID(ctx context.Context, principal *auth.Principal, id int64, permission Permission) bool
}

// Engine dispatches permission checks to per-family evaluators through a
// registry built once at construction. Unknown families deny; the engine
// never errors and never mutates state.
type Engine struct {
	evaluators map[models.EntityType]Evaluator
	audit      *audit.Logger
}

// NewEngine builds the engine with all seven family evaluators
// registered. The ACL overlay extends READ for datasets and experiments
// only; auditLogger may be nil.
func NewEngine(store database.Store, acl AclOverlay, auditLogger *audit.Logger) *Engine {
	users := store.Users()
	owned := store.Owned()

	evaluators := map[models.EntityType]Evaluator{
		models.EntityUser:       &userEvaluator{users: users},
		models.EntityLaboratory: &laboratoryEvaluator{laboratories: store.Laboratories()},
	}
	for _, t := range []models.EntityType{models.EntityProtocol, models.EntitySample, models.EntityMessage} {
		evaluators[t] = &ownedEvaluator{typ: t, owned: owned}
	}
	for _, t := range []models.EntityType{models.EntityDataset, models.EntityExperiment} {
		evaluators[t] = &ownedEvaluator{typ: t, owned: owned, acl: acl}
	}

	return &Engine{evaluators: evaluators, audit: auditLogger}
}

// HasPermission reports whether the current principal holds the permission
// on the target. Targets of unknown families deny.
func (e *Engine) HasPermission(ctx context.Context, authCtx *auth.AuthContext, target any, permission Permission) bool {
	t, ok := entityTypeOf(target)
	if !ok {
		metrics.AuthzDecisions.WithLabelValues("unknown", "deny").Inc()
		return false
	}

	decision := e.evaluators[t].HasPermission(ctx, principalOf(authCtx), target, permission)
	e.record(authCtx, t, permission, decision)
	return decision
}

// HasPermissionByID is the {id, type} form of HasPermission. Unknown type
// tags deny.
func (e *Engine) HasPermissionByID(ctx context.Context, authCtx *auth.AuthContext, entityType string, id int64, permission Permission) bool {
	t, ok := models.ParseEntityType(entityType)
	if !ok {
		metrics.AuthzDecisions.WithLabelValues("unknown", "deny").Inc()
		return false
	}

	decision := e.evaluators[t].HasPermissionByID(ctx, principalOf(authCtx), id, permission)
	e.record(authCtx, t, permission, decision)
	return decision
}

// HasCollectionPermission reports whether the principal holds the
// permission on every target. An empty collection allows.
func (e *Engine) HasCollectionPermission(ctx context.Context, authCtx *auth.AuthContext, targets []any, permission Permission) bool {
	for _, target := range targets {
		if !e.HasPermission(ctx, authCtx, target, permission) {
			return false
		}
	}
	return true
}

// record counts the decision and audits denials.
func (e *Engine) record(authCtx *auth.AuthContext, t models.EntityType, permission Permission, decision bool) {
	label := "deny"
	if decision {
		label = "allow"
	}
	metrics.AuthzDecisions.WithLabelValues(string(t), label).Inc()

	if !decision && authCtx.Authenticated() {
		e.audit.Log(&audit.Event{
			Type:        audit.EventTypeAuthzDenied,
			Outcome:     audit.OutcomeFailure,
			Actor:       audit.Actor{ID: authCtx.Principal.UserID, Email: authCtx.Principal.Email},
			SessionID:   authCtx.SessionID,
			Description: permission.String() + " denied on " + string(t),
		})
	}
}

// entityTypeOf maps a target's runtime type to its family tag.
func entityTypeOf(target any) (models.EntityType, bool) {
	switch target.(type) {
	case *models.User:
		return models.EntityUser, true
	case *models.Laboratory:
		return models.EntityLaboratory, true
	case *models.Dataset:
		return models.EntityDataset, true
	case *models.Experiment:
		return models.EntityExperiment, true
	case *models.Protocol:
		return models.EntityProtocol, true
	case *models.Sample:
		return models.EntitySample, true
	case *models.Message:
		return models.EntityMessage, true
	default:
		return "", false
	}
}

// principalOf unwraps the principal, nil for anonymous contexts.
func principalOf(authCtx *auth.AuthContext) *auth.Principal {
	if !authCtx.Authenticated() {
		return nil
	}
	return authCtx.Principal
}
