// Sequanix - Laboratory Information Management for Sequencing Facilities
// Copyright 2026 Sequanix Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sequanix/sequanix

package authz

import (
	"context"
	"errors"

	"github.com/sequanix/sequanix/internal/auth"
	"github.com/sequanix/sequanix/internal/database"
	"github.com/sequanix/sequanix/internal/logging"
	"github.com/sequanix/sequanix/internal/models"
)

// ownedEvaluator decides permissions for owned entities (datasets,
// experiments, protocols, samples, messages). Precedence: admin, unsaved
// target, owner, laboratory rule, then the ACL overlay (READ only, when
// the family carries one).
type ownedEvaluator struct {
	typ   models.EntityType
	owned database.OwnedRepository

	// acl is nil for families without an overlay.
	acl AclOverlay
}

func (e *ownedEvaluator) HasPermission(ctx context.Context, principal *auth.Principal, target any, permission Permission) bool {
	entity, ok := target.(models.Owned)
	if !ok {
		return false
	}
	return e.decide(ctx, principal, entity, permission)
}

func (e *ownedEvaluator) HasPermissionByID(ctx context.Context, principal *auth.Principal, id int64, permission Permission) bool {
	entity, err := e.owned.FindOwned(ctx, e.typ, id)
	if err != nil {
		return false
	}
	return e.decide(ctx, principal, entity, permission)
}

func (e *ownedEvaluator) decide(ctx context.Context, principal *auth.Principal, entity models.Owned, permission Permission) bool {
	if principal == nil {
		return false
	}
	if principal.HasAuthority(models.RoleAdmin) {
		return true
	}
	if entity.OwnedID() == 0 {
		// Not yet persisted; accessible to its creator.
		return true
	}

	owner := entity.OwnedBy()
	if owner == nil {
		return false
	}
	if owner.ID == principal.UserID {
		return true
	}

	if owner.LaboratoryID != 0 && principal.HasAuthority(models.LaboratoryMember(owner.LaboratoryID)) {
		if permission == PermissionRead {
			return true
		}
		if permission == PermissionWrite && principal.HasAuthority(models.RoleManager) {
			return true
		}
	}

	if e.acl != nil && permission == PermissionRead {
		return e.aclGranted(ctx, entity, permission, principal)
	}
	return false
}

// aclGranted consults the overlay for an explicit grant matching the
// permission and one of the principal's authorities. Absence of a record
// is not an error.
func (e *ownedEvaluator) aclGranted(ctx context.Context, entity models.Owned, permission Permission, principal *auth.Principal) bool {
	grants, err := e.acl.ReadGrants(ctx, e.typ, entity.OwnedID())
	if err != nil {
		if !errors.Is(err, ErrNoGrants) {
			logging.Warn().Err(err).
				Str("entity", string(e.typ)).
				Int64("id", entity.OwnedID()).
				Msg("acl overlay read failed")
		}
		return false
	}

	for _, grant := range grants {
		if grant.Permission == permission && principal.HasAuthority(grant.Authority) {
			return true
		}
	}
	return false
}
