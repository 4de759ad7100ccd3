// Sequanix - Laboratory Information Management for Sequencing Facilities
// Copyright 2026 Sequanix Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sequanix/sequanix

package authz

import (
	"context"

	"github.com/sequanix/sequanix/internal/auth"
	"github.com/sequanix/sequanix/internal/database"
	"github.com/sequanix/sequanix/internal/models"
)

// userEvaluator decides permissions on user records. Only administrators
// touch admin accounts or accounts outside any laboratory. WRITE compares
// the persisted laboratory against the proposed record so a non-admin
// cannot move a user between laboratories.
type userEvaluator struct {
	users database.UserRepository
}

func (e *userEvaluator) HasPermission(ctx context.Context, principal *auth.Principal, target any, permission Permission) bool {
	user, ok := target.(*models.User)
	if !ok {
		return false
	}
	return e.decide(ctx, principal, user, permission)
}

func (e *userEvaluator) HasPermissionByID(ctx context.Context, principal *auth.Principal, id int64, permission Permission) bool {
	user, err := e.users.FindByID(ctx, id)
	if err != nil {
		return false
	}
	return e.decide(ctx, principal, user, permission)
}

func (e *userEvaluator) decide(ctx context.Context, principal *auth.Principal, target *models.User, permission Permission) bool {
	if principal == nil {
		return false
	}
	if principal.HasAuthority(models.RoleAdmin) {
		return true
	}
	if target.ID == 0 {
		// Not yet persisted; accessible to its creator.
		return true
	}
	if target.Admin || target.LaboratoryID == 0 {
		return false
	}

	if permission == PermissionWrite {
		persisted, err := e.users.FindByID(ctx, target.ID)
		if err != nil {
			return false
		}
		if persisted.LaboratoryID != target.LaboratoryID {
			return false
		}
	}

	if target.ID == principal.UserID {
		return true
	}

	member := principal.HasAuthority(models.LaboratoryMember(target.LaboratoryID))
	if permission == PermissionRead && member {
		return true
	}
	if permission == PermissionWrite && member && principal.HasAuthority(models.RoleManager) {
		return true
	}
	return false
}
