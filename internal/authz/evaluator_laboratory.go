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

// laboratoryEvaluator decides permissions on laboratories. Members read
// their own laboratory; only a manager of the laboratory writes it.
type laboratoryEvaluator struct {
	laboratories database.LaboratoryRepository
}

func (e *laboratoryEvaluator) HasPermission(ctx context.Context, principal *auth.Principal, target any, permission Permission) bool {
	lab, ok := target.(*models.Laboratory)
	if !ok {
		return false
	}
	return e.decide(principal, lab, permission)
}

func (e *laboratoryEvaluator) HasPermissionByID(ctx context.Context, principal *auth.Principal, id int64, permission Permission) bool {
	lab, err := e.laboratories.FindByID(ctx, id)
	if err != nil {
		return false
	}
	return e.decide(principal, lab, permission)
}

func (e *laboratoryEvaluator) decide(principal *auth.Principal, lab *models.Laboratory, permission Permission) bool {
	if principal == nil {
		return false
	}
	if principal.HasAuthority(models.RoleAdmin) {
		return true
	}
	if lab.ID == 0 {
		return false
	}

	member := principal.HasAuthority(models.LaboratoryMember(lab.ID))
	if permission == PermissionRead && member {
		return true
	}
	if permission == PermissionWrite && member && principal.HasAuthority(models.RoleManager) {
		return true
	}
	return false
}
