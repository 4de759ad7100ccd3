// Sequanix - Laboratory Information Management for Sequencing Facilities
// Copyright 2026 Sequanix Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sequanix/sequanix

package api

import (
	"net/http"
	"strconv"

	"github.com/sequanix/sequanix/internal/auth"
	"github.com/sequanix/sequanix/internal/authz"
)

// PermissionCheckResponse is the permission-query result.
type PermissionCheckResponse struct {
	EntityType string `json:"entity_type"`
	EntityID   int64  `json:"entity_id"`
	Permission string `json:"permission"`
	Allowed    bool   `json:"allowed"`
}

// CheckPermission answers whether the current principal holds a permission
// on an entity named by {type, id}. Denials are indistinguishable from
// missing entities.
func (h *Handler) CheckPermission(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.FromContext(r.Context())
	query := r.URL.Query()

	entityType := query.Get("type")
	if entityType == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "type is required", nil)
		return
	}

	id, err := strconv.ParseInt(query.Get("id"), 10, 64)
	if err != nil || id < 1 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "id must be a positive integer", nil)
		return
	}

	permission, err := authz.ParsePermission(query.Get("permission"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "unknown permission", nil)
		return
	}

	allowed := h.engine.HasPermissionByID(r.Context(), authCtx, entityType, id, permission)
	respondData(w, http.StatusOK, PermissionCheckResponse{
		EntityType: entityType,
		EntityID:   id,
		Permission: permission.String(),
		Allowed:    allowed,
	})
}
