// Sequanix - Laboratory Information Management for Sequencing Facilities
// Copyright 2026 Sequanix Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sequanix/sequanix

// Package authz implements the permission-decision engine: one evaluator
// per entity family, combining ownership, roles, laboratory membership and
// the ACL overlay into an allow/deny decision.
package authz

import (
	"errors"
	"fmt"
	"strings"
)

// Permission enumerates the actions a principal may be granted.
type Permission int

const (
	PermissionRead Permission = iota
	PermissionWrite
	PermissionCreate
	PermissionDelete
	PermissionAdministration
)

// ErrInvalidPermission is returned for unresolvable permission tokens.
// A caller error, not a user-facing condition.
var ErrInvalidPermission = errors.New("invalid permission")

// String returns the canonical upper-case token.
func (p Permission) String() string {
	switch p {
	case PermissionRead:
		return "READ"
	case PermissionWrite:
		return "WRITE"
	case PermissionCreate:
		return "CREATE"
	case PermissionDelete:
		return "DELETE"
	case PermissionAdministration:
		return "ADMINISTRATION"
	default:
		return fmt.Sprintf("Permission(%d)", int(p))
	}
}

// ParsePermission resolves a token case-insensitively.
func ParsePermission(s string) (Permission, error) {
	switch strings.ToUpper(s) {
	case "READ":
		return PermissionRead, nil
	case "WRITE":
		return PermissionWrite, nil
	case "CREATE":
		return PermissionCreate, nil
	case "DELETE":
		return PermissionDelete, nil
	case "ADMINISTRATION":
		return PermissionAdministration, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidPermission, s)
	}
}
