// Sequanix - Laboratory Information Management for Sequencing Facilities
// Copyright 2026 Sequanix Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sequanix/sequanix

package auth

import (
	"slices"

	"github.com/sequanix/sequanix/internal/models"
)

// Principal is an authenticated identity: the user id plus the authority
// set granted at sign-in. Created at successful authentication, replaced on
// authority reload, discarded at sign-out.
type Principal struct {
	// UserID is the id of the backing user record.
	UserID int64 `json:"user_id"`

	// Email is the sign-in identifier.
	Email string `json:"email"`

	// Name is the display name.
	Name string `json:"name"`

	// Authorities are the role strings granted to this principal.
	Authorities []string `json:"authorities"`
}

// HasAuthority reports whether the principal carries the given authority.
func (p *Principal) HasAuthority(authority string) bool {
	if p == nil || authority == "" {
		return false
	}
	return slices.Contains(p.Authorities, authority)
}

// ForcePasswordChange reports whether the principal must change their
// password before normal use.
func (p *Principal) ForcePasswordChange() bool {
	return p.HasAuthority(models.AuthorityForcePasswordChange)
}

// Clone returns a deep copy of the principal.
func (p *Principal) Clone() *Principal {
	if p == nil {
		return nil
	}
	copied := *p
	copied.Authorities = slices.Clone(p.Authorities)
	return &copied
}

// Equal reports whether two principals carry the same identity and the
// same authority set, in order.
func (p *Principal) Equal(other *Principal) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.UserID == other.UserID &&
		p.Email == other.Email &&
		slices.Equal(p.Authorities, other.Authorities)
}

// BuildPrincipal derives a principal from a user record. Authorities:
// USER always, MANAGER and ADMIN from the role flags, LABORATORY_<id> for
// the user's laboratory, and FORCE_CHANGE_PASSWORD when the password has
// expired.
func BuildPrincipal(user *models.User) *Principal {
	authorities := []string{models.RoleUser}
	if user.Manager {
		authorities = append(authorities, models.RoleManager)
	}
	if user.Admin {
		authorities = append(authorities, models.RoleAdmin)
	}
	if user.LaboratoryID != 0 {
		authorities = append(authorities, models.LaboratoryMember(user.LaboratoryID))
	}
	if user.ExpiredPassword {
		authorities = append(authorities, models.AuthorityForcePasswordChange)
	}

	return &Principal{
		UserID:      user.ID,
		Email:       user.Email,
		Name:        user.Name,
		Authorities: authorities,
	}
}
