// Sequanix - Laboratory Information Management for Sequencing Facilities
// Copyright 2026 Sequanix Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sequanix/sequanix

package authz

import (
	"context"
	"errors"
	"sync"

	"github.com/sequanix/sequanix/internal/models"
)

// ErrNoGrants is returned by an AclOverlay when no grants exist for the
// entity. The permission engine treats it as "no extra grant", never as a
// failure.
var ErrNoGrants = errors.New("no acl grants")

// AclGrant is a supplementary access grant: a laboratory-as-authority is
// given a permission on one entity. Written by the share-management flow;
// read-only from the engine's perspective.
type AclGrant struct {
	EntityType models.EntityType `json:"entity_type"`
	EntityID   int64             `json:"entity_id"`

	// Authority is the grantee, a laboratory-member authority string
	// (LABORATORY_<id>).
	Authority string `json:"authority"`

	Permission Permission `json:"permission"`
}

// AclOverlay reads supplementary grants per entity.
type AclOverlay interface {
	// ReadGrants returns the grants for an entity. Returns ErrNoGrants
	// when none exist.
	ReadGrants(ctx context.Context, t models.EntityType, id int64) ([]AclGrant, error)
}

// MemoryAclOverlay implements AclOverlay with an in-process map. The
// share-management flow writes through Grant/Revoke.
type MemoryAclOverlay struct {
	mu     sync.RWMutex
	grants map[aclKey][]AclGrant
}

type aclKey struct {
	t  models.EntityType
	id int64
}

// NewMemoryAclOverlay creates an empty overlay.
func NewMemoryAclOverlay() *MemoryAclOverlay {
	return &MemoryAclOverlay{grants: make(map[aclKey][]AclGrant)}
}

// ReadGrants returns the grants for an entity.
func (o *MemoryAclOverlay) ReadGrants(_ context.Context, t models.EntityType, id int64) ([]AclGrant, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	grants, ok := o.grants[aclKey{t: t, id: id}]
	if !ok || len(grants) == 0 {
		return nil, ErrNoGrants
	}

	out := make([]AclGrant, len(grants))
	copy(out, grants)
	return out, nil
}

// Grant adds a supplementary grant.
func (o *MemoryAclOverlay) Grant(grant AclGrant) {
	o.mu.Lock()
	defer o.mu.Unlock()

	key := aclKey{t: grant.EntityType, id: grant.EntityID}
	o.grants[key] = append(o.grants[key], grant)
}

// Revoke removes all grants for the authority on the entity.
func (o *MemoryAclOverlay) Revoke(t models.EntityType, id int64, authority string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	key := aclKey{t: t, id: id}
	var kept []AclGrant
	for _, grant := range o.grants[key] {
		if grant.Authority != authority {
			kept = append(kept, grant)
		}
	}
	if len(kept) == 0 {
		delete(o.grants, key)
		return
	}
	o.grants[key] = kept
}
