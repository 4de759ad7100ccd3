// Sequanix - Laboratory Information Management for Sequencing Facilities
// Copyright 2026 Sequanix Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sequanix/sequanix

package database

import (
	"context"
	"strings"
	"sync"

	"github.com/sequanix/sequanix/internal/models"
)

// MemoryStore implements Store with in-process maps. Suitable for
// development and tests; data does not survive a restart.
type MemoryStore struct {
	mu           sync.RWMutex
	nextID       int64
	users        map[int64]*models.User
	laboratories map[int64]*models.Laboratory
	owned        map[ownedKey]models.Owned
}

type ownedKey struct {
	t  models.EntityType
	id int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:       1,
		users:        make(map[int64]*models.User),
		laboratories: make(map[int64]*models.Laboratory),
		owned:        make(map[ownedKey]models.Owned),
	}
}

// Users returns the user repository.
func (s *MemoryStore) Users() UserRepository { return (*memoryUsers)(s) }

// Laboratories returns the laboratory repository.
func (s *MemoryStore) Laboratories() LaboratoryRepository { return (*memoryLaboratories)(s) }

// Owned returns the owned-entity repository.
func (s *MemoryStore) Owned() OwnedRepository { return (*memoryOwned)(s) }

// AddLaboratory inserts a laboratory, assigning an id when zero.
func (s *MemoryStore) AddLaboratory(lab *models.Laboratory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lab.ID == 0 {
		lab.ID = s.nextID
		s.nextID++
	}
	copied := *lab
	s.laboratories[lab.ID] = &copied
}

// AddOwned inserts an owned entity under its type tag.
func (s *MemoryStore) AddOwned(t models.EntityType, entity models.Owned) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owned[ownedKey{t: t, id: entity.OwnedID()}] = entity
}

type memoryUsers MemoryStore

func (s *memoryUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memoryUsers) FindByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *memoryUsers) Save(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == 0 {
		user.ID = s.nextID
		s.nextID++
	}
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

type memoryLaboratories MemoryStore

func (s *memoryLaboratories) FindByID(_ context.Context, id int64) (*models.Laboratory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lab, ok := s.laboratories[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *lab
	return &copied, nil
}

type memoryOwned MemoryStore

func (s *memoryOwned) FindOwned(_ context.Context, t models.EntityType, id int64) (models.Owned, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entity, ok := s.owned[ownedKey{t: t, id: id}]
	if !ok {
		return nil, ErrNotFound
	}
	return entity, nil
}
