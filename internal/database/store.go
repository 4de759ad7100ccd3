// Sequanix - Laboratory Information Management for Sequencing Facilities
// Copyright 2026 Sequanix Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sequanix/sequanix

// Package database provides the persistence layer. Two implementations
// exist: a Postgres store backed by pgx, and an in-memory store for
// development and tests.
package database

import (
	"context"
	"errors"

	"github.com/sequanix/sequanix/internal/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// UserRepository persists user accounts.
type UserRepository interface {
	// FindByEmail looks up a user by email. Returns ErrNotFound when the
	// email is unknown.
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByID looks up a user by id. Returns ErrNotFound when missing.
	FindByID(ctx context.Context, id int64) (*models.User, error)

	// Save inserts the user when its ID is zero (assigning a new id) and
	// updates it otherwise.
	Save(ctx context.Context, user *models.User) error
}

// LaboratoryRepository persists laboratories.
type LaboratoryRepository interface {
	// FindByID looks up a laboratory by id. Returns ErrNotFound when
	// missing.
	FindByID(ctx context.Context, id int64) (*models.Laboratory, error)
}

// OwnedRepository resolves owned entities by type tag and id, for
// permission checks that receive only an {id, type} pair.
type OwnedRepository interface {
	// FindOwned returns the owned entity of the given family. Returns
	// ErrNotFound when missing.
	FindOwned(ctx context.Context, t models.EntityType, id int64) (models.Owned, error)
}

// Store bundles the repositories.
type Store interface {
	Users() UserRepository
	Laboratories() LaboratoryRepository
	Owned() OwnedRepository
}
