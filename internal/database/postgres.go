// Sequanix - Laboratory Information Management for Sequencing Facilities
// Copyright 2026 Sequanix Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sequanix/sequanix

package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sequanix/sequanix/internal/models"
)

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to the given Postgres DSN.
func NewPostgresStore(ctx context.Context, url string, maxConns int) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() { s.pool.Close() }

// Users returns the user repository.
func (s *PostgresStore) Users() UserRepository { return (*postgresUsers)(s) }

// Laboratories returns the laboratory repository.
func (s *PostgresStore) Laboratories() LaboratoryRepository { return (*postgresLaboratories)(s) }

// Owned returns the owned-entity repository.
func (s *PostgresStore) Owned() OwnedRepository { return (*postgresOwned)(s) }

const userColumns = `id, email, name, hashed_password, active, admin, manager,
	expired_password, laboratory_id, sign_attempts, last_sign_attempt`

type postgresUsers PostgresStore

func (s *postgresUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	return scanUser(row)
}

func (s *postgresUsers) FindByID(ctx context.Context, id int64) (*models.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (s *postgresUsers) Save(ctx context.Context, user *models.User) error {
	if user.ID == 0 {
		err := s.pool.QueryRow(ctx,
			`INSERT INTO users (email, name, hashed_password, active, admin, manager,
				expired_password, laboratory_id, sign_attempts, last_sign_attempt)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			 RETURNING id`,
			user.Email, user.Name, user.HashedPassword, user.Active, user.Admin,
			user.Manager, user.ExpiredPassword, user.LaboratoryID,
			user.SignAttempts, user.LastSignAttempt).Scan(&user.ID)
		if err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		return nil
	}

	_, err := s.pool.Exec(ctx,
		`UPDATE users SET email = $2, name = $3, hashed_password = $4, active = $5,
			admin = $6, manager = $7, expired_password = $8, laboratory_id = $9,
			sign_attempts = $10, last_sign_attempt = $11
		 WHERE id = $1`,
		user.ID, user.Email, user.Name, user.HashedPassword, user.Active,
		user.Admin, user.Manager, user.ExpiredPassword, user.LaboratoryID,
		user.SignAttempts, user.LastSignAttempt)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.HashedPassword, &u.Active,
		&u.Admin, &u.Manager, &u.ExpiredPassword, &u.LaboratoryID,
		&u.SignAttempts, &u.LastSignAttempt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

type postgresLaboratories PostgresStore

func (s *postgresLaboratories) FindByID(ctx context.Context, id int64) (*models.Laboratory, error) {
	var lab models.Laboratory
	err := s.pool.QueryRow(ctx,
		`SELECT id, name FROM laboratories WHERE id = $1`, id).
		Scan(&lab.ID, &lab.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan laboratory: %w", err)
	}
	return &lab, nil
}

type postgresOwned PostgresStore

// ownedTables maps entity families to their table and name column. Each
// table carries an owner_id foreign key into users.
var ownedTables = map[models.EntityType]struct {
	table string
	name  string
}{
	models.EntityDataset:    {table: "datasets", name: "name"},
	models.EntityExperiment: {table: "experiments", name: "name"},
	models.EntityProtocol:   {table: "protocols", name: "name"},
	models.EntitySample:     {table: "samples", name: "name"},
	models.EntityMessage:    {table: "messages", name: "subject"},
}

func (s *postgresOwned) FindOwned(ctx context.Context, t models.EntityType, id int64) (models.Owned, error) {
	meta, ok := ownedTables[t]
	if !ok {
		return nil, ErrNotFound
	}

	var (
		entityID int64
		name     string
		ownerID  int64
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, `+meta.name+`, owner_id FROM `+meta.table+` WHERE id = $1`, id).
		Scan(&entityID, &name, &ownerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", t, err)
	}

	owner, err := (*postgresUsers)(s).FindByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load %s owner: %w", t, err)
	}

	return buildOwned(t, entityID, name, owner), nil
}

// buildOwned materializes the concrete entity for a family.
func buildOwned(t models.EntityType, id int64, name string, owner *models.User) models.Owned {
	switch t {
	case models.EntityDataset:
		return &models.Dataset{ID: id, Name: name, Owner: owner}
	case models.EntityExperiment:
		return &models.Experiment{ID: id, Name: name, Owner: owner}
	case models.EntityProtocol:
		return &models.Protocol{ID: id, Name: name, Owner: owner}
	case models.EntitySample:
		return &models.Sample{ID: id, Name: name, Owner: owner}
	case models.EntityMessage:
		return &models.Message{ID: id, Subject: name, Owner: owner}
	default:
		return nil
	}
}
