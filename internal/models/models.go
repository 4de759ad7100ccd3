// Sequanix - Laboratory Information Management for Sequencing Facilities
// Copyright 2026 Sequanix Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sequanix/sequanix

// Package models defines the domain records shared across Sequanix.
package models

import (
	"strconv"
	"time"
)

// Role authorities carried by authenticated principals.
const (
	// RoleUser is granted to every active account.
	RoleUser = "USER"

	// RoleManager marks laboratory managers.
	RoleManager = "MANAGER"

	// RoleAdmin marks application administrators.
	RoleAdmin = "ADMIN"

	// AuthorityForcePasswordChange is granted when the account's password
	// has expired and must be changed before normal use.
	AuthorityForcePasswordChange = "FORCE_PASSWORD_CHANGE"
)

// laboratoryAuthorityPrefix prefixes laboratory membership authorities.
const laboratoryAuthorityPrefix = "LABORATORY_"

// LaboratoryMember returns the authority string marking membership in the
// laboratory with the given id.
func LaboratoryMember(laboratoryID int64) string {
	return laboratoryAuthorityPrefix + strconv.FormatInt(laboratoryID, 10)
}

// User is an account record. Attempt bookkeeping (SignAttempts,
// LastSignAttempt) is owned by the authenticator; role flags are mutated by
// account-management flows.
type User struct {
	ID              int64     `json:"id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	HashedPassword  string    `json:"-"`
	Active          bool      `json:"active"`
	Admin           bool      `json:"admin"`
	Manager         bool      `json:"manager"`
	ExpiredPassword bool      `json:"expired_password"`
	LaboratoryID    int64     `json:"laboratory_id"`
	SignAttempts    int       `json:"sign_attempts"`
	LastSignAttempt time.Time `json:"last_sign_attempt"`
}

// Laboratory groups users; used as a scoping key for permission checks.
type Laboratory struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// EntityType tags the entity families known to the permission engine.
type EntityType string

const (
	EntityUser       EntityType = "user"
	EntityLaboratory EntityType = "laboratory"
	EntityDataset    EntityType = "dataset"
	EntityExperiment EntityType = "experiment"
	EntityProtocol   EntityType = "protocol"
	EntitySample     EntityType = "sample"
	EntityMessage    EntityType = "message"
)

// ParseEntityType resolves a type tag. The second return value is false for
// unknown tags.
func ParseEntityType(s string) (EntityType, bool) {
	switch EntityType(s) {
	case EntityUser, EntityLaboratory, EntityDataset, EntityExperiment,
		EntityProtocol, EntitySample, EntityMessage:
		return EntityType(s), true
	default:
		return "", false
	}
}

// Owned is a domain object with a single designated owning user. An Owned
// entity with a zero id has not been persisted yet.
type Owned interface {
	OwnedID() int64
	OwnedBy() *User
}

// Dataset is a collection of sequencing files produced by experiments.
type Dataset struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Owner        *User     `json:"owner"`
	CreationDate time.Time `json:"creation_date"`
}

func (d *Dataset) OwnedID() int64 { return d.ID }
func (d *Dataset) OwnedBy() *User { return d.Owner }

// Experiment is a single sequencing experiment.
type Experiment struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Owner        *User     `json:"owner"`
	CreationDate time.Time `json:"creation_date"`
}

func (e *Experiment) OwnedID() int64 { return e.ID }
func (e *Experiment) OwnedBy() *User { return e.Owner }

// Protocol describes a laboratory procedure referenced by samples.
type Protocol struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Owner *User  `json:"owner"`
}

func (p *Protocol) OwnedID() int64 { return p.ID }
func (p *Protocol) OwnedBy() *User { return p.Owner }

// Sample is a biological sample submitted for sequencing.
type Sample struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Owner *User  `json:"owner"`
}

func (s *Sample) OwnedID() int64 { return s.ID }
func (s *Sample) OwnedBy() *User { return s.Owner }

// Message is an internal notification addressed to laboratory members.
type Message struct {
	ID      int64  `json:"id"`
	Subject string `json:"subject"`
	Owner   *User  `json:"owner"`
}

func (m *Message) OwnedID() int64 { return m.ID }
func (m *Message) OwnedBy() *User { return m.Owner }
