// Sequanix - Laboratory Information Management for Sequencing Facilities
// Copyright 2026 Sequanix Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sequanix/sequanix

package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashSecret hashes a plaintext secret with bcrypt at the given cost.
// Use before inserting a password into the database.
func HashSecret(plain string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(hash), nil
}

// VerifySecret reports whether the plaintext secret matches the stored
// bcrypt hash.
func VerifySecret(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
