// Sequanix - Laboratory Information Management for Sequencing Facilities
// Copyright 2026 Sequanix Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sequanix/sequanix

// Package metrics exposes Prometheus instrumentation for the security core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts counts sign-in attempts.
	// Labels:
	//   - outcome: "success", "bad_credentials", "locked", "disabled", "unknown"
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sequanix_auth_attempts_total",
			Help: "Total number of sign-in attempts",
		},
		[]string{"outcome"},
	)

	// AuthLockouts counts accounts entering the locked state.
	AuthLockouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sequanix_auth_lockouts_total",
			Help: "Total number of account lockouts",
		},
	)

	// AuthDisables counts accounts disabled by the attempt threshold.
	AuthDisables = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sequanix_auth_disables_total",
			Help: "Total number of accounts disabled after repeated failures",
		},
	)

	// DirectoryFallbacks counts directory credential checks.
	// Labels:
	//   - outcome: "success", "failure", "unavailable"
	DirectoryFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sequanix_directory_fallback_total",
			Help: "Total number of directory-service credential fallbacks",
		},
		[]string{"outcome"},
	)

	// AuthzDecisions counts permission-engine decisions.
	// Labels:
	//   - entity: entity family tag
	//   - decision: "allow", "deny"
	AuthzDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sequanix_authz_decisions_total",
			Help: "Total number of permission decisions",
		},
		[]string{"entity", "decision"},
	)

	// Impersonations counts switch-user operations.
	// Labels:
	//   - action: "start", "exit"
	//   - outcome: "success", "failure"
	Impersonations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sequanix_impersonations_total",
			Help: "Total number of switch-user operations",
		},
		[]string{"action", "outcome"},
	)
)
