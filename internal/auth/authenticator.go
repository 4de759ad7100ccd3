// Sequanix - Laboratory Information Management for Sequencing Facilities
// Copyright 2026 Sequanix Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sequanix/sequanix

package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sequanix/sequanix/internal/audit"
	"github.com/sequanix/sequanix/internal/database"
	"github.com/sequanix/sequanix/internal/logging"
	"github.com/sequanix/sequanix/internal/metrics"
	"github.com/sequanix/sequanix/internal/models"
)

// AuthenticatorConfig holds lockout policy settings.
type AuthenticatorConfig struct {
	// LockAttempts is the modulus for the lock trigger.
	LockAttempts int

	// LockDuration is the lockout window measured from the last attempt.
	LockDuration time.Duration

	// DisableSignAttempts is the threshold at which the account is
	// permanently disabled.
	DisableSignAttempts int
}

// DefaultAuthenticatorConfig returns sensible defaults.
func DefaultAuthenticatorConfig() AuthenticatorConfig {
	return AuthenticatorConfig{
		LockAttempts:        5,
		LockDuration:        15 * time.Minute,
		DisableSignAttempts: 20,
	}
}

// Authenticator governs sign-in: account status checks, lockout policy,
// the local credential check, and the directory fallback. Attempt
// bookkeeping for one account is serialized with a per-account mutex so
// concurrent failures cannot under-count.
type Authenticator struct {
	users     database.UserRepository
	directory Directory // nil when directory integration is disabled
	config    AuthenticatorConfig
	audit     *audit.Logger

	accountMu sync.Mutex
	accounts  map[string]*sync.Mutex

	// now is replaceable in tests.
	now func() time.Time
}

// NewAuthenticator creates an authenticator. directory may be nil to
// disable the fallback; auditLogger may be nil to disable audit events.
func NewAuthenticator(users database.UserRepository, directory Directory, config AuthenticatorConfig, auditLogger *audit.Logger) *Authenticator {
	if config.LockAttempts <= 0 {
		config.LockAttempts = DefaultAuthenticatorConfig().LockAttempts
	}
	if config.DisableSignAttempts <= 0 {
		config.DisableSignAttempts = DefaultAuthenticatorConfig().DisableSignAttempts
	}
	if config.LockDuration <= 0 {
		config.LockDuration = DefaultAuthenticatorConfig().LockDuration
	}

	return &Authenticator{
		users:     users,
		directory: directory,
		config:    config,
		audit:     auditLogger,
		accounts:  make(map[string]*sync.Mutex),
		now:       time.Now,
	}
}

// lockAccount acquires the per-account mutex and returns its unlock func.
// Entries are never removed; the map is bounded by the number of accounts
// that ever attempted to sign in.
func (a *Authenticator) lockAccount(email string) func() {
	a.accountMu.Lock()
	mu, ok := a.accounts[email]
	if !ok {
		mu = &sync.Mutex{}
		a.accounts[email] = mu
	}
	a.accountMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

// Authenticate validates the identifier/secret pair and returns the
// resulting principal. Every branch except an unknown identifier persists
// the account's attempt bookkeeping.
func (a *Authenticator) Authenticate(ctx context.Context, identifier, secret string) (*Principal, error) {
	user, err := a.users.FindByEmail(ctx, identifier)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			metrics.AuthAttempts.WithLabelValues("unknown").Inc()
			a.auditFailure(identifier, nil, "unknown account")
			return nil, ErrUnknownAccount
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	unlock := a.lockAccount(user.Email)
	defer unlock()

	// Re-read under the account lock so concurrent attempts observe each
	// other's counter updates.
	user, err = a.users.FindByEmail(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !user.Active {
		logging.Debug().Str("user", user.Email).Msg("account is disabled")
		metrics.AuthAttempts.WithLabelValues("disabled").Inc()
		a.auditFailure(identifier, user, "account disabled")
		return nil, ErrDisabledAccount
	}

	if accountLocked(user, a.config, a.now()) {
		logging.Debug().Str("user", user.Email).Msg("account is locked")
		metrics.AuthAttempts.WithLabelValues("locked").Inc()
		a.auditFailure(identifier, user, "account locked")
		return nil, ErrLockedAccount
	}

	if VerifySecret(secret, user.HashedPassword) {
		return a.succeed(ctx, user)
	}

	// Local check failed; try the directory when configured.
	if secret != "" && a.directory != nil && a.directoryPasswordValid(ctx, user.Email, secret) {
		logging.Debug().Str("user", user.Email).Msg("authenticated through directory")
		return a.succeed(ctx, user)
	}

	return nil, a.fail(ctx, user)
}

// succeed resets the attempt counter and builds the principal.
func (a *Authenticator) succeed(ctx context.Context, user *models.User) (*Principal, error) {
	user.SignAttempts = 0
	user.LastSignAttempt = a.now()
	if err := a.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	a.audit.Log(&audit.Event{
		Type:        audit.EventTypeAuthSuccess,
		Outcome:     audit.OutcomeSuccess,
		Actor:       audit.Actor{ID: user.ID, Email: user.Email},
		Description: "signed in",
	})

	logging.Debug().Str("user", user.Email).Msg("authenticated successfully")
	return BuildPrincipal(user), nil
}

// fail increments the attempt counter, disabling the account past the
// threshold, and returns ErrBadCredentials.
func (a *Authenticator) fail(ctx context.Context, user *models.User) error {
	user.SignAttempts++
	user.LastSignAttempt = a.now()

	if user.SignAttempts >= a.config.DisableSignAttempts {
		user.Active = false
		metrics.AuthDisables.Inc()
		a.audit.Log(&audit.Event{
			Type:        audit.EventTypeAuthDisabled,
			Severity:    audit.SeverityCritical,
			Outcome:     audit.OutcomeFailure,
			Actor:       audit.Actor{ID: user.ID, Email: user.Email},
			Description: "account disabled after repeated failed sign-ins",
		})
		logging.Warn().Str("user", user.Email).Msg("account disabled after repeated failures")
	} else if user.SignAttempts%a.config.LockAttempts == 0 {
		metrics.AuthLockouts.Inc()
		a.audit.Log(&audit.Event{
			Type:        audit.EventTypeAuthLockout,
			Severity:    audit.SeverityWarning,
			Outcome:     audit.OutcomeFailure,
			Actor:       audit.Actor{ID: user.ID, Email: user.Email},
			Description: "account locked after repeated failed sign-ins",
		})
		logging.Warn().Str("user", user.Email).Msg("account locked")
	}

	if err := a.users.Save(ctx, user); err != nil {
		return fmt.Errorf("save user: %w", err)
	}

	metrics.AuthAttempts.WithLabelValues("bad_credentials").Inc()
	a.auditFailure(user.Email, user, "wrong password")
	logging.Debug().Str("user", user.Email).Msg("wrong password")
	return ErrBadCredentials
}

// directoryPasswordValid resolves the directory username for the email and
// verifies the secret. Any directory error counts as a failed check.
func (a *Authenticator) directoryPasswordValid(ctx context.Context, email, secret string) bool {
	username, err := a.directory.ResolveUsername(ctx, email)
	if err != nil {
		logging.Warn().Err(err).Str("user", email).Msg("directory username lookup failed")
		metrics.DirectoryFallbacks.WithLabelValues("unavailable").Inc()
		return false
	}
	if username == "" {
		metrics.DirectoryFallbacks.WithLabelValues("failure").Inc()
		return false
	}

	valid, err := a.directory.Verify(ctx, username, secret)
	if err != nil {
		logging.Warn().Err(err).Str("user", email).Msg("directory verification failed")
		metrics.DirectoryFallbacks.WithLabelValues("unavailable").Inc()
		return false
	}

	if valid {
		metrics.DirectoryFallbacks.WithLabelValues("success").Inc()
	} else {
		metrics.DirectoryFallbacks.WithLabelValues("failure").Inc()
	}
	return valid
}

// auditFailure emits an auth.failure event.
func (a *Authenticator) auditFailure(identifier string, user *models.User, description string) {
	actor := audit.Actor{Email: identifier}
	if user != nil {
		actor.ID = user.ID
	}
	a.audit.Log(&audit.Event{
		Type:        audit.EventTypeAuthFailure,
		Severity:    audit.SeverityWarning,
		Outcome:     audit.OutcomeFailure,
		Actor:       actor,
		Description: description,
	})
}

// Reactivate clears the attempt counter and re-enables a disabled account.
// Admin only.
func (a *Authenticator) Reactivate(ctx context.Context, authCtx *AuthContext, userID int64) error {
	if !authCtx.Authenticated() || !authCtx.Principal.HasAuthority(models.RoleAdmin) {
		return ErrNotAuthorized
	}

	user, err := a.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrUnknownAccount
		}
		return fmt.Errorf("find user: %w", err)
	}

	unlock := a.lockAccount(user.Email)
	defer unlock()

	user.SignAttempts = 0
	user.Active = true
	if err := a.users.Save(ctx, user); err != nil {
		return fmt.Errorf("save user: %w", err)
	}

	a.audit.Log(&audit.Event{
		Type:        audit.EventTypeAuthUnlock,
		Outcome:     audit.OutcomeSuccess,
		Actor:       audit.Actor{ID: authCtx.Principal.UserID, Email: authCtx.Principal.Email},
		Target:      &audit.Target{ID: user.ID, Type: string(models.EntityUser), Name: user.Email},
		Description: "account reactivated",
	})
	logging.Info().Str("user", user.Email).Msg("account reactivated")
	return nil
}

// accountLocked reports whether the lockout window is active: the attempt
// count is a positive multiple of LockAttempts and the last attempt is
// within LockDuration.
func accountLocked(user *models.User, config AuthenticatorConfig, now time.Time) bool {
	return user.SignAttempts > 0 &&
		user.SignAttempts%config.LockAttempts == 0 &&
		now.Before(user.LastSignAttempt.Add(config.LockDuration))
}
