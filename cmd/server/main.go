// Sequanix - Laboratory Information Management for Sequencing Facilities
// Copyright 2026 Sequanix Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sequanix/sequanix

// Package main is the entry point for the Sequanix server.
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, optional YAML file, SEQUANIX_* environment
//     variables (Koanf v2)
//  2. Logging: zerolog, JSON or console format
//  3. Stores: Postgres via pgx when database.url is set, in-memory otherwise
//  4. Sessions: BadgerDB or in-memory, per security.session_store
//  5. Audit: async audit logger over an in-memory ring buffer
//  6. Services: authenticator, role validator, switch-user, permission engine
//  7. HTTP server: Chi router with login rate limiting and /metrics
//
// Shutdown on SIGINT/SIGTERM drains in-flight requests, flushes the audit
// buffer, and closes the stores.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/sequanix/sequanix/internal/api"
	"github.com/sequanix/sequanix/internal/audit"
	"github.com/sequanix/sequanix/internal/auth"
	"github.com/sequanix/sequanix/internal/authz"
	"github.com/sequanix/sequanix/internal/config"
	"github.com/sequanix/sequanix/internal/database"
	"github.com/sequanix/sequanix/internal/logging"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	logging.Info().Str("level", cfg.Logging.Level).Msg("starting sequanix")

	store, cleanup, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	sessions, sessionCleanup, err := openSessionStore(cfg)
	if err != nil {
		return err
	}
	defer sessionCleanup()

	auditStore := audit.NewMemoryStore(10000)
	auditLogger := audit.NewLogger(auditStore, audit.DefaultConfig())
	defer auditLogger.Close()

	directory := buildDirectory(cfg)

	authConfig := auth.AuthenticatorConfig{
		LockAttempts:        cfg.Security.LockAttempts,
		LockDuration:        cfg.Security.LockDuration,
		DisableSignAttempts: cfg.Security.DisableSignAttempts,
	}
	authenticator := auth.NewAuthenticator(store.Users(), directory, authConfig, auditLogger)
	roles := auth.NewRoleValidator(store.Users(), sessions)
	switchUser := auth.NewSwitchUserService(store.Users(), sessions, authConfig, auditLogger)
	engine := authz.NewEngine(store, authz.NewMemoryAclOverlay(), auditLogger)

	handler := api.NewHandler(cfg, authenticator, sessions, roles, switchUser, engine, store.Users(), auditLogger, auditStore)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-stop:
		logging.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

// buildDirectory wires the directory fallback. The wire protocol lives in a
// deployment-specific client registered here; every client is wrapped with
// the timeout and circuit breaker from the LDAP config.
func buildDirectory(cfg *config.Config) auth.Directory {
	if !cfg.LDAP.Enabled {
		return nil
	}

	client := newDirectoryClient(cfg.LDAP)
	if client == nil {
		logging.Warn().Str("url", cfg.LDAP.URL).Msg("ldap enabled but no directory client is linked; fallback disabled")
		return nil
	}
	return auth.NewResilientDirectory(client, cfg.LDAP.Timeout)
}

// newDirectoryClient returns the concrete directory client for this build.
// The open-source build ships without one.
func newDirectoryClient(config.LDAPConfig) auth.Directory {
	return nil
}

// openStore selects Postgres when a DSN is configured, the in-memory store
// otherwise.
func openStore(cfg *config.Config) (database.Store, func(), error) {
	if cfg.Database.URL == "" {
		logging.Warn().Msg("no database url configured, using in-memory store")
		return database.NewMemoryStore(), func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pg, err := database.NewPostgresStore(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres: %w", err)
	}
	return pg, pg.Close, nil
}

// openSessionStore selects the session backend per configuration.
func openSessionStore(cfg *config.Config) (auth.SessionStore, func(), error) {
	if cfg.Security.SessionStore != "badger" {
		return auth.NewMemorySessionStore(), func() {}, nil
	}

	opts := badger.DefaultOptions(cfg.Security.SessionStorePath).
		WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("open badger: %w", err)
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("close badger")
		}
	}
	return auth.NewBadgerSessionStore(db), cleanup, nil
}
