// Sequanix - Laboratory Information Management for Sequencing Facilities
// Copyright 2026 Sequanix Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sequanix/sequanix

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}

	// No explicit path and no default file: pure defaults.
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Security.LockAttempts != 5 {
		t.Errorf("lock attempts = %d, want 5", cfg.Security.LockAttempts)
	}
	if cfg.Security.LockDuration != 15*time.Minute {
		t.Errorf("lock duration = %v, want 15m", cfg.Security.LockDuration)
	}
	if cfg.Security.DisableSignAttempts != 20 {
		t.Errorf("disable threshold = %d, want 20", cfg.Security.DisableSignAttempts)
	}
	if cfg.Security.SessionStore != "memory" {
		t.Errorf("session store = %q, want memory", cfg.Security.SessionStore)
	}
	if cfg.LDAP.Enabled {
		t.Error("ldap enabled by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("log level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9090
security:
  lock_attempts: 3
  lock_duration: 30m
ldap:
  enabled: true
  url: ldap://directory.example.com:389
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Security.LockAttempts != 3 {
		t.Errorf("lock attempts = %d, want 3", cfg.Security.LockAttempts)
	}
	if cfg.Security.LockDuration != 30*time.Minute {
		t.Errorf("lock duration = %v, want 30m", cfg.Security.LockDuration)
	}
	if !cfg.LDAP.Enabled || cfg.LDAP.URL != "ldap://directory.example.com:389" {
		t.Errorf("ldap config not applied: %+v", cfg.LDAP)
	}
	// Untouched values keep defaults.
	if cfg.Security.DisableSignAttempts != 20 {
		t.Errorf("disable threshold = %d, want default 20", cfg.Security.DisableSignAttempts)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SEQUANIX_SECURITY__LOCK_ATTEMPTS", "7")
	t.Setenv("SEQUANIX_SERVER__PORT", "3000")
	t.Setenv("SEQUANIX_LOGGING__LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Security.LockAttempts != 7 {
		t.Errorf("lock attempts = %d, want 7", cfg.Security.LockAttempts)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("server port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Logging.Level)
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.Security.SessionStore = "redis"
	if err := Validate(cfg); err == nil {
		t.Error("unknown session store accepted")
	}

	cfg = defaultConfig()
	cfg.Server.Port = 0
	if err := Validate(cfg); err == nil {
		t.Error("zero port accepted")
	}

	cfg = defaultConfig()
	cfg.LDAP.Enabled = true
	cfg.LDAP.URL = ""
	if err := Validate(cfg); err == nil {
		t.Error("enabled ldap without url accepted")
	}
}

func TestEnvTransform(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SEQUANIX_SERVER__PORT", "server.port"},
		{"SEQUANIX_SECURITY__LOCK_ATTEMPTS", "security.lock_attempts"},
		{"SEQUANIX_LDAP__MAIL_ATTRIBUTE", "ldap.mail_attribute"},
	}
	for _, tt := range tests {
		if got := envTransform(tt.in); got != tt.want {
			t.Errorf("envTransform(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
