// Sequanix - Laboratory Information Management for Sequencing Facilities
// Copyright 2026 Sequanix Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sequanix/sequanix

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sequanix/sequanix/internal/models"
)

// NewRouter builds the HTTP routing table.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		// Sign-in gets the strictest rate limit, keyed by client IP, as a
		// second line of defense in front of the lockout policy.
		r.With(httprate.LimitByIP(
			h.config.Security.LoginRateLimit,
			h.config.Security.LoginRateWindow,
		)).Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.Authenticate)
			r.Post("/logout", h.Logout)
			r.Get("/me", h.Me)
			r.Post("/password", h.ChangePassword)
			r.Post("/exit-switch-user", h.ExitSwitchUser)

			r.Group(func(r chi.Router) {
				r.Use(h.RequireRole(models.RoleAdmin))
				r.Post("/switch-user", h.SwitchUser)
				r.Post("/reactivate", h.Reactivate)
			})
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(h.Authenticate)
		r.Get("/permissions/check", h.CheckPermission)

		r.With(h.RequireRole(models.RoleAdmin)).Get("/audit", h.AuditEvents)
	})

	return r
}
