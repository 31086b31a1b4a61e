// Roomwarden - Group Chat Dedup and Moderation Storage Engine
// Copyright 2026 N. Morell (nmorell)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nmorell/roomwarden

// Package api is the read-only operator surface: the aggregation queries
// rendered as JSON, plus health and metrics. The moderation write path
// never goes through HTTP; it is in-process.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nmorell/roomwarden/internal/repository"
)

// RouterConfig holds router construction parameters.
type RouterConfig struct {
	// RateLimitReqs is the per-IP request budget per window.
	RateLimitReqs int

	// RateLimitWindow is the accounting window.
	RateLimitWindow time.Duration

	// RequestTimeout bounds each request.
	RequestTimeout time.Duration
}

// NewRouter builds the chi router over the repository.
func NewRouter(repo *repository.Repository, cfg RouterConfig) http.Handler {
	if cfg.RateLimitReqs <= 0 {
		cfg.RateLimitReqs = 100
	}
	if cfg.RateLimitWindow <= 0 {
		cfg.RateLimitWindow = time.Minute
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	h := &handler{repo: repo}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(cfg.RequestTimeout))

	r.Get("/healthz", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(cfg.RateLimitReqs, cfg.RateLimitWindow))
		r.Use(metricsMiddleware)

		r.Get("/rooms", h.Rooms)
		r.Route("/rooms/{roomID}", func(r chi.Router) {
			r.Get("/content", h.RoomContent)
			r.Get("/duplicates", h.RoomDuplicates)
			r.Get("/config", h.RoomConfig)
			r.Get("/identities/cross", h.CrossRoomIdentities)
			r.Get("/identities/inactive", h.InactiveIdentities)
		})

		r.Get("/identities/{identityID}/rooms", h.IdentityRooms)

		r.Get("/venues", h.Venues)
		r.Get("/venues/near", h.NearbyVenues)
		r.Get("/venues/{venueID}/votes", h.VenueVotes)
	})

	return r
}
