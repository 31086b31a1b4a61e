// Roomwarden - Group Chat Dedup and Moderation Storage Engine
// Copyright 2026 N. Morell (nmorell)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nmorell/roomwarden

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/nmorell/roomwarden/internal/models"
	"github.com/nmorell/roomwarden/internal/repository"
)

// Query parameter defaults.
const (
	defaultListLimit    = 10
	maxListLimit        = 100
	defaultInactiveDays = 30
	defaultMinRooms     = 2
	defaultVenueRadiusM = 2000.0
)

var validate = validator.New()

type handler struct {
	repo *repository.Repository
}

// Health reports liveness.
func (h *handler) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Rooms lists every known room.
func (h *handler) Rooms(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.repo.ListGroups())
}

// RoomContent returns a room's recent first-seen content.
// Query: kind (optional content kind filter), limit.
func (h *handler) RoomContent(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathInt64(w, r, "roomID")
	if !ok {
		return
	}
	kind := models.ContentKind(r.URL.Query().Get("kind"))
	limit := queryInt(r, "limit", defaultListLimit, maxListLimit)
	respondJSON(w, http.StatusOK, h.repo.ListRecentContent(roomID, kind, limit))
}

// RoomDuplicates returns a room's recent duplicate occurrences.
func (h *handler) RoomDuplicates(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathInt64(w, r, "roomID")
	if !ok {
		return
	}
	limit := queryInt(r, "limit", defaultListLimit, maxListLimit)
	respondJSON(w, http.StatusOK, h.repo.ListRecentDuplicates(roomID, limit))
}

// RoomConfig returns a room's effective moderation policy.
func (h *handler) RoomConfig(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathInt64(w, r, "roomID")
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, h.repo.GetRoomConfig(roomID))
}

// CrossRoomIdentities returns identities of the room seen in at least
// min_rooms distinct rooms.
func (h *handler) CrossRoomIdentities(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathInt64(w, r, "roomID")
	if !ok {
		return
	}
	minRooms := queryInt(r, "min_rooms", defaultMinRooms, 0)
	respondJSON(w, http.StatusOK, h.repo.IdentitiesByRoomMembershipCount(roomID, minRooms))
}

// InactiveIdentities returns room members inactive for more than `days`.
// The query itself is global; this endpoint narrows it to the room.
func (h *handler) InactiveIdentities(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathInt64(w, r, "roomID")
	if !ok {
		return
	}
	days := queryInt(r, "days", defaultInactiveDays, 0)

	inactive := h.repo.InactiveIdentities(days, time.Now())
	out := make([]models.Identity, 0, len(inactive))
	for _, id := range inactive {
		if id.RoomID == roomID {
			out = append(out, id)
		}
	}
	respondJSON(w, http.StatusOK, out)
}

// IdentityRooms returns every room one identity is a member of.
func (h *handler) IdentityRooms(w http.ResponseWriter, r *http.Request) {
	identityID, ok := pathInt64(w, r, "identityID")
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, h.repo.ListIdentityRooms(identityID))
}

// Venues lists venues, optionally filtered by name or address substring.
func (h *handler) Venues(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch {
	case q.Get("name") != "":
		respondJSON(w, http.StatusOK, h.repo.FindVenuesByName(q.Get("name")))
	case q.Get("address") != "":
		respondJSON(w, http.StatusOK, h.repo.FindVenuesByAddress(q.Get("address")))
	default:
		respondJSON(w, http.StatusOK, h.repo.ListVenues())
	}
}

// nearbyVenuesRequest is the validated query for NearbyVenues.
type nearbyVenuesRequest struct {
	Latitude  float64 `validate:"min=-90,max=90"`
	Longitude float64 `validate:"min=-180,max=180"`
	RadiusM   float64 `validate:"gt=0,max=100000"`
}

// NearbyVenues returns venues within radius_m meters of (lat, lon),
// nearest first.
func (h *handler) NearbyVenues(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
	lon, lonErr := strconv.ParseFloat(q.Get("lon"), 64)
	if latErr != nil || lonErr != nil {
		respondError(w, http.StatusBadRequest, "lat and lon are required decimal coordinates")
		return
	}

	req := nearbyVenuesRequest{Latitude: lat, Longitude: lon, RadiusM: defaultVenueRadiusM}
	if raw := q.Get("radius_m"); raw != "" {
		radius, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "radius_m must be a decimal number of meters")
			return
		}
		req.RadiusM = radius
	}
	if err := validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "coordinates out of range")
		return
	}

	respondJSON(w, http.StatusOK, h.repo.NearestVenues(req.Latitude, req.Longitude, req.RadiusM))
}

// VenueVotes returns a venue's summed vote tallies.
func (h *handler) VenueVotes(w http.ResponseWriter, r *http.Request) {
	venueID := chi.URLParam(r, "venueID")
	if venueID == "" {
		respondError(w, http.StatusBadRequest, "venue id is required")
		return
	}
	respondJSON(w, http.StatusOK, h.repo.TallyVotes(venueID))
}

// pathInt64 parses an int64 chi path parameter, writing a 400 on failure.
func pathInt64(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, name+" must be an integer")
		return 0, false
	}
	return v, true
}

// queryInt parses a positive integer query parameter with a default and
// an optional cap (0 means uncapped).
func queryInt(r *http.Request, name string, def, max int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	if max > 0 && v > max {
		return max
	}
	return v
}
