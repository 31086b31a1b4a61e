// Roomwarden - Group Chat Dedup and Moderation Storage Engine
// Copyright 2026 N. Morell (nmorell)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nmorell/roomwarden

package repository

import (
	"math"
	"sort"
	"strings"

	"github.com/nmorell/roomwarden/internal/models"
	"github.com/nmorell/roomwarden/internal/store"
)

// earthRadiusM is the mean Earth radius in meters.
const earthRadiusM = 6371000.0

// GetVenue returns one venue by id.
func (r *Repository) GetVenue(venueID string) (models.Venue, bool) {
	var v models.Venue
	if !r.get(store.FamilyVenues, []byte(venueID), &v) {
		return models.Venue{}, false
	}
	return v, true
}

// UpsertVenue writes a venue record.
func (r *Repository) UpsertVenue(v models.Venue) bool {
	return r.put(store.FamilyVenues, []byte(v.ID), v)
}

// DeleteVenue removes a venue and cascades to its vote tallies.
func (r *Repository) DeleteVenue(venueID string) bool {
	if !r.del(store.FamilyVenues, []byte(venueID)) {
		return false
	}
	var voteKeys [][]byte
	scan(r, store.FamilyVotes, votePrefix(venueID), func(key []byte, _ models.VoteTally) bool {
		voteKeys = append(voteKeys, append([]byte(nil), key...))
		return true
	})
	for _, key := range voteKeys {
		r.del(store.FamilyVotes, key)
	}
	return true
}

// ListVenues returns every venue, ascending by id.
func (r *Repository) ListVenues() []models.Venue {
	var out []models.Venue
	scan(r, store.FamilyVenues, nil, func(_ []byte, v models.Venue) bool {
		out = append(out, v)
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FindVenuesByName returns venues whose name contains the query,
// case-insensitively.
func (r *Repository) FindVenuesByName(query string) []models.Venue {
	return r.findVenues(query, func(v models.Venue) string { return v.Name })
}

// FindVenuesByAddress returns venues whose address contains the query,
// case-insensitively.
func (r *Repository) FindVenuesByAddress(query string) []models.Venue {
	return r.findVenues(query, func(v models.Venue) string { return v.Address })
}

func (r *Repository) findVenues(query string, field func(models.Venue) string) []models.Venue {
	needle := strings.ToLower(query)
	var out []models.Venue
	scan(r, store.FamilyVenues, nil, func(_ []byte, v models.Venue) bool {
		if strings.Contains(strings.ToLower(field(v)), needle) {
			out = append(out, v)
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// votePrefix covers every tally of one venue. Vote keys are
// "<venue_id>_<identity_id>"; the trailing separator keeps venue ids
// that prefix one another apart.
func votePrefix(venueID string) []byte {
	return []byte(venueID + "_")
}

// RecordVote writes one voter's tally for a venue, replacing any earlier
// tally from the same voter.
func (r *Repository) RecordVote(t models.VoteTally) bool {
	key := append(votePrefix(t.VenueID), itoa(t.IdentityID)...)
	return r.put(store.FamilyVotes, key, t)
}

// DeleteVote removes one voter's tally for a venue.
func (r *Repository) DeleteVote(venueID string, identityID int64) bool {
	key := append(votePrefix(venueID), itoa(identityID)...)
	return r.del(store.FamilyVotes, key)
}

// VoteSummary is a venue's vote totals, summed over all voters at read
// time. No running counters are maintained.
type VoteSummary struct {
	VenueID     string `json:"venue_id"`
	Voters      int    `json:"voters"`
	PassTotal   uint64 `json:"pass_total"`
	NoPassTotal uint64 `json:"no_pass_total"`
	AwakeTotal  uint64 `json:"awake_total"`
}

// TallyVotes sums every stored tally for a venue.
func (r *Repository) TallyVotes(venueID string) VoteSummary {
	sum := VoteSummary{VenueID: venueID}
	scan(r, store.FamilyVotes, votePrefix(venueID), func(_ []byte, t models.VoteTally) bool {
		sum.Voters++
		sum.PassTotal += uint64(t.PassCount)
		sum.NoPassTotal += uint64(t.NoPassCount)
		sum.AwakeTotal += uint64(t.AwakeCount)
		return true
	})
	return sum
}

// VenueDistance pairs a venue with its distance from a query point.
type VenueDistance struct {
	Venue          models.Venue `json:"venue"`
	DistanceMeters float64      `json:"distance_meters"`
}

// NearestVenues returns the venues within radiusM meters of the query
// point, nearest first. Distance is equirectangular: exact enough at
// city scale (error under 0.1% inside a few hundred kilometers), wrong
// near the poles and across the antimeridian, where no venue lives.
func (r *Repository) NearestVenues(lat, lon, radiusM float64) []VenueDistance {
	var out []VenueDistance
	scan(r, store.FamilyVenues, nil, func(_ []byte, v models.Venue) bool {
		d := equirectangularM(lat, lon, v.Latitude, v.Longitude)
		if d <= radiusM {
			out = append(out, VenueDistance{Venue: v, DistanceMeters: d})
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].DistanceMeters < out[j].DistanceMeters })
	return out
}

// equirectangularM computes the approximate ground distance in meters
// between two coordinates.
func equirectangularM(lat1, lon1, lat2, lon2 float64) float64 {
	const degToRad = math.Pi / 180
	x := (lon2 - lon1) * degToRad * math.Cos((lat1+lat2)/2*degToRad)
	y := (lat2 - lat1) * degToRad
	return math.Sqrt(x*x+y*y) * earthRadiusM
}
