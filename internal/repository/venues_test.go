// Roomwarden - Group Chat Dedup and Moderation Storage Engine
// Copyright 2026 N. Morell (nmorell)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nmorell/roomwarden

package repository

import (
	"math"
	"testing"

	"github.com/nmorell/roomwarden/internal/models"
)

func TestVenueRoundTripAndSearch(t *testing.T) {
	repo := newTestRepo(t)

	repo.UpsertVenue(models.Venue{ID: "v1", Name: "Cafe Central", Address: "Plaza Mayor 1", Latitude: 40.4155, Longitude: -3.7074})
	repo.UpsertVenue(models.Venue{ID: "v2", Name: "Central Park Bar", Address: "Gran Via 20", Latitude: 40.4203, Longitude: -3.7058})
	repo.UpsertVenue(models.Venue{ID: "v3", Name: "El Rincon", Address: "Calle Mayor 5", Latitude: 40.4160, Longitude: -3.7090})

	v, ok := repo.GetVenue("v1")
	if !ok || v.Name != "Cafe Central" {
		t.Errorf("GetVenue = %+v ok=%v", v, ok)
	}

	byName := repo.FindVenuesByName("central")
	if len(byName) != 2 {
		t.Errorf("FindVenuesByName(central) = %d venues, want 2", len(byName))
	}

	byAddr := repo.FindVenuesByAddress("mayor")
	if len(byAddr) != 2 {
		t.Errorf("FindVenuesByAddress(mayor) = %d venues, want 2", len(byAddr))
	}
}

func TestTallyVotesSumsAtRead(t *testing.T) {
	repo := newTestRepo(t)

	repo.RecordVote(models.VoteTally{VenueID: "v1", IdentityID: 1, PassCount: 2, NoPassCount: 1})
	repo.RecordVote(models.VoteTally{VenueID: "v1", IdentityID: 2, PassCount: 1, AwakeCount: 3})
	repo.RecordVote(models.VoteTally{VenueID: "v2", IdentityID: 1, PassCount: 9})

	sum := repo.TallyVotes("v1")
	if sum.Voters != 2 || sum.PassTotal != 3 || sum.NoPassTotal != 1 || sum.AwakeTotal != 3 {
		t.Errorf("TallyVotes(v1) = %+v", sum)
	}

	// A voter's new tally replaces the old one.
	repo.RecordVote(models.VoteTally{VenueID: "v1", IdentityID: 1, PassCount: 5})
	sum = repo.TallyVotes("v1")
	if sum.Voters != 2 || sum.PassTotal != 6 {
		t.Errorf("after replacement: %+v", sum)
	}

	repo.DeleteVote("v1", 2)
	if sum := repo.TallyVotes("v1"); sum.Voters != 1 {
		t.Errorf("after DeleteVote: %+v", sum)
	}
}

func TestDeleteVenueCascadesVotes(t *testing.T) {
	repo := newTestRepo(t)

	repo.UpsertVenue(models.Venue{ID: "v1", Name: "A"})
	repo.RecordVote(models.VoteTally{VenueID: "v1", IdentityID: 1, PassCount: 1})
	repo.RecordVote(models.VoteTally{VenueID: "v1", IdentityID: 2, PassCount: 1})

	if !repo.DeleteVenue("v1") {
		t.Fatal("DeleteVenue failed")
	}
	if _, ok := repo.GetVenue("v1"); ok {
		t.Error("venue survived deletion")
	}
	if sum := repo.TallyVotes("v1"); sum.Voters != 0 {
		t.Errorf("votes survived venue deletion: %+v", sum)
	}
}

func TestNearestVenuesOrdersByDistance(t *testing.T) {
	repo := newTestRepo(t)

	// Around Madrid city center; far venue is ~500km away.
	repo.UpsertVenue(models.Venue{ID: "near", Latitude: 40.4170, Longitude: -3.7035})
	repo.UpsertVenue(models.Venue{ID: "nearer", Latitude: 40.4168, Longitude: -3.7038})
	repo.UpsertVenue(models.Venue{ID: "far", Latitude: 41.3874, Longitude: 2.1686})

	got := repo.NearestVenues(40.4168, -3.7038, 5000)
	if len(got) != 2 {
		t.Fatalf("got %d venues within 5km, want 2", len(got))
	}
	if got[0].Venue.ID != "nearer" || got[1].Venue.ID != "near" {
		t.Errorf("order = %s,%s, want nearer,near", got[0].Venue.ID, got[1].Venue.ID)
	}
	if got[0].DistanceMeters != 0 {
		t.Errorf("distance to self = %f, want 0", got[0].DistanceMeters)
	}
	if got[1].DistanceMeters <= 0 || got[1].DistanceMeters > 100 {
		t.Errorf("distance to near venue = %fm, want within 100m", got[1].DistanceMeters)
	}
}

func TestEquirectangularDistance(t *testing.T) {
	// One degree of latitude is about 111.2km everywhere.
	d := equirectangularM(40, -3, 41, -3)
	if math.Abs(d-111_195) > 500 {
		t.Errorf("1 degree latitude = %fm, want ~111195m", d)
	}

	// Symmetric.
	if d2 := equirectangularM(41, -3, 40, -3); math.Abs(d-d2) > 1e-6 {
		t.Errorf("distance not symmetric: %f vs %f", d, d2)
	}
}
