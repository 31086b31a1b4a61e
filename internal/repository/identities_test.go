// Roomwarden - Group Chat Dedup and Moderation Storage Engine
// Copyright 2026 N. Morell (nmorell)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nmorell/roomwarden

package repository

import (
	"testing"
	"time"

	"github.com/nmorell/roomwarden/internal/models"
)

func seen(t *testing.T, repo *Repository, identityID, roomID int64, at time.Time) {
	t.Helper()
	if !repo.UpsertIdentity(models.IdentityEvent{IdentityID: identityID, RoomID: roomID}, at) {
		t.Fatalf("UpsertIdentity(%d, %d) failed", identityID, roomID)
	}
}

func TestUpsertIdentityRefreshesLastSeen(t *testing.T) {
	repo := newTestRepo(t)
	base := time.Unix(1_700_000_000, 0)

	seen(t, repo, 42, 1, base)
	if !repo.IdentityExistsInRoom(1, 42) {
		t.Fatal("identity missing after upsert")
	}

	seen(t, repo, 42, 1, base.Add(time.Hour))
	id, ok := repo.GetIdentity(1, 42)
	if !ok {
		t.Fatal("GetIdentity failed")
	}
	if id.LastSeen != base.Add(time.Hour).Unix() {
		t.Errorf("LastSeen = %d, want refreshed %d", id.LastSeen, base.Add(time.Hour).Unix())
	}
}

func TestCrossRoomMembershipRequiresQueriedRoom(t *testing.T) {
	repo := newTestRepo(t)
	now := time.Unix(1_700_000_000, 0)

	// Identity 7 is in rooms 1, 2 and 3.
	seen(t, repo, 7, 1, now)
	seen(t, repo, 7, 2, now)
	seen(t, repo, 7, 3, now)
	// Identity 8 is only in room 1.
	seen(t, repo, 8, 1, now)

	got := repo.IdentitiesByRoomMembershipCount(1, 2)
	if len(got) != 1 {
		t.Fatalf("room 1 min 2: got %d identities, want 1", len(got))
	}
	if got[0].IdentityID != 7 {
		t.Errorf("got identity %d, want 7", got[0].IdentityID)
	}
	if len(got[0].RoomIDs) != 3 {
		t.Errorf("identity 7 spans %d rooms, want 3", len(got[0].RoomIDs))
	}

	// Identity 7 spans three rooms but is not in room 9, so querying
	// room 9 must exclude it.
	if got := repo.IdentitiesByRoomMembershipCount(9, 2); len(got) != 0 {
		t.Errorf("room 9 query returned %d identities, want 0", len(got))
	}

	// min_rooms above the identity's span excludes it.
	if got := repo.IdentitiesByRoomMembershipCount(1, 4); len(got) != 0 {
		t.Errorf("min 4 returned %d identities, want 0", len(got))
	}
}

func TestInactiveIdentitiesThreshold(t *testing.T) {
	repo := newTestRepo(t)
	now := time.Unix(1_700_000_000, 0)

	day := 24 * time.Hour
	seen(t, repo, 1, 5, now.Add(-1*day))
	seen(t, repo, 2, 5, now.Add(-10*day))
	seen(t, repo, 3, 5, now.Add(-40*day))

	inactive := repo.InactiveIdentities(30, now)
	if len(inactive) != 1 {
		t.Fatalf("got %d inactive identities, want 1", len(inactive))
	}
	if inactive[0].IdentityID != 3 {
		t.Errorf("inactive identity = %d, want 3", inactive[0].IdentityID)
	}

	// At a 7-day threshold both the 10- and 40-day members qualify,
	// oldest first.
	inactive = repo.InactiveIdentities(7, now)
	if len(inactive) != 2 {
		t.Fatalf("7-day threshold: got %d, want 2", len(inactive))
	}
	if inactive[0].IdentityID != 3 || inactive[1].IdentityID != 2 {
		t.Errorf("order = %d,%d, want 3,2", inactive[0].IdentityID, inactive[1].IdentityID)
	}
}

func TestInactiveIdentitiesScansAllRooms(t *testing.T) {
	repo := newTestRepo(t)
	now := time.Unix(1_700_000_000, 0)

	day := 24 * time.Hour
	// Identity 3 went quiet in room 6; everything in room 5 is recent.
	seen(t, repo, 1, 5, now.Add(-1*day))
	seen(t, repo, 3, 6, now.Add(-40*day))

	inactive := repo.InactiveIdentities(30, now)
	if len(inactive) != 1 {
		t.Fatalf("got %d inactive identities, want 1", len(inactive))
	}
	if inactive[0].IdentityID != 3 || inactive[0].RoomID != 6 {
		t.Errorf("inactive = identity %d room %d, want identity 3 room 6",
			inactive[0].IdentityID, inactive[0].RoomID)
	}

	// The same membership quiet in one room but recently active in
	// another yields one qualifying record, carrying the quiet room.
	seen(t, repo, 3, 7, now.Add(-1*day))
	inactive = repo.InactiveIdentities(30, now)
	if len(inactive) != 1 {
		t.Fatalf("after room 7 activity: got %d, want 1", len(inactive))
	}
	if inactive[0].RoomID != 6 {
		t.Errorf("qualifying room = %d, want 6", inactive[0].RoomID)
	}
}

func TestListIdentityRooms(t *testing.T) {
	repo := newTestRepo(t)
	now := time.Unix(1_700_000_000, 0)

	seen(t, repo, 7, 3, now)
	seen(t, repo, 7, 1, now)
	seen(t, repo, 9, 1, now)

	rooms := repo.ListIdentityRooms(7)
	if len(rooms) != 2 {
		t.Fatalf("got %d rooms, want 2", len(rooms))
	}
	if rooms[0].RoomID != 1 || rooms[1].RoomID != 3 {
		t.Errorf("rooms = %d,%d, want 1,3", rooms[0].RoomID, rooms[1].RoomID)
	}
}
