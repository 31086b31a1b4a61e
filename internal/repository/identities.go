// Roomwarden - Group Chat Dedup and Moderation Storage Engine
// Copyright 2026 N. Morell (nmorell)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nmorell/roomwarden

package repository

import (
	"sort"
	"time"

	"github.com/nmorell/roomwarden/internal/models"
	"github.com/nmorell/roomwarden/internal/store"
)

// IdentityExistsInRoom reports whether an identity has a membership
// record in the room. Scans the room's prefix and matches the identity
// id linearly, so cost grows with the room's member count.
func (r *Repository) IdentityExistsInRoom(roomID, identityID int64) bool {
	prefix, ok := roomScanPrefix(roomID)
	if !ok {
		return false
	}

	found := false
	scan(r, store.FamilyIdentities, prefix, func(_ []byte, id models.Identity) bool {
		if id.IdentityID != identityID {
			return true
		}
		found = true
		return false
	})
	return found
}

// GetIdentity looks up one membership record.
func (r *Repository) GetIdentity(roomID, identityID int64) (models.Identity, bool) {
	key, ok := roomKey(roomID, itoa(identityID))
	if !ok {
		return models.Identity{}, false
	}
	var id models.Identity
	if !r.get(store.FamilyIdentities, key, &id) {
		return models.Identity{}, false
	}
	return id, true
}

// UpsertIdentity creates a membership record or refreshes an existing
// one's display name, room name and last-seen timestamp. Memberships are
// never aged out; they are the ground truth for every membership query.
func (r *Repository) UpsertIdentity(ev models.IdentityEvent, now time.Time) bool {
	key, ok := roomKey(ev.RoomID, itoa(ev.IdentityID))
	if !ok {
		return false
	}
	id := models.Identity{
		IdentityID:  ev.IdentityID,
		RoomID:      ev.RoomID,
		DisplayName: ev.DisplayName,
		RoomName:    ev.RoomName,
		LastSeen:    now.Unix(),
	}
	return r.put(store.FamilyIdentities, key, id)
}

// ListIdentityRooms returns every room the identity is a member of,
// ascending by room id.
func (r *Repository) ListIdentityRooms(identityID int64) []models.Identity {
	var out []models.Identity
	scan(r, store.FamilyIdentities, nil, func(_ []byte, id models.Identity) bool {
		if id.IdentityID == identityID {
			out = append(out, id)
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].RoomID < out[j].RoomID })
	return out
}

// ListRoomIdentities returns every membership record of one room.
func (r *Repository) ListRoomIdentities(roomID int64) []models.Identity {
	prefix, ok := roomScanPrefix(roomID)
	if !ok {
		return nil
	}
	var out []models.Identity
	scan(r, store.FamilyIdentities, prefix, func(_ []byte, id models.Identity) bool {
		out = append(out, id)
		return true
	})
	return out
}

// ListAllIdentities returns every membership record across all rooms.
func (r *Repository) ListAllIdentities() []models.Identity {
	var out []models.Identity
	scan(r, store.FamilyIdentities, nil, func(_ []byte, id models.Identity) bool {
		out = append(out, id)
		return true
	})
	return out
}

// CrossRoomIdentity is one identity seen in several rooms, produced by
// IdentitiesByRoomMembershipCount.
type CrossRoomIdentity struct {
	IdentityID  int64   `json:"identity_id"`
	DisplayName string  `json:"display_name"`
	RoomIDs     []int64 `json:"room_ids"`
}

// IdentitiesByRoomMembershipCount finds identities present in at least
// minRooms distinct rooms, one of which must be the queried room. An
// identity active in many rooms but absent from roomID is excluded no
// matter how many rooms it spans.
func (r *Repository) IdentitiesByRoomMembershipCount(roomID int64, minRooms int) []CrossRoomIdentity {
	rooms := make(map[int64]map[int64]bool)
	names := make(map[int64]string)

	scan(r, store.FamilyIdentities, nil, func(_ []byte, id models.Identity) bool {
		set := rooms[id.IdentityID]
		if set == nil {
			set = make(map[int64]bool)
			rooms[id.IdentityID] = set
		}
		set[id.RoomID] = true
		if id.DisplayName != "" {
			names[id.IdentityID] = id.DisplayName
		}
		return true
	})

	var out []CrossRoomIdentity
	for identityID, set := range rooms {
		if !set[roomID] || len(set) < minRooms {
			continue
		}
		ids := make([]int64, 0, len(set))
		for room := range set {
			ids = append(ids, room)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		out = append(out, CrossRoomIdentity{
			IdentityID:  identityID,
			DisplayName: names[identityID],
			RoomIDs:     ids,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IdentityID < out[j].IdentityID })
	return out
}

// InactiveIdentities returns every membership record, across all rooms,
// whose last activity is strictly older than the given number of days
// before now. Room-scoped views filter the result.
func (r *Repository) InactiveIdentities(days int, now time.Time) []models.Identity {
	cutoff := now.Unix() - int64(days)*86400

	var out []models.Identity
	scan(r, store.FamilyIdentities, nil, func(_ []byte, id models.Identity) bool {
		if id.LastSeen < cutoff {
			out = append(out, id)
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].LastSeen < out[j].LastSeen })
	return out
}
