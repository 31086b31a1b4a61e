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

// Groups and configs are keyed by the plain decimal room id, not the
// composite codec: there is exactly one record per room and nothing to
// discriminate.

// GetGroup returns a room's crawl bookkeeping record.
func (r *Repository) GetGroup(roomID int64) (models.Group, bool) {
	var g models.Group
	if !r.get(store.FamilyGroups, []byte(itoa(roomID)), &g) {
		return models.Group{}, false
	}
	return g, true
}

// UpsertGroup writes a room's crawl bookkeeping record.
func (r *Repository) UpsertGroup(g models.Group) bool {
	return r.put(store.FamilyGroups, []byte(itoa(g.RoomID)), g)
}

// ListGroups returns every known room, ascending by room id.
func (r *Repository) ListGroups() []models.Group {
	var out []models.Group
	scan(r, store.FamilyGroups, nil, func(_ []byte, g models.Group) bool {
		out = append(out, g)
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].RoomID < out[j].RoomID })
	return out
}

// RoomIDs returns the ids of every known room, ascending.
func (r *Repository) RoomIDs() []int64 {
	groups := r.ListGroups()
	out := make([]int64, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.RoomID)
	}
	return out
}

// ApplyMembershipPage persists one page of a room membership crawl: the
// page's identities are upserted and the room's pagination offset is
// advanced. Returns whether the transport layer should fetch another
// page (the crawl has not reached the reported total and the page was
// not empty).
func (r *Repository) ApplyMembershipPage(page models.MembershipPage, now time.Time) bool {
	for _, identityID := range page.Identities {
		r.UpsertIdentity(models.IdentityEvent{
			IdentityID: identityID,
			RoomID:     page.RoomID,
		}, now)
	}

	g, found := r.GetGroup(page.RoomID)
	if !found {
		g = models.Group{RoomID: page.RoomID, SupergroupID: page.SupergroupID}
	}
	g.PaginationOffset = page.Offset
	g.SeenAt = now.Unix()
	r.UpsertGroup(g)

	return len(page.Identities) > 0 && page.Offset < page.TotalCount
}

// GetRoomConfig returns a room's moderation policy, or the defaults when
// no config is stored or the stored one cannot be read. A broken config
// must never wedge the moderation path.
func (r *Repository) GetRoomConfig(roomID int64) models.RoomConfig {
	var cfg models.RoomConfig
	if !r.get(store.FamilyConfigs, []byte(itoa(roomID)), &cfg) {
		return models.DefaultRoomConfig()
	}
	return cfg
}

// UpdateRoomConfig replaces a room's moderation policy.
func (r *Repository) UpdateRoomConfig(roomID int64, cfg models.RoomConfig) bool {
	return r.put(store.FamilyConfigs, []byte(itoa(roomID)), cfg)
}
