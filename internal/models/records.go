// Roomwarden - Group Chat Dedup and Moderation Storage Engine
// Copyright 2026 N. Morell (nmorell)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nmorell/roomwarden

// Package models defines the persisted record types and the event/verdict
// types exchanged with the chat-platform transport layer.
//
// All records are plain immutable values; "mutation" is always a new write
// under the same key. Timestamps are Unix seconds (UTC).
package models

// MediaRecord is one first-seen piece of content in a room. Keyed by
// (room_id, fingerprint); deleted on a platform deletion notice or aged
// out by the TTL sweep.
type MediaRecord struct {
	Fingerprint    string      `json:"fingerprint"`
	RoomID         int64       `json:"room_id"`
	MessageID      int64       `json:"message_id"`
	ContentKind    ContentKind `json:"content_kind"`
	TransferHandle string      `json:"transfer_handle,omitempty"`
	SeenAt         int64       `json:"seen_at"`
}

// Identity is one user's membership in one room. Keyed by
// (room_id, identity_id); LastSeen is refreshed on every message.
// Memberships are never TTL-evicted.
type Identity struct {
	IdentityID  int64  `json:"identity_id"`
	RoomID      int64  `json:"room_id"`
	DisplayName string `json:"display_name"`
	RoomName    string `json:"room_name"`
	LastSeen    int64  `json:"last_seen"`
}

// Mapping links a platform message id to the fingerprint it produced, so a
// deletion notice (which carries only message ids) can locate the
// MediaRecord to remove. Keyed by (room_id, platform_message_id);
// TTL-evicted alongside media.
type Mapping struct {
	PlatformMessageID int64  `json:"platform_message_id"`
	RoomID            int64  `json:"room_id"`
	Fingerprint       string `json:"fingerprint"`
	SeenAt            int64  `json:"seen_at"`
}

// Group is per-room bookkeeping for the paginated membership crawl.
// One per room, overwritten as pagination advances.
type Group struct {
	RoomID           int64  `json:"room_id"`
	SupergroupID     int64  `json:"supergroup_id"`
	Name             string `json:"name"`
	PaginationOffset int64  `json:"pagination_offset"`
	SeenAt           int64  `json:"seen_at"`
}

// RoomConfig holds per-room moderation policy. One per room; defaults
// apply when absent.
type RoomConfig struct {
	AllowForwards       bool  `json:"allow_forwards"`
	BlockNonLatinNames  bool  `json:"block_non_latin_names"`
	DuplicateWindowDays int64 `json:"duplicate_window_days"`
	AllowDuplicateMedia bool  `json:"allow_duplicate_media"`
	AllowDuplicateLinks bool  `json:"allow_duplicate_links"`
}

// DefaultRoomConfig returns the policy applied to rooms with no stored config.
func DefaultRoomConfig() RoomConfig {
	return RoomConfig{
		AllowForwards:       true,
		BlockNonLatinNames:  false,
		DuplicateWindowDays: 5,
		AllowDuplicateMedia: false,
		AllowDuplicateLinks: false,
	}
}

// Venue is a shared location candidate for the voting feature.
type Venue struct {
	ID        string  `json:"id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
}

// VoteTally is one voter's counts for one venue. Keyed by
// (venue_id, identity_id); aggregated by summation at read time.
type VoteTally struct {
	VenueID     string `json:"venue_id"`
	IdentityID  int64  `json:"identity_id"`
	PassCount   uint16 `json:"pass_count"`
	NoPassCount uint16 `json:"no_pass_count"`
	AwakeCount  uint16 `json:"awake_count"`
}
