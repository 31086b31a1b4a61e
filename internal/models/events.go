// Roomwarden - Group Chat Dedup and Moderation Storage Engine
// Copyright 2026 N. Morell (nmorell)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nmorell/roomwarden

package models

// ContentKind identifies what produced a fingerprint.
type ContentKind string

// Content kinds. URL fingerprints are derived from the link text; all
// other kinds use the platform-assigned stable content identifier.
const (
	KindURL       ContentKind = "url"
	KindPhoto     ContentKind = "photo"
	KindVideo     ContentKind = "video"
	KindAudio     ContentKind = "audio"
	KindDocument  ContentKind = "document"
	KindVoiceNote ContentKind = "voice"
	KindVideoNote ContentKind = "video_note"
)

// IsURL reports whether the kind is a link rather than a media attachment.
func (k ContentKind) IsURL() bool { return k == KindURL }

// ContentEvent is one fingerprinted piece of inbound content, produced by
// the transport layer. A message with several attachments or URLs yields
// several events sharing the same MessageID.
type ContentEvent struct {
	RoomID         int64
	MessageID      int64
	Kind           ContentKind
	Fingerprint    string
	TransferHandle string
}

// IdentityEvent announces that an identity was seen posting in a room.
type IdentityEvent struct {
	IdentityID  int64
	RoomID      int64
	DisplayName string
	RoomName    string
}

// DeletionNotice reports platform-side message deletions. Only message
// ids are carried; fingerprints are recovered through the mapping family.
type DeletionNotice struct {
	RoomID             int64
	PlatformMessageIDs []int64
}

// MembershipPage is one page of a room membership crawl. The core persists
// the advanced pagination offset so the transport layer knows whether to
// request the next page.
type MembershipPage struct {
	RoomID       int64
	SupergroupID int64
	Identities   []int64
	Offset       int64
	TotalCount   int64
}

// Verdict is the dedup engine's decision for a single fingerprint.
// When Duplicate is true the original record's coordinates are carried so
// the caller can build an "already shared" reference.
type Verdict struct {
	Duplicate         bool
	OriginalRoomID    int64
	OriginalMessageID int64
}

// Status is the engine's message-level outcome, consumed by the transport
// layer: Act asks it to remove the offending message, Respond asks it to
// post Text as a reply.
type Status struct {
	Act     bool
	Respond bool
	Text    string
}
