// Roomwarden - Group Chat Dedup and Moderation Storage Engine
// Copyright 2026 N. Morell (nmorell)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nmorell/roomwarden

package repository

import (
	"sort"
	"time"

	"github.com/nmorell/roomwarden/internal/logging"
	"github.com/nmorell/roomwarden/internal/models"
	"github.com/nmorell/roomwarden/internal/store"
)

// FindContent looks up the first-seen record for a fingerprint in a
// room: a scan over the room's prefix with a linear fingerprint filter,
// since the prefix iterator only guarantees a byte-prefix match.
// Expired-but-unswept records are returned as-is; freshness is the
// caller's concern.
func (r *Repository) FindContent(roomID int64, fingerprint string) (models.MediaRecord, bool) {
	prefix, ok := roomScanPrefix(roomID)
	if !ok {
		return models.MediaRecord{}, false
	}

	var (
		rec   models.MediaRecord
		found bool
	)
	scan(r, store.FamilyMedia, prefix, func(_ []byte, candidate models.MediaRecord) bool {
		if candidate.Fingerprint != fingerprint {
			return true
		}
		rec, found = candidate, true
		return false
	})
	return rec, found
}

// RecordFirstSeen stores a content event as the room's first sighting of
// its fingerprint and maps the platform message id to the fingerprint.
// A fresh existing record is kept untouched, so the first message id
// stays canonical no matter how often the same event is replayed; a
// record past the retention window is overwritten, since the sweep would
// have removed it anyway. The returned record is the canonical one.
func (r *Repository) RecordFirstSeen(ev models.ContentEvent, now time.Time) (models.MediaRecord, bool) {
	key, ok := roomKey(ev.RoomID, ev.Fingerprint)
	if !ok {
		return models.MediaRecord{}, false
	}

	var existing models.MediaRecord
	if r.get(store.FamilyMedia, key, &existing) && store.Keep(existing.SeenAt, now) {
		r.RecordMapping(ev.RoomID, ev.MessageID, ev.Fingerprint, now)
		return existing, true
	}

	rec := models.MediaRecord{
		Fingerprint:    ev.Fingerprint,
		RoomID:         ev.RoomID,
		MessageID:      ev.MessageID,
		ContentKind:    ev.Kind,
		TransferHandle: ev.TransferHandle,
		SeenAt:         now.Unix(),
	}
	if !r.put(store.FamilyMedia, key, rec) {
		return models.MediaRecord{}, false
	}
	r.RecordMapping(ev.RoomID, ev.MessageID, ev.Fingerprint, now)
	return rec, true
}

// RecordDuplicate stores one duplicate occurrence. Occurrences are keyed
// by message id and fingerprint so repeats of the same fingerprint in
// different messages each leave a row.
func (r *Repository) RecordDuplicate(ev models.ContentEvent, now time.Time) bool {
	key, ok := roomKey(ev.RoomID, itoa(ev.MessageID)+"_"+ev.Fingerprint)
	if !ok {
		return false
	}
	rec := models.MediaRecord{
		Fingerprint:    ev.Fingerprint,
		RoomID:         ev.RoomID,
		MessageID:      ev.MessageID,
		ContentKind:    ev.Kind,
		TransferHandle: ev.TransferHandle,
		SeenAt:         now.Unix(),
	}
	return r.put(store.FamilyDuplicates, key, rec)
}

// FindMapping resolves a platform message id to the fingerprint it carried.
func (r *Repository) FindMapping(roomID, platformMessageID int64) (models.Mapping, bool) {
	key, ok := roomKey(roomID, itoa(platformMessageID))
	if !ok {
		return models.Mapping{}, false
	}
	var m models.Mapping
	if !r.get(store.FamilyMappings, key, &m) {
		return models.Mapping{}, false
	}
	return m, true
}

// RecordMapping links a platform message id to a fingerprint.
func (r *Repository) RecordMapping(roomID, platformMessageID int64, fingerprint string, now time.Time) bool {
	key, ok := roomKey(roomID, itoa(platformMessageID))
	if !ok {
		return false
	}
	m := models.Mapping{
		PlatformMessageID: platformMessageID,
		RoomID:            roomID,
		Fingerprint:       fingerprint,
		SeenAt:            now.Unix(),
	}
	return r.put(store.FamilyMappings, key, m)
}

// DeleteByPlatformMessageIDs handles a deletion notice: each message id is
// resolved through the mapping family and its first-seen record removed,
// so re-posting the content later counts as unique again. Ids with no
// mapping (never fingerprinted, or already aged out) are logged no-ops.
// Returns how many first-seen records were removed.
func (r *Repository) DeleteByPlatformMessageIDs(notice models.DeletionNotice) int {
	removed := 0
	for _, msgID := range notice.PlatformMessageIDs {
		mapping, ok := r.FindMapping(notice.RoomID, msgID)
		if !ok {
			logging.Debug().
				Int64("room_id", notice.RoomID).
				Int64("message_id", msgID).
				Msg("deletion notice for unmapped message")
			continue
		}

		if key, ok := roomKey(notice.RoomID, mapping.Fingerprint); ok {
			if r.del(store.FamilyMedia, key) {
				removed++
			}
		}
		if key, ok := roomKey(notice.RoomID, itoa(msgID)); ok {
			r.del(store.FamilyMappings, key)
		}
	}
	return removed
}

// ListRecentContent returns a room's most recent first-seen content,
// newest first, at most limit entries. A message that produced several
// fingerprints is collapsed to one representative entry. kind narrows
// the result to one content kind; empty means all kinds.
func (r *Repository) ListRecentContent(roomID int64, kind models.ContentKind, limit int) []models.MediaRecord {
	prefix, ok := roomScanPrefix(roomID)
	if !ok {
		return nil
	}

	byMessage := make(map[int64]models.MediaRecord)
	scan(r, store.FamilyMedia, prefix, func(_ []byte, rec models.MediaRecord) bool {
		if kind != "" && rec.ContentKind != kind {
			return true
		}
		if prev, seen := byMessage[rec.MessageID]; !seen || rec.SeenAt > prev.SeenAt {
			byMessage[rec.MessageID] = rec
		}
		return true
	})

	return topRecent(byMessage, limit)
}

// ListRecentDuplicates returns a room's most recent duplicate occurrences,
// newest first, at most limit entries, collapsed per message like
// ListRecentContent.
func (r *Repository) ListRecentDuplicates(roomID int64, limit int) []models.MediaRecord {
	prefix, ok := roomScanPrefix(roomID)
	if !ok {
		return nil
	}

	byMessage := make(map[int64]models.MediaRecord)
	scan(r, store.FamilyDuplicates, prefix, func(_ []byte, rec models.MediaRecord) bool {
		if prev, seen := byMessage[rec.MessageID]; !seen || rec.SeenAt > prev.SeenAt {
			byMessage[rec.MessageID] = rec
		}
		return true
	})

	return topRecent(byMessage, limit)
}

// topRecent flattens per-message representatives into a slice sorted by
// seen-at descending (message id descending breaks ties) and truncates.
func topRecent(byMessage map[int64]models.MediaRecord, limit int) []models.MediaRecord {
	out := make([]models.MediaRecord, 0, len(byMessage))
	for _, rec := range byMessage {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SeenAt != out[j].SeenAt {
			return out[i].SeenAt > out[j].SeenAt
		}
		return out[i].MessageID > out[j].MessageID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ListAllContent returns every first-seen record across all rooms.
// Diagnostics only; this is a full family scan.
func (r *Repository) ListAllContent() []models.MediaRecord {
	var out []models.MediaRecord
	scan(r, store.FamilyMedia, nil, func(_ []byte, rec models.MediaRecord) bool {
		out = append(out, rec)
		return true
	})
	return out
}

// ListAllDuplicates returns every duplicate occurrence across all rooms.
func (r *Repository) ListAllDuplicates() []models.MediaRecord {
	var out []models.MediaRecord
	scan(r, store.FamilyDuplicates, nil, func(_ []byte, rec models.MediaRecord) bool {
		out = append(out, rec)
		return true
	})
	return out
}
