// Roomwarden - Group Chat Dedup and Moderation Storage Engine
// Copyright 2026 N. Morell (nmorell)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nmorell/roomwarden

package store

import "time"

// TTLWindow is how long records in the TTL families are retained,
// measured from their seen_at timestamp. 345600 seconds: four days.
const TTLWindow = 4 * 24 * time.Hour

// Keep reports whether a record with the given seen_at (Unix seconds)
// should survive a sweep at now. A record exactly at the window boundary
// is kept; strictly older goes.
func Keep(seenAt int64, now time.Time) bool {
	age := now.Unix() - seenAt
	return age <= int64(TTLWindow/time.Second)
}
