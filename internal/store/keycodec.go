// Roomwarden - Group Chat Dedup and Moderation Storage Engine
// Copyright 2026 N. Morell (nmorell)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nmorell/roomwarden

package store

import (
	"errors"
	"fmt"
	"strconv"
)

// RoomPrefixWidth is the fixed byte width of the encoded room id portion
// of a composite key. Fourteen decimal characters cover every platform
// room id in use, sign included; supergroup ids are negative 13-digit
// numbers, so the sign occupies one of the fourteen positions.
const RoomPrefixWidth = 14

// keySeparator divides the room prefix from the discriminator. The
// decoder splits at the fixed width rather than searching for the
// separator, so discriminators may freely contain '_' themselves.
const keySeparator = '_'

// Key codec errors.
var (
	// ErrRoomIDTooWide means the room id does not fit the fixed prefix width.
	ErrRoomIDTooWide = errors.New("room id exceeds fixed key prefix width")

	// ErrMalformedKey means a stored key is too short or its room prefix
	// does not parse as an integer.
	ErrMalformedKey = errors.New("malformed composite key")
)

// EncodeKey builds a composite key from a room id and a discriminator
// (a fingerprint, an identity id, a message id). The room id is
// zero-padded to RoomPrefixWidth; for negative ids the fill sits between
// the sign and the digits, so -100123 encodes as "-0000000100123".
func EncodeKey(roomID int64, discriminator string) ([]byte, error) {
	prefix := fmt.Sprintf("%0*d", RoomPrefixWidth, roomID)
	if len(prefix) > RoomPrefixWidth {
		return nil, fmt.Errorf("%w: %d", ErrRoomIDTooWide, roomID)
	}

	key := make([]byte, 0, RoomPrefixWidth+1+len(discriminator))
	key = append(key, prefix...)
	key = append(key, keySeparator)
	return append(key, discriminator...), nil
}

// DecodeKey splits a composite key back into room id and discriminator.
// The split happens at the fixed prefix width, never at the first
// separator byte.
func DecodeKey(key []byte) (int64, string, error) {
	if len(key) < RoomPrefixWidth+1 {
		return 0, "", fmt.Errorf("%w: %d bytes", ErrMalformedKey, len(key))
	}

	roomID, err := strconv.ParseInt(string(key[:RoomPrefixWidth]), 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %q", ErrMalformedKey, key[:RoomPrefixWidth])
	}
	if key[RoomPrefixWidth] != keySeparator {
		return 0, "", fmt.Errorf("%w: missing separator", ErrMalformedKey)
	}
	return roomID, string(key[RoomPrefixWidth+1:]), nil
}

// RoomPrefix returns the scan prefix covering every key of one room,
// separator included.
func RoomPrefix(roomID int64) ([]byte, error) {
	return EncodeKey(roomID, "")
}
