// Roomwarden - Group Chat Dedup and Moderation Storage Engine
// Copyright 2026 N. Morell (nmorell)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nmorell/roomwarden

package store

import (
	"errors"
	"testing"
	"time"
)

// newTestStore opens a store in a temp directory and closes it when the
// test finishes.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{Path: t.TempDir()})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return s
}

func TestPutGetDelete(t *testing.T) {
	s := newTestStore(t)

	key := []byte("k1")
	if err := s.Put(FamilyMedia, key, []byte("v1")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(FamilyMedia, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "v1" {
		t.Errorf("Get = %q, want %q", got, "v1")
	}

	if err := s.Delete(FamilyMedia, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(FamilyMedia, key); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
}

func TestGetMissingKey(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get(FamilyConfigs, []byte("absent")); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get = %v, want ErrNotFound", err)
	}
}

func TestDeleteAbsentKeyIsNoop(t *testing.T) {
	s := newTestStore(t)
	if err := s.Delete(FamilyMedia, []byte("never-written")); err != nil {
		t.Errorf("Delete absent key: %v", err)
	}
}

func TestFamiliesAreIsolated(t *testing.T) {
	s := newTestStore(t)

	key := []byte("shared-key")
	if err := s.Put(FamilyMedia, key, []byte("media")); err != nil {
		t.Fatalf("Put media: %v", err)
	}
	if err := s.Put(FamilyIdentities, key, []byte("identity")); err != nil {
		t.Fatalf("Put identity: %v", err)
	}

	got, err := s.Get(FamilyMedia, key)
	if err != nil || string(got) != "media" {
		t.Errorf("media family = %q, %v", got, err)
	}
	got, err = s.Get(FamilyIdentities, key)
	if err != nil || string(got) != "identity" {
		t.Errorf("identities family = %q, %v", got, err)
	}

	if err := s.Delete(FamilyMedia, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(FamilyIdentities, key); err != nil {
		t.Errorf("delete in one family leaked into another: %v", err)
	}
}

func TestPrefixScanScopesToRoom(t *testing.T) {
	s := newTestStore(t)

	put := func(roomID int64, disc, value string) {
		t.Helper()
		key, err := EncodeKey(roomID, disc)
		if err != nil {
			t.Fatalf("EncodeKey: %v", err)
		}
		if err := s.Put(FamilyMedia, key, []byte(value)); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	put(1, "a", "room1-a")
	put(1, "b", "room1-b")
	put(11, "a", "room11-a")
	put(-100123, "a", "supergroup-a")

	prefix, err := RoomPrefix(1)
	if err != nil {
		t.Fatalf("RoomPrefix: %v", err)
	}

	var seen []string
	err = s.PrefixScan(FamilyMedia, prefix, func(key, value []byte) (bool, error) {
		seen = append(seen, string(value))
		return true, nil
	})
	if err != nil {
		t.Fatalf("PrefixScan: %v", err)
	}
	if len(seen) != 2 {
		t.Fatalf("scan saw %d records %v, want 2", len(seen), seen)
	}
	for _, v := range seen {
		if v != "room1-a" && v != "room1-b" {
			t.Errorf("scan leaked record %q from another room", v)
		}
	}
}

func TestPrefixScanEarlyStop(t *testing.T) {
	s := newTestStore(t)

	for _, k := range []string{"a", "b", "c"} {
		if err := s.Put(FamilyVenues, []byte(k), []byte(k)); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	count := 0
	err := s.Scan(FamilyVenues, func(key, value []byte) (bool, error) {
		count++
		return count < 2, nil
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if count != 2 {
		t.Errorf("scan visited %d records after early stop, want 2", count)
	}
}

func TestDeleteBatch(t *testing.T) {
	s := newTestStore(t)

	keys := [][]byte{[]byte("d1"), []byte("d2"), []byte("d3")}
	for _, k := range keys {
		if err := s.Put(FamilyMappings, k, []byte("v")); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	n, err := s.DeleteBatch(FamilyMappings, keys[:2])
	if err != nil {
		t.Fatalf("DeleteBatch: %v", err)
	}
	if n != 2 {
		t.Errorf("DeleteBatch = %d, want 2", n)
	}

	if _, err := s.Get(FamilyMappings, keys[0]); !errors.Is(err, ErrNotFound) {
		t.Errorf("d1 survived batch delete: %v", err)
	}
	if _, err := s.Get(FamilyMappings, keys[2]); err != nil {
		t.Errorf("d3 was deleted but not in the batch: %v", err)
	}
}

func TestClosedStoreRejectsOps(t *testing.T) {
	s, err := Open(Config{Path: t.TempDir(), CloseTimeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	if err := s.Put(FamilyMedia, []byte("k"), []byte("v")); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Put on closed store = %v, want ErrStoreClosed", err)
	}
	if _, err := s.Get(FamilyMedia, []byte("k")); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Get on closed store = %v, want ErrStoreClosed", err)
	}
}
