// Roomwarden - Group Chat Dedup and Moderation Storage Engine
// Copyright 2026 N. Morell (nmorell)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nmorell/roomwarden

// Package repository is the typed facade over the store. Every operation
// is synchronous and local; there is no network I/O anywhere below this
// layer.
//
// Operations report failure as a value: lookups return an ok bool,
// mutations return success, list queries return an empty slice. The
// underlying store error is logged here with full context, never
// propagated. Callers in the moderation path treat a failed lookup the
// same as an absent record.
package repository

import (
	"errors"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	"github.com/nmorell/roomwarden/internal/logging"
	"github.com/nmorell/roomwarden/internal/metrics"
	"github.com/nmorell/roomwarden/internal/store"
)

// Repository exposes typed operations over the store's families.
type Repository struct {
	store *store.Store
}

// New creates a repository over an opened store.
func New(s *store.Store) *Repository {
	return &Repository{store: s}
}

// put serializes rec and writes it under key in family f.
func (r *Repository) put(f store.Family, key []byte, rec any) bool {
	value, err := json.Marshal(rec)
	if err != nil {
		logging.Err(err).Str("family", string(f)).Msg("marshal record")
		return false
	}

	start := time.Now()
	err = r.store.Put(f, key, value)
	metrics.RecordStoreOp("put", string(f), time.Since(start), err)
	if err != nil {
		logging.Err(err).Str("family", string(f)).Msg("put record")
		return false
	}
	return true
}

// get reads key from family f and deserializes into out. Absent keys and
// store failures both report false; failures are logged.
func (r *Repository) get(f store.Family, key []byte, out any) bool {
	start := time.Now()
	value, err := r.store.Get(f, key)
	if errors.Is(err, store.ErrNotFound) {
		metrics.RecordStoreOp("get", string(f), time.Since(start), nil)
		return false
	}
	metrics.RecordStoreOp("get", string(f), time.Since(start), err)
	if err != nil {
		logging.Err(err).Str("family", string(f)).Msg("get record")
		return false
	}
	if err := json.Unmarshal(value, out); err != nil {
		logging.Err(err).Str("family", string(f)).Msg("unmarshal record")
		return false
	}
	return true
}

// del removes key from family f.
func (r *Repository) del(f store.Family, key []byte) bool {
	start := time.Now()
	err := r.store.Delete(f, key)
	metrics.RecordStoreOp("delete", string(f), time.Since(start), err)
	if err != nil {
		logging.Err(err).Str("family", string(f)).Msg("delete record")
		return false
	}
	return true
}

// scan iterates family f under prefix, deserializing each value into a
// fresh T and handing it to fn. Undecodable records are logged and
// skipped; a failed scan is logged and yields whatever was collected.
func scan[T any](r *Repository, f store.Family, prefix []byte, fn func(key []byte, rec T) bool) {
	start := time.Now()
	err := r.store.PrefixScan(f, prefix, func(key, value []byte) (bool, error) {
		var rec T
		if jerr := json.Unmarshal(value, &rec); jerr != nil {
			logging.Warn().
				Str("family", string(f)).
				Err(jerr).
				Msg("skipping undecodable record")
			return true, nil
		}
		return fn(key, rec), nil
	})
	metrics.RecordStoreOp("scan", string(f), time.Since(start), err)
	if err != nil {
		logging.Err(err).Str("family", string(f)).Msg("scan family")
	}
}

// roomKey builds a composite key, reporting encode failure as a logged miss.
func roomKey(roomID int64, discriminator string) ([]byte, bool) {
	key, err := store.EncodeKey(roomID, discriminator)
	if err != nil {
		logging.Err(err).Int64("room_id", roomID).Msg("encode key")
		return nil, false
	}
	return key, true
}

// roomScanPrefix builds the prefix covering one room's keys.
func roomScanPrefix(roomID int64) ([]byte, bool) {
	prefix, err := store.RoomPrefix(roomID)
	if err != nil {
		logging.Err(err).Int64("room_id", roomID).Msg("encode room prefix")
		return nil, false
	}
	return prefix, true
}

// itoa is shorthand for the decimal rendering used in discriminators.
func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
