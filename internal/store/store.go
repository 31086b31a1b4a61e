// Roomwarden - Group Chat Dedup and Moderation Storage Engine
// Copyright 2026 N. Morell (nmorell)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nmorell/roomwarden

// Package store wraps BadgerDB as a column-family-organized key-value
// repository. Families are name-spaced key prefixes inside a single Badger
// directory; within a family, room-scoped keys carry a fixed-width room id
// prefix so Badger's native prefix iteration can enumerate one room's
// records without a full scan.
//
// Time-to-live eviction is a background sweep (Sweeper), not a read-time
// check: an expired record stays visible to lookups and scans until the
// next sweep pass removes it. Freshness-sensitive callers must compare
// record timestamps themselves.
package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/nmorell/roomwarden/internal/logging"
)

// Family names a partition of the store. Each persisted record type lives
// in its own family.
type Family string

// The eight families of the persisted layout.
const (
	FamilyMedia      Family = "media"
	FamilyDuplicates Family = "duplicates"
	FamilyIdentities Family = "identities"
	FamilyMappings   Family = "mappings"
	FamilyGroups     Family = "groups"
	FamilyConfigs    Family = "configs"
	FamilyVenues     Family = "venues"
	FamilyVotes      Family = "votes"
)

// Families returns every family in the persisted layout.
func Families() []Family {
	return []Family{
		FamilyMedia, FamilyDuplicates, FamilyIdentities, FamilyMappings,
		FamilyGroups, FamilyConfigs, FamilyVenues, FamilyVotes,
	}
}

// TTLFamilies returns the families subject to the time-to-live sweep.
// Identity memberships, groups, configs, venues and votes keep forever;
// an earlier revision swept identities too, which broke every membership
// query for low-traffic rooms.
func TTLFamilies() []Family {
	return []Family{FamilyMedia, FamilyDuplicates, FamilyMappings}
}

// Errors returned by store operations.
var (
	// ErrNotFound is returned when a key does not exist in a family.
	ErrNotFound = errors.New("key not found")

	// ErrStoreClosed is returned when the store has been closed.
	ErrStoreClosed = errors.New("store is closed")
)

// Config holds store configuration.
type Config struct {
	// Path is the Badger directory. Created if missing.
	Path string

	// SyncWrites forces fsync on every write. Default: false.
	SyncWrites bool

	// CloseTimeout bounds how long Close waits for Badger to shut down.
	// Default: 30s.
	CloseTimeout time.Duration
}

// Store owns the shared Badger handle. It is safe for concurrent use by
// any number of in-flight tasks; Badger serializes physical writes
// internally and the store adds no locking of its own.
type Store struct {
	db     *badger.DB
	config Config

	mu     sync.RWMutex
	closed bool
}

// Open opens (or creates) the store at the configured path. Failure to
// open is the one fatal condition in this subsystem; callers should abort
// startup on error.
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("store path is required")
	}
	if cfg.CloseTimeout == 0 {
		cfg.CloseTimeout = 30 * time.Second
	}

	opts := badger.DefaultOptions(cfg.Path)
	opts.SyncWrites = cfg.SyncWrites
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("sync_writes", cfg.SyncWrites).
		Msg("store opened")

	return &Store{db: db, config: cfg}, nil
}

// fkey prepends the family namespace to a key.
func fkey(f Family, key []byte) []byte {
	out := make([]byte, 0, len(f)+1+len(key))
	out = append(out, f...)
	out = append(out, '/')
	return append(out, key...)
}

// Put writes value under key in the given family.
func (s *Store) Put(f Family, key, value []byte) error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return ErrStoreClosed
	}
	s.mu.RUnlock()

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(fkey(f, key), value)
	})
}

// Get returns the value stored under key in the given family, or
// ErrNotFound.
func (s *Store) Get(f Family, key []byte) ([]byte, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, ErrStoreClosed
	}
	s.mu.RUnlock()

	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(fkey(f, key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get %s key: %w", f, err)
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Delete removes key from the given family. Deleting an absent key is
// not an error.
func (s *Store) Delete(f Family, key []byte) error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return ErrStoreClosed
	}
	s.mu.RUnlock()

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(fkey(f, key))
	})
}

// PrefixScan iterates every key in the family that begins with prefix, in
// byte order. The callback receives the key with the family namespace
// stripped and the raw value; returning false stops the scan.
//
// The iterator guarantees only a byte-prefix match. Callers filtering on
// a full key field must predicate-filter the discriminator portion
// themselves.
func (s *Store) PrefixScan(f Family, prefix []byte, fn func(key, value []byte) (bool, error)) error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return ErrStoreClosed
	}
	s.mu.RUnlock()

	full := fkey(f, prefix)
	skip := len(f) + 1

	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(full); it.ValidForPrefix(full); it.Next() {
			item := it.Item()
			key := item.KeyCopy(nil)

			var cont bool
			err := item.Value(func(val []byte) error {
				var ferr error
				cont, ferr = fn(key[skip:], val)
				return ferr
			})
			if err != nil {
				return err
			}
			if !cont {
				return nil
			}
		}
		return nil
	})
}

// Scan iterates every key in the family.
func (s *Store) Scan(f Family, fn func(key, value []byte) (bool, error)) error {
	return s.PrefixScan(f, nil, fn)
}

// DeleteBatch removes the given keys from a family in one write batch and
// returns how many deletes were issued.
func (s *Store) DeleteBatch(f Family, keys [][]byte) (int, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return 0, ErrStoreClosed
	}
	s.mu.RUnlock()

	if len(keys) == 0 {
		return 0, nil
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for _, key := range keys {
		if err := wb.Delete(fkey(f, key)); err != nil {
			return 0, fmt.Errorf("batch delete %s key: %w", f, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("flush batch delete: %w", err)
	}
	return len(keys), nil
}

// RunGC runs Badger value-log garbage collection until no more space can
// be reclaimed.
func (s *Store) RunGC() error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return ErrStoreClosed
	}
	s.mu.RUnlock()

	for {
		err := s.db.RunValueLogGC(0.5)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run value log gc: %w", err)
		}
	}
}

// Close shuts the store down. Close blocks at most CloseTimeout; a hung
// Badger shutdown is reported as an error rather than hanging the caller.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	timeout := s.config.CloseTimeout
	s.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- s.db.Close()
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("close badger: %w", err)
		}
		logging.Info().Msg("store closed")
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("badger close timeout after %v", timeout)
	}
}
