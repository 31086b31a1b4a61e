// Roomwarden - Group Chat Dedup and Moderation Storage Engine
// Copyright 2026 N. Morell (nmorell)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nmorell/roomwarden

package store

import (
	"context"
	"time"

	json "github.com/goccy/go-json"

	"github.com/nmorell/roomwarden/internal/logging"
	"github.com/nmorell/roomwarden/internal/metrics"
)

// DefaultSweepInterval is how often the sweeper runs a full pass.
const DefaultSweepInterval = 10 * time.Minute

// sweepBatchSize bounds how many keys one delete batch carries.
const sweepBatchSize = 1000

// Sweeper ages expired records out of the TTL families in the background.
// It runs as a supervised service: Serve scans each TTL family on a fixed
// interval, peeks every record's seen_at, and batch-deletes the ones that
// fail Keep. Value-log garbage collection follows any pass that deleted
// something.
type Sweeper struct {
	store    *Store
	interval time.Duration
}

// NewSweeper creates a sweeper over the store. A non-positive interval
// falls back to DefaultSweepInterval.
func NewSweeper(store *Store, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{store: store, interval: interval}
}

// Serve implements suture.Service. It sweeps once at startup, then on
// every interval tick until the context is canceled.
func (s *Sweeper) Serve(ctx context.Context) error {
	logging.Info().
		Dur("interval", s.interval).
		Msg("ttl sweeper started")

	s.runPass()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("ttl sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runPass()
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (s *Sweeper) String() string {
	return "ttl-sweeper"
}

// runPass executes one full sweep and records its metrics. Sweep errors
// are logged, never fatal; the next tick retries.
func (s *Sweeper) runPass() {
	start := time.Now()
	deleted, err := s.Sweep(time.Now())
	metrics.RecordSweep(time.Since(start), err)

	if err != nil {
		logging.Err(err).Msg("ttl sweep pass failed")
		return
	}
	if deleted > 0 {
		logging.Info().
			Int("deleted", deleted).
			Dur("elapsed", time.Since(start)).
			Msg("ttl sweep pass complete")
	}
}

// Sweep removes every record in the TTL families whose seen_at fails the
// retention predicate at now. It returns the total number of records
// deleted across all families.
func (s *Sweeper) Sweep(now time.Time) (int, error) {
	total := 0
	for _, family := range TTLFamilies() {
		n, err := s.sweepFamily(family, now)
		total += n
		if err != nil {
			return total, err
		}
	}

	if total > 0 {
		if err := s.store.RunGC(); err != nil {
			logging.Warn().Err(err).Msg("value log gc after sweep failed")
		}
	}
	return total, nil
}

// sweepFamily collects and deletes the expired keys of one family.
func (s *Sweeper) sweepFamily(family Family, now time.Time) (int, error) {
	var expired [][]byte

	err := s.store.Scan(family, func(key, value []byte) (bool, error) {
		// Every TTL-family record carries seen_at; records that fail to
		// parse are treated as expired so corruption cannot accumulate.
		var peek struct {
			SeenAt int64 `json:"seen_at"`
		}
		if jerr := json.Unmarshal(value, &peek); jerr != nil {
			logging.Warn().
				Str("family", string(family)).
				Err(jerr).
				Msg("unreadable record scheduled for deletion")
			expired = append(expired, append([]byte(nil), key...))
			return true, nil
		}
		if !Keep(peek.SeenAt, now) {
			expired = append(expired, append([]byte(nil), key...))
		}
		return true, nil
	})
	if err != nil {
		return 0, err
	}

	deleted := 0
	for len(expired) > 0 {
		batch := expired
		if len(batch) > sweepBatchSize {
			batch = batch[:sweepBatchSize]
		}
		n, derr := s.store.DeleteBatch(family, batch)
		deleted += n
		if derr != nil {
			return deleted, derr
		}
		expired = expired[len(batch):]
	}

	if deleted > 0 {
		metrics.SweepDeleted.WithLabelValues(string(family)).Add(float64(deleted))
	}
	return deleted, nil
}
