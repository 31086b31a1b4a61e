// Roomwarden - Group Chat Dedup and Moderation Storage Engine
// Copyright 2026 N. Morell (nmorell)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nmorell/roomwarden

// Package metrics provides Prometheus instrumentation for the storage
// engine: store operations, dedup verdicts, TTL sweeps, and the admin API.
// Collectors are registered via promauto at package init and served from
// the admin API's /metrics endpoint.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Store metrics

	StoreOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "roomwarden_store_op_duration_seconds",
			Help:    "Duration of store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "family"},
	)

	StoreOpErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roomwarden_store_op_errors_total",
			Help: "Total number of failed store operations",
		},
		[]string{"operation", "family"},
	)

	// Dedup metrics

	DedupVerdicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roomwarden_dedup_verdicts_total",
			Help: "Total number of dedup verdicts by content kind and outcome",
		},
		[]string{"kind", "verdict"}, // verdict: "unique", "duplicate"
	)

	DedupRescues = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roomwarden_dedup_rescues_total",
			Help: "Messages spared because at least one of their links was unique",
		},
	)

	// TTL sweep metrics

	SweepDeleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roomwarden_ttl_sweep_deleted_total",
			Help: "Total number of records deleted by the TTL sweeper",
		},
		[]string{"family"},
	)

	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "roomwarden_ttl_sweep_duration_seconds",
			Help:    "Duration of full TTL sweep passes in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
	)

	SweepErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roomwarden_ttl_sweep_errors_total",
			Help: "Total number of sweep passes that ended with an error",
		},
	)

	// Admin API metrics

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "roomwarden_api_request_duration_seconds",
			Help:    "Duration of admin API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)
)

// RecordStoreOp records one store operation's duration, and its failure
// if err is non-nil.
func RecordStoreOp(operation, family string, duration time.Duration, err error) {
	StoreOpDuration.WithLabelValues(operation, family).Observe(duration.Seconds())
	if err != nil {
		StoreOpErrors.WithLabelValues(operation, family).Inc()
	}
}

// RecordVerdict records a dedup decision.
func RecordVerdict(kind string, duplicate bool) {
	verdict := "unique"
	if duplicate {
		verdict = "duplicate"
	}
	DedupVerdicts.WithLabelValues(kind, verdict).Inc()
}

// RecordSweep records the outcome of one full sweep pass.
func RecordSweep(duration time.Duration, err error) {
	SweepDuration.Observe(duration.Seconds())
	if err != nil {
		SweepErrors.Inc()
	}
}
