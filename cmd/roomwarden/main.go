// Roomwarden - Group Chat Dedup and Moderation Storage Engine
// Copyright 2026 N. Morell (nmorell)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nmorell/roomwarden

// Package main is the entry point for the Roomwarden server.
//
// Roomwarden is the storage and deduplication core of a group-chat
// moderation assistant. It keeps per-room first-seen records for shared
// links and media, membership bookkeeping, per-room moderation policy,
// and the venue voting data, all in an embedded BadgerDB store. A
// read-only HTTP API exposes the aggregation queries to operators.
//
// # Startup order
//
//  1. Configuration: Koanf v2 layered sources (env > config.yaml > defaults)
//  2. Logging: global zerolog logger
//  3. Store: open BadgerDB (fatal on failure; nothing works without it)
//  4. Repository facade
//  5. Supervisor tree: TTL sweeper (data layer), HTTP server (api layer)
//
// The dedup engine itself is a library (internal/dedup) driven in-process
// by the chat transport embedding this core; the server binary runs the
// storage side: retention sweeps and the operator query API.
//
// # Signal handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the supervisor context
// is canceled, the HTTP server drains, the sweeper stops, and the store
// is closed last.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nmorell/roomwarden/internal/api"
	"github.com/nmorell/roomwarden/internal/config"
	"github.com/nmorell/roomwarden/internal/logging"
	"github.com/nmorell/roomwarden/internal/repository"
	"github.com/nmorell/roomwarden/internal/store"
	"github.com/nmorell/roomwarden/internal/supervisor"
	"github.com/nmorell/roomwarden/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().Msg("Starting Roomwarden")

	st, err := store.Open(store.Config{
		Path:         cfg.Store.Path,
		SyncWrites:   cfg.Store.SyncWrites,
		CloseTimeout: cfg.Store.CloseTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open store")
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logging.Err(cerr).Msg("Store close failed")
		}
	}()

	repo := repository.New(st)

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddDataService(store.NewSweeper(st, cfg.Sweep.Interval))

	server := &http.Server{
		Addr: cfg.ListenAddr(),
		Handler: api.NewRouter(repo, api.RouterConfig{
			RateLimitReqs:   cfg.Server.RateLimitReqs,
			RateLimitWindow: cfg.Server.RateLimitWindow,
			RequestTimeout:  cfg.Server.Timeout,
		}),
		ReadHeaderTimeout: cfg.Server.Timeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.Timeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", cfg.ListenAddr()).Msg("Supervisor tree starting")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received")
		<-errCh
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Err(err).Msg("Supervisor tree exited with error")
			stop()
			os.Exit(1)
		}
	}

	logging.Info().Msg("Roomwarden stopped")
}
