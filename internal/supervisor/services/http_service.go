// Roomwarden - Group Chat Dedup and Moderation Storage Engine
// Copyright 2026 N. Morell (nmorell)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nmorell/roomwarden

// Package services adapts blocking lifecycle patterns to suture's
// context-aware Serve contract.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// HTTPServer is the slice of *http.Server's lifecycle the admin API
// needs; the indirection keeps the service testable without a listener.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServerService runs the admin API server under the supervisor,
// mapping context cancellation to a bounded graceful shutdown.
type HTTPServerService struct {
	srv          HTTPServer
	drainTimeout time.Duration
}

// NewHTTPServerService wraps srv. drainTimeout bounds how long in-flight
// requests get to finish on shutdown; zero or negative means 10 seconds.
func NewHTTPServerService(srv HTTPServer, drainTimeout time.Duration) *HTTPServerService {
	if drainTimeout <= 0 {
		drainTimeout = 10 * time.Second
	}
	return &HTTPServerService{srv: srv, drainTimeout: drainTimeout}
}

// Serve implements suture.Service.
func (s *HTTPServerService) Serve(ctx context.Context) error {
	exit := make(chan error, 1)
	go func() { exit <- s.srv.ListenAndServe() }()

	select {
	case err := <-exit:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http listener: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	// The serve context is already canceled; draining needs its own.
	drainCtx, cancel := context.WithTimeout(context.Background(), s.drainTimeout)
	defer cancel()
	if err := s.srv.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	<-exit
	return ctx.Err()
}

// String names the service in supervisor logs.
func (s *HTTPServerService) String() string {
	return "http-server"
}
