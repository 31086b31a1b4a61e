// Roomwarden - Group Chat Dedup and Moderation Storage Engine
// Copyright 2026 N. Morell (nmorell)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nmorell/roomwarden

// Package config loads Roomwarden configuration from layered sources
// with clear precedence: environment variables over an optional YAML
// file over built-in defaults.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the full runtime configuration.
type Config struct {
	Store   StoreConfig   `koanf:"store"`
	Sweep   SweepConfig   `koanf:"sweep"`
	Server  ServerConfig  `koanf:"server"`
	Logging LoggingConfig `koanf:"logging"`
}

// StoreConfig configures the embedded store.
type StoreConfig struct {
	// Path is the Badger data directory.
	Path string `koanf:"path" validate:"required"`

	// SyncWrites forces fsync on every write.
	SyncWrites bool `koanf:"sync_writes"`

	// CloseTimeout bounds graceful shutdown of the store.
	CloseTimeout time.Duration `koanf:"close_timeout" validate:"min=1s"`
}

// SweepConfig configures the TTL sweeper.
type SweepConfig struct {
	// Interval is the time between sweep passes.
	Interval time.Duration `koanf:"interval" validate:"min=1s"`
}

// ServerConfig configures the admin HTTP API.
type ServerConfig struct {
	// Host is the listen address.
	Host string `koanf:"host" validate:"required"`

	// Port is the listen port.
	Port int `koanf:"port" validate:"min=1,max=65535"`

	// Timeout bounds request handling.
	Timeout time.Duration `koanf:"timeout" validate:"min=1s"`

	// RateLimitReqs is the per-IP request budget per RateLimitWindow.
	RateLimitReqs int `koanf:"rate_limit_reqs" validate:"min=1"`

	// RateLimitWindow is the rate limit accounting window.
	RateLimitWindow time.Duration `koanf:"rate_limit_window" validate:"min=1s"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns the built-in defaults, applied before file and
// environment layers.
func defaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Path:         "/data/roomwarden",
			SyncWrites:   false,
			CloseTimeout: 30 * time.Second,
		},
		Sweep: SweepConfig{
			Interval: 10 * time.Minute,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8710,
			Timeout:         30 * time.Second,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks structural constraints via validator tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// ListenAddr renders the admin API listen address.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
