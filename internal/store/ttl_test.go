// Roomwarden - Group Chat Dedup and Moderation Storage Engine
// Copyright 2026 N. Morell (nmorell)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nmorell/roomwarden

package store

import (
	"testing"
	"time"
)

func TestKeepWindowBoundary(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	window := int64(TTLWindow / time.Second)

	tests := []struct {
		name   string
		seenAt int64
		want   bool
	}{
		{"just written", now.Unix(), true},
		{"one second inside the window", now.Unix() - window + 1, true},
		{"exactly at the window", now.Unix() - window, true},
		{"one second past the window", now.Unix() - window - 1, false},
		{"long expired", now.Unix() - 10*window, false},
		{"future timestamp", now.Unix() + 60, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Keep(tt.seenAt, now); got != tt.want {
				t.Errorf("Keep(%d, %d) = %v, want %v", tt.seenAt, now.Unix(), got, tt.want)
			}
		})
	}
}

func TestTTLWindowIsFourDays(t *testing.T) {
	if TTLWindow != 345600*time.Second {
		t.Errorf("TTLWindow = %v, want 345600s", TTLWindow)
	}
}
