// Roomwarden - Group Chat Dedup and Moderation Storage Engine
// Copyright 2026 N. Morell (nmorell)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nmorell/roomwarden

package dedup

import (
	"strings"
	"testing"
)

func TestExtractURLsSingle(t *testing.T) {
	text := "hola https://twitter.com/plaforscience/status/1379526168513277960"

	urls := ExtractURLs(text)
	if len(urls) != 1 {
		t.Fatalf("got %d urls, want 1", len(urls))
	}
	want := "https://twitter.com/plaforscience/status/1379526168513277960"
	if urls[0].URL != want {
		t.Errorf("url = %q, want %q", urls[0].URL, want)
	}
	if urls[0].Fingerprint != want {
		t.Errorf("short url fingerprint should be the whole url, got %q", urls[0].Fingerprint)
	}
}

func TestExtractURLsMultiple(t *testing.T) {
	text := "hola https://twitter.com/plaforscience/status/1379526168513277960 y ademas https://youtu.be/GCI0NMgVfPk"

	urls := ExtractURLs(text)
	if len(urls) != 2 {
		t.Fatalf("got %d urls, want 2", len(urls))
	}
	if urls[1].URL != "https://youtu.be/GCI0NMgVfPk" {
		t.Errorf("second url = %q", urls[1].URL)
	}
}

func TestExtractURLsWithQueryAndUnderscores(t *testing.T) {
	text := "https://drive.google.com/file/d/1t3_HeKZDIMEJl5_Y_l7uuIt4IeebCN7e/view?usp=sharing"

	urls := ExtractURLs(text)
	if len(urls) != 1 {
		t.Fatalf("got %d urls, want 1", len(urls))
	}
	if urls[0].URL != text {
		t.Errorf("url = %q, want the full link", urls[0].URL)
	}
}

func TestExtractURLsNone(t *testing.T) {
	if urls := ExtractURLs("no links in here, just words"); urls != nil {
		t.Errorf("got %v, want nil", urls)
	}
}

func TestExtractLast250(t *testing.T) {
	short := "https://example.com/x"
	if got := ExtractLast250(short); got != short {
		t.Errorf("short input truncated: %q", got)
	}

	long := "https://example.com/" + strings.Repeat("a", 300)
	got := ExtractLast250(long)
	if len(got) != 250 {
		t.Fatalf("len = %d, want 250", len(got))
	}
	if got != long[len(long)-250:] {
		t.Error("fingerprint is not the trailing 250 bytes")
	}
}

func TestLongURLsShareFingerprintOnlyWhenTailsMatch(t *testing.T) {
	tail := strings.Repeat("b", 250)
	u1 := "https://one.example/" + tail
	u2 := "https://two.example/prefix/" + tail
	if ExtractLast250(u1) != ExtractLast250(u2) {
		t.Error("identical 250-byte tails should collide")
	}

	u3 := "https://one.example/" + strings.Repeat("c", 250)
	if ExtractLast250(u1) == ExtractLast250(u3) {
		t.Error("different tails should not collide")
	}
}

func TestContainsNonLatin(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"arabic decorated", "ࡅߊ‌‌ࡅߺ߳ߊ‌‌ܝܝ݅ܝߊ‌‌", true},
		{"arabic with combining marks", "نـٖٖـۘۘ℘ـʘ͜͡اتـٖٖـۘۘ℘ـʘ͜͡اشـٖٖـۘۘ℘ـʘ͜͡", true},
		{"latin with punctuation", "sJavierGrau12!#", false},
		{"empty", "", false},
		{"latin extended", "Ñandú Pérez", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContainsNonLatin(tt.in); got != tt.want {
				t.Errorf("ContainsNonLatin(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
