// Roomwarden - Group Chat Dedup and Moderation Storage Engine
// Copyright 2026 N. Morell (nmorell)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nmorell/roomwarden

package dedup

import "regexp"

// nonLatinPattern matches any rune outside Basic Latin through Latin
// Extended Additional's predecessor blocks (U+0000..U+024F). Display
// names built entirely from decorative non-Latin codepoints are a common
// spam-account marker.
var nonLatinPattern = regexp.MustCompile(`[^\x{0000}-\x{024F}]+`)

// ContainsNonLatin reports whether the display name carries characters
// outside the Latin blocks.
func ContainsNonLatin(name string) bool {
	return nonLatinPattern.MatchString(name)
}
