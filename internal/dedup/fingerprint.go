// Roomwarden - Group Chat Dedup and Moderation Storage Engine
// Copyright 2026 N. Morell (nmorell)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nmorell/roomwarden

package dedup

import "regexp"

// urlPattern matches http/https/ftp links in message text. The character
// classes are deliberately permissive; a link mangled by trailing
// punctuation still fingerprints stably because only the matched portion
// is used.
var urlPattern = regexp.MustCompile(`(http|ftp|https)://([\w_-]+(?:(?:\.[\w_-]+)+))([\w.,@?^=%&:/~+#-]*[\w@?^=%&/~+#-])?`)

// maxFingerprintLen caps a URL fingerprint at the last 250 bytes of the
// match. Long tracking-parameter tails stay discriminating; the stable
// tail of the URL is what identifies the shared resource.
const maxFingerprintLen = 250

// ExtractLast250 returns the trailing 250 bytes of text, or all of it
// when shorter.
func ExtractLast250(text string) string {
	if len(text) > maxFingerprintLen {
		return text[len(text)-maxFingerprintLen:]
	}
	return text
}

// URLMatch is one link found in message text, paired with its fingerprint.
type URLMatch struct {
	URL         string
	Fingerprint string
}

// ExtractURLs finds every link in text and fingerprints it.
func ExtractURLs(text string) []URLMatch {
	matches := urlPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]URLMatch, 0, len(matches))
	for _, url := range matches {
		out = append(out, URLMatch{URL: url, Fingerprint: ExtractLast250(url)})
	}
	return out
}
