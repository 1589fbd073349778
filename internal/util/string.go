// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import "strings"

// UNICODE: Rune-aware truncation preserves multi-byte characters.
// Chat previews and sidebar titles regularly contain non-ASCII text
// (the backend supports RTL languages), so truncation counts runes,
// never bytes.

// TruncateRunes truncates a string to a maximum number of runes (characters).
// This is safe for UTF-8 strings as it counts characters, not bytes.
// If the string is truncated, "..." is appended.
func TruncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// FirstLine returns the first non-empty line of s with surrounding
// whitespace removed. Used for chat previews in the sidebar.
func FirstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}

// IsRTL reports whether the string starts with a character from a
// right-to-left script (Hebrew or Arabic blocks). The backend renders
// answers in the question's direction, so the client tags outgoing
// messages with this hint.
func IsRTL(s string) bool {
	for _, r := range s {
		switch {
		case r >= 0x0590 && r <= 0x05FF: // Hebrew
			return true
		case r >= 0x0600 && r <= 0x06FF: // Arabic
			return true
		case r >= 0xFB1D && r <= 0xFDFF: // Hebrew/Arabic presentation forms
			return true
		case r >= 'A' && r <= 'z':
			return false
		}
	}
	return false
}
