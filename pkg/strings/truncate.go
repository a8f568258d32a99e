// Package strings holds small text helpers for console output.
package strings

import (
	"strings"
)

// DetailMaxLen is the width of free-form columns such as error details
// in status tables.
const DetailMaxLen = 72

// minTruncateLen leaves room for one character plus "...".
const minTruncateLen = 4

// Truncate collapses whitespace to single spaces and cuts s to maxLen
// runes, ending in "..." when something was removed.
func Truncate(s string, maxLen int) string {
	if maxLen < minTruncateLen {
		maxLen = minTruncateLen
	}
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}

// Mask hides a credential, keeping only a short prefix so the user can
// tell keys apart. Short values are hidden entirely.
func Mask(secret string) string {
	runes := []rune(secret)
	switch {
	case len(runes) == 0:
		return ""
	case len(runes) <= 8:
		return strings.Repeat("*", len(runes))
	default:
		return string(runes[:4]) + strings.Repeat("*", 4)
	}
}
