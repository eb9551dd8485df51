// Package util provides common helpers used across the fleet recorder.
package util

import (
	"path/filepath"
	"strings"
)

// FileStem returns the file name without directory or extension.
// "MovementReports/41158662-03.txt" -> "41158662-03".
func FileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// SplitColonPair splits a "<key>:<value>" line at the first colon.
// The value keeps any further colons; both sides are trimmed of
// surrounding whitespace. ok is false when no colon is present.
func SplitColonPair(line string) (key, value string, ok bool) {
	key, value, ok = strings.Cut(line, ":")
	if !ok {
		return "", "", false
	}
	return strings.TrimSpace(key), strings.TrimSpace(value), true
}
