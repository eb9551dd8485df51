// Package serial validates submarine serial numbers.
package serial

import (
	"fmt"
	"regexp"

	"github.com/subcom/fleet/pkg/core"
)

var pattern = regexp.MustCompile(`^\d{8}-\d{2}$`)

// Parse validates s against the XXXXXXXX-XX shape and returns it as a
// SerialNumber. Malformed input fails with core.ErrInvalidFormat.
func Parse(s string) (core.SerialNumber, error) {
	if !pattern.MatchString(s) {
		return "", fmt.Errorf("%q: %w", s, core.ErrInvalidFormat)
	}
	return core.SerialNumber(s), nil
}

// Valid reports whether s matches the serial number shape.
func Valid(s string) bool {
	return pattern.MatchString(s)
}
