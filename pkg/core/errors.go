// pkg/core/errors.go
package core

import "errors"

// Sentinel errors shared across the fleet command core.
// Callers match with errors.Is; packages wrap these with context.
var (
	// ErrInvalidFormat indicates a serial number that does not match
	// the XXXXXXXX-XX shape. Registration never coerces.
	ErrInvalidFormat = errors.New("serial number must be 8 digits, a hyphen, and 2 digits")

	// ErrNotFound indicates an identifier unknown to the registry or a
	// secret store.
	ErrNotFound = errors.New("submarine not found")

	// ErrEmptyFleet indicates a ranking query over zero registered submarines.
	ErrEmptyFleet = errors.New("no submarines registered")

	// ErrSourceUnavailable indicates a missing report file or secret store.
	ErrSourceUnavailable = errors.New("report source unavailable")
)
