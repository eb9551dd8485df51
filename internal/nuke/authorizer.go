// Package nuke gates the fleet's destructive action behind a
// time-salted credential check.
//
// This is a toy credential comparison, not a security primitive: there
// is no rate limiting, no constant-time requirement, and no retry
// accounting. Known hardening gap, out of scope for the command core.
package nuke

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/subcom/fleet/pkg/core"
)

// SecretStore resolves one secret for a serial number. Absence of the
// serial is a lookup failure (core.ErrNotFound), never a default.
type SecretStore interface {
	Secret(sn core.SerialNumber) (string, error)
}

// Authorizer combines two independently stored secrets with the current
// date and authorizes only on exact digest match.
type Authorizer struct {
	logger *slog.Logger
	keys   SecretStore
	codes  SecretStore
	now    func() time.Time
}

// NewAuthorizer creates an authorizer over the secret-key and
// activation-code stores.
func NewAuthorizer(logger *slog.Logger, keys, codes SecretStore) *Authorizer {
	return &Authorizer{
		logger: logger,
		keys:   keys,
		codes:  codes,
		now:    time.Now,
	}
}

// Authorize checks the caller-supplied credential for the submarine.
//
// The expected digest is SHA-256 of the current date (YYYY-MM-DD), the
// secret key, and the activation code concatenated; it is compared
// against the SHA-256 digest of the raw credential. The caller must have
// independently reconstructed the same concatenation. Either secret
// lookup missing fails with core.ErrNotFound.
func (a *Authorizer) Authorize(sn core.SerialNumber, credential string) (bool, error) {
	key, err := a.keys.Secret(sn)
	if err != nil {
		return false, fmt.Errorf("resolving secret key for %s: %w", sn, err)
	}
	code, err := a.codes.Secret(sn)
	if err != nil {
		return false, fmt.Errorf("resolving activation code for %s: %w", sn, err)
	}

	expected := sha256.Sum256([]byte(a.now().Format("2006-01-02") + key + code))
	supplied := sha256.Sum256([]byte(credential))

	authorized := hex.EncodeToString(expected[:]) == hex.EncodeToString(supplied[:])
	if authorized {
		a.logger.Info("Nuke authorized", "serial", sn)
	} else {
		a.logger.Warn("Nuke authorization rejected, credential mismatch", "serial", sn)
	}
	return authorized, nil
}
