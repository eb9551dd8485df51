package nuke

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subcom/fleet/pkg/core"
)

type mapStore map[core.SerialNumber]string

func (m mapStore) Secret(sn core.SerialNumber) (string, error) {
	v, ok := m[sn]
	if !ok {
		return "", core.ErrNotFound
	}
	return v, nil
}

func newTestAuthorizer(keys, codes mapStore) *Authorizer {
	a := NewAuthorizer(slog.New(slog.DiscardHandler), keys, codes)
	a.now = func() time.Time {
		return time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)
	}
	return a
}

func TestAuthorize_MatchingCredential(t *testing.T) {
	keys := mapStore{"41158662-03": "Vvkn0pAqXmGEeNRAj2h03C3vI2x"}
	codes := mapStore{"41158662-03": "RpojkncM1F1rr9xiiE"}
	a := newTestAuthorizer(keys, codes)

	credential := "2026-03-14" + keys["41158662-03"] + codes["41158662-03"]
	ok, err := a.Authorize("41158662-03", credential)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAuthorize_WrongCredential(t *testing.T) {
	a := newTestAuthorizer(
		mapStore{"41158662-03": "key"},
		mapStore{"41158662-03": "code"},
	)

	ok, err := a.Authorize("41158662-03", "2026-03-14keyWRONG")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthorize_DigestIsNotTheCredential(t *testing.T) {
	// Supplying the hex digest of the expected string must fail; the
	// core hashes the raw credential, not an already-hashed one.
	keys := mapStore{"41158662-03": "key"}
	codes := mapStore{"41158662-03": "code"}
	a := newTestAuthorizer(keys, codes)

	sum := sha256.Sum256([]byte("2026-03-14keycode"))
	ok, err := a.Authorize("41158662-03", hex.EncodeToString(sum[:]))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthorize_MissingSecrets(t *testing.T) {
	tests := []struct {
		name  string
		keys  mapStore
		codes mapStore
	}{
		{"missing key", mapStore{}, mapStore{"41158662-03": "code"}},
		{"missing code", mapStore{"41158662-03": "key"}, mapStore{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAuthorizer(tt.keys, tt.codes)
			_, err := a.Authorize("41158662-03", "whatever")
			assert.ErrorIs(t, err, core.ErrNotFound)
		})
	}
}
