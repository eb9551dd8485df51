package serial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subcom/fleet/pkg/core"
)

func TestParse_Valid(t *testing.T) {
	tests := []string{
		"41158662-03",
		"00000000-00",
		"99999999-99",
	}
	for _, s := range tests {
		t.Run(s, func(t *testing.T) {
			sn, err := Parse(s)
			require.NoError(t, err)
			assert.Equal(t, core.SerialNumber(s), sn)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"too few leading digits", "1234567-89"},
		{"too many leading digits", "123456789-01"},
		{"too few trailing digits", "12345678-1"},
		{"too many trailing digits", "12345678-123"},
		{"missing hyphen", "1234567890"},
		{"letters", "abcdefgh-ij"},
		{"empty", ""},
		{"trailing garbage", "12345678-90x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrInvalidFormat)
		})
	}
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("12345678-90"))
	assert.False(t, Valid("12345678_90"))
}
