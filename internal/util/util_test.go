package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileStem(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"MovementReports/41158662-03.txt", "41158662-03"},
		{"41158662-03.txt", "41158662-03"},
		{"/abs/path/12345678-90.dat", "12345678-90"},
		{"noext", "noext"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FileStem(tt.path), tt.path)
	}
}

func TestSplitColonPair(t *testing.T) {
	key, value, ok := SplitColonPair("41158662-03:s3cret\n")
	assert.True(t, ok)
	assert.Equal(t, "41158662-03", key)
	assert.Equal(t, "s3cret", value)

	// Value keeps embedded colons.
	_, value, ok = SplitColonPair("id:a:b:c")
	assert.True(t, ok)
	assert.Equal(t, "a:b:c", value)

	_, _, ok = SplitColonPair("no separator here")
	assert.False(t, ok)
}
