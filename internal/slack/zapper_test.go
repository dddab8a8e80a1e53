package slack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZapperCheck(t *testing.T) {
	tests := []struct {
		when  string
		valid bool
	}{
		{"", true},
		{"5s", true},
		{"2m30s", true},
		{"keypress", true},
		{"key", true},
		{"soon", false},
		{"5 minutes", false},
	}

	for _, tt := range tests {
		err := NewZapper(tt.when, nil).Check()
		if tt.valid {
			assert.NoError(t, err, tt.when)
		} else {
			assert.Error(t, err, tt.when)
		}
	}
}

func TestZapperProcessWithoutTrigger(t *testing.T) {
	fired := false
	zapper := NewZapper("", func() error {
		fired = true
		return nil
	})

	require.NoError(t, zapper.Process())
	assert.False(t, fired)
}

func TestZapperProcessAfterDelay(t *testing.T) {
	fired := false
	zapper := NewZapper("1ms", func() error {
		fired = true
		return nil
	})

	require.NoError(t, zapper.Process())
	assert.True(t, fired)
}
