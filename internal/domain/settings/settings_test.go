package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefault(t *testing.T) {
	s := Default()

	assert.False(t, s.ShouldHoldClip)
	assert.False(t, s.ShouldShuffle)
	assert.Equal(t, 1, s.Bank)
}

func TestSettings_Clamp(t *testing.T) {
	tests := []struct {
		name      string
		bank      int
		bankCount int
		expected  int
	}{
		{
			name:      "bank in range",
			bank:      3,
			bankCount: 8,
			expected:  3,
		},
		{
			name:      "bank count shrank",
			bank:      12,
			bankCount: 8,
			expected:  8,
		},
		{
			name:      "zero bank",
			bank:      0,
			bankCount: 8,
			expected:  1,
		},
		{
			name:      "negative bank",
			bank:      -4,
			bankCount: 8,
			expected:  1,
		},
		{
			name:      "last bank",
			bank:      8,
			bankCount: 8,
			expected:  8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Settings{ShouldHoldClip: true, ShouldShuffle: true, Bank: tt.bank}

			result := s.Clamp(tt.bankCount)
			assert.Equal(t, tt.expected, result.Bank)
			assert.True(t, result.ShouldHoldClip, "flags must survive clamping")
			assert.True(t, result.ShouldShuffle, "flags must survive clamping")
		})
	}
}
