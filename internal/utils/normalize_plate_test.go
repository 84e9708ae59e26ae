package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePlate(t *testing.T) {
	tests := map[string]string{
		" gr-1234-21 ": "GR123421",
		"as 55 x":      "AS55X",
		"":             "",
	}
	for raw, want := range tests {
		assert.Equal(t, want, NormalizePlate(raw), raw)
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "+233 24 123 4567", want: "+233241234567"},
		{raw: "024-123-4567", want: "0241234567"},
		{raw: "(024) 123 4567", want: "0241234567"},
		{raw: "12+34567", want: "1234567"},
		{raw: "+12 34", want: ""},
		{raw: "call me", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhone(tt.raw))
		})
	}
}
