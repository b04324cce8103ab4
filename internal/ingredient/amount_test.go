package ingredient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		token     string
		magnitude float64
		unit      string
	}{
		{"200g", 200, "g"},
		{"5", 5, ""},
		{"1.5kg", 1.5, "kg"},
		{"1.5 kg", 1.5, "kg"},
		{"  300 ml ", 300, "ml"},
		{".5l", 0.5, "l"},
		{"0g", 0, "g"},
		{"1 piece", 1, "piece"},
		{"a pinch", 1, "apinch"},
		{"", 1, ""},
		{"EL", 1, "EL"},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			magnitude, unit := ParseAmount(tt.token)
			assert.InDelta(t, tt.magnitude, magnitude, 1e-9)
			assert.Equal(t, tt.unit, unit)
		})
	}
}

func TestParseAmountRecoversNumberAndUnit(t *testing.T) {
	for _, n := range []string{"1", "12", "250", "0.25", "7.5", "1000"} {
		for _, u := range []string{"g", "kg", "ml", "Stück", "cups"} {
			magnitude, unit := ParseAmount(n + u)
			assert.Equal(t, n, FormatAmount(magnitude), "token %q", n+u)
			assert.Equal(t, u, unit, "token %q", n+u)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "300", FormatAmount(300))
	assert.Equal(t, "37.5", FormatAmount(37.5))
	assert.Equal(t, "0", FormatAmount(0))
}
