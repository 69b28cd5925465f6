package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
	}{
		{"plain digits", "250", 250},
		{"currency suffix", "250 افغانی", 250},
		{"thousands separator", "1,250 افغانی", 1250},
		{"multiple groups", "12,345,678", 12345678},
		{"surrounding text", "قیمت: 990 AFN", 990},
		{"empty", "", 0},
		{"no digits", "افغانی", 0},
		{"only separators", ",,,", 0},
		{"zero", "0 افغانی", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, decimal.NewFromInt(tt.want).Equal(Parse(tt.input)),
				"Parse(%q)", tt.input)
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "0 افغانی", Format(decimal.Zero))
	assert.Equal(t, "250 افغانی", Format(decimal.NewFromInt(250)))
	assert.Equal(t, "1,250 افغانی", Format(decimal.NewFromInt(1250)))
	assert.Equal(t, "12,345,678 افغانی", Format(decimal.NewFromInt(12345678)))
	assert.Equal(t, "100,000 افغانی", Format(decimal.NewFromInt(100000)))
}

func TestFormatGroups(t *testing.T) {
	assert.Equal(t, "999", FormatGroups(decimal.NewFromInt(999)))
	assert.Equal(t, "1,000", FormatGroups(decimal.NewFromInt(1000)))
	assert.Equal(t, "-1,000", FormatGroups(decimal.NewFromInt(-1000)))
}

// Format then Parse must be stable under repeated application.
func TestRoundTripStable(t *testing.T) {
	for _, raw := range []string{"1,250 افغانی", "250", "0", "12,345,678 افغانی"} {
		once := Format(Parse(raw))
		twice := Format(Parse(once))
		assert.Equal(t, once, twice, "round-trip of %q", raw)
	}
}
