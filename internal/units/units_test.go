package units

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBytes(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"0", 0},
		{"100", 100},
		{"100B", 100},
		{"8s", 4096},
		{"8S", 4096},
		{"4k", 4096},
		{"100K", 102400},
		{"1M", 1048576},
		{"1G", 1073741824},
		{"1T", 1099511627776},
		{"0.5M", 524288},
		{" 512 ", 512},
		{"8388607T", 8388607 << 40},
		{"9223372036854775807", 9223372036854775807},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBytes(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseBytesErrors(t *testing.T) {
	for _, input := range []string{
		"", "abc", "K", "-1", "-2K", "1.5x", "NaN", "Inf",
		"8388608T", "16777216T", "8796093022209T", "9223372036854775808",
		"8388608.5T", "1e30",
	} {
		t.Run(input, func(t *testing.T) {
			got, err := ParseBytes(input)
			assert.Error(t, err, "parsed as %d", got)
		})
	}
}

func TestParseBudget(t *testing.T) {
	tests := []struct {
		input    string
		want     Budget
		infinite bool
	}{
		{"0", Budget{}, true},
		{"1000", Budget{Iterations: 1000}, false},
		{"0x10", Budget{Iterations: 16}, false},
		{"30s", Budget{Duration: 30 * time.Second}, false},
		{"2m30s", Budget{Duration: 150 * time.Second}, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBudget(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.infinite, got.Infinite())
		})
	}
}

func TestParseBudgetErrors(t *testing.T) {
	for _, input := range []string{"", "-5", "ten", "5x", "-3s"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseBudget(input)
			assert.Error(t, err)
		})
	}
}

func TestBudgetString(t *testing.T) {
	assert.Equal(t, "infinite", Budget{}.String())
	assert.Equal(t, "42", Budget{Iterations: 42}.String())
	assert.Equal(t, "30s", Budget{Duration: 30 * time.Second}.String())
}
