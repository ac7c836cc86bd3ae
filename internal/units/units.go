// Package units parses the human-readable sizes and budgets accepted on the
// command line and in the config file.
package units

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// SectorSize is the unit of the "s" size suffix.
const SectorSize = 512

// ParseBytes parses a human-readable size string into bytes.
// Supports: 100, 100B, 8s (512-byte sectors), 100K, 100M, 100G, 100T
// (case-insensitive, powers of 1024).
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty size string")
	}

	multiplier := int64(1)
	numStr := s[:len(s)-1]

	switch strings.ToUpper(s[len(s)-1:]) {
	case "B":
	case "S":
		multiplier = SectorSize
	case "K":
		multiplier = 1 << 10
	case "M":
		multiplier = 1 << 20
	case "G":
		multiplier = 1 << 30
	case "T":
		multiplier = 1 << 40
	default:
		numStr = s
	}

	if numStr == "" {
		return 0, fmt.Errorf("invalid size: %q", s)
	}

	if n, err := strconv.ParseInt(numStr, 10, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative size: %q", s)
		}
		if n > math.MaxInt64/multiplier {
			return 0, fmt.Errorf("size out of range: %q", s)
		}
		return n * multiplier, nil
	}

	f, err := strconv.ParseFloat(numStr, 64)
	if err != nil || f < 0 || math.IsNaN(f) {
		return 0, fmt.Errorf("invalid size: %q", s)
	}
	// float64(math.MaxInt64) rounds up to 2^63, which does not fit.
	v := f * float64(multiplier)
	if v >= float64(math.MaxInt64) {
		return 0, fmt.Errorf("size out of range: %q", s)
	}
	return int64(v), nil
}

// Budget bounds a generation run. The zero value means "run forever".
type Budget struct {
	Iterations int64
	Duration   time.Duration
}

// Infinite reports whether the budget never expires.
func (b Budget) Infinite() bool {
	return b.Iterations == 0 && b.Duration == 0
}

func (b Budget) String() string {
	switch {
	case b.Duration > 0:
		return b.Duration.String()
	case b.Iterations > 0:
		return strconv.FormatInt(b.Iterations, 10)
	default:
		return "infinite"
	}
}

// ParseBudget parses an iteration budget: a plain count ("1000"), a count of
// seconds ("30s"), or any time.ParseDuration string ("2m30s"). "0" is
// infinite.
func ParseBudget(s string) (Budget, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Budget{}, errors.New("empty budget")
	}

	if n, err := strconv.ParseInt(s, 0, 64); err == nil {
		if n < 0 {
			return Budget{}, fmt.Errorf("invalid budget %q: must be >= 0", s)
		}
		return Budget{Iterations: n}, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return Budget{}, fmt.Errorf("invalid budget %q: must be number or number[s]", s)
	}
	if d < 0 {
		return Budget{}, fmt.Errorf("invalid budget %q: must be >= 0", s)
	}
	return Budget{Duration: d}, nil
}
