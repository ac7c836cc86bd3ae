package randrange

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iogen/iogen/internal/units"
)

// Range is a parsed "min[:max[:mult]]" specification.
type Range struct {
	Min  int64
	Max  int64
	Mult int64
}

func (r Range) String() string {
	return fmt.Sprintf("%d:%d:%d", r.Min, r.Max, r.Mult)
}

// Draw returns a uniformly chosen aligned value within r.
func (r Range) Draw(s *Source) (int64, error) {
	return Draw(s, r.Min, r.Max, r.Mult)
}

// ParseRange parses "min", "min:max" or "min:max:mult". Bounds accept the
// size suffixes understood by units.ParseBytes. A missing max equals min and a
// missing mult is 1.
func ParseRange(s string) (Range, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) > 3 {
		return Range{}, fmt.Errorf("range %q: too many fields", s)
	}

	vals := [3]int64{0, 0, 1}
	for i, p := range parts {
		if p == "" && i > 0 {
			continue
		}
		v, err := units.ParseBytes(p)
		if err != nil {
			return Range{}, fmt.Errorf("range %q: %w", s, err)
		}
		vals[i] = v
	}
	if len(parts) == 1 || parts[1] == "" {
		vals[1] = vals[0]
	}

	r := Range{Min: vals[0], Max: vals[1], Mult: vals[2]}
	if r.Min > r.Max {
		return Range{}, fmt.Errorf("range %q: %w", s, ErrInvertedRange)
	}
	if r.Mult < 1 {
		return Range{}, fmt.Errorf("range %q: %w", s, ErrBadMultiple)
	}
	return r, nil
}

// Ranges is a comma-separated list of ranges.
type Ranges []Range

// ParseRanges parses a comma-separated list of range specifications.
func ParseRanges(s string) (Ranges, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.New("empty range list")
	}
	fields := strings.Split(s, ",")
	out := make(Ranges, 0, len(fields))
	for _, f := range fields {
		r, err := ParseRange(f)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Min returns the lower bound of range i.
func (rs Ranges) Min(i int) int64 { return rs[i].Min }

// Max returns the upper bound of range i.
func (rs Ranges) Max(i int) int64 { return rs[i].Max }

// Mult returns the multiple of range i.
func (rs Ranges) Mult(i int) int64 { return rs[i].Mult }

// Pick draws from a uniformly chosen member of rs.
func (rs Ranges) Pick(s *Source) (int64, error) {
	if len(rs) == 0 {
		return 0, errors.New("empty range list")
	}
	return rs[s.Intn(len(rs))].Draw(s)
}
