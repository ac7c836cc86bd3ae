// Package randrange draws uniformly distributed values from a closed interval
// that are multiples of a required alignment.
//
// All draws come from a single seeded Source so that a run is reproducible
// from its seed.
package randrange

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"math/rand/v2"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

var (
	// ErrInvertedRange means min > max.
	ErrInvertedRange = errors.New("min exceeds max")
	// ErrBadMultiple means the multiple is < 1.
	ErrBadMultiple = errors.New("multiple must be >= 1")
	// ErrEmptyRange means no multiple of mult lies in [min, max].
	ErrEmptyRange = errors.New("no aligned value in range")
)

// RangeError describes a draw that could not be satisfied.
type RangeError struct {
	Min, Max, Mult int64
	Err            error
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("random range(%d, %d, %d): %v", e.Min, e.Max, e.Mult, e.Err)
}

func (e *RangeError) Unwrap() error { return e.Err }

// Source is the seeded pseudo-random source shared by every draw in a run.
// It is not safe for concurrent use.
type Source struct {
	seed uint64
	rng  *rand.Rand
}

// New returns a Source seeded with seed.
func New(seed uint64) *Source {
	s := &Source{}
	s.Reseed(seed)
	return s
}

// Reseed restarts the sequence from seed.
func (s *Source) Reseed(seed uint64) {
	s.seed = seed
	s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Seed returns the seed the current sequence started from.
func (s *Source) Seed() uint64 { return s.seed }

// Intn returns a uniform index in [0, n). It panics if n <= 0.
func (s *Source) Intn(n int) int { return s.rng.IntN(n) }

// Uint64N returns a uniform value in [0, n). It panics if n == 0.
func (s *Source) Uint64N(n uint64) uint64 { return s.rng.Uint64N(n) }

// Uint64 returns a uniform 64-bit value.
func (s *Source) Uint64() uint64 { return s.rng.Uint64() }

// Bit returns one of the set bits of mask, chosen uniformly. It returns 0
// when mask is 0.
func (s *Source) Bit(mask uint64) uint64 {
	n := bits.OnesCount64(mask)
	if n == 0 {
		return 0
	}
	pick := s.rng.IntN(n)
	for {
		low := mask & -mask
		if pick == 0 {
			return low
		}
		mask &^= low
		pick--
	}
}

// Integer is the set of integer domains Draw operates on.
type Integer interface {
	~int | ~int32 | ~int64
}

// Draw returns a value v with min <= v <= max and v%mult == 0, chosen
// uniformly among all such values.
func Draw[T Integer](s *Source, minV, maxV, mult T) (T, error) {
	v, err := draw64(s, int64(minV), int64(maxV), int64(mult))
	return T(v), err
}

func draw64(s *Source, minV, maxV, mult int64) (int64, error) {
	fail := func(err error) (int64, error) {
		return 0, &RangeError{Min: minV, Max: maxV, Mult: mult, Err: err}
	}
	if mult < 1 {
		return fail(ErrBadMultiple)
	}
	if minV > maxV {
		return fail(ErrInvertedRange)
	}

	first, ok := ceilMultiple(minV, mult)
	if !ok {
		return fail(ErrEmptyRange)
	}
	last, ok := floorMultiple(maxV, mult)
	if !ok || first > last {
		return fail(ErrEmptyRange)
	}

	// Differences are computed in uint64 so full-width int64 ranges do not
	// overflow.
	span := uint64(last-first) / uint64(mult)
	var idx uint64
	if span == math.MaxUint64 {
		idx = s.rng.Uint64()
	} else {
		idx = s.rng.Uint64N(span + 1)
	}
	return int64(uint64(first) + idx*uint64(mult)), nil
}

// floorMultiple returns the largest multiple of m that is <= v. ok is false
// when that multiple is not representable.
func floorMultiple(v, m int64) (int64, bool) {
	q := v / m
	if v%m != 0 && v < 0 {
		q--
	}
	if q < math.MinInt64/m {
		return 0, false
	}
	return q * m, true
}

// ceilMultiple returns the smallest multiple of m that is >= v. ok is false
// when that multiple is not representable.
func ceilMultiple(v, m int64) (int64, bool) {
	q := v / m
	if v%m != 0 && v > 0 {
		q++
	}
	if q > math.MaxInt64/m {
		return 0, false
	}
	return q * m, true
}

// SeedFromString turns a seed argument into a seed value. Decimal and 0x
// prefixed numbers are used as-is; any other text is hashed so that named
// seeds ("nightly-42") are reproducible too.
func SeedFromString(s string) uint64 {
	if n, err := strconv.ParseUint(s, 0, 64); err == nil {
		return n
	}
	return xxhash.Sum64String(s)
}
