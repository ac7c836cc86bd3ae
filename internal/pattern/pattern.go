// Package pattern stamps buffers with a repeating reference pattern and
// verifies buffers against it.
//
// For a pattern P and shift s, byte i of a stamped buffer is
// P[(s+i) mod len(P)]. Fill and Check agree for every combination of buffer
// length, pattern length and shift.
package pattern

import "errors"

// ErrEmptyPattern is returned when the reference pattern has no bytes.
var ErrEmptyPattern = errors.New("pattern: empty pattern")

// normalize reduces shift into [0, len(pat)).
func normalize(pat []byte, shift int) (int, error) {
	if len(pat) == 0 {
		return 0, ErrEmptyPattern
	}
	shift %= len(pat)
	if shift < 0 {
		shift += len(pat)
	}
	return shift, nil
}

// Fill writes len(buf) bytes of pat into buf starting at pattern position
// shift. The first period is copied from pat; the remainder is tiled from the
// already-written prefix, doubling the copy size each pass.
func Fill(buf, pat []byte, shift int) error {
	shift, err := normalize(pat, shift)
	if err != nil {
		return err
	}

	n := copy(buf, pat[shift:])
	n += copy(buf[n:], pat[:shift])

	for n < len(buf) {
		n += copy(buf[n:], buf[:n])
	}
	return nil
}

// Check reports whether buf holds pat starting at pattern position shift.
func Check(buf, pat []byte, shift int) (bool, error) {
	idx, err := Mismatch(buf, pat, shift)
	if err != nil {
		return false, err
	}
	return idx < 0, nil
}

// Mismatch returns the index of the first byte of buf that differs from the
// pattern, or -1 if the whole buffer matches.
func Mismatch(buf, pat []byte, shift int) (int, error) {
	shift, err := normalize(pat, shift)
	if err != nil {
		return -1, err
	}

	pos := shift
	for i, b := range buf {
		if b != pat[pos] {
			return i, nil
		}
		pos++
		if pos == len(pat) {
			pos = 0
		}
	}
	return -1, nil
}
