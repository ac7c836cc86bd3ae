package synth

import (
	"github.com/iogen/iogen/internal/catalog"
	"github.com/iogen/iogen/internal/randrange"
	"github.com/iogen/iogen/internal/target"
)

// place chooses an (offset, length) pair for f, both multiples of mult, with
// offset+length <= f.Length and length >= max(MinTransfer, mult).
func (s *Synthesizer) place(f *target.File, mult int64) (offset, length int64, err error) {
	cfg := &s.cfg
	// The policies see the smallest length they can actually draw.
	minLength := max(cfg.MinTransfer, mult)
	if r := minLength % mult; r != 0 {
		minLength += mult - r
	}

	switch cfg.Mode {
	case catalog.Sequential:
		return sequential(s.src, f, mult, minLength, cfg.MaxTransfer, cfg.Overlap)
	case catalog.Reverse:
		return reverse(s.src, f, mult, minLength, cfg.MaxTransfer, cfg.Overlap)
	default:
		return random(s.src, f, mult, minLength, cfg.MaxTransfer, cfg.Overlap)
	}
}

// sequential continues after the previous request, or inside it when overlap
// is allowed, wrapping to the start of the file once the minimum length no
// longer fits.
func sequential(
	src *randrange.Source,
	f *target.File,
	mult, minLength, maxTransfer int64,
	overlap bool,
) (int64, int64, error) {
	lastStart := f.LastOffset
	lastEnd := f.LastEnd() - 1

	var offset int64
	if overlap && lastEnd > lastStart {
		var err error
		if offset, err = randrange.Draw(src, lastStart, lastEnd, 1); err != nil {
			return 0, 0, err
		}
	} else {
		offset = lastEnd + 1
	}
	if offset%mult != 0 {
		offset += mult - offset%mult
	}

	if minLength > f.Length-offset {
		offset = 0
	}

	maxLength := min(f.Length-offset, maxTransfer)
	length, err := randrange.Draw(src, minLength, maxLength, mult)
	if err != nil {
		return 0, 0, err
	}
	return offset, length, nil
}

// reverse walks backwards from the previous request, restarting at the end of
// the file once the minimum length no longer fits before it. minLength must
// be a multiple of mult.
func reverse(
	src *randrange.Source,
	f *target.File,
	mult, minLength, maxTransfer int64,
	overlap bool,
) (int64, int64, error) {
	lastStart := f.LastOffset
	lastEnd := f.LastEnd() - 1

	maxLength := min(lastStart, maxTransfer)
	if minLength > maxLength {
		lastStart = f.Length
		lastEnd = f.Length
		maxLength = min(f.Length, maxTransfer)
	}

	length, err := randrange.Draw(src, minLength, maxLength, mult)
	if err != nil {
		return 0, 0, err
	}

	offset := lastStart - length
	if overlap && lastEnd > lastStart {
		shift, err := randrange.Draw(src, 1, lastEnd-lastStart, 1)
		if err != nil {
			return 0, 0, err
		}
		offset += shift
	}
	offset -= offset % mult
	return offset, length, nil
}

// random picks the length first, then an offset anywhere in the file, or
// within reach of the previous request when overlap is allowed.
func random(
	src *randrange.Source,
	f *target.File,
	mult, minLength, maxTransfer int64,
	overlap bool,
) (int64, int64, error) {
	lastStart := f.LastOffset
	lastEnd := f.LastEnd() - 1

	length, err := randrange.Draw(src, minLength, maxTransfer, mult)
	if err != nil {
		return 0, 0, err
	}

	minOffset, maxOffset := int64(0), f.Length-length
	if overlap && lastEnd > lastStart {
		minOffset = max(0, lastStart-length+1)
		maxOffset = min(f.Length-length, lastEnd)
	}
	if maxOffset < minOffset {
		return 0, 0, &randrange.RangeError{
			Min: minOffset, Max: maxOffset, Mult: mult, Err: randrange.ErrEmptyRange,
		}
	}

	offset, err := randrange.Draw(src, minOffset, maxOffset, mult)
	if err != nil {
		return 0, 0, err
	}
	return offset, length, nil
}
