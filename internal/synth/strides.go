package synth

import "github.com/iogen/iogen/internal/randrange"

// Decompose splits a transfer of length bytes into count aligned pieces of
// strideLen bytes each. strideLen*count may be less than length; the
// remainder is dropped rather than padded.
func Decompose(src *randrange.Source, length, mult, minStrides, maxStrides int64) (strideLen, count int64, err error) {
	if minStrides < 1 {
		minStrides = 1
	}
	maxCount := min(length/mult, maxStrides)

	count, err = randrange.Draw(src, minStrides, maxCount, 1)
	if err != nil {
		return 0, 0, err
	}

	strideLen = length / count
	if strideLen%mult != 0 {
		if mult > strideLen {
			strideLen = mult
		} else {
			strideLen -= strideLen % mult
		}
		count = min(length/strideLen, maxStrides)
	}
	return strideLen, count, nil
}
