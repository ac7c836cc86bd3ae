package target

import (
	"errors"
	"fmt"
)

// DefaultUnit is the fallback alignment unit when nothing better is known.
const DefaultUnit = 512

// ErrUnsupportedType is returned for targets that are not regular files or
// block/character devices.
var ErrUnsupportedType = errors.New("not a regular file or device")

// Inspect gathers length and alignment information for path. rawUnit, when
// non-zero, overrides the raw alignment unit of regular files.
func Inspect(path string, rawUnit int64) (*File, error) {
	f, err := inspect(path, rawUnit)
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", path, err)
	}
	return f, nil
}
