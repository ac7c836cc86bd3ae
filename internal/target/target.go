// Package target describes the files requests are generated against and
// tracks where the last request for each file landed.
package target

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iogen/iogen/internal/catalog"
	"github.com/iogen/iogen/internal/units"
)

// File is one target file. Length and the alignment units are fixed at
// startup; the cursor fields change once per generated request.
type File struct {
	Path    string
	Length  int64
	IOUnit  int64 // alignment for buffered access
	RawUnit int64 // alignment for direct access
	Type    catalog.FileType

	LastOffset int64
	LastLength int64
}

// Reset positions the cursor for a fresh run in the given offset mode.
func (f *File) Reset(mode catalog.OffsetMode) {
	f.LastLength = 0
	switch mode {
	case catalog.Reverse:
		f.LastOffset = f.Length
	case catalog.Random:
		f.LastOffset = f.Length / 2
	default:
		f.LastOffset = 0
	}
}

// Advance records the range touched by the most recent request.
func (f *File) Advance(offset, length int64) {
	f.LastOffset = offset
	f.LastLength = length
}

// LastEnd returns the offset one past the last request.
func (f *File) LastEnd() int64 { return f.LastOffset + f.LastLength }

// Unit returns the alignment unit for an access with the given open-flag
// entry flags. Raw access to a regular file needs the raw unit; devices are
// always accessed in their own unit.
func (f *File) Unit(flagBits uint32) int64 {
	if f.Type == catalog.Regular && flagBits&catalog.FlagRaw != 0 {
		return f.RawUnit
	}
	return f.IOUnit
}

func (f *File) String() string {
	return fmt.Sprintf("%s (%d bytes, iou %d, raw iou %d, %s)",
		f.Path, f.Length, f.IOUnit, f.RawUnit, f.Type)
}

// Spec is a parsed file operand: "path" or "length:path".
type Spec struct {
	Path   string
	Length int64 // 0 when not given
}

// ParseSpec parses a file operand. A relative path is made absolute. An
// operand whose prefix is not a size but which names an existing file is
// taken as a path containing a colon.
func ParseSpec(s string) (Spec, error) {
	var spec Spec
	path := s
	if lenStr, rest, ok := strings.Cut(s, ":"); ok {
		n, err := units.ParseBytes(lenStr)
		switch {
		case err == nil:
			spec.Length = n
			path = rest
		case exists(s):
			// the colon belongs to the file name
		default:
			return Spec{}, fmt.Errorf("illegal file length %q for file %s: %w", lenStr, rest, err)
		}
	}
	if path == "" {
		return Spec{}, fmt.Errorf("empty path in %q", s)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return Spec{}, fmt.Errorf("resolve %s: %w", path, err)
	}
	spec.Path = abs
	return spec, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
