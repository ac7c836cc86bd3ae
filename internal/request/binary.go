package request

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/iogen/iogen/internal/catalog"
)

const (
	// Magic starts every binary record.
	Magic uint32 = 0x494f4731 // "IOG1"

	// MaxPathLen is the size of the NUL padded path field, terminator
	// included.
	MaxPathLen = 1024

	// headerSize covers every field before the path.
	headerSize = 40

	// RecordSize is the fixed size of a binary record.
	RecordSize = headerSize + MaxPathLen
)

const flagWordAligned = 1 << 0

// ErrPathTooLong is returned for paths that do not fit the path field.
var ErrPathTooLong = errors.New("path too long for record")

// ErrBadMagic is returned when a binary record does not start with Magic.
var ErrBadMagic = errors.New("bad record magic")

// CheckPath reports whether path fits into a binary record.
func CheckPath(path string) error {
	if len(path) >= MaxPathLen {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrPathTooLong, len(path), MaxPathLen-1)
	}
	return nil
}

// AppendBinary appends the fixed-size encoding of r to buf.
//
// Layout (big-endian):
//
//	[4 magic][1 kind][1 syscall][1 flags][1 pattern][1 aio][3 pad]
//	[4 oflags][8 offset][8 nbytes][4 nstrides][4 nent][1024 path]
//
//nolint:gosec // G115: counts and flags are validated before encoding
func AppendBinary(buf []byte, r Record) ([]byte, error) {
	c := r.Base()
	if err := CheckPath(c.Path); err != nil {
		return buf, err
	}
	nstrides, nent := Counts(r)

	var b [RecordSize]byte
	binary.BigEndian.PutUint32(b[0:4], Magic)
	b[4] = byte(r.Kind())
	b[5] = byte(c.Syscall)
	if c.WordAligned {
		b[6] |= flagWordAligned
	}
	b[7] = c.Pattern
	b[8] = byte(c.Aio)
	binary.BigEndian.PutUint32(b[12:16], uint32(c.OpenFlags))
	binary.BigEndian.PutUint64(b[16:24], uint64(c.Offset))
	binary.BigEndian.PutUint64(b[24:32], uint64(c.NBytes))
	binary.BigEndian.PutUint32(b[32:36], uint32(nstrides))
	binary.BigEndian.PutUint32(b[36:40], uint32(nent))
	copy(b[headerSize:], c.Path)

	return append(buf, b[:]...), nil
}

// ParseBinary decodes one fixed-size record.
//
//nolint:gosec // G115: wire values are reinterpreted, not range checked
func ParseBinary(b []byte) (Record, error) {
	if len(b) != RecordSize {
		return nil, fmt.Errorf("%w: %d bytes, want %d", ErrMalformed, len(b), RecordSize)
	}
	if m := binary.BigEndian.Uint32(b[0:4]); m != Magic {
		return nil, fmt.Errorf("%w: %#x", ErrBadMagic, m)
	}

	path := b[headerSize:]
	if i := bytes.IndexByte(path, 0); i >= 0 {
		path = path[:i]
	}

	c := Common{
		Syscall:     catalog.Syscall(b[5]),
		Path:        string(path),
		OpenFlags:   int32(binary.BigEndian.Uint32(b[12:16])),
		Offset:      int64(binary.BigEndian.Uint64(b[16:24])),
		NBytes:      int64(binary.BigEndian.Uint64(b[24:32])),
		Pattern:     b[7],
		WordAligned: b[6]&flagWordAligned != 0,
		Aio:         catalog.AioStrategy(b[8]),
	}
	return build(
		Kind(b[4]),
		c,
		int32(binary.BigEndian.Uint32(b[32:36])),
		int32(binary.BigEndian.Uint32(b[36:40])),
	)
}

type binaryEncoder struct {
	w   io.Writer
	buf []byte
}

// Encode writes r as one record in a single Write call.
func (e *binaryEncoder) Encode(r Record) error {
	var err error
	e.buf, err = AppendBinary(e.buf[:0], r)
	if err != nil {
		return err
	}
	if _, err := e.w.Write(e.buf); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

type binaryDecoder struct {
	r   io.Reader
	buf [RecordSize]byte
}

// Decode reads the next record. It returns io.EOF at a clean end of stream
// and io.ErrUnexpectedEOF for a truncated record.
func (d *binaryDecoder) Decode() (Record, error) {
	if _, err := io.ReadFull(d.r, d.buf[:]); err != nil {
		return nil, err
	}
	return ParseBinary(d.buf[:])
}
