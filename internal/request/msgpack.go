package request

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/tinylib/msgp/msgp"

	"github.com/iogen/iogen/internal/catalog"
)

// MaxFrameSize bounds a msgpack frame, length prefix excluded.
const MaxFrameSize = 64 * 1024

// ErrFrameTooLarge is returned when a frame exceeds MaxFrameSize.
var ErrFrameTooLarge = errors.New("frame exceeds maximum size")

// AppendMsgpack appends r as a msgpack map. Keys are strings so consumers can
// skip fields they do not know.
func AppendMsgpack(buf []byte, r Record) []byte {
	c := r.Base()
	nstrides, nent := Counts(r)

	buf = msgp.AppendMapHeader(buf, 11)
	buf = msgp.AppendString(buf, "kind")
	buf = msgp.AppendUint8(buf, uint8(r.Kind()))
	buf = msgp.AppendString(buf, "syscall")
	buf = msgp.AppendString(buf, c.Syscall.String())
	buf = msgp.AppendString(buf, "path")
	buf = msgp.AppendString(buf, c.Path)
	buf = msgp.AppendString(buf, "oflags")
	buf = msgp.AppendInt32(buf, c.OpenFlags)
	buf = msgp.AppendString(buf, "offset")
	buf = msgp.AppendInt64(buf, c.Offset)
	buf = msgp.AppendString(buf, "nbytes")
	buf = msgp.AppendInt64(buf, c.NBytes)
	buf = msgp.AppendString(buf, "pattern")
	buf = msgp.AppendUint8(buf, c.Pattern)
	buf = msgp.AppendString(buf, "word_aligned")
	buf = msgp.AppendBool(buf, c.WordAligned)
	buf = msgp.AppendString(buf, "aio")
	buf = msgp.AppendString(buf, c.Aio.String())
	buf = msgp.AppendString(buf, "nstrides")
	buf = msgp.AppendInt32(buf, nstrides)
	buf = msgp.AppendString(buf, "nent")
	buf = msgp.AppendInt32(buf, nent)
	return buf
}

// ParseMsgpack decodes a record produced by AppendMsgpack. Unknown keys are
// skipped.
//
//nolint:gocyclo // one case per field
func ParseMsgpack(b []byte) (Record, error) {
	n, b, err := msgp.ReadMapHeaderBytes(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	var (
		kind           uint8
		c              Common
		nstrides, nent int32 = 1, 1
		name           string
	)
	for range n {
		var key string
		key, b, err = msgp.ReadStringBytes(b)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		switch key {
		case "kind":
			kind, b, err = msgp.ReadUint8Bytes(b)
		case "syscall":
			name, b, err = msgp.ReadStringBytes(b)
			if err == nil {
				e, ok := catalog.Syscalls.Lookup(name)
				if !ok {
					return nil, fmt.Errorf("%w: unknown syscall %q", ErrMalformed, name)
				}
				c.Syscall = e.Value
			}
		case "path":
			c.Path, b, err = msgp.ReadStringBytes(b)
		case "oflags":
			c.OpenFlags, b, err = msgp.ReadInt32Bytes(b)
		case "offset":
			c.Offset, b, err = msgp.ReadInt64Bytes(b)
		case "nbytes":
			c.NBytes, b, err = msgp.ReadInt64Bytes(b)
		case "pattern":
			c.Pattern, b, err = msgp.ReadUint8Bytes(b)
		case "word_aligned":
			c.WordAligned, b, err = msgp.ReadBoolBytes(b)
		case "aio":
			name, b, err = msgp.ReadStringBytes(b)
			if err == nil {
				e, ok := catalog.AioStrategies.Lookup(name)
				if !ok {
					return nil, fmt.Errorf("%w: unknown aio strategy %q", ErrMalformed, name)
				}
				c.Aio = e.Value
			}
		case "nstrides":
			nstrides, b, err = msgp.ReadInt32Bytes(b)
		case "nent":
			nent, b, err = msgp.ReadInt32Bytes(b)
		default:
			b, err = msgp.Skip(b)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: field %s: %w", ErrMalformed, key, err)
		}
	}
	return build(Kind(kind), c, nstrides, nent)
}

type msgpackEncoder struct {
	w   io.Writer
	buf []byte
}

// Encode writes r as a [4-byte big-endian length][msgpack map] frame in a
// single Write call.
//
//nolint:gosec // G115: frame length bounded by MaxFrameSize
func (e *msgpackEncoder) Encode(r Record) error {
	e.buf = append(e.buf[:0], 0, 0, 0, 0)
	e.buf = AppendMsgpack(e.buf, r)
	size := len(e.buf) - 4
	if size > MaxFrameSize {
		return ErrFrameTooLarge
	}
	binary.BigEndian.PutUint32(e.buf[:4], uint32(size))
	if _, err := e.w.Write(e.buf); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

type msgpackDecoder struct {
	r   io.Reader
	buf []byte
}

func (d *msgpackDecoder) Decode() (Record, error) {
	var header [4]byte
	if _, err := io.ReadFull(d.r, header[:]); err != nil {
		return nil, err
	}
	size := binary.BigEndian.Uint32(header[:])
	if size > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}
	if cap(d.buf) < int(size) {
		d.buf = make([]byte, size)
	}
	d.buf = d.buf[:size]
	if _, err := io.ReadFull(d.r, d.buf); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("read frame payload: %w", err)
	}
	return ParseMsgpack(d.buf)
}
