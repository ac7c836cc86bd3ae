package request

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// Format selects the wire encoding of a record stream.
type Format string

const (
	// FormatBinary is the fixed-size record layout read back-to-back by the
	// executor.
	FormatBinary Format = "binary"
	// FormatMsgpack frames each record as a length-prefixed msgpack map.
	FormatMsgpack Format = "msgpack"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatBinary, FormatMsgpack:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (use binary or msgpack)", s)
	}
}

// Encoder writes records to a stream.
type Encoder interface {
	Encode(r Record) error
}

// Decoder reads records from a stream. Decode returns io.EOF once the stream
// ends on a record boundary.
type Decoder interface {
	Decode() (Record, error)
}

// NewEncoder returns an encoder writing format to w.
//
//nolint:ireturn // factory returns interface by design
func NewEncoder(w io.Writer, format Format) (Encoder, error) {
	switch format {
	case FormatBinary:
		return &binaryEncoder{w: w, buf: make([]byte, 0, RecordSize)}, nil
	case FormatMsgpack:
		return &msgpackEncoder{w: w}, nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// NewDecoder returns a decoder reading format from r.
//
//nolint:ireturn // factory returns interface by design
func NewDecoder(r io.Reader, format Format) (Decoder, error) {
	switch format {
	case FormatBinary:
		return &binaryDecoder{r: r}, nil
	case FormatMsgpack:
		return &msgpackDecoder{r: r}, nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// NewCompressedWriter wraps w with zstd streaming compression. Closing the
// returned writer flushes the final frame but does not close w.
// The encoder uses level 1 (SpeedFastest) with single-threaded encoding.
func NewCompressedWriter(w io.Writer) (io.WriteCloser, error) {
	enc, err := zstd.NewWriter(w,
		zstd.WithEncoderLevel(zstd.SpeedFastest),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	return enc, nil
}

// NewDecompressedReader wraps r with zstd decompression.
func NewDecompressedReader(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return dec.IOReadCloser(), nil
}
