package engine

import (
	"encoding/hex"
	"hash"
	"io"

	"github.com/zeebo/blake3"
)

// DigestWriter forwards writes and keeps a BLAKE3 digest of the bytes that
// were accepted. Wrapping io.Discard turns it into a plain hasher.
type DigestWriter struct {
	w io.Writer
	h hash.Hash
	n int64
}

// NewDigestWriter returns a DigestWriter forwarding to w.
func NewDigestWriter(w io.Writer) *DigestWriter {
	return &DigestWriter{w: w, h: blake3.New()}
}

func (d *DigestWriter) Write(p []byte) (int, error) {
	n, err := d.w.Write(p)
	d.h.Write(p[:n]) //nolint:errcheck // hash.Hash.Write never fails
	d.n += int64(n)
	return n, err
}

// Written returns the number of bytes accepted so far.
func (d *DigestWriter) Written() int64 { return d.n }

// Sum returns the hex-encoded BLAKE3 digest of everything written so far.
func (d *DigestWriter) Sum() string {
	return hex.EncodeToString(d.h.Sum(nil))
}
