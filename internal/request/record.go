// Package request defines the I/O request records handed to the executor and
// the wire formats they travel in.
package request

import (
	"errors"
	"fmt"

	"github.com/iogen/iogen/internal/catalog"
	"github.com/iogen/iogen/internal/pattern"
)

// Kind discriminates the record shapes on the wire.
type Kind uint8

const (
	KindTransfer    Kind = iota + 1 // read/write of one contiguous region
	KindPositional                  // pread/pwrite/readv/writev
	KindMapped                      // mmap based transfer
	KindStrided                     // listio transfer split into strides or entries
	KindReservation                 // space reservation and sync operations
)

var kindNames = [...]string{
	KindTransfer:    "transfer",
	KindPositional:  "positional",
	KindMapped:      "mapped",
	KindStrided:     "strided",
	KindReservation: "reservation",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// KindOf returns the record shape used for a syscall.
func KindOf(sc catalog.Syscall) Kind {
	switch sc {
	case catalog.Read, catalog.Write, catalog.ReadA, catalog.WriteA:
		return KindTransfer
	case catalog.PRead, catalog.PWrite, catalog.ARead, catalog.AWrite,
		catalog.ReadV, catalog.WriteV:
		return KindPositional
	case catalog.MMapRead, catalog.MMapWrite:
		return KindMapped
	case catalog.LSRead, catalog.LSWrite, catalog.LSReadA, catalog.LSWriteA,
		catalog.LERead, catalog.LEWrite:
		return KindStrided
	case catalog.Resvsp, catalog.Unresvsp, catalog.Fsync2, catalog.Fdatasync:
		return KindReservation
	default:
		return 0
	}
}

// Common holds the fields every record shape carries.
type Common struct {
	Syscall     catalog.Syscall
	Path        string
	OpenFlags   int32
	Offset      int64
	NBytes      int64 // bytes per stride for strided records
	Pattern     byte  // 0 for read-class operations
	WordAligned bool  // raw access: buffers must be word aligned
	Aio         catalog.AioStrategy
}

// Base returns the shared fields.
func (c Common) Base() Common { return c }

func (Common) isRecord() {}

// Record is one generated request. The concrete type is one of Transfer,
// Positional, Mapped, Strided or Reservation.
type Record interface {
	Kind() Kind
	Base() Common
	isRecord()
}

// Transfer is a read or write of one contiguous region.
type Transfer struct{ Common }

// Positional is a positional or vectored transfer.
type Positional struct{ Common }

// Mapped is a transfer through a memory mapping.
type Mapped struct{ Common }

// Strided is a transfer made of Count pieces of NBytes each. When Entries is
// set the pieces are separate list entries; otherwise they are strides of a
// single entry.
type Strided struct {
	Common
	Count   int32
	Entries bool
}

// Reservation is a space reservation or sync operation.
type Reservation struct{ Common }

func (Transfer) Kind() Kind    { return KindTransfer }
func (Positional) Kind() Kind  { return KindPositional }
func (Mapped) Kind() Kind      { return KindMapped }
func (Strided) Kind() Kind     { return KindStrided }
func (Reservation) Kind() Kind { return KindReservation }

// NStrides returns the stride count of the record on the wire.
func (s Strided) NStrides() int32 {
	if s.Entries {
		return 1
	}
	return s.Count
}

// NEnt returns the entry count of the record on the wire.
func (s Strided) NEnt() int32 {
	if s.Entries {
		return s.Count
	}
	return 1
}

// Total returns the number of bytes the record touches.
func Total(r Record) int64 {
	if s, ok := r.(Strided); ok {
		return s.NBytes * int64(s.Count)
	}
	return r.Base().NBytes
}

// Counts returns the (nstrides, nent) pair of a record. One of the two is
// always 1.
func Counts(r Record) (nstrides, nent int32) {
	if s, ok := r.(Strided); ok {
		return s.NStrides(), s.NEnt()
	}
	return 1, 1
}

// ErrMalformed is wrapped by errors about records that cannot be built or
// decoded.
var ErrMalformed = errors.New("malformed record")

// build reconstructs a record from its wire fields.
func build(kind Kind, c Common, nstrides, nent int32) (Record, error) {
	if nstrides < 1 || nent < 1 || (nstrides > 1 && nent > 1) {
		return nil, fmt.Errorf("%w: nstrides=%d nent=%d", ErrMalformed, nstrides, nent)
	}
	switch kind {
	case KindTransfer:
		return Transfer{c}, nil
	case KindPositional:
		return Positional{c}, nil
	case KindMapped:
		return Mapped{c}, nil
	case KindStrided:
		entries := nent > 1
		if sc, ok := catalog.Syscalls.ByValue(c.Syscall); ok {
			entries = sc.Has(catalog.SyNent)
		}
		if entries {
			if nstrides > 1 {
				return nil, fmt.Errorf("%w: %s with nstrides=%d", ErrMalformed, c.Syscall, nstrides)
			}
			return Strided{Common: c, Count: nent, Entries: true}, nil
		}
		if nent > 1 {
			return nil, fmt.Errorf("%w: %s with nent=%d", ErrMalformed, c.Syscall, nent)
		}
		return Strided{Common: c, Count: nstrides}, nil
	case KindReservation:
		return Reservation{c}, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %d", ErrMalformed, kind)
	}
}

// Describe renders a record on one line for logs and the decode command.
func Describe(r Record) string {
	c := r.Base()
	nstrides, nent := Counts(r)
	pat := "-"
	if c.Pattern != 0 {
		pat = string(c.Pattern)
	}
	return fmt.Sprintf("%-11s %-9s %s off=%d nbytes=%d oflags=%#o pattern=%s aligned=%t aio=%s nstrides=%d nent=%d",
		r.Kind(), c.Syscall, c.Path, c.Offset, c.NBytes, c.OpenFlags, pat,
		c.WordAligned, c.Aio, nstrides, nent)
}

// ExpectedData returns the first n bytes a write record stores: its pattern
// letter repeated. It returns nil for records without a pattern.
func ExpectedData(r Record, n int) ([]byte, error) {
	c := r.Base()
	if c.Pattern == 0 || n <= 0 {
		return nil, nil
	}
	if total := Total(r); int64(n) > total {
		n = int(total)
	}
	buf := make([]byte, n)
	if err := pattern.Fill(buf, []byte{c.Pattern}, 0); err != nil {
		return nil, err
	}
	return buf, nil
}
