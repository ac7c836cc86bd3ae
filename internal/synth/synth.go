// Package synth turns the configured candidate lists and target files into a
// stream of randomized, aligned I/O request records.
package synth

import (
	"errors"
	"fmt"

	"github.com/iogen/iogen/internal/catalog"
	"github.com/iogen/iogen/internal/randrange"
	"github.com/iogen/iogen/internal/request"
	"github.com/iogen/iogen/internal/target"
)

// Patterns is the alphabet write patterns are drawn from.
const Patterns = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// ErrConfig is wrapped by every configuration inconsistency New detects.
var ErrConfig = errors.New("invalid generator configuration")

// Config is the already-parsed generator configuration.
type Config struct {
	Syscalls      []catalog.Entry[catalog.Syscall]
	Flags         []catalog.Entry[int]
	AioStrategies []catalog.Entry[catalog.AioStrategy]
	Mode          catalog.OffsetMode
	Overlap       bool
	MinTransfer   int64
	MaxTransfer   int64
	MinStrides    int64 // 0 means 1
	MaxStrides    int64
	Files         []*target.File
}

// SynthError reports why one request could not be generated. The iteration
// is skipped; the generator itself stays usable.
type SynthError struct {
	Stage string // "offset" or "strides"
	Path  string
	Err   error
}

func (e *SynthError) Error() string {
	return fmt.Sprintf("synthesize %s for %s: %v", e.Stage, e.Path, e.Err)
}

func (e *SynthError) Unwrap() error { return e.Err }

// Synthesizer generates request records. It owns the target files and their
// cursors and is not safe for concurrent use.
type Synthesizer struct {
	cfg Config
	src *randrange.Source
}

// New validates cfg, resets every file cursor for cfg.Mode and returns a
// Synthesizer drawing from src.
func New(cfg Config, src *randrange.Source) (*Synthesizer, error) {
	if cfg.MinStrides == 0 {
		cfg.MinStrides = 1
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	for _, f := range cfg.Files {
		f.Reset(cfg.Mode)
	}
	return &Synthesizer{cfg: cfg, src: src}, nil
}

//nolint:gocyclo // flat list of independent checks
func validate(cfg Config) error {
	bad := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
	}

	if len(cfg.Syscalls) == 0 {
		return bad("no syscalls")
	}
	if len(cfg.Flags) == 0 {
		return bad("no open flags")
	}
	if len(cfg.Files) == 0 {
		return bad("no target files")
	}
	if _, ok := catalog.OffsetModes.ByValue(cfg.Mode); !ok {
		return bad("unknown offset mode %d", cfg.Mode)
	}
	if cfg.MinTransfer < 0 || cfg.MaxTransfer < 1 || cfg.MinTransfer > cfg.MaxTransfer {
		return bad("transfer size range %d-%d", cfg.MinTransfer, cfg.MaxTransfer)
	}

	var async, listio bool
	for _, sc := range cfg.Syscalls {
		if request.KindOf(sc.Value) == 0 {
			return bad("syscall %q has no record shape", sc.Name)
		}
		async = async || sc.Has(catalog.SyAsync)
		listio = listio || sc.Has(catalog.SyListio)
	}
	if async && len(cfg.AioStrategies) == 0 {
		return bad("async syscalls need at least one aio completion strategy")
	}
	if listio && (cfg.MaxStrides < 1 || cfg.MinStrides > cfg.MaxStrides) {
		return bad("stride range %d-%d", cfg.MinStrides, cfg.MaxStrides)
	}

	for _, f := range cfg.Files {
		if f.Length <= 0 || f.IOUnit < 1 || f.RawUnit < 1 {
			return bad("file %s: length %d, iou %d, raw iou %d", f.Path, f.Length, f.IOUnit, f.RawUnit)
		}
		if err := request.CheckPath(f.Path); err != nil {
			return bad("file %s: %v", f.Path, err)
		}
	}
	return nil
}

// Config returns the configuration the synthesizer runs with.
func (s *Synthesizer) Config() Config { return s.cfg }

// Next generates one request. On failure the returned error is a
// *SynthError and no cursor is moved.
func (s *Synthesizer) Next() (request.Record, error) {
	cfg := &s.cfg

	sc := cfg.Syscalls[s.src.Intn(len(cfg.Syscalls))]
	var pattern byte
	if sc.Has(catalog.SyWrite) {
		pattern = Patterns[s.src.Intn(len(Patterns))]
	}

	f := cfg.Files[s.src.Intn(len(cfg.Files))]
	flag := cfg.Flags[s.src.Intn(len(cfg.Flags))]
	mult := f.Unit(flag.Flags)

	offset, length, err := s.place(f, mult)
	if err != nil {
		return nil, &SynthError{Stage: "offset", Path: f.Path, Err: err}
	}

	var aio catalog.AioStrategy
	if sc.Has(catalog.SyAsync) {
		aio = cfg.AioStrategies[s.src.Intn(len(cfg.AioStrategies))].Value
	}

	c := request.Common{
		Syscall:     sc.Value,
		Path:        f.Path,
		OpenFlags:   int32(accessMode(sc) | flag.Value), //nolint:gosec // G115: open flags fit in 32 bits
		Offset:      offset,
		NBytes:      length,
		Pattern:     pattern,
		WordAligned: flag.Has(catalog.FlagRaw),
		Aio:         aio,
	}

	var rec request.Record
	switch request.KindOf(sc.Value) {
	case request.KindTransfer:
		rec = request.Transfer{Common: c}
	case request.KindPositional:
		rec = request.Positional{Common: c}
	case request.KindMapped:
		rec = request.Mapped{Common: c}
	case request.KindReservation:
		rec = request.Reservation{Common: c}
	case request.KindStrided:
		strideLen, count, err := Decompose(s.src, length, mult, cfg.MinStrides, cfg.MaxStrides)
		if err != nil {
			return nil, &SynthError{Stage: "strides", Path: f.Path, Err: err}
		}
		c.NBytes = strideLen
		//nolint:gosec // G115: count <= MaxStrides, validated at startup
		rec = request.Strided{Common: c, Count: int32(count), Entries: sc.Has(catalog.SyNent)}
	default:
		return nil, &SynthError{Stage: "assemble", Path: f.Path, Err: fmt.Errorf("syscall %s has no record shape", sc.Name)}
	}

	f.Advance(offset, length)
	return rec, nil
}

// accessMode returns the open(2) access mode for a syscall. Writing through a
// mapping needs the file open for reading as well.
func accessMode(sc catalog.Entry[catalog.Syscall]) int {
	switch {
	case sc.Value == catalog.MMapWrite:
		return catalog.ORdWr
	case sc.Has(catalog.SyWrite):
		return catalog.OWrOnly
	default:
		return catalog.ORdOnly
	}
}
