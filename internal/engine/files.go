package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/iogen/iogen/internal/catalog"
	"github.com/iogen/iogen/internal/request"
	"github.com/iogen/iogen/internal/target"
)

// ErrNoFiles is returned when no operand yields a usable target file.
var ErrNoFiles = errors.New("no usable target files")

// FileOptions controls LoadFiles.
type FileOptions struct {
	RawUnit     int64 // raw alignment override for regular files, 0 to detect
	MinTransfer int64
	MaxTransfer int64
}

// LoadFiles turns file operands into target files.
//
// An operand without a length must exist. An operand with a declared length
// uses that length for regular files; when the file does not exist yet it is
// described from the declared length alone, since the executor creates it.
// Operands whose path does not fit the record format, or whose length is
// below either transfer bound, are skipped with a warning.
func LoadFiles(specs []target.Spec, opts FileOptions, logger *slog.Logger) ([]*target.File, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var files []*target.File
	for _, spec := range specs {
		if err := request.CheckPath(spec.Path); err != nil {
			logger.Warn("ignoring file", "path", spec.Path, "error", err)
			continue
		}

		f, err := target.Inspect(spec.Path, opts.RawUnit)
		switch {
		case err == nil:
		case spec.Length > 0 && errors.Is(err, fs.ErrNotExist):
			f = declaredFile(spec, opts.RawUnit)
			logger.Warn("file does not exist, using declared length",
				"path", spec.Path, "length", spec.Length)
		case spec.Length > 0:
			logger.Warn("ignoring file", "path", spec.Path, "error", err)
			continue
		default:
			return nil, fmt.Errorf("file %s cannot be used: %w", spec.Path, err)
		}

		if spec.Length > 0 && f.Type == catalog.Regular && f.Length != spec.Length {
			logger.Warn("file length differs from declared length",
				"path", spec.Path, "actual", f.Length, "declared", spec.Length)
			f.Length = spec.Length
		}

		if f.Length < opts.MinTransfer {
			logger.Warn("ignoring file shorter than min transfer size",
				"path", f.Path, "length", f.Length, "min_transfer", opts.MinTransfer)
			continue
		}
		if f.Length < opts.MaxTransfer {
			logger.Warn("ignoring file shorter than max transfer size",
				"path", f.Path, "length", f.Length, "max_transfer", opts.MaxTransfer)
			continue
		}
		if f.Length == 0 {
			logger.Warn("ignoring empty file", "path", f.Path)
			continue
		}

		logger.Debug("target file", "file", f.String())
		files = append(files, f)
	}

	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	return files, nil
}

func declaredFile(spec target.Spec, rawUnit int64) *target.File {
	if rawUnit <= 0 {
		rawUnit = target.DefaultUnit
	}
	return &target.File{
		Path:    spec.Path,
		Length:  spec.Length,
		IOUnit:  1,
		RawUnit: rawUnit,
		Type:    catalog.Regular,
	}
}
