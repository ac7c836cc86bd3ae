package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Manifest describes a finished run well enough to reproduce it and to check
// a stream against it.
type Manifest struct {
	RunID     string    `toml:"run_id"`
	Seed      string    `toml:"seed"` // decimal; TOML integers cannot hold every uint64
	Started   time.Time `toml:"started"`
	Command   []string  `toml:"command"`
	Format    string    `toml:"format"`
	Compress  bool      `toml:"compress"`
	Records   int64     `toml:"records"`
	Failed    int64     `toml:"failed"`
	Bytes     int64     `toml:"bytes"`
	Digest    string    `toml:"digest"` // BLAKE3 of the uncompressed stream, hex
	Truncated bool      `toml:"truncated"`
}

// WriteManifest writes m to path, creating the parent directory if needed.
// The file is replaced atomically.
func WriteManifest(path string, m Manifest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create manifest dir: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil { //nolint:gosec // G306: manifests are not secret
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// ReadManifest reads a manifest. Returns os.ErrNotExist if the file does not
// exist.
func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	_, err := toml.DecodeFile(path, &m)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Manifest{}, os.ErrNotExist
		}
		return Manifest{}, err
	}
	return m, nil
}
