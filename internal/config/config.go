// Package config reads the optional iogen configuration file and writes run
// manifests.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the optional iogen configuration file.
type Config struct {
	Defaults DefaultsConfig `toml:"defaults"`
}

// DefaultsConfig holds persistent flag defaults. A nil field leaves the
// built-in default alone.
type DefaultsConfig struct {
	Syscalls []string `toml:"syscalls"`
	Flags    []string `toml:"flags"`
	Aio      []string `toml:"aio"`
	Mode     *string  `toml:"mode"`
	Overlap  *bool    `toml:"overlap"`
	MinTrans *string  `toml:"min_transfer"` // size, e.g. "4k"
	MaxTrans *string  `toml:"max_transfer"`
	Strides  *string  `toml:"strides"` // "min:max"
	RawUnit  *string  `toml:"raw_unit"`
	Format   *string  `toml:"format"`
	Compress *bool    `toml:"compress"`
	Rate     *float64 `toml:"rate"`
}

// Path returns the resolved path to the config file.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "iogen", "config.toml")
}

// Load reads the config file from the XDG path. Returns a zero Config
// (no error) if the file does not exist.
func Load() (Config, error) {
	path := Path()
	if path == "" {
		return Config{}, nil
	}
	return LoadFile(path)
}

// LoadFile reads a config file from an explicit path. A missing file yields a
// zero Config.
func LoadFile(path string) (Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, err
	}
	return cfg, nil
}
