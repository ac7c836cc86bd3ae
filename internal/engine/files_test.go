package engine

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iogen/iogen/internal/catalog"
	"github.com/iogen/iogen/internal/target"
)

func writeFile(t *testing.T, dir, name string, size int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
	return path
}

func TestLoadFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	big := writeFile(t, dir, "big", 64*1024)
	small := writeFile(t, dir, "small", 100)
	declared := filepath.Join(dir, "not-yet")

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	files, err := LoadFiles([]target.Spec{
		{Path: big},
		{Path: small},
		{Path: declared, Length: 1 << 20},
	}, FileOptions{RawUnit: 4096, MinTransfer: 1, MaxTransfer: 8192}, logger)
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, big, files[0].Path)
	assert.Equal(t, int64(64*1024), files[0].Length)
	assert.Equal(t, int64(4096), files[0].RawUnit)
	assert.Equal(t, catalog.Regular, files[0].Type)

	assert.Equal(t, declared, files[1].Path)
	assert.Equal(t, int64(1<<20), files[1].Length)
	assert.Equal(t, int64(1), files[1].IOUnit)
	assert.Equal(t, int64(4096), files[1].RawUnit)

	assert.Contains(t, logs.String(), "ignoring file shorter than max transfer size")
	assert.Contains(t, logs.String(), "using declared length")
}

func TestLoadFiles_DeclaredLengthOverridesActual(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "f", 4096)
	var logs bytes.Buffer
	files, err := LoadFiles([]target.Spec{{Path: path, Length: 8192}},
		FileOptions{RawUnit: 512, MinTransfer: 1, MaxTransfer: 512},
		slog.New(slog.NewTextHandler(&logs, nil)))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, int64(8192), files[0].Length)
	assert.Contains(t, logs.String(), "differs from declared length")
}

func TestLoadFiles_ShorterThanMinTransfer(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "f", 100)
	var logs bytes.Buffer
	_, err := LoadFiles([]target.Spec{{Path: path}},
		FileOptions{RawUnit: 512, MinTransfer: 512, MaxTransfer: 512},
		slog.New(slog.NewTextHandler(&logs, nil)))
	require.ErrorIs(t, err, ErrNoFiles)
	assert.Contains(t, logs.String(), "min transfer size")
}

func TestLoadFiles_MissingWithoutLengthIsFatal(t *testing.T) {
	t.Parallel()

	_, err := LoadFiles([]target.Spec{{Path: filepath.Join(t.TempDir(), "missing")}},
		FileOptions{MinTransfer: 1, MaxTransfer: 1}, quietLogger())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoFiles)
}

func TestLoadFiles_PathTooLong(t *testing.T) {
	t.Parallel()

	long := "/" + strings.Repeat("p", 2000)
	var logs bytes.Buffer
	_, err := LoadFiles([]target.Spec{{Path: long, Length: 4096}},
		FileOptions{MinTransfer: 1, MaxTransfer: 1},
		slog.New(slog.NewTextHandler(&logs, nil)))
	require.ErrorIs(t, err, ErrNoFiles)
	assert.Contains(t, logs.String(), "ignoring file")
}
