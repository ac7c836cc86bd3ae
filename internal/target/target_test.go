package target

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iogen/iogen/internal/catalog"
)

func TestReset(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode       catalog.OffsetMode
		wantOffset int64
	}{
		{catalog.Sequential, 0},
		{catalog.Reverse, 4096},
		{catalog.Random, 2048},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			f := &File{Length: 4096, LastOffset: 77, LastLength: 99}
			f.Reset(tt.mode)
			assert.Equal(t, tt.wantOffset, f.LastOffset)
			assert.Zero(t, f.LastLength)
		})
	}
}

func TestAdvance(t *testing.T) {
	t.Parallel()

	f := &File{Length: 4096}
	f.Advance(512, 1024)
	assert.Equal(t, int64(512), f.LastOffset)
	assert.Equal(t, int64(1024), f.LastLength)
	assert.Equal(t, int64(1536), f.LastEnd())
}

func TestUnit(t *testing.T) {
	t.Parallel()

	reg := &File{Type: catalog.Regular, IOUnit: 1, RawUnit: 4096}
	assert.Equal(t, int64(1), reg.Unit(0))
	assert.Equal(t, int64(4096), reg.Unit(catalog.FlagRaw))

	dev := &File{Type: catalog.BlockSpecial, IOUnit: 512, RawUnit: 4096}
	assert.Equal(t, int64(512), dev.Unit(catalog.FlagRaw))
}

func TestParseSpec(t *testing.T) {
	t.Parallel()

	spec, err := ParseSpec("/tmp/data")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/data", spec.Path)
	assert.Zero(t, spec.Length)

	spec, err = ParseSpec("1M:/tmp/data")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/data", spec.Path)
	assert.Equal(t, int64(1<<20), spec.Length)

	spec, err = ParseSpec("rel/file")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(spec.Path))

	_, err = ParseSpec("abc:/tmp/data")
	require.Error(t, err)

	_, err = ParseSpec("4k:")
	require.Error(t, err)
}

func TestParseSpec_PathWithColon(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a:b")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	spec, err := ParseSpec(path)
	require.NoError(t, err)
	assert.Equal(t, path, spec.Path)
	assert.Zero(t, spec.Length)

	spec, err = ParseSpec("2k:" + path)
	require.NoError(t, err)
	assert.Equal(t, path, spec.Path)
	assert.Equal(t, int64(2048), spec.Length)

	_, err = ParseSpec(filepath.Join(filepath.Dir(path), "missing:b"))
	require.Error(t, err)
}

func TestInspect_RegularFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "target")
	require.NoError(t, os.WriteFile(path, make([]byte, 8192), 0o644))

	f, err := Inspect(path, 0)
	require.NoError(t, err)
	assert.Equal(t, path, f.Path)
	assert.Equal(t, int64(8192), f.Length)
	assert.Equal(t, int64(1), f.IOUnit)
	assert.Positive(t, f.RawUnit)
	assert.Equal(t, catalog.Regular, f.Type)

	f, err = Inspect(path, 1024)
	require.NoError(t, err)
	assert.Equal(t, int64(1024), f.RawUnit)
}

func TestInspect_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := Inspect(filepath.Join(dir, "missing"), 0)
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = Inspect(dir, 0)
	require.ErrorIs(t, err, ErrUnsupportedType)
}
