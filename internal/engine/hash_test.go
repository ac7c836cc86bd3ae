package engine

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func digestOf(t *testing.T, s string) string {
	t.Helper()
	d := NewDigestWriter(io.Discard)
	_, err := io.Copy(d, strings.NewReader(s))
	require.NoError(t, err)
	return d.Sum()
}

func TestDigestWriter_ForwardsAndHashes(t *testing.T) {
	t.Parallel()

	var dst bytes.Buffer
	d := NewDigestWriter(&dst)
	_, err := d.Write([]byte("hello "))
	require.NoError(t, err)
	_, err = d.Write([]byte("world"))
	require.NoError(t, err)

	assert.Equal(t, "hello world", dst.String())
	assert.Equal(t, int64(11), d.Written())
	assert.Equal(t, digestOf(t, "hello world"), d.Sum())
	assert.Len(t, d.Sum(), 64)
}

func TestDigestWriter_DifferentContent(t *testing.T) {
	t.Parallel()
	assert.NotEqual(t, digestOf(t, "a"), digestOf(t, "b"))
}

type shortWriter struct{ limit int }

func (s *shortWriter) Write(p []byte) (int, error) {
	if len(p) > s.limit {
		return s.limit, errors.New("short write")
	}
	return len(p), nil
}

func TestDigestWriter_HashesOnlyAcceptedBytes(t *testing.T) {
	t.Parallel()

	d := NewDigestWriter(&shortWriter{limit: 3})
	n, err := d.Write([]byte("abcdef"))
	require.Error(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, digestOf(t, "abc"), d.Sum())
}
