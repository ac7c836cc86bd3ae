package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iogen/iogen/internal/logging"
)

func TestMultiHandler_FansOut(t *testing.T) {
	t.Parallel()

	var textBuf, jsonBuf bytes.Buffer
	textH := slog.NewTextHandler(&textBuf, &slog.HandlerOptions{Level: slog.LevelInfo})
	jsonH := slog.NewJSONHandler(&jsonBuf, &slog.HandlerOptions{Level: slog.LevelInfo})

	logger := slog.New(logging.NewMultiHandler(textH, jsonH))
	logger.Info("generated", "records", 10)

	assert.Contains(t, textBuf.String(), "generated")
	assert.Contains(t, textBuf.String(), "records=10")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(jsonBuf.Bytes(), &rec))
	assert.Equal(t, "generated", rec["msg"])
	assert.InDelta(t, 10, rec["records"], 0)
}

func TestMultiHandler_LevelFiltering(t *testing.T) {
	t.Parallel()

	var debugBuf, warnBuf bytes.Buffer
	debugH := slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug})
	warnH := slog.NewTextHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn})

	logger := slog.New(logging.NewMultiHandler(debugH, warnH))
	logger.Info("info msg")
	logger.Warn("warn msg")

	assert.Contains(t, debugBuf.String(), "info msg")
	assert.Contains(t, debugBuf.String(), "warn msg")
	assert.NotContains(t, warnBuf.String(), "info msg")
	assert.Contains(t, warnBuf.String(), "warn msg")
}

func TestMultiHandler_Enabled(t *testing.T) {
	t.Parallel()

	warnH := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})
	errH := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError})

	m := logging.NewMultiHandler(warnH, errH)

	assert.True(t, m.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, m.Enabled(context.Background(), slog.LevelError))
	assert.False(t, m.Enabled(context.Background(), slog.LevelInfo))
}

func TestMultiHandler_WithAttrsAndGroup(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	m := logging.NewMultiHandler(h)
	logger := slog.New(m.WithAttrs([]slog.Attr{slog.String("run_id", "abc")}).WithGroup("req"))

	logger.Info("skipped", "stage", "offset")

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &rec))
	assert.Equal(t, "abc", rec["run_id"])
	group, ok := rec["req"].(map[string]any)
	require.True(t, ok, "expected group 'req' in JSON output")
	assert.Equal(t, "offset", group["stage"])
}

func TestOptions_Level(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelInfo, logging.Options{}.Level())
	assert.Equal(t, slog.LevelWarn, logging.Options{Quiet: true}.Level())
	assert.Equal(t, slog.LevelDebug, logging.Options{Verbose: true}.Level())
	assert.Equal(t, slog.LevelDebug, logging.Options{Verbose: true, Quiet: true}.Level())
}

func TestSetup_TeesToLogFile(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	path := filepath.Join(t.TempDir(), "iogen.log")
	logger, closeFn, err := logging.Setup(logging.Options{Quiet: true, LogFile: path, Stderr: &stderr})
	require.NoError(t, err)

	logger.Debug("debug only in file")
	logger.Warn("everywhere")
	require.NoError(t, closeFn())

	assert.NotContains(t, stderr.String(), "debug only in file")
	assert.Contains(t, stderr.String(), "everywhere")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"msg":"debug only in file"`)
}

func TestSetup_BadLogFile(t *testing.T) {
	t.Parallel()

	_, _, err := logging.Setup(logging.Options{LogFile: filepath.Join(t.TempDir(), "missing", "x.log")})
	require.Error(t, err)
}
