package colonnade_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/colonnade/colonnade"
	"github.com/colonnade/colonnade/ansi"
)

func newTestLogger(t *testing.T, format string, width int, opts *colonnade.HandlerOptions) (*slog.Logger, *bytes.Buffer) {
	t.Helper()
	f, err := colonnade.NewFormatter(plainStyle(format, width))
	require.NoError(t, err)
	var buf bytes.Buffer
	return slog.New(colonnade.NewHandler(&buf, f, opts)), &buf
}

func TestHandlerWritesColumns(t *testing.T) {
	logger, buf := newTestLogger(t, "{levelname} _| {name} _| {message}", 40, nil)

	logger.Info("service started")

	out := strings.TrimSuffix(buf.String(), "\n")
	require.NotEmpty(t, out)
	for _, line := range strings.Split(out, "\n") {
		assert.Equal(t, 40, ansi.Width(line))
	}
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "service started")
}

func TestHandlerLevelFiltering(t *testing.T) {
	logger, buf := newTestLogger(t, "{levelname} _| {message}", 40, nil)

	logger.Debug("hidden")
	logger.Info("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	logger, buf = newTestLogger(t, "{levelname} _| {message}", 40,
		&colonnade.HandlerOptions{Level: colonnade.LevelTrace})
	logger.Log(context.Background(), colonnade.LevelTrace, "fine detail")
	assert.Contains(t, buf.String(), "fine detail")
	assert.Contains(t, buf.String(), "TRACE")
}

func TestHandlerGroupsExtendName(t *testing.T) {
	logger, buf := newTestLogger(t, "{levelname} _| {name} _| {message}", 48, nil)

	logger.WithGroup("db").Info("connected")

	// The default root prefix is stripped by CleanOutput, leaving just
	// the group path.
	out := ansi.Strip(buf.String())
	assert.Contains(t, out, "db")
	assert.NotContains(t, out, "root")
}

func TestHandlerNamedRoot(t *testing.T) {
	// The name column must be wide enough for the dotted path to stay
	// on one line.
	logger, buf := newTestLogger(t, "{levelname} _| {name}", 48,
		&colonnade.HandlerOptions{Name: "ingest"})

	logger.WithGroup("parse").Info("ok")
	assert.Contains(t, buf.String(), "ingest.parse")
}

func TestHandlerUnknownAttrsJoinMessage(t *testing.T) {
	logger, buf := newTestLogger(t, "{levelname} _| {message}", 60, nil)

	logger.Info("request done", "status", 200, "path", "/healthz")

	out := ansi.Strip(buf.String())
	assert.Contains(t, out, "request done status=200 path=/healthz")
}

func TestHandlerKnownAttrsFillFields(t *testing.T) {
	logger, buf := newTestLogger(t, "{levelname} _| {threadName}", 60, nil)

	logger.Info("tick", "threadName", "worker-3")

	out := ansi.Strip(buf.String())
	assert.Contains(t, out, "worker-3")
	assert.NotContains(t, out, "threadName=")
}

func TestHandlerWithAttrsPersist(t *testing.T) {
	logger, buf := newTestLogger(t, "{levelname} _| {message}", 60, nil)

	logger.With("region", "eu-west-1").Info("scaled")
	assert.Contains(t, ansi.Strip(buf.String()), "region=eu-west-1")
}

func TestHandlerErrorAttrAppendsTraceback(t *testing.T) {
	logger, buf := newTestLogger(t, "{levelname} _| {message}", 40, nil)

	err := errors.WithDetails(errors.New("disk full"), "path", "/var/log")
	logger.Error("write failed", "error", err)

	out := ansi.Strip(buf.String())
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Greater(t, len(lines), 1)
	assert.Equal(t, 40, ansi.Width(lines[0]))
	assert.Contains(t, out, "disk full")
	assert.Contains(t, out, "path=/var/log")
}

func TestLogHeader(t *testing.T) {
	logger, buf := newTestLogger(t, "{asctime} _| {levelname} _| {message}", 40, nil)

	colonnade.LogHeader(logger, "Starting ingest run")

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Repeat("-", 40), ansi.Strip(lines[0]))
	assert.Contains(t, lines[1], "Starting ingest run")
	assert.Equal(t, strings.Repeat("-", 40), ansi.Strip(lines[2]))
}

func TestTraceback(t *testing.T) {
	assert.Equal(t, "", colonnade.Traceback(nil))

	err := errors.New("boom")
	out := colonnade.Traceback(err)
	assert.Contains(t, out, "boom")
	// tozd errors record a stack at construction.
	assert.Contains(t, out, "TestTraceback")
}

func TestTracebackDetailsAndCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := errors.WithDetails(errors.Errorf("dial upstream: %w", cause), "host", "10.0.0.7")

	out := colonnade.Traceback(err)
	assert.Contains(t, out, "dial upstream")
	assert.Contains(t, out, "host=10.0.0.7")
	assert.Contains(t, out, "caused by: connection refused")
}

func TestTracebackWrappedCause(t *testing.T) {
	cause := errors.New("timeout")
	err := errors.Errorf("fetch manifest: %w", cause)

	out := colonnade.Traceback(err)
	assert.Contains(t, out, "fetch manifest: timeout")
	assert.Contains(t, out, "caused by: timeout")
}

func TestTracebackNoRedundantCause(t *testing.T) {
	// Wrapping that adds context but no new message must not repeat
	// the same text as a cause line.
	err := errors.WithDetails(errors.New("disk full"), "path", "/tmp")
	out := colonnade.Traceback(err)
	assert.NotContains(t, out, "caused by")
}

// preserveGlobals restores the state Setup mutates: the default logger
// and the process-wide colour switch.
func preserveGlobals(t *testing.T) {
	t.Helper()
	prevLogger := slog.Default()
	prevNoColor := color.NoColor
	t.Cleanup(func() {
		slog.SetDefault(prevLogger)
		color.NoColor = prevNoColor
	})
}

func TestSetupPlainFallback(t *testing.T) {
	preserveGlobals(t)

	var buf bytes.Buffer
	logger, err := colonnade.Setup(
		colonnade.WithStream(&buf),
		colonnade.WithLevel(colonnade.LevelDebug),
	)
	require.NoError(t, err)

	logger.Debug("plain output")
	out := buf.String()
	assert.Contains(t, out, "plain output")
	assert.Contains(t, out, "DEBUG")
	// A non-terminal stream gets the escape-free fallback.
	assert.NotContains(t, out, "\x1b[")
}

func TestSetupForcedColumns(t *testing.T) {
	preserveGlobals(t)

	style := plainStyle("{asctime} _| {levelname} _| {message}", 40)
	var buf bytes.Buffer
	logger, err := colonnade.Setup(
		colonnade.WithStream(&buf),
		colonnade.WithStyle(style),
		colonnade.WithForceColumns(),
	)
	require.NoError(t, err)

	logger.Info("columns on a pipe")
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	for i, line := range lines {
		assert.Equal(t, 40, ansi.Width(line), "line %d", i)
	}
	assert.Contains(t, buf.String(), "|")
}

func TestSetupFileWriterGetsPlainCopy(t *testing.T) {
	preserveGlobals(t)

	style := plainStyle("{asctime} _| {levelname} _| {message}", 40)
	var stream, file bytes.Buffer
	logger, err := colonnade.Setup(
		colonnade.WithStream(&stream),
		colonnade.WithFileWriter(&file),
		colonnade.WithStyle(style),
		colonnade.WithForceColumns(),
	)
	require.NoError(t, err)

	logger.Info("mirrored")
	assert.Contains(t, stream.String(), "|")
	assert.Contains(t, file.String(), "mirrored")
	assert.NotContains(t, file.String(), "\x1b[")
}

func TestSetupRejectsBadStyle(t *testing.T) {
	preserveGlobals(t)

	style := plainStyle("{asctime} _| {levelname} _| {message}", 20)
	_, err := colonnade.Setup(
		colonnade.WithStream(&bytes.Buffer{}),
		colonnade.WithStyle(style),
		colonnade.WithForceColumns(),
	)
	assert.Error(t, err)
}
