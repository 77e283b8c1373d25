package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextLoggerWritesAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := Text(&buf, slog.LevelInfo)

	log.Info("scale complete", "elements", 96)

	out := buf.String()
	assert.Contains(t, out, "scale complete")
	assert.Contains(t, out, "elements=96")
}

func TestJSONLoggerEmitsJSON(t *testing.T) {
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)

	log.Error("launch failed", "error", "device lost")

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "{"))
	assert.Contains(t, out, `"msg":"launch failed"`)
	assert.Contains(t, out, `"error":"device lost"`)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := Text(&buf, slog.LevelWarn)

	log.Debug("hidden")
	log.Info("hidden too")
	log.Warn("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
}

func TestWithAddsContext(t *testing.T) {
	var buf bytes.Buffer
	log := Text(&buf, slog.LevelInfo).With("backend", "webgpu")

	log.Info("ready")

	assert.Contains(t, buf.String(), "backend=webgpu")
}

func TestPrettyHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	log := Pretty(&buf, slog.LevelInfo)

	log.Info("kernel dispatched", "grid", 8)

	out := buf.String()
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "kernel dispatched")
	assert.Contains(t, out, "grid=8")
	require.True(t, strings.HasSuffix(out, "\n"))
}

func TestPrettyHandlerQuotesSpacedValues(t *testing.T) {
	var buf bytes.Buffer
	log := Pretty(&buf, slog.LevelInfo)

	log.Info("msg", "name", "NVIDIA GeForce")

	assert.Contains(t, buf.String(), `name="NVIDIA GeForce"`)
}

func TestPrettyHandlerGroups(t *testing.T) {
	h := NewPrettyHandler(&bytes.Buffer{}, nil)
	grouped := h.WithGroup("gpu")

	var buf bytes.Buffer
	g, ok := grouped.(*PrettyHandler)
	require.True(t, ok)
	g.w = &buf

	log := New(g)
	log.Info("probe", "vendor", "nvidia")
	assert.Contains(t, buf.String(), "gpu.vendor=nvidia")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestForFormat(t *testing.T) {
	var buf bytes.Buffer

	ForFormat("json", &buf, slog.LevelInfo).Info("a")
	assert.True(t, strings.HasPrefix(buf.String(), "{"))

	buf.Reset()
	ForFormat("text", &buf, slog.LevelInfo).Info("b")
	assert.Contains(t, buf.String(), "msg=b")
}

func TestNopDiscards(t *testing.T) {
	log := Nop()
	log.Info("into the void")
	log.Error("also gone")
}
