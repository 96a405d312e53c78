package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, config Config) *bytes.Buffer {
	t.Helper()
	require.NoError(t, Initialize(config))
	var buf bytes.Buffer
	SetOutput(&buf)
	return &buf
}

func TestLevelFiltering(t *testing.T) {
	buf := capture(t, Config{Level: WarnLevel})

	Debug("hidden")
	Info("also hidden")
	Warn("visible")
	Error("also visible")

	output := buf.String()
	assert.NotContains(t, output, "hidden")
	assert.Contains(t, output, "visible")
	assert.Contains(t, output, "[WARN]")
	assert.Contains(t, output, "[ERROR]")
}

func TestFieldsRendered(t *testing.T) {
	buf := capture(t, Config{Level: InfoLevel})

	Info("checking", String("asset", "jquery"), Int("count", 3), Bool("ok", true))

	output := buf.String()
	assert.Contains(t, output, "asset=jquery")
	assert.Contains(t, output, "count=3")
	assert.Contains(t, output, "ok=true")
}

func TestDryRunMarker(t *testing.T) {
	buf := capture(t, Config{Level: InfoLevel, DryRun: true})

	Info("would push")

	assert.Contains(t, buf.String(), "[DRY-RUN] would push")
}

func TestJSONOutput(t *testing.T) {
	buf := capture(t, Config{Level: InfoLevel, JSON: true, Component: "assetbump"})

	Info("structured")

	line := strings.TrimSpace(buf.String())
	assert.True(t, strings.HasPrefix(line, "{"))
	assert.Contains(t, line, `"level":"INFO"`)
	assert.Contains(t, line, `"message":"structured"`)
	assert.Contains(t, line, `"component":"assetbump"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, TraceLevel, ParseLevel("trace"))
	assert.Equal(t, DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, WarnLevel, ParseLevel("warn"))
	assert.Equal(t, ErrorLevel, ParseLevel("error"))
	assert.Equal(t, InfoLevel, ParseLevel("info"))
	assert.Equal(t, InfoLevel, ParseLevel("bogus"))
}
