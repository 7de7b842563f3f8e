package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avstrong/discovertours/internal/logger"
)

func TestLoggerWritesJSONAtLevel(t *testing.T) {
	var buf bytes.Buffer

	l := logger.New(&buf, "warn")
	l.LogInfo("dropped %d", 1)
	l.LogWarnf("kept %s", "warning")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &rec))
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "kept warning", rec["msg"])
}

func TestLoggerWithAddsAttributes(t *testing.T) {
	var buf bytes.Buffer

	logger.New(&buf, "info").With("component", "poller").LogErrorf("failed: %v", "boom")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	assert.Equal(t, "poller", rec["component"])
	assert.Equal(t, "failed: boom", rec["msg"])
}
