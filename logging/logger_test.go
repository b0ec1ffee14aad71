package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/crytic/arbiter/logging/colors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAddAndRemoveWriter will test the Logger.AddWriter and Logger.RemoveWriter functions to ensure that they work as expected.
func TestAddAndRemoveWriter(t *testing.T) {
	logger := NewLogger(zerolog.InfoLevel, false)

	var structured, unstructured bytes.Buffer
	logger.AddWriter(&structured, STRUCTURED)
	logger.AddWriter(&unstructured, UNSTRUCTURED)
	assert.Len(t, logger.writers, 2)

	// Duplicate structured writers are ignored
	logger.AddWriter(&structured, STRUCTURED)
	assert.Len(t, logger.writers, 2)

	logger.RemoveWriter(&structured)
	assert.Len(t, logger.writers, 1)

	// Removing an unknown writer is a no-op
	logger.RemoveWriter(&bytes.Buffer{})
	assert.Len(t, logger.writers, 1)

	logger.Info("after removal")
	assert.Empty(t, structured.String())
	assert.Contains(t, unstructured.String(), "after removal")
}

// TestSubLoggerContext verifies that sub-loggers tag their structured output with the module key, including after a
// writer is added to the sub-logger.
func TestSubLoggerContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(zerolog.DebugLevel, false, &buf)
	subLogger := logger.NewSubLogger("module", STORAGE_SERVICE)

	subLogger.Debug("slot generated")
	line := strings.TrimSpace(buf.String())
	require.NotEmpty(t, line)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &decoded))
	assert.Equal(t, STORAGE_SERVICE, decoded["module"])
	assert.Equal(t, "slot generated", decoded["message"])

	// Rebuilding the multi logger keeps the context
	var second bytes.Buffer
	subLogger.AddWriter(&second, STRUCTURED)
	subLogger.Info("second writer")
	assert.Contains(t, second.String(), `"module":"storage"`)
}

// TestBuildMsgs checks that colors are applied only to the console message and that errors and structured info are
// extracted from the argument list.
func TestBuildMsgs(t *testing.T) {
	info := StructuredLogInfo{SEED_FIELD: "0x01"}
	err := errors.New("boom")
	consoleMsg, fileMsg, gotErr, gotInfo := buildMsgs("seed ", colors.Bold, "0x01", err, info)

	assert.Equal(t, "seed 0x01", fileMsg)
	assert.NotEqual(t, fileMsg, consoleMsg)
	assert.Contains(t, consoleMsg, "0x01")
	assert.Equal(t, err, gotErr)
	assert.Equal(t, info, gotInfo)

	// An empty argument list produces empty messages
	consoleMsg, fileMsg, gotErr, gotInfo = buildMsgs()
	assert.Empty(t, consoleMsg)
	assert.Empty(t, fileMsg)
	assert.Nil(t, gotErr)
	assert.Nil(t, gotInfo)
}

// TestLogBuffer verifies the non-colorized rendering of a LogBuffer.
func TestLogBuffer(t *testing.T) {
	buf := NewLogBuffer()
	buf.Append("read ", colors.GreenBold, "0xab", colors.Reset, " (generated)")
	assert.Equal(t, 5, buf.Len())
	assert.Equal(t, "read 0xab (generated)", buf.String())
}

// TestSetLevel verifies that the level filter applies to writers after a level change.
func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(zerolog.InfoLevel, false, &buf)

	logger.Debug("hidden")
	assert.Empty(t, buf.String())

	logger.SetLevel(zerolog.DebugLevel)
	assert.Equal(t, zerolog.DebugLevel, logger.Level())
	logger.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}
