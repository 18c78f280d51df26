package logger

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests in this file mutate process-wide state and do not run in parallel.

func TestInitWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "debug", "json")
	t.Cleanup(func() { InitWithWriter(&bytes.Buffer{}, "info", "text") })

	Get().Debug("loaded", KeyLoader, "user")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "loaded", rec["msg"])
	assert.Equal(t, "user", rec[KeyLoader])
}

func TestSetLevel_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "warn", "text")
	t.Cleanup(func() { InitWithWriter(&bytes.Buffer{}, "info", "text") })

	Get().Info("hidden")
	Get().Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestSetLevel_Unknown(t *testing.T) {
	assert.Error(t, SetLevel("verbose"))
	assert.NoError(t, SetLevel(""))
}

func TestSetFormat_Unknown(t *testing.T) {
	assert.Error(t, SetFormat("xml"))
}

func TestInit_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "navload.log")
	require.NoError(t, Init(Config{Level: "INFO", Format: "text", Output: path}))
	t.Cleanup(func() { InitWithWriter(&bytes.Buffer{}, "info", "text") })

	Get().Info("to file")
}
