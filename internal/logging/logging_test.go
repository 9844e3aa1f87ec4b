package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raoulx24/watchfiles/internal/logging"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	return m
}

func TestZeroLogger_KeyValues(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewWithWriter(&buf, zerolog.DebugLevel)

	log.Info("dispatched", "path", "/in/a.csv", "error", errors.New("boom"), "took", 2*time.Second)

	m := decode(t, &buf)
	assert.Equal(t, "info", m["level"])
	assert.Equal(t, "dispatched", m["message"])
	assert.Equal(t, "/in/a.csv", m["path"])
	assert.Equal(t, "boom", m["error"])
	assert.Contains(t, m, "took")
}

func TestZeroLogger_OddKeyValues(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewWithWriter(&buf, zerolog.DebugLevel)

	log.Warn("odd", "dangling")

	m := decode(t, &buf)
	assert.Contains(t, m, "dangling")
	assert.Nil(t, m["dangling"])
}

func TestZeroLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewWithWriter(&buf, zerolog.WarnLevel)

	log.Debug("hidden")
	log.Info("hidden")
	assert.Zero(t, buf.Len())

	log.Error("shown")
	assert.Equal(t, "error", decode(t, &buf)["level"])
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := logging.New(logging.Options{Level: "loud"})
	assert.Error(t, err)
}

func TestNew_Defaults(t *testing.T) {
	log, err := logging.New(logging.Options{})
	require.NoError(t, err)
	assert.NotNil(t, log)
}

func TestCronLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewWithWriter(&buf, zerolog.DebugLevel)

	logging.CronLogger(log).Error(errors.New("job panicked"), "run", "entry", 1)

	m := decode(t, &buf)
	assert.Equal(t, "cron: run", m["message"])
	assert.Equal(t, "job panicked", m["error"])
}
