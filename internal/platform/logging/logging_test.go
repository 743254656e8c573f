package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONFormatWithComponent(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "json", Output: &buf})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	Component(logger, "graphql").Info("ready")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "graphql", line["component"])
	assert.Equal(t, "ready", line["msg"])
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	logger, err := New(Options{Output: &bytes.Buffer{}})
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
}

func TestNew_Invalid(t *testing.T) {
	t.Parallel()

	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)

	_, err = New(Options{Format: "xml"})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]logrus.Level{
		"":        logrus.InfoLevel,
		"silent":  logrus.PanicLevel,
		"WARN":    logrus.WarnLevel,
		" error ": logrus.ErrorLevel,
	}
	for raw, want := range cases {
		got, err := ParseLevel(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
}
