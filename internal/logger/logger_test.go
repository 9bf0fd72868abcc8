package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/cfn-refactor/internal/config"
)

func TestNew_FiltersByLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l, err := New(config.LogConfig{Level: "warn"}, &buf)
	require.NoError(t, err)

	l.Info("hidden")
	l.Warn("shown", "uri", "file:///a.yaml")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "uri=file:///a.yaml")
	assert.Contains(t, out, Prefix)
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	_, err := New(config.LogConfig{Level: "chatty"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, config.ErrInvalidLogLevel)
}

func TestDiscard(t *testing.T) {
	t.Parallel()
	assert.NotPanics(t, func() { Discard().Error("dropped") })
}
