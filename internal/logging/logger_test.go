package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/luxboard/internal/analysis"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"":      slog.LevelInfo,
		"DEBUG": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNewTextRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "warn", "text")
	require.NoError(t, err)
	l.Info("hidden")
	l.Warn("shown", "k", 1)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown k=1")

	_, err = New(&buf, "info", "xml")
	assert.Error(t, err)
}

func TestErrAddsUploadAttributes(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "debug", "json")
	require.NoError(t, err)

	cause := &analysis.NormalizationError{Column: "Time", Row: 4, Value: "ayer", Err: analysis.ErrTimeParse}
	Err(context.Background(), l, slog.LevelWarn, "upload rejected", cause)

	var rec map[string]any
	require.NoError(t, sonic.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "upload rejected", rec["msg"])
	assert.Equal(t, "normalize", rec["stage"])
	assert.Equal(t, "Time", rec["column"])
	assert.EqualValues(t, 4, rec["row"])
	assert.Equal(t, "ayer", rec["value"])
}

func TestErrPlainError(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "info", "text")
	require.NoError(t, err)
	Err(context.Background(), l, slog.LevelError, "failed", errors.New("boom"))
	assert.Contains(t, buf.String(), `error=boom`)
	assert.NotContains(t, buf.String(), "stage=")

	Err(context.Background(), nil, slog.LevelError, "ignored", errors.New("boom"))
}
