package logutil

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestSetupWritesFile(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer
	logger, err := Setup(Options{Level: "info", EnableFileLogging: true, Dir: dir, Console: &console})
	require.NoError(t, err)

	logger.Debug().Msg("hidden")
	logger.Info().Msg("visible")

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "visible")
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, console.String(), "visible")
}

func TestRotateIfNeeded(t *testing.T) {
	path := filepath.Join(t.TempDir(), LogFileName)
	require.NoError(t, os.WriteFile(path, make([]byte, maxSizeBytes+1), 0644))

	rotateIfNeeded(path)

	_, err := os.Stat(archiveName(path, 1))
	assert.NoError(t, err)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "a\\nb\\tc?\\r", Sanitize("a\nb\tc\x01\r"))
	long := strings.Repeat("x", 150)
	assert.Equal(t, strings.Repeat("x", 100)+"...", Sanitize(long))
}

func TestSanitizeKeepsRunesWhole(t *testing.T) {
	got := Sanitize(strings.Repeat("a", 99) + "é")
	assert.Equal(t, strings.Repeat("a", 99)+"...", got)
	assert.True(t, utf8.ValidString(got))
}

func TestWriterRotatesWhenWriteWouldOverflow(t *testing.T) {
	path := filepath.Join(t.TempDir(), LogFileName)
	require.NoError(t, os.WriteFile(path, make([]byte, maxSizeBytes-5), 0644))

	w, err := newRotatingWriter(path)
	require.NoError(t, err)
	_, err = w.Write([]byte("0123456789"))
	require.NoError(t, err)

	archived, err := os.Stat(archiveName(path, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(maxSizeBytes-5), archived.Size())
	current, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(current))
}
