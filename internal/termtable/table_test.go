package termtable

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderAlignsColumns(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, []string{"Time", "variable"}, [][]string{
		{"2024-01-01 10:00", "5"},
		{"2024-01-01 10:01", "120.5"},
	}, 0)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Time              variable", lines[0])
	assert.Equal(t, "----------------  --------", lines[1])
	assert.Equal(t, "2024-01-01 10:00         5", lines[2])
	assert.Equal(t, "2024-01-01 10:01     120.5", lines[3])
}

func TestRenderWideCharacters(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, []string{"sitio", "n"}, [][]string{{"Medellín 日本", "1"}}, 0))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, runewidth.StringWidth(lines[1]), runewidth.StringWidth(lines[2]))
}

func TestRenderFitsMaxWidth(t *testing.T) {
	var buf bytes.Buffer
	long := strings.Repeat("x", 60)
	require.NoError(t, Render(&buf, []string{"note", "v"}, [][]string{{long, "1"}}, 30))
	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		assert.LessOrEqual(t, runewidth.StringWidth(line), 30, line)
	}
	assert.Contains(t, buf.String(), "…")
}

func TestPadAndWidth(t *testing.T) {
	assert.Equal(t, "ab  ", Pad("ab", 4, true))
	assert.Equal(t, "  ab", Pad("ab", 4, false))
	assert.Equal(t, "abcdef", Pad("abcdef", 4, true))

	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, defaultWidth, Width(f), "regular files are not terminals")
}
