// Package termtable prints aligned tables for terminal output.
package termtable

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const (
	defaultWidth = 100
	minColumn    = 4
	gap          = "  "
)

// Width returns the terminal width of f, or a default when f is not a terminal.
func Width(f *os.File) int {
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return defaultWidth
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w < 40 {
		return defaultWidth
	}
	return w
}

// Pad pads s to a display width, handling wide characters.
func Pad(s string, width int, leftAlign bool) string {
	actual := runewidth.StringWidth(s)
	if actual >= width {
		return s
	}
	padding := strings.Repeat(" ", width-actual)
	if leftAlign {
		return s + padding
	}
	return padding + s
}

// Render writes header and rows as aligned columns no wider than maxWidth.
// Numeric cells are right-aligned; overlong cells are truncated with an ellipsis.
func Render(w io.Writer, header []string, rows [][]string, maxWidth int) error {
	widths := columnWidths(header, rows)
	fit(widths, maxWidth)

	var b strings.Builder
	writeRow(&b, header, widths, true)
	seps := make([]string, len(widths))
	for i, cw := range widths {
		seps[i] = strings.Repeat("-", cw)
	}
	b.WriteString(strings.Join(seps, gap))
	b.WriteString("\n")
	for _, row := range rows {
		writeRow(&b, row, widths, false)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func columnWidths(header []string, rows [][]string) []int {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], runewidth.StringWidth(row[i]))
		}
	}
	return widths
}

// fit shrinks the widest columns until the row fits maxWidth.
func fit(widths []int, maxWidth int) {
	if maxWidth <= 0 || len(widths) == 0 {
		return
	}
	total := func() int {
		n := len(gap) * (len(widths) - 1)
		for _, cw := range widths {
			n += cw
		}
		return n
	}
	for total() > maxWidth {
		widest := 0
		for i := range widths {
			if widths[i] > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= minColumn {
			return
		}
		widths[widest]--
	}
}

func writeRow(b *strings.Builder, cells []string, widths []int, header bool) {
	out := make([]string, len(widths))
	for i, cw := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		if runewidth.StringWidth(cell) > cw {
			cell = runewidth.Truncate(cell, cw, "…")
		}
		out[i] = Pad(cell, cw, header || !numeric(cell))
	}
	b.WriteString(strings.TrimRight(strings.Join(out, gap), " "))
	b.WriteString("\n")
}

func numeric(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}
