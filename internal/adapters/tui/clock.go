package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// glyphRows is the height of every big-clock glyph.
const glyphRows = 5

// glyphs encodes each clock character as rows of '#' (lit) and '.' (blank).
var glyphs = map[rune][glyphRows]string{
	'0': {"####", "#..#", "#..#", "#..#", "####"},
	'1': {".#.", "##.", ".#.", ".#.", "###"},
	'2': {"####", "...#", "####", "#...", "####"},
	'3': {"####", "...#", "####", "...#", "####"},
	'4': {"#..#", "#..#", "####", "...#", "...#"},
	'5': {"####", "#...", "####", "...#", "####"},
	'6': {"####", "#...", "####", "#..#", "####"},
	'7': {"####", "...#", "..#.", ".#..", ".#.."},
	'8': {"####", "#..#", "####", "#..#", "####"},
	'9': {"####", "#..#", "####", "...#", "####"},
	':': {".", "#", ".", "#", "."},
}

var glyphInk = strings.NewReplacer("#", "█", ".", " ")

// bigClock lays out text as block glyphs, one string per row. Characters
// without a glyph are dropped.
func bigClock(text string) [glyphRows]string {
	var rows [glyphRows]string
	first := true
	for _, ch := range text {
		g, ok := glyphs[ch]
		if !ok {
			continue
		}
		for i := range rows {
			if !first {
				rows[i] += " "
			}
			rows[i] += glyphInk.Replace(g[i])
		}
		first = false
	}
	return rows
}

// renderBigTime renders an MM:SS string in block digits, or as a single
// bold line when the terminal is narrower than 40 columns.
func renderBigTime(clock string, color lipgloss.Color, width int) string {
	style := lipgloss.NewStyle().Bold(true).Foreground(color)
	if width < 40 {
		return style.Render(clock)
	}

	rows := bigClock(clock)
	styled := make([]string, len(rows))
	for i, row := range rows {
		styled[i] = style.Render(row)
	}
	return strings.Join(styled, "\n")
}
