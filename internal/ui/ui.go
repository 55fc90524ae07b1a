package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/ha1tch/reseau/pkg/graph"
)

// Brand colors
var (
	Brand  = color.New(color.FgHiBlue, color.Bold)
	Subtle = color.New(color.FgHiBlack)
	Warn   = color.New(color.FgYellow)
	Info   = color.New(color.FgCyan)
	Good   = color.New(color.FgGreen)
	Bad    = color.New(color.FgRed)
)

// Kind colors follow the node palette.
var kindColors = map[graph.Kind]*color.Color{
	graph.KindMedia:        color.RGB(0x3b, 0x82, 0xf6),
	graph.KindPerson:       color.RGB(0x8b, 0x5c, 0xf6),
	graph.KindOrganisation: color.RGB(0x10, 0xb9, 0x81),
}

// Kind returns the kind's glyph and title in its node colour.
func Kind(k graph.Kind) string {
	c, ok := kindColors[k]
	if !ok {
		return string(k)
	}
	return c.Sprintf("%s %s", k.Glyph(), k.Title())
}

// Banner prints the reseau banner.
func Banner(w io.Writer, subtitle string) {
	fmt.Fprintf(w, "%s %s\n\n", Brand.Sprint("réseau"), Subtle.Sprint(subtitle))
}

// pad left-aligns s in a column of the given display width.
func pad(s string, width int) string {
	return s + strings.Repeat(" ", max(width-runewidth.StringWidth(s), 0))
}

// Table prints a simple aligned table. Widths count display cells, so
// accented names stay aligned.
func Table(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], runewidth.StringWidth(cell))
			}
		}
	}

	headerLine := "  "
	sepLine := "  "
	for i, h := range headers {
		headerLine += pad(h, widths[i]) + "  "
		sepLine += strings.Repeat("─", widths[i]) + "  "
	}
	Subtle.Fprintln(w, strings.TrimRight(headerLine, " "))
	Subtle.Fprintln(w, strings.TrimRight(sepLine, " "))

	for _, row := range rows {
		line := "  "
		for i, cell := range row {
			if i < len(widths) {
				line += pad(cell, widths[i]) + "  "
			}
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}

// StatusIcon returns a status icon string.
func StatusIcon(ok bool) string {
	if ok {
		return Good.Sprint("✓")
	}
	return Bad.Sprint("✗")
}

// WarnIcon returns a warning icon.
func WarnIcon() string {
	return Warn.Sprint("⚠")
}
