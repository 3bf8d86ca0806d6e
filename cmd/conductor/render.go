package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/conductor/internal/config"
	"github.com/example/conductor/pkg/compose"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

type palette struct {
	header *color.Color
	git    *color.Color
	dir    *color.Color
	muted  *color.Color
	added  *color.Color
	remove *color.Color
	hunk   *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		header: color.New(color.Bold),
		git:    color.New(color.FgCyan),
		dir:    color.New(color.FgYellow),
		muted:  color.New(color.Faint),
		added:  color.New(color.FgGreen),
		remove: color.New(color.FgRed),
		hunk:   color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{p.header, p.git, p.dir, p.muted, p.added, p.remove, p.hunk} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func colorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return isTerminalWriter(w)
}

func isTerminalWriter(w io.Writer) bool {
	type fdProvider interface {
		Fd() uintptr
	}
	if v, ok := w.(fdProvider); ok {
		return term.IsTerminal(int(v.Fd()))
	}
	return false
}

func rootedLayout(layout *compose.Layout, opts *config.Options) *compose.Layout {
	if opts.Root == "" {
		return layout
	}
	out := *layout
	out.Entries = make([]compose.LayoutEntry, len(layout.Entries))
	for i, entry := range layout.Entries {
		entry.Dir = opts.RootedDir(entry.Dir)
		out.Entries[i] = entry
	}
	return &out
}

func renderLayout(w io.Writer, layout *compose.Layout, opts *config.Options) error {
	switch opts.OutputFormat {
	case config.OutputYAML:
		return compose.EncodeLayout(w, layout)
	case config.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(layout)
	default:
		return renderLayoutTable(w, layout, newPalette(colorEnabled(opts.ColorMode, w)))
	}
}

func renderLayoutTable(w io.Writer, layout *compose.Layout, p palette) error {
	headers := []string{"SERVICE", "KIND", "DIR", "CONTEXT"}
	rows := make([][]string, 0, len(layout.Entries))
	for _, entry := range layout.Entries {
		rows = append(rows, []string{entry.Service, entry.Kind.String(), entry.Dir, entry.Context})
	}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if cw := runewidth.StringWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string, paint func(col int, s string) string) {
		for i, cell := range cells {
			padded := cell
			if i < len(cells)-1 {
				padded = runewidth.FillRight(cell, widths[i]) + "  "
			}
			b.WriteString(paint(i, padded))
		}
		b.WriteString("\n")
	}
	writeRow(headers, func(_ int, s string) string { return p.header.Sprint(s) })
	for i, row := range rows {
		kind := layout.Entries[i].Kind
		writeRow(row, func(col int, s string) string {
			if col != 1 {
				return s
			}
			if kind == compose.KindGitURL {
				return p.git.Sprint(s)
			}
			return p.dir.Sprint(s)
		})
	}
	for _, name := range layout.Skipped {
		b.WriteString(p.muted.Sprintf("%s (no build section)", name))
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeDiff(w io.Writer, diff string, enabled bool) {
	p := newPalette(enabled)
	for _, line := range strings.SplitAfter(diff, "\n") {
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			fmt.Fprint(w, p.header.Sprint(line))
		case strings.HasPrefix(line, "@@"):
			fmt.Fprint(w, p.hunk.Sprint(line))
		case strings.HasPrefix(line, "+"):
			fmt.Fprint(w, p.added.Sprint(line))
		case strings.HasPrefix(line, "-"):
			fmt.Fprint(w, p.remove.Sprint(line))
		default:
			fmt.Fprint(w, line)
		}
	}
}
