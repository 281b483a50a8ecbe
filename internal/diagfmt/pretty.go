package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"dlc/internal/diag"
	"dlc/internal/source"
)

type palette struct {
	err, warn, info, code, marker, note *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan),
		code:   color.New(color.Faint),
		marker: color.New(color.FgGreen, color.Bold),
		note:   color.New(color.FgBlue),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.marker, p.note} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message>
//	    <строка исходника>
//	    ~~~
//
// затем Notes в том же формате.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		f := fs.Get(d.Primary.File)
		start, end := fs.Resolve(d.Primary)
		fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
			displayPath(f, opts.PathMode), start.Line, start.Col,
			p.severity(d.Severity).Sprint(d.Severity.String()),
			p.code.Sprint(d.Code.ID()),
			d.Message)
		writeContext(w, p, f, start, end)

		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			nf := fs.Get(n.Span.File)
			ns, ne := fs.Resolve(n.Span)
			fmt.Fprintf(w, "  %s %s:%d:%d: %s\n", p.note.Sprint("note:"),
				displayPath(nf, opts.PathMode), ns.Line, ns.Col, n.Msg)
			writeContext(w, p, nf, ns, ne)
		}
	}
}

// writeContext печатает строку исходника и маркер ~~~ под span'ом.
// Многострочный span подчёркивается до конца первой строки.
func writeContext(w io.Writer, p palette, f *source.File, start, end source.LineCol) {
	line := f.GetLine(start.Line)
	if line == "" && start.Line > uint32(len(f.LineIdx))+1 {
		return
	}
	from := min(int(start.Col)-1, len(line))
	to := len(line)
	if end.Line == start.Line {
		to = min(int(end.Col)-1, len(line))
	}

	pad := indentFor(line[:from])
	width := max(runewidth.StringWidth(line[from:max(from, to)]), 1)

	fmt.Fprintf(w, "    %s\n", line)
	fmt.Fprintf(w, "    %s%s\n", pad, p.marker.Sprint(strings.Repeat("~", width)))
}

// indentFor повторяет табы префикса, остальное заменяет пробелами по ширине.
func indentFor(prefix string) string {
	var b strings.Builder
	for _, r := range prefix {
		if r == '\t' {
			b.WriteByte('\t')
			continue
		}
		b.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return b.String()
}
