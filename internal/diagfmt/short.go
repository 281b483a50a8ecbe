package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"dlc/internal/diag"
	"dlc/internal/source"
)

// Short prints one line per diagnostic:
//
//	<path>:<line>:<col>: <severity> <CODE> <message>
//
// Notes follow as "note" lines when includeNotes is set.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, includeNotes bool) {
	for _, d := range bag.Items() {
		writeShort(w, fs, d.Primary, strings.ToLower(d.Severity.String()), d.Code, d.Message)
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			writeShort(w, fs, n.Span, "note", d.Code, n.Msg)
		}
	}
}

func writeShort(w io.Writer, fs *source.FileSet, sp source.Span, sev string, code diag.Code, msg string) {
	f := fs.Get(sp.File)
	start, _ := fs.Resolve(sp)
	fmt.Fprintf(w, "%s:%d:%d: %s %s %s\n", f.DisplayPath(), start.Line, start.Col, sev, code.ID(), sanitizeMessage(msg))
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
