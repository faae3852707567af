package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"cguard/internal/diag"
	"cguard/internal/source"
)

const tabWidth = 4

type palette struct {
	err    *color.Color
	warn   *color.Color
	info   *color.Color
	code   *color.Color
	path   *color.Color
	gutter *color.Color
	caret  *color.Color
	note   *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		code:   color.New(color.FgMagenta),
		path:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgRed, color.Bold),
		note:   color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.path, p.gutter, p.caret, p.note} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty renders diagnostics in human readable form, in bag.Items() order
// (call bag.Sort() first). Each diagnostic prints as
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message>
//
// followed by the source line with a ^~~~ underline under the primary span
// and, when enabled, the notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil {
		return
	}
	p := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		prettyOne(w, &d, fs, opts, p)
	}
}

func prettyOne(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p palette) {
	sev := p.severity(d.Severity).Sprint(d.Severity.String())
	code := p.code.Sprint(d.Code.ID())
	if !knownFile(fs, d.Primary.File) {
		fmt.Fprintf(w, "%s %s: %s\n", sev, code, d.Message)
		return
	}

	start, end := fs.Resolve(d.Primary)
	path := p.path.Sprint(formatPath(fs, d.Primary.File, opts.PathMode))
	fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n", path, start.Line, start.Col, sev, code, d.Message)
	renderSnippet(w, fs.Get(d.Primary.File), start, end, opts, p)

	if !opts.ShowNotes {
		return
	}
	for _, note := range d.Notes {
		label := p.note.Sprint("note")
		if !knownFile(fs, note.Span.File) {
			fmt.Fprintf(w, "  %s: %s\n", label, note.Msg)
			continue
		}
		ns, _ := fs.Resolve(note.Span)
		fmt.Fprintf(w, "  %s: %s:%d:%d: %s\n", label, formatPath(fs, note.Span.File, opts.PathMode), ns.Line, ns.Col, note.Msg)
	}
}

func renderSnippet(w io.Writer, f *source.File, start, end source.LineCol, opts PrettyOpts, p palette) {
	if len(f.Content) == 0 {
		return
	}
	ctx := uint32(max(0, int(opts.Context)))
	first := start.Line - min(start.Line-1, ctx)
	last := min(start.Line+ctx, lineCount(f))
	if last < start.Line {
		last = start.Line
	}
	gw := len(strconv.FormatUint(uint64(last), 10))

	for n := first; n <= last; n++ {
		text := f.GetLine(n)
		shown := clip(expandTabs(text), opts.Width)
		fmt.Fprintf(w, "%s %s\n", p.gutter.Sprintf("%*d |", gw, n), shown)
		if n != start.Line {
			continue
		}
		pad, width := caretPosition(text, start, end, opts.Width)
		fmt.Fprintf(w, "%s %s%s\n",
			p.gutter.Sprintf("%*s |", gw, ""),
			strings.Repeat(" ", pad),
			p.caret.Sprint("^"+strings.Repeat("~", width-1)))
	}
}

// caretPosition returns the display column and width of the underline for
// the part of the span that lies on the start line.
func caretPosition(text string, start, end source.LineCol, limit uint8) (pad, width int) {
	from := min(int(start.Col)-1, len(text))
	to := len(text)
	if end.Line == start.Line {
		to = min(int(end.Col)-1, len(text))
	}
	to = max(from, to)

	pad = runewidth.StringWidth(expandTabs(text[:from]))
	width = max(1, runewidth.StringWidth(expandTabs(text[from:to])))
	if limit > 0 {
		pad = min(pad, int(limit))
		width = max(1, min(width, int(limit)-pad))
	}
	return pad, width
}

func lineCount(f *source.File) uint32 {
	n := uint32(len(f.LineIdx)) + 1 // #nosec G115 -- LineIdx is bounded by a uint32-sized file
	if len(f.Content) > 0 && f.Content[len(f.Content)-1] == '\n' {
		n--
	}
	return n
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

func clip(s string, limit uint8) string {
	if limit == 0 || runewidth.StringWidth(s) <= int(limit) {
		return s
	}
	return runewidth.Truncate(s, int(limit), "…")
}
