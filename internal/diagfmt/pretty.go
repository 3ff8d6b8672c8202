package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"sharpfix/internal/diag"
	"sharpfix/internal/source"
)

type palette struct {
	err, warn, info, code, gutter, caret, note *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		code:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgGreen, color.Bold),
		note:   color.New(color.FgMagenta),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.gutter, p.caret, p.note} {
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
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем связанные места.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		if d.Internal && !opts.ShowInternal {
			continue
		}
		f := fs.Get(d.Primary.File)
		if f == nil {
			fmt.Fprintf(w, "%s %s: %s\n", p.severity(d.Severity).Sprint(d.Severity), p.code.Sprint(d.Code.ID()), d.Message)
			continue
		}
		start, end := fs.Resolve(d.Primary)
		msg := d.Message
		if d.Internal {
			msg += " (" + d.Prop("error") + ")"
		}
		fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
			f.FormatPath(pathModeName(opts.PathMode), fs.BaseDir()), start.Line, start.Col,
			p.severity(d.Severity).Sprint(d.Severity), p.code.Sprint(d.Code.ID()), msg)
		snippet(w, p, f, start, end, int(opts.Context))

		if opts.ShowSecondary {
			for _, sp := range d.Secondary {
				sf := fs.Get(sp.File)
				if sf == nil {
					continue
				}
				s, e := fs.Resolve(sp)
				fmt.Fprintf(w, "  %s %s:%d:%d\n", p.note.Sprint("note: related location"),
					sf.FormatPath(pathModeName(opts.PathMode), fs.BaseDir()), s.Line, s.Col)
				snippet(w, p, sf, s, e, 0)
			}
		}
	}
}

func snippet(w io.Writer, p palette, f *source.File, start, end source.LineCol, context int) {
	first := start.Line
	for i := 0; i < context && first > 1; i++ {
		first--
	}
	width := len(fmt.Sprint(start.Line))
	for ln := first; ln <= start.Line; ln++ {
		fmt.Fprintf(w, "%s %s\n", p.gutter.Sprintf("%*d |", width, ln), f.GetLine(ln))
	}

	line := f.GetLine(start.Line)
	from := min(max(int(start.Col)-1, 0), len(line))
	to := len(line)
	if end.Line == start.Line {
		to = min(max(int(end.Col)-1, from), len(line))
	}
	var pad strings.Builder
	for _, r := range line[:from] {
		if r == '\t' {
			pad.WriteRune('\t')
			continue
		}
		pad.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	n := runewidth.StringWidth(line[from:to])
	if n < 1 {
		n = 1
	}
	fmt.Fprintf(w, "%s %s%s\n", p.gutter.Sprintf("%*s |", width, ""), pad.String(),
		p.caret.Sprint("^"+strings.Repeat("~", n-1)))
}

// Short печатает одну строку на находку в стабильном порядке.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, includeSecondary bool) {
	out := diag.FormatShortDiagnostics(bag.Items(), fs, includeSecondary)
	if out != "" {
		fmt.Fprintln(w, out)
	}
}
