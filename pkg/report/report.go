// Package report prints the human-readable outcome of a slicing run: a
// per-unit table, the unresolved references, and diffs of what changed.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/kelloggm/specimin/pkg/slicer"
)

// Printer writes reports to a writer.
type Printer struct {
	w io.Writer

	good   *color.Color
	warn   *color.Color
	bad    *color.Color
	accent *color.Color
}

// NewPrinter creates a Printer. Colors are also off when the process is
// not attached to a terminal.
func NewPrinter(w io.Writer, noColor bool) *Printer {
	p := &Printer{
		w:      w,
		good:   color.New(color.FgGreen),
		warn:   color.New(color.FgYellow),
		bad:    color.New(color.FgRed),
		accent: color.New(color.FgCyan),
	}

	if noColor {
		for _, c := range []*color.Color{p.good, p.warn, p.bad, p.accent} {
			c.DisableColor()
		}
	}

	return p
}

// Summary writes the per-unit table followed by a totals line.
func (p *Printer) Summary(r *slicer.Result) {
	manifest := slicer.NewManifest(r)
	sizes := outputSizes(r.Emit)

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Format.Footer = text.FormatDefault

	tbl.AppendHeader(table.Row{"Unit", "Status", "Kept", "Removed", "Size"})

	kept, removed := 0, 0

	for _, u := range manifest.Units {
		kept += u.Kept
		removed += u.Removed

		size, ok := sizes[u.Path]
		if !ok {
			size = "-"
		}

		tbl.AppendRow(table.Row{u.Path, p.status(u.Status), u.Kept, u.Removed, size})
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d units", len(manifest.Units)), "", kept, removed, ""})

	fmt.Fprintln(p.w, tbl.Render())
	fmt.Fprintln(p.w, p.totals(r))
}

func (p *Printer) status(s string) string {
	switch s {
	case slicer.StatusWritten, slicer.StatusRendered:
		return p.good.Sprint(s)
	case slicer.StatusSkipped:
		return p.warn.Sprint(s)
	case slicer.StatusFailed:
		return p.bad.Sprint(s)
	default:
		return s
	}
}

func (p *Printer) totals(r *slicer.Result) string {
	targets, used := 0, 0
	if r.Collect != nil {
		targets, used = r.Collect.Root.Len(), r.Collect.Used.Len()
	}

	line := fmt.Sprintf("%s, %s, %s removed",
		plural(targets, "target"), plural(used, "used member"), humanize.Comma(int64(r.Removed())))

	if n := len(r.Failures); n > 0 {
		return line + ", " + p.warn.Sprint(plural(n, "unresolved reference"))
	}

	return line
}

func outputSizes(e *slicer.EmitResult) map[string]string {
	sizes := make(map[string]string)
	if e == nil {
		return sizes
	}

	for _, out := range e.Outputs {
		sizes[out.Path] = fmt.Sprintf("%s -> %s",
			humanize.Bytes(uint64(len(out.Original))), humanize.Bytes(uint64(len(out.Text))))
	}

	return sizes
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}

	return humanize.Comma(int64(n)) + " " + noun + "s"
}

// Failures lists the resolution failures, one per line.
func (p *Printer) Failures(failures []slicer.ResolutionFailure) {
	if len(failures) == 0 {
		return
	}

	fmt.Fprintln(p.w, p.warn.Sprint("unresolved references:"))

	for _, f := range failures {
		fmt.Fprintf(p.w, "  %s\n", f.String())
	}
}

// Diff writes a unified diff for every output whose text changed.
func (p *Printer) Diff(outputs []slicer.Output) {
	for _, out := range outputs {
		diff := UnifiedDiff(out.Path, out.Original, out.Text, DefaultContext)
		if diff == "" {
			continue
		}

		scanner := bufio.NewScanner(strings.NewReader(diff))
		scanner.Buffer(nil, len(diff)+1)

		for scanner.Scan() {
			fmt.Fprintln(p.w, p.diffLine(scanner.Text()))
		}
	}
}

func (p *Printer) diffLine(line string) string {
	switch {
	case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
		return line
	case strings.HasPrefix(line, "@@"):
		return p.accent.Sprint(line)
	case strings.HasPrefix(line, "-"):
		return p.bad.Sprint(line)
	case strings.HasPrefix(line, "+"):
		return p.good.Sprint(line)
	default:
		return line
	}
}
