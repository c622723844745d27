package report

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultContext is the number of unchanged lines around each hunk.
const DefaultContext = 3

const noNewline = "\\ No newline at end of file\n"

type diffLine struct {
	op   diffmatchpatch.Operation
	text string
}

// UnifiedDiff renders a line-oriented unified diff of before and after.
// It returns "" when they are equal.
func UnifiedDiff(path string, before, after []byte, context int) string {
	lines := diffLines(string(before), string(after))

	var changes []int

	for i, l := range lines {
		if l.op != diffmatchpatch.DiffEqual {
			changes = append(changes, i)
		}
	}

	if len(changes) == 0 {
		return ""
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "--- a/%s\n+++ b/%s\n", path, path)

	for _, h := range hunks(changes, len(lines), context) {
		writeHunk(&sb, lines, h[0], h[1])
	}

	return sb.String()
}

func diffLines(before, after string) []diffLine {
	dmp := diffmatchpatch.New()
	src, dst, table := dmp.DiffLinesToRunes(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMainRunes(src, dst, false), table)

	var out []diffLine

	for _, d := range diffs {
		for _, text := range strings.SplitAfter(d.Text, "\n") {
			if text != "" {
				out = append(out, diffLine{op: d.Type, text: text})
			}
		}
	}

	return out
}

// hunks groups change indices into [start, end) ranges, each padded with
// context lines and merged when their padding overlaps.
func hunks(changes []int, total, context int) [][2]int {
	var out [][2]int

	start := max(0, changes[0]-context)
	end := min(total, changes[0]+context+1)

	for _, c := range changes[1:] {
		if c-context <= end {
			end = min(total, c+context+1)

			continue
		}

		out = append(out, [2]int{start, end})
		start, end = c-context, min(total, c+context+1)
	}

	return append(out, [2]int{start, end})
}

func writeHunk(sb *strings.Builder, lines []diffLine, start, end int) {
	oldBefore, newBefore := 0, 0

	for _, l := range lines[:start] {
		if l.op != diffmatchpatch.DiffInsert {
			oldBefore++
		}

		if l.op != diffmatchpatch.DiffDelete {
			newBefore++
		}
	}

	oldCount, newCount := 0, 0

	for _, l := range lines[start:end] {
		if l.op != diffmatchpatch.DiffInsert {
			oldCount++
		}

		if l.op != diffmatchpatch.DiffDelete {
			newCount++
		}
	}

	fmt.Fprintf(sb, "@@ -%s +%s @@\n", hunkRange(oldBefore, oldCount), hunkRange(newBefore, newCount))

	for _, l := range lines[start:end] {
		sb.WriteByte(prefix(l.op))
		sb.WriteString(l.text)

		if !strings.HasSuffix(l.text, "\n") {
			sb.WriteString("\n" + noNewline)
		}
	}
}

func hunkRange(before, count int) string {
	if count == 0 {
		return fmt.Sprintf("%d,0", before)
	}

	if count == 1 {
		return fmt.Sprintf("%d", before+1)
	}

	return fmt.Sprintf("%d,%d", before+1, count)
}

func prefix(op diffmatchpatch.Operation) byte {
	switch op {
	case diffmatchpatch.DiffDelete:
		return '-'
	case diffmatchpatch.DiffInsert:
		return '+'
	default:
		return ' '
	}
}
