// Package rewrite turns a possibly pruned translation unit back into
// source text.
//
// Rendering is structure preserving: every byte outside a changed type
// body is copied from the original source, and a changed body is rebuilt
// from its opening text, the extents of its surviving members (each with
// its own leading whitespace and comments), and its closing text.
package rewrite

import (
	"bytes"
	"strings"

	"github.com/kelloggm/specimin/pkg/javaast"
)

// defaultIndent is added to the declaration's indentation when a
// synthesized member has no original sibling to copy indentation from.
const defaultIndent = "    "

// Render returns the text of unit. An unmodified unit renders to its
// original source byte for byte.
func Render(unit *javaast.Unit) []byte {
	r := renderer{src: unit.Source}
	r.buf.Grow(len(unit.Source))
	r.region(javaast.Span{Start: 0, End: len(unit.Source)}, unit)

	return r.buf.Bytes()
}

// Modified reports whether any type body in unit changed since parsing.
func Modified(unit *javaast.Unit) bool {
	modified := false

	javaast.Inspect(unit, func(n javaast.Node) bool {
		if decl, ok := n.(*javaast.TypeDecl); ok && decl.Dirty() {
			modified = true
		}

		return !modified
	})

	return modified
}

type renderer struct {
	src []byte
	buf bytes.Buffer
}

// region copies span from the source, substituting the rebuilt text of
// every outermost changed type declaration under root.
func (r *renderer) region(span javaast.Span, root javaast.Node) {
	pos := span.Start

	javaast.Inspect(root, func(n javaast.Node) bool {
		decl, ok := n.(*javaast.TypeDecl)
		if !ok || !decl.Dirty() || !decl.HasBody() {
			return true
		}

		declSpan := decl.Origin().Span
		r.buf.Write(r.src[pos:declSpan.Start])
		r.body(decl)
		pos = declSpan.End

		return false
	})

	r.buf.Write(r.src[pos:span.End])
}

func (r *renderer) body(decl *javaast.TypeDecl) {
	span := decl.Origin().Span
	r.buf.Write(r.src[span.Start:decl.BodyPrefixEnd()])

	wrote := false
	open := false

	for _, m := range decl.Members {
		if raw, ok := m.(*javaast.RawMember); ok {
			r.raw(decl, raw, wrote)
			wrote = true
			open = true

			continue
		}

		r.region(m.Extent(), m)
		wrote = true
		open = false
	}

	tail := r.src[decl.BodyTailStart():span.End]
	if open && !startsLine(tail) {
		r.buf.WriteByte('\n')
	}

	r.buf.Write(tail)
}

// raw writes a synthesized member on a line of its own, separated from a
// preceding sibling by a blank line. The line is left open.
func (r *renderer) raw(decl *javaast.TypeDecl, m *javaast.RawMember, afterSibling bool) {
	if !bytes.HasSuffix(r.buf.Bytes(), []byte("\n")) {
		r.buf.WriteByte('\n')
	}

	if afterSibling {
		r.buf.WriteByte('\n')
	}

	r.buf.WriteString(indentLines(m.Text, r.memberIndent(decl)))
}

// startsLine reports whether text begins with a line break after any blanks.
func startsLine(text []byte) bool {
	trimmed := bytes.TrimLeft(text, " \t")

	return len(trimmed) > 0 && (trimmed[0] == '\n' || trimmed[0] == '\r')
}

// memberIndent returns the indentation of the first original member of
// decl, or one level deeper than decl itself when it has none.
func (r *renderer) memberIndent(decl *javaast.TypeDecl) string {
	for _, m := range decl.Members {
		if m.Origin().Synthesized {
			continue
		}

		return lineIndent(r.src, m.Origin().Span.Start)
	}

	return lineIndent(r.src, decl.Origin().Span.Start) + defaultIndent
}

// lineIndent returns the blanks that start the line containing offset,
// up to the first non-blank byte or offset.
func lineIndent(src []byte, offset int) string {
	start := bytes.LastIndexByte(src[:offset], '\n') + 1

	end := start
	for end < offset && (src[end] == ' ' || src[end] == '\t') {
		end++
	}

	return string(src[start:end])
}

func indentLines(text, indent string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[i] = indent + line
		}
	}

	return strings.Join(lines, "\n")
}
