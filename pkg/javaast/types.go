package javaast

import "strings"

// TypeRef is a type as written in source.
type TypeRef struct {
	// Text is the original type text with whitespace removed,
	// e.g. "Map.Entry<String,int[]>[]".
	Text string
	// Name is the dotted name without type arguments or dimensions,
	// e.g. "Map.Entry", "int", "var".
	Name string
	// Args are the type arguments of the last name segment.
	Args []TypeRef
	// Dims is the number of array dimensions.
	Dims int
	// Primitive is true for primitive types and void.
	Primitive bool
	// Wildcard is true for `?`, `? extends T`, and `? super T`; Name then
	// holds the bound name, or "" when unbounded.
	Wildcard bool
	Span     Span
}

// IsZero reports whether the reference is empty (no type was written).
func (t TypeRef) IsZero() bool {
	return t.Name == "" && !t.Wildcard
}

// IsVar reports whether the type is the `var` placeholder of local
// variable type inference.
func (t TypeRef) IsVar() bool {
	return t.Name == "var" && t.Dims == 0 && len(t.Args) == 0
}

// Elem returns the type with one fewer array dimension.
func (t TypeRef) Elem() TypeRef {
	if t.Dims == 0 {
		return t
	}

	elem := t
	elem.Dims--
	elem.Text = strings.TrimSuffix(elem.Text, "[]")

	return elem
}

// WithDims returns the type with extra array dimensions appended.
func (t TypeRef) WithDims(extra int) TypeRef {
	if extra == 0 {
		return t
	}

	out := t
	out.Dims += extra
	out.Text += strings.Repeat("[]", extra)

	return out
}

// SimpleName returns the last segment of Name.
func (t TypeRef) SimpleName() string {
	if idx := strings.LastIndexByte(t.Name, '.'); idx >= 0 {
		return t.Name[idx+1:]
	}

	return t.Name
}

// SpecifierText renders a parameter type the way target specifiers write it.
func (v *Var) SpecifierText() string {
	if v.Varargs {
		return v.Type.Elem().Text + "..."
	}

	return v.Type.Text
}

var primitiveNames = map[string]bool{
	"boolean": true, "byte": true, "char": true, "short": true,
	"int": true, "long": true, "float": true, "double": true, "void": true,
}

// IsPrimitiveName reports whether name is a primitive keyword or void.
func IsPrimitiveName(name string) bool {
	return primitiveNames[name]
}

// stripSpace removes all whitespace from s.
func stripSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}
