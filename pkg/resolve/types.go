package resolve

import (
	"strings"

	"github.com/kelloggm/specimin/pkg/javaast"
)

type typeKind int

const (
	kindUnknown typeKind = iota
	kindPrimitive
	kindRef
	kindNull
	kindTypeVar
	// kindFunctional is the type of a lambda or method reference before
	// a target type is known.
	kindFunctional
	// kindPackage marks a qualifier that names a package.
	kindPackage
)

// jtype is the static type of an expression as far as the index can tell.
type jtype struct {
	kind typeKind
	// name is a primitive keyword or a qualified reference name.
	name string
	dims int
	// info is set for reference types declared in the indexed sources.
	info *TypeInfo
	// static marks a type name used as a qualifier rather than a value.
	static bool
}

const objectName = "java.lang.Object"

var (
	unknownType    = jtype{kind: kindUnknown}
	nullType       = jtype{kind: kindNull, name: "null"}
	functionalType = jtype{kind: kindFunctional}
	booleanType    = primitive("boolean")
	intType        = primitive("int")
	stringType     = external("java.lang.String")
)

func primitive(name string) jtype { return jtype{kind: kindPrimitive, name: name} }

func external(name string) jtype { return jtype{kind: kindRef, name: name} }

func declared(info *TypeInfo) jtype { return jtype{kind: kindRef, name: info.Name, info: info} }

func (t jtype) known() bool { return t.kind != kindUnknown }

func (t jtype) isPrimitive() bool { return t.kind == kindPrimitive && t.dims == 0 }

func (t jtype) isReference() bool {
	switch t.kind {
	case kindRef, kindNull, kindTypeVar, kindFunctional:
		return true
	case kindPrimitive:
		return t.dims > 0
	case kindUnknown, kindPackage:
	}

	return false
}

func (t jtype) isString() bool { return t.kind == kindRef && t.dims == 0 && t.name == "java.lang.String" }

func (t jtype) withDims(dims int) jtype {
	t.dims += dims

	return t
}

func (t jtype) elem() jtype {
	if t.dims == 0 {
		return unknownType
	}

	t.dims--

	return t
}

func (t jtype) value() jtype {
	t.static = false

	return t
}

// erasure renders the type the way signatures print parameters.
func (t jtype) erasure(written javaast.TypeRef) string {
	var name string

	switch t.kind {
	case kindPrimitive, kindRef:
		name = t.name
	case kindTypeVar:
		name = objectName
	case kindUnknown, kindNull, kindFunctional, kindPackage:
		name = written.Name
		t.dims = written.Dims
	}

	return name + strings.Repeat("[]", t.dims)
}

var widening = map[string][]string{
	"byte":  {"short", "int", "long", "float", "double"},
	"short": {"int", "long", "float", "double"},
	"char":  {"int", "long", "float", "double"},
	"int":   {"long", "float", "double"},
	"long":  {"float", "double"},
	"float": {"double"},
}

func widens(from, to string) bool {
	if from == to {
		return true
	}

	for _, w := range widening[from] {
		if w == to {
			return true
		}
	}

	return false
}

var boxes = map[string]string{
	"boolean": "java.lang.Boolean",
	"byte":    "java.lang.Byte",
	"char":    "java.lang.Character",
	"short":   "java.lang.Short",
	"int":     "java.lang.Integer",
	"long":    "java.lang.Long",
	"float":   "java.lang.Float",
	"double":  "java.lang.Double",
}

func unbox(name string) (string, bool) {
	for prim, box := range boxes {
		if box == name {
			return prim, true
		}
	}

	return "", false
}

var numericRank = map[string]int{
	"byte": 1, "short": 2, "char": 2, "int": 3, "long": 4, "float": 5, "double": 6,
}

// promote applies binary numeric promotion.
func promote(x, y jtype) jtype {
	xs, xok := numericName(x)
	ys, yok := numericName(y)

	if !xok || !yok {
		return unknownType
	}

	best := "int"
	for _, n := range []string{xs, ys} {
		if numericRank[n] > numericRank[best] {
			best = n
		}
	}

	return primitive(best)
}

func numericName(t jtype) (string, bool) {
	name := t.name
	if t.kind == kindRef && t.dims == 0 {
		prim, ok := unbox(name)
		if !ok {
			return "", false
		}

		name = prim
	} else if !t.isPrimitive() {
		return "", false
	}

	_, numeric := numericRank[name]

	return name, numeric
}

// jdkSupertypes closes the hierarchy of the java.lang types overloads are
// most often written against.
var jdkSupertypes = map[string][]string{
	objectName:               nil,
	"java.lang.String":       {"java.lang.CharSequence", "java.lang.Comparable", "java.io.Serializable", objectName},
	"java.lang.CharSequence": {objectName},
	"java.lang.Number":       {"java.io.Serializable", objectName},
	"java.lang.Integer":      {"java.lang.Number", "java.lang.Comparable", "java.io.Serializable", objectName},
	"java.lang.Long":         {"java.lang.Number", "java.lang.Comparable", "java.io.Serializable", objectName},
	"java.lang.Short":        {"java.lang.Number", "java.lang.Comparable", "java.io.Serializable", objectName},
	"java.lang.Byte":         {"java.lang.Number", "java.lang.Comparable", "java.io.Serializable", objectName},
	"java.lang.Float":        {"java.lang.Number", "java.lang.Comparable", "java.io.Serializable", objectName},
	"java.lang.Double":       {"java.lang.Number", "java.lang.Comparable", "java.io.Serializable", objectName},
	"java.lang.Boolean":      {"java.lang.Comparable", "java.io.Serializable", objectName},
	"java.lang.Character":    {"java.lang.Comparable", "java.io.Serializable", objectName},
}

// javaLang lists java.lang simple names resolved without an import.
var javaLang = map[string]bool{
	"Object": true, "String": true, "CharSequence": true, "Number": true,
	"Integer": true, "Long": true, "Short": true, "Byte": true, "Float": true,
	"Double": true, "Boolean": true, "Character": true, "Void": true,
	"Math": true, "StrictMath": true, "System": true, "Thread": true, "Runnable": true,
	"Iterable": true, "Comparable": true, "Cloneable": true, "AutoCloseable": true,
	"Class": true, "ClassLoader": true, "Enum": true, "Record": true,
	"StringBuilder": true, "StringBuffer": true, "Process": true, "Runtime": true,
	"Throwable": true, "Exception": true, "Error": true, "RuntimeException": true,
	"IllegalArgumentException": true, "IllegalStateException": true,
	"NullPointerException": true, "UnsupportedOperationException": true,
	"IndexOutOfBoundsException": true, "ArrayIndexOutOfBoundsException": true,
	"ClassCastException": true, "ArithmeticException": true, "InterruptedException": true,
	"CloneNotSupportedException": true, "NumberFormatException": true,
	"AssertionError": true, "StackOverflowError": true, "OutOfMemoryError": true,
	"Override": true, "Deprecated": true, "SuppressWarnings": true,
	"FunctionalInterface": true, "SafeVarargs": true,
}

// objectMethods are members of java.lang.Object every type inherits.
var objectMethods = map[string]bool{
	"equals": true, "hashCode": true, "toString": true, "getClass": true,
	"notify": true, "notifyAll": true, "wait": true, "clone": true, "finalize": true,
}

// enumMethods are provided for every enum.
var enumMethods = map[string]bool{
	"values": true, "valueOf": true, "name": true, "ordinal": true,
	"compareTo": true, "getDeclaringClass": true, "describeConstable": true,
}

func literalType(kind javaast.LiteralKind) jtype {
	switch kind {
	case javaast.LitInt:
		return intType
	case javaast.LitLong:
		return primitive("long")
	case javaast.LitFloat:
		return primitive("float")
	case javaast.LitDouble:
		return primitive("double")
	case javaast.LitChar:
		return primitive("char")
	case javaast.LitString:
		return stringType
	case javaast.LitBool:
		return booleanType
	case javaast.LitNull:
		return nullType
	}

	return unknownType
}
