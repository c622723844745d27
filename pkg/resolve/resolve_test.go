package resolve_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelloggm/specimin/pkg/javaast"
	"github.com/kelloggm/specimin/pkg/resolve"
)

func buildIndex(t *testing.T, files map[string]string) (*resolve.Index, []*javaast.Unit) {
	t.Helper()

	parser := javaast.NewParser()

	var units []*javaast.Unit

	for path, src := range files {
		unit, err := parser.Parse(context.Background(), path, []byte(src))
		require.NoError(t, err)
		require.Zero(t, unit.ErrorCount, "fixture %s must parse cleanly", path)

		units = append(units, unit)
	}

	index, err := resolve.NewIndex(units)
	require.NoError(t, err)

	return index, units
}

// callsByText indexes every call in the units by its source text.
func callsByText(units []*javaast.Unit) map[string]*javaast.CallExpr {
	out := make(map[string]*javaast.CallExpr)

	for _, unit := range units {
		javaast.Inspect(unit, func(n javaast.Node) bool {
			if call, ok := n.(*javaast.CallExpr); ok {
				out[unit.Text(call.Origin().Span)] = call
			}

			return true
		})
	}

	return out
}

func TestOverloadSelection(t *testing.T) {
	t.Parallel()

	index, units := buildIndex(t, map[string]string{"p/A.java": `package p;

class A {
    void f(int x) {}
    void f(long x) {}
    void f(String s) {}
    void f(Object o) {}
    void g(Integer x) {}
    void g(long x) {}
    void h(int... xs) {}
    void h(int a, int b) {}
    void k(Object o) {}
    void k(String s) {}

    void run(String text, short sh, B b) {
        f(1);
        f(1L);
        f(text);
        f(b);
        f('c');
        f(sh);
        g(5);
        h(1, 2);
        h(1, 2, 3);
        h();
        k(null);
    }
}

class B {}
`})

	calls := callsByText(units)

	tests := []struct {
		call string
		want resolve.Signature
	}{
		{"f(1)", "p.A#f(int)"},
		{"f(1L)", "p.A#f(long)"},
		{"f(text)", "p.A#f(java.lang.String)"},
		{"f(b)", "p.A#f(java.lang.Object)"},
		{"f('c')", "p.A#f(int)"},
		{"f(sh)", "p.A#f(int)"},
		{"g(5)", "p.A#g(long)"},
		{"h(1, 2)", "p.A#h(int,int)"},
		{"h(1, 2, 3)", "p.A#h(int...)"},
		{"h()", "p.A#h(int...)"},
		{"k(null)", "p.A#k(java.lang.String)"},
	}

	for _, tt := range tests {
		call, ok := calls[tt.call]
		require.True(t, ok, tt.call)

		got, err := index.Call(call)
		require.NoError(t, err, tt.call)
		assert.Equal(t, tt.want, got, tt.call)
	}
}

func TestAmbiguousCall(t *testing.T) {
	t.Parallel()

	index, units := buildIndex(t, map[string]string{"A.java": `class A {
    void m(Integer a, int b) {}
    void m(int a, Integer b) {}
    void run() { m(1, 2); }
}
`})

	_, err := index.Call(callsByText(units)["m(1, 2)"])
	require.ErrorIs(t, err, resolve.ErrAmbiguous)
	assert.True(t, resolve.IsFailure(err))
}

func TestInheritedAndOverriddenMethods(t *testing.T) {
	t.Parallel()

	index, units := buildIndex(t, map[string]string{
		"p/Base.java": `package p;

public class Base {
    public void inherited() {}
    public void overridden() {}
}
`,
		"p/Derived.java": `package p;

public class Derived extends Base {
    @Override
    public void overridden() {}

    void run(Derived d, Base b) {
        d.inherited();
        d.overridden();
        b.overridden();
        super.overridden();
        this.toString();
    }
}
`,
	})

	calls := callsByText(units)

	tests := []struct {
		call string
		want resolve.Signature
	}{
		{"d.inherited()", "p.Base#inherited()"},
		{"d.overridden()", "p.Derived#overridden()"},
		{"b.overridden()", "p.Base#overridden()"},
		{"super.overridden()", "p.Base#overridden()"},
	}

	for _, tt := range tests {
		got, err := index.Call(calls[tt.call])
		require.NoError(t, err, tt.call)
		assert.Equal(t, tt.want, got, tt.call)
	}

	_, err := index.Call(calls["this.toString()"])
	require.ErrorIs(t, err, resolve.ErrExternal)
	assert.False(t, resolve.IsFailure(err))
}

func TestNestedLocalAndAnonymousTypes(t *testing.T) {
	t.Parallel()

	index, units := buildIndex(t, map[string]string{"com/example/Outer.java": `package com.example;

public class Outer {
    void m() {
        Inner.n();
        class Local { void l() {} }
        new Local().l();
        Runnable r = new Runnable() {
            public void run() { helper(); }
        };
    }

    void helper() {}

    static class Inner {
        static void n() {}
    }
}
`})

	calls := callsByText(units)

	got, err := index.Call(calls["Inner.n()"])
	require.NoError(t, err)
	assert.Equal(t, resolve.Signature("com.example.Outer.Inner#n()"), got)

	got, err = index.Call(calls["new Local().l()"])
	require.NoError(t, err)
	assert.Equal(t, resolve.Signature("com.example.Outer.Local#l()"), got)

	got, err = index.Call(calls["helper()"])
	require.NoError(t, err, "unqualified calls search enclosing types outward")
	assert.Equal(t, resolve.Signature("com.example.Outer#helper()"), got)

	info, ok := index.Lookup("com.example.Outer.Inner")
	require.True(t, ok)
	assert.Equal(t, "Inner", info.Decl.Name)

	var anonymous *javaast.TypeDecl

	javaast.Inspect(units[0], func(n javaast.Node) bool {
		if decl, isDecl := n.(*javaast.TypeDecl); isDecl && decl.Kind == javaast.KindAnonymous {
			anonymous = decl
		}

		return true
	})

	require.NotNil(t, anonymous)

	sig, err := index.Declaration(anonymous)
	require.NoError(t, err)
	assert.Equal(t, resolve.Signature("com.example.Outer$1"), sig)
}

func TestDeclarationSignatures(t *testing.T) {
	t.Parallel()

	index, units := buildIndex(t, map[string]string{"p/A.java": `package p;

import java.util.List;

class A<T> {
    int x, y;

    static {}

    {}

    A(List<String> items, T value) {}

    <U extends Number> void m(U u, String[] arr, int... rest) {}
}
`})

	decl := units[0].Types()[0]
	require.Len(t, decl.Members, 5)

	field, ok := decl.Members[0].(*javaast.FieldDecl)
	require.True(t, ok)

	sig, err := index.Declaration(field.Vars[1])
	require.NoError(t, err)
	assert.Equal(t, resolve.Signature("p.A#y"), sig)

	_, err = index.Declaration(field)
	require.ErrorIs(t, err, resolve.ErrAmbiguous)

	sig, err = index.Declaration(decl.Members[1].(javaast.Decl))
	require.NoError(t, err)
	assert.Equal(t, resolve.Signature("p.A#<clinit>"), sig)

	sig, err = index.Declaration(decl.Members[2].(javaast.Decl))
	require.NoError(t, err)
	assert.Equal(t, resolve.Signature("p.A#<init>"), sig)

	sig, err = index.Declaration(decl.Members[3].(javaast.Decl))
	require.NoError(t, err)
	assert.Equal(t, resolve.Signature("p.A#A(java.util.List,java.lang.Object)"), sig)

	sig, err = index.Declaration(decl.Members[4].(javaast.Decl))
	require.NoError(t, err)
	assert.Equal(t, resolve.Signature("p.A#m(java.lang.Object,java.lang.String[],int...)"), sig)
}

func TestConstructorResolution(t *testing.T) {
	t.Parallel()

	index, units := buildIndex(t, map[string]string{"p/A.java": `package p;

class Base {
    Base(int x) {}
}

class A extends Base {
    A() { super(1); }
    A(String s) { this(); }

    void run() {
        new A();
        new A("s");
        new Plain();
        Runnable r = new Runnable() { public void run() {} };
        Iface i = new Iface() {};
    }
}

class Plain {}

interface Iface {}
`})

	var (
		news  = map[string]*javaast.NewExpr{}
		ctors []*javaast.CtorCallExpr
	)

	javaast.Inspect(units[0], func(n javaast.Node) bool {
		switch node := n.(type) {
		case *javaast.NewExpr:
			news[fmt.Sprintf("%s/%d", node.Type.Name, len(node.Args))] = node
		case *javaast.CtorCallExpr:
			ctors = append(ctors, node)
		}

		return true
	})

	expect := map[string]resolve.Signature{
		"A/0":     "p.A#A()",
		"A/1":     "p.A#A(java.lang.String)",
		"Plain/0": "p.Plain#Plain()",
		"Iface/0": "p.Iface#Iface()",
	}

	for key, want := range expect {
		n, ok := news[key]
		require.True(t, ok, key)

		got, err := index.New(n)
		require.NoError(t, err, key)
		assert.Equal(t, want, got, key)
	}

	_, err := index.New(news["Runnable/0"])
	require.ErrorIs(t, err, resolve.ErrExternal)

	require.Len(t, ctors, 2)

	got, err := index.ConstructorCall(ctors[0])
	require.NoError(t, err)
	assert.Equal(t, resolve.Signature("p.Base#Base(int)"), got)

	got, err = index.ConstructorCall(ctors[1])
	require.NoError(t, err)
	assert.Equal(t, resolve.Signature("p.A#A()"), got)
}

func TestFieldResolution(t *testing.T) {
	t.Parallel()

	index, units := buildIndex(t, map[string]string{"p/A.java": `package p;

class Base {
    protected int inherited;
}

enum Color { RED, GREEN }

class A extends Base {
    int own;
    static final String NAME = "a";

    int run(int param, A other) {
        int local = param;
        Color c = Color.GREEN;
        return own + inherited + local + other.own + A.NAME.length() + Missing.x;
    }
}
`})

	names := map[string]javaast.Expr{}

	javaast.Inspect(units[0], func(n javaast.Node) bool {
		switch node := n.(type) {
		case *javaast.NameExpr:
			names[node.Name] = node
		case *javaast.FieldAccessExpr:
			names[units[0].Text(node.Origin().Span)] = node
		}

		return true
	})

	tests := []struct {
		name string
		want resolve.Signature
		err  error
	}{
		{name: "own", want: "p.A#own"},
		{name: "inherited", want: "p.Base#inherited"},
		{name: "other.own", want: "p.A#own"},
		{name: "A.NAME", want: "p.A#NAME"},
		{name: "Color.GREEN", want: "p.Color#GREEN"},
		{name: "local", err: resolve.ErrNotField},
		{name: "param", err: resolve.ErrNotField},
		{name: "A", err: resolve.ErrNotField},
		{name: "Missing.x", err: resolve.ErrUnresolved},
	}

	for _, tt := range tests {
		expr, ok := names[tt.name]
		require.True(t, ok, tt.name)

		got, err := index.Field(expr)
		if tt.err != nil {
			require.ErrorIs(t, err, tt.err, tt.name)

			continue
		}

		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestExternalAndImplicitReferences(t *testing.T) {
	t.Parallel()

	index, units := buildIndex(t, map[string]string{"p/A.java": `package p;

import java.util.List;

enum Color { RED, GREEN }

record Point(int x, int y) {}

class A {
    void run(List<String> items, Point p) {
        items.size();
        System.out.println("x");
        Color.values();
        p.x();
        missing();
    }
}
`})

	calls := callsByText(units)

	_, err := index.Call(calls["items.size()"])
	require.ErrorIs(t, err, resolve.ErrExternal)

	_, err = index.Call(calls[`System.out.println("x")`])
	require.ErrorIs(t, err, resolve.ErrExternal)

	_, err = index.Call(calls["Color.values()"])
	require.ErrorIs(t, err, resolve.ErrImplicit)

	_, err = index.Call(calls["p.x()"])
	require.ErrorIs(t, err, resolve.ErrImplicit)

	_, err = index.Call(calls["missing()"])
	require.ErrorIs(t, err, resolve.ErrUnresolved)

	var resErr *resolve.ResolutionError

	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "missing()", resErr.Ref)
	assert.True(t, resolve.IsFailure(err))
}

func TestCallChainsUseReturnTypes(t *testing.T) {
	t.Parallel()

	index, units := buildIndex(t, map[string]string{"p/A.java": `package p;

class B {
    C next() { return null; }
}

class C {
    void end() {}
}

class A {
    B b;

    void run() {
        b.next().end();
        var local = new B();
        local.next();
    }
}
`})

	calls := callsByText(units)

	got, err := index.Call(calls["b.next().end()"])
	require.NoError(t, err)
	assert.Equal(t, resolve.Signature("p.C#end()"), got)

	got, err = index.Call(calls["local.next()"])
	require.NoError(t, err)
	assert.Equal(t, resolve.Signature("p.B#next()"), got)
}

func TestImportsAndPackages(t *testing.T) {
	t.Parallel()

	index, units := buildIndex(t, map[string]string{
		"a/Util.java": `package a;

public class Util {
    public static void help(String s) {}
}
`,
		"b/User.java": `package b;

import a.Util;
import static a.Util.help;

class User {
    void run() {
        Util.help("x");
        a.Util.help("y");
        help("z");
    }
}
`,
	})

	calls := callsByText(units)

	for _, text := range []string{`Util.help("x")`, `a.Util.help("y")`, `help("z")`} {
		got, err := index.Call(calls[text])
		require.NoError(t, err, text)
		assert.Equal(t, resolve.Signature("a.Util#help(java.lang.String)"), got, text)
	}

	assert.Equal(t, []string{"a.Util", "b.User"}, index.Types())
}
