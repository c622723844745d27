package slicer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelloggm/specimin/pkg/javaast"
	"github.com/kelloggm/specimin/pkg/resolve"
	"github.com/kelloggm/specimin/pkg/slicer"
)

type file struct {
	path string
	src  string
}

// load parses files in order and indexes them together.
func load(t *testing.T, files ...file) ([]*javaast.Unit, *resolve.Index) {
	t.Helper()

	parser := javaast.NewParser()
	units := make([]*javaast.Unit, 0, len(files))

	for _, f := range files {
		unit, err := parser.Parse(context.Background(), f.path, []byte(f.src))
		require.NoError(t, err)
		require.Zero(t, unit.ErrorCount, "fixture %s must parse cleanly", f.path)

		units = append(units, unit)
	}

	index, err := resolve.NewIndex(units)
	require.NoError(t, err)

	return units, index
}

func sigs(values ...string) []resolve.Signature {
	out := make([]resolve.Signature, len(values))
	for i, v := range values {
		out[i] = resolve.Signature(v)
	}

	return out
}

var simpleFixture = []file{
	{"com/example/Simple.java", `package com.example;

import java.util.List;

public class Simple {
    public void bar() {
        helper( );
        Helper h=new Helper ( );
        h.assist();
    }

    private void helper() {
        System.out.println("help");
    }

    public void unrelated() {
        System.out.println("unrelated");
    }
}
`},
	{"com/example/Helper.java", `package com.example;

public class Helper {
    public Helper() {
    }

    public void assist() {
    }

    public void idle() {
    }
}
`},
	{"com/example/Unrelated.java", `package com.example;

public class Unrelated {
    public void work() {
    }
}
`},
}

func TestCollect_RootAndUsed(t *testing.T) {
	t.Parallel()

	units, index := load(t, simpleFixture...)

	result, err := slicer.NewCollector(index, []string{"com.example.Simple#bar()"}, nil).
		Collect(context.Background(), units)
	require.NoError(t, err)

	assert.Equal(t, sigs("com.example.Simple#bar()"), result.Root.Sorted())
	assert.Equal(t, sigs(
		"com.example.Helper#Helper()",
		"com.example.Helper#assist()",
		"com.example.Simple#helper()",
	), result.Used.Sorted())
	assert.Empty(t, result.Unmatched)
	assert.Empty(t, result.Failures)
}

func TestCollect_IsPure(t *testing.T) {
	t.Parallel()

	units, index := load(t, simpleFixture...)
	collector := slicer.NewCollector(index, []string{"com.example.Simple#bar()", "com.example.Helper#idle()"}, nil)

	first, err := collector.Collect(context.Background(), units)
	require.NoError(t, err)

	second, err := collector.Collect(context.Background(), units)
	require.NoError(t, err)

	assert.Equal(t, first.Root.Sorted(), second.Root.Sorted())
	assert.Equal(t, first.Used.Sorted(), second.Used.Sorted())
	assert.Equal(t, first.Failures, second.Failures)
}

func TestCollect_UnmatchedTargets(t *testing.T) {
	t.Parallel()

	units, index := load(t, file{"A.java", "class A {\n    void m() {}\n}\n"})

	result, err := slicer.NewCollector(index, []string{"A#m()", "B#x()"}, nil).
		Collect(context.Background(), units)

	var unmatched *slicer.UnmatchedTargetsError

	require.ErrorAs(t, err, &unmatched)
	assert.Equal(t, []string{"B#x()"}, unmatched.Targets)
	assert.Equal(t, "could not locate the following target methods in the target files: B#x()", err.Error())

	require.NotNil(t, result)
	assert.Equal(t, []string{"B#x()"}, result.Unmatched)
	assert.True(t, result.Root.Contains("A#m()"))
}

func TestCollect_UnmatchedAreReportedVerbatimInOrder(t *testing.T) {
	t.Parallel()

	units, index := load(t, file{"p/A.java", `package p;

class A {
    void m(int x, String s) {}
}
`})

	_, err := slicer.NewCollector(index, []string{" p.B#x ( ) ", "p.A#m( int , String )", "p.A#gone()"}, nil).
		Collect(context.Background(), units)

	var unmatched *slicer.UnmatchedTargetsError

	require.ErrorAs(t, err, &unmatched)
	assert.Equal(t, []string{" p.B#x ( ) ", "p.A#gone()"}, unmatched.Targets)
	assert.Equal(t,
		"could not locate the following target methods in the target files:  p.B#x ( ) , p.A#gone()",
		err.Error())
}

func TestCollect_NestedDeclarationsRestoreTheTargetFlag(t *testing.T) {
	t.Parallel()

	units, index := load(t, file{"p/Outer.java", `package p;

class Outer {
    void m() {
        Runnable r = new Runnable() {
            public void run() { x(); }
        };
        y();
    }

    void x() {}
    void y() {}
    void z() {}

    class Inner {
        void n() {
            y();
        }
    }

    void k() {
        z();
    }
}
`})

	result, err := slicer.NewCollector(index, []string{"p.Outer#m()"}, nil).Collect(context.Background(), units)
	require.NoError(t, err)
	assert.Equal(t, sigs("p.Outer#x()", "p.Outer#y()"), result.Used.Sorted())

	result, err = slicer.NewCollector(index, []string{"p.Outer.Inner#n()"}, nil).Collect(context.Background(), units)
	require.NoError(t, err)
	assert.Equal(t, sigs("p.Outer.Inner#n()"), result.Root.Sorted())
	assert.Equal(t, sigs("p.Outer#y()"), result.Used.Sorted())
}

func TestCollect_FieldsAndConstructorCalls(t *testing.T) {
	t.Parallel()

	units, index := load(t, file{"p/Child.java", `package p;

class Base {
    protected int size;
    protected int other;

    Base(int size) {
        this.size = size;
    }
}

class Child extends Base {
    static final int LIMIT = 3;

    Child() {
        super(LIMIT);
        size = size + 1;
    }
}
`})

	result, err := slicer.NewCollector(index, []string{"p.Child#Child()"}, nil).Collect(context.Background(), units)
	require.NoError(t, err)

	assert.Equal(t, sigs("p.Base#Base(int)", "p.Base#size", "p.Child#LIMIT"), result.Used.Sorted())
	assert.Empty(t, result.Failures)
}

func TestCollect_SwitchLabelsAreNotFieldReferences(t *testing.T) {
	t.Parallel()

	units, index := load(t, file{"p/A.java", `package p;

enum Color { RED, GREEN }

class A {
    int seen;

    void m(Color c) {
        switch (c) {
            case RED:
                seen++;
                break;
            default:
                break;
        }
    }
}
`})

	result, err := slicer.NewCollector(index, []string{"p.A#m(Color)"}, nil).Collect(context.Background(), units)
	require.NoError(t, err)

	assert.Equal(t, sigs("p.A#m(p.Color)"), result.Root.Sorted())
	assert.Equal(t, sigs("p.A#seen"), result.Used.Sorted())
	assert.Empty(t, result.Failures)
}

func TestCollect_FailuresAreSurfaced(t *testing.T) {
	t.Parallel()

	units, index := load(t, file{"p/A.java", `package p;

class A {
    void m() {
        missing();
    }
}
`})

	result, err := slicer.NewCollector(index, []string{"p.A#m()"}, nil).Collect(context.Background(), units)
	require.NoError(t, err)

	require.Len(t, result.Failures, 1)

	f := result.Failures[0]
	assert.Equal(t, "p/A.java", f.Unit)
	assert.Equal(t, 5, f.Line)
	assert.Equal(t, 9, f.Column)
	assert.Equal(t, "missing()", f.Expr)
	require.ErrorIs(t, f.Err, resolve.ErrUnresolved)
	assert.Contains(t, f.String(), "p/A.java:5:9: missing()")
}

func TestCollect_Cancelled(t *testing.T) {
	t.Parallel()

	units, index := load(t, simpleFixture...)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := slicer.NewCollector(index, []string{"com.example.Simple#bar()"}, nil).Collect(ctx, units)
	require.ErrorIs(t, err, context.Canceled)
}
