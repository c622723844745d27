package rewrite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelloggm/specimin/pkg/javaast"
	"github.com/kelloggm/specimin/pkg/rewrite"
)

func parse(t *testing.T, src string) *javaast.Unit {
	t.Helper()

	unit, err := javaast.NewParser().Parse(context.Background(), "A.java", []byte(src))
	require.NoError(t, err)
	require.Zero(t, unit.ErrorCount)

	return unit
}

func dropNamed(decl *javaast.TypeDecl, names ...string) {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}

	decl.RemoveMembers(func(m javaast.Member) bool {
		switch member := m.(type) {
		case *javaast.MethodDecl:
			return drop[member.Name]
		case *javaast.FieldDecl:
			return drop[member.Vars[0].Name]
		default:
			return false
		}
	})
}

func TestRender_UntouchedIsByteIdentical(t *testing.T) {
	t.Parallel()

	src := "// header\r\npackage p;\r\n\r\nimport java.util.List;\r\n\r\n" +
		"/** Doc. */\r\npublic   class A {\r\n\tint x ;   // odd spacing\r\n\r\n" +
		"\tvoid m( ) {  List<String> l = null; }\r\n}\r\n\r\n// trailer"

	unit := parse(t, src)

	assert.False(t, rewrite.Modified(unit))
	assert.Equal(t, src, string(rewrite.Render(unit)))
}

func TestRender_RemovedMemberTakesItsJavadoc(t *testing.T) {
	t.Parallel()

	unit := parse(t, `package p;

class A {
    /** Keeps. */
    void keep() {}

    /**
     * Drops.
     */
    void drop() {}

    int x;
}
`)

	dropNamed(unit.Types()[0], "drop")

	assert.True(t, rewrite.Modified(unit))
	assert.Equal(t, `package p;

class A {
    /** Keeps. */
    void keep() {}

    int x;
}
`, string(rewrite.Render(unit)))
}

func TestRender_TrailingCommentsStayWithTheirMember(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		drop []string
		want string
	}{
		{
			name: "drop the member after a commented one",
			drop: []string{"b"},
			want: "class A {\n    int a; // about a\n    void c() {} /* about c */\n}\n",
		},
		{
			name: "drop the last member",
			drop: []string{"c"},
			want: "class A {\n    int a; // about a\n    void b() {}\n}\n",
		},
		{
			name: "drop the first member",
			drop: []string{"a"},
			want: "class A {\n    void b() {}\n    void c() {} /* about c */\n}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			unit := parse(t, "class A {\n    int a; // about a\n    void b() {}\n    void c() {} /* about c */\n}\n")
			dropNamed(unit.Types()[0], tt.drop...)

			assert.Equal(t, tt.want, string(rewrite.Render(unit)))
		})
	}
}

func TestRender_RemovingEveryMemberKeepsTheBraces(t *testing.T) {
	t.Parallel()

	unit := parse(t, "class A {\n    int x;\n    void m() {}\n}\n")

	dropNamed(unit.Types()[0], "x", "m")

	assert.Equal(t, "class A {\n}\n", string(rewrite.Render(unit)))
}

func TestRender_NestedTypeInsideUnchangedOuter(t *testing.T) {
	t.Parallel()

	unit := parse(t, `class Outer {
    void keep() {}

    static class Inner {
        void a() {}
        void b() {}
    }
}
`)

	outer := unit.Types()[0]

	inner, ok := outer.Members[1].(*javaast.TypeDecl)
	require.True(t, ok)

	dropNamed(inner, "a")

	assert.False(t, outer.Dirty())
	assert.Equal(t, `class Outer {
    void keep() {}

    static class Inner {
        void b() {}
    }
}
`, string(rewrite.Render(unit)))
}

func TestRender_NestedTypeInsideChangedOuter(t *testing.T) {
	t.Parallel()

	unit := parse(t, `class Outer {
    void gone() {}

    class Inner {
        int f;
        int g;
    }
}
`)

	outer := unit.Types()[0]

	inner, ok := outer.Members[1].(*javaast.TypeDecl)
	require.True(t, ok)

	dropNamed(outer, "gone")
	dropNamed(inner, "g")

	assert.Equal(t, `class Outer {

    class Inner {
        int f;
    }
}
`, string(rewrite.Render(unit)))
}

func TestRender_EnumConstantsSurvive(t *testing.T) {
	t.Parallel()

	unit := parse(t, `enum Color {
    RED, GREEN;

    void paint() {}

    void erase() {}
}
`)

	dropNamed(unit.Types()[0], "erase")

	assert.Equal(t, `enum Color {
    RED, GREEN;

    void paint() {}
}
`, string(rewrite.Render(unit)))
}

func TestRender_SynthesizedMemberUsesSiblingIndent(t *testing.T) {
	t.Parallel()

	unit := parse(t, "class A {\n\tvoid m() {}\n}\n")

	unit.Types()[0].AppendMember(javaast.NewRawMember("int added;\n\nvoid n() {\n    return;\n}"))

	assert.Equal(t,
		"class A {\n\tvoid m() {}\n\n\tint added;\n\n\tvoid n() {\n\t    return;\n\t}\n}\n",
		string(rewrite.Render(unit)))
}

func TestRender_SynthesizedMemberInEmptyBody(t *testing.T) {
	t.Parallel()

	unit := parse(t, "  class A {\n  }\n")

	unit.Types()[0].AppendMember(javaast.NewRawMember("int x;"))

	assert.Equal(t, "  class A {\n      int x;\n  }\n", string(rewrite.Render(unit)))
}

func TestRender_AnonymousClassBody(t *testing.T) {
	t.Parallel()

	unit := parse(t, `class A {
    Runnable r = new Runnable() {
        public void run() {}

        void extra() {}
    };
}
`)

	var anonymous *javaast.TypeDecl

	javaast.Inspect(unit, func(n javaast.Node) bool {
		if decl, ok := n.(*javaast.TypeDecl); ok && decl.Kind == javaast.KindAnonymous {
			anonymous = decl
		}

		return true
	})

	require.NotNil(t, anonymous)
	dropNamed(anonymous, "extra")

	assert.Equal(t, `class A {
    Runnable r = new Runnable() {
        public void run() {}
    };
}
`, string(rewrite.Render(unit)))
}
