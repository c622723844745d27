package slicer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelloggm/specimin/pkg/javaast"
	"github.com/kelloggm/specimin/pkg/resolve"
	"github.com/kelloggm/specimin/pkg/rewrite"
	"github.com/kelloggm/specimin/pkg/slicer"
)

func prune(t *testing.T, units []*javaast.Unit, index *resolve.Index, root, used []string) []slicer.PruneStats {
	t.Helper()

	rootSet := slicer.NewSignatureSet(sigs(root...)...)
	usedSet := slicer.NewSignatureSet(sigs(used...)...)

	stats, failures, err := slicer.NewPruner(index, nil).Prune(context.Background(), units, rootSet, usedSet)
	require.NoError(t, err)
	assert.Empty(t, failures)

	return stats
}

func TestPrune_MemberTypesSurviveWithPrunedMembers(t *testing.T) {
	t.Parallel()

	units, index := load(t, file{"Outer.java", `class Outer {
    void m() {
        int x = 1;
    }

    static class Inner {
        void n() {}
    }
}
`})

	stats := prune(t, units, index, []string{"Outer#m()"}, nil)

	assert.Equal(t, []slicer.PruneStats{{Unit: "Outer.java", Kept: 1, Removed: 1}}, stats)
	assert.Equal(t, `class Outer {
    void m() {
        int x = 1;
    }

    static class Inner {
    }
}
`, string(rewrite.Render(units[0])))
}

func TestPrune_FieldKeptWhenAnyDeclaratorIsRetained(t *testing.T) {
	t.Parallel()

	units, index := load(t, file{"p/A.java", `package p;

class A {
    int a, b;
    int c;
    void m() { b = 1; }
}
`})

	stats := prune(t, units, index, []string{"p.A#m()"}, []string{"p.A#b"})

	assert.Equal(t, 2, stats[0].Kept)
	assert.Equal(t, 1, stats[0].Removed)
	assert.Equal(t, `package p;

class A {
    int a, b;
    void m() { b = 1; }
}
`, string(rewrite.Render(units[0])))
}

func TestPrune_InitializersAndConstructors(t *testing.T) {
	t.Parallel()

	units, index := load(t, file{"p/A.java", `package p;

class A {
    static {
        System.out.println("loaded");
    }

    A() {}

    A(int x) {}

    void m() {}
}
`})

	stats := prune(t, units, index, []string{"p.A#m()"}, []string{"p.A#A(int)"})

	assert.Equal(t, 2, stats[0].Kept)
	assert.Equal(t, 2, stats[0].Removed)
	assert.Equal(t, `package p;

class A {

    A(int x) {}

    void m() {}
}
`, string(rewrite.Render(units[0])))
}

func TestPrune_SameLineCommentsFollowTheirMember(t *testing.T) {
	t.Parallel()

	units, index := load(t, file{"p/A.java", `package p;

class A {
    int keep = 1; // why keep is 1
    void gone() {} // gone for good
    void m() { int z = keep; }
    void gone2() {} /* tail of gone2 */
}
`})

	stats := prune(t, units, index, []string{"p.A#m()"}, []string{"p.A#keep"})

	assert.Equal(t, []slicer.PruneStats{{Unit: "p/A.java", Kept: 2, Removed: 2}}, stats)
	assert.Equal(t, `package p;

class A {
    int keep = 1; // why keep is 1
    void m() { int z = keep; }
}
`, string(rewrite.Render(units[0])))
}

func TestPrune_RemovedMemberTakesItsCommentsWithCRLF(t *testing.T) {
	t.Parallel()

	units, index := load(t, file{"A.java",
		"class A {\r\n\tvoid m() {} /* kept */\r\n\r\n\t// leads gone\r\n\tvoid gone() {} // trails gone\r\n}\r\n"})

	prune(t, units, index, []string{"A#m()"}, nil)

	assert.Equal(t, "class A {\r\n\tvoid m() {} /* kept */\r\n}\r\n", string(rewrite.Render(units[0])))
}

func TestPrune_RetainedSetsAreOnlyRead(t *testing.T) {
	t.Parallel()

	units, index := load(t, file{"A.java", "class A {\n    void m() {}\n    void n() {}\n}\n"})

	root := slicer.NewSignatureSet("A#m()")
	used := slicer.NewSignatureSet()

	_, _, err := slicer.NewPruner(index, nil).Prune(context.Background(), units, root, used)
	require.NoError(t, err)

	assert.Equal(t, sigs("A#m()"), root.Sorted())
	assert.Zero(t, used.Len())
}

type unknownDecls struct {
	resolve.Resolver
}

func (unknownDecls) Declaration(javaast.Decl) (resolve.Signature, error) {
	return "", resolve.ErrUnresolved
}

func TestPrune_UnresolvableMembersAreKept(t *testing.T) {
	t.Parallel()

	units, _ := load(t, file{"A.java", "class A {\n    void m() {}\n    int f;\n}\n"})

	stats, failures, err := slicer.NewPruner(unknownDecls{}, nil).
		Prune(context.Background(), units, slicer.NewSignatureSet(), slicer.NewSignatureSet())
	require.NoError(t, err)

	assert.Equal(t, 2, stats[0].Kept)
	assert.Zero(t, stats[0].Removed)
	require.Len(t, failures, 2)
	require.ErrorIs(t, failures[0].Err, resolve.ErrUnresolved)
	assert.False(t, rewrite.Modified(units[0]))
}
