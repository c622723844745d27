package slicer_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/kelloggm/specimin/pkg/observability"
	"github.com/kelloggm/specimin/pkg/rewrite"
	"github.com/kelloggm/specimin/pkg/slicer"
)

func TestRun_SimpleEndToEnd(t *testing.T) {
	t.Parallel()

	units, index := load(t, simpleFixture...)
	out := t.TempDir()

	result, err := slicer.Run(context.Background(), units, index, slicer.Options{
		Targets:   []string{"com.example.Simple#bar()"},
		OutputDir: out,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Removed())
	assert.Equal(t, []string{"com/example/Unrelated.java"}, result.Emit.Skipped)
	assert.Len(t, result.Emit.Written, 2)
	assert.Empty(t, result.Failures)

	simple, err := os.ReadFile(filepath.Join(out, "com", "example", "Simple.java"))
	require.NoError(t, err)
	assert.Equal(t, `package com.example;

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
}
`, string(simple))

	helper, err := os.ReadFile(filepath.Join(out, "com", "example", "Helper.java"))
	require.NoError(t, err)
	assert.Equal(t, `package com.example;

public class Helper {
    public Helper() {
    }

    public void assist() {
    }
}
`, string(helper))

	assert.NoFileExists(t, filepath.Join(out, "com", "example", "Unrelated.java"))
}

func TestRun_RecordsMetricsAndPhases(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	metrics, err := observability.NewSliceMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test"))
	require.NoError(t, err)

	units, index := load(t, simpleFixture...)

	result, err := slicer.Run(context.Background(), units, index, slicer.Options{
		Targets: []string{"com.example.Simple#bar()"},
		DryRun:  true,
		Metrics: metrics,
	})
	require.NoError(t, err)
	assert.Len(t, result.Durations, 3)

	var rm metricdata.ResourceMetrics

	require.NoError(t, reader.Collect(context.Background(), &rm))

	counts := map[string]int64{}

	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok && len(sum.DataPoints) == 1 {
				counts[m.Name] = sum.DataPoints[0].Value
			}
		}
	}

	assert.Equal(t, int64(1), counts["specimin.slice.targets"])
	assert.Equal(t, int64(3), counts["specimin.slice.members.used"])
	assert.Equal(t, int64(3), counts["specimin.slice.members.removed"])
}

func TestRun_NestedTypeScenario(t *testing.T) {
	t.Parallel()

	units, index := load(t, file{"Outer.java", `class Outer {
    void m() {
        Inner.n();
    }

    void other() {}

    static class Inner {
        static void n() {}

        void unused() {}
    }
}
`})

	result, err := slicer.Run(context.Background(), units, index, slicer.Options{
		Targets: []string{"Outer#m()"},
		DryRun:  true,
	})
	require.NoError(t, err)

	require.Len(t, result.Emit.Outputs, 1)
	assert.Equal(t, `class Outer {
    void m() {
        Inner.n();
    }

    static class Inner {
        static void n() {}
    }
}
`, string(result.Emit.Outputs[0].Text))
}

func TestRun_KeepsReferencedEnumAndRecordUnits(t *testing.T) {
	t.Parallel()

	units, index := load(t,
		file{"p/A.java", "package p;\n\nclass A {\n    Color m() {\n        return Color.RED;\n    }\n\n    void n() {}\n}\n"},
		file{"p/Color.java", "package p;\n\nenum Color { RED, GREEN }\n"},
		file{"p/R.java", "package p;\n\nrecord R(int x) {}\n"},
		file{"p/Empty.java", "package p;\n\nclass Empty {\n    void unused() {}\n}\n"},
	)

	result, err := slicer.Run(context.Background(), units, index, slicer.Options{
		Targets: []string{"p.A#m()"},
		DryRun:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, sigs("p.Color#RED"), result.Collect.Used.Sorted())
	assert.Equal(t, []string{"p/Empty.java"}, result.Emit.Skipped)
	require.Len(t, result.Emit.Outputs, 3)
	assert.Equal(t, "p/Color.java", result.Emit.Outputs[1].Path)
	assert.Equal(t, "package p;\n\nenum Color { RED, GREEN }\n", string(result.Emit.Outputs[1].Text))
	assert.Equal(t, "package p;\n\nrecord R(int x) {}\n", string(result.Emit.Outputs[2].Text))
}

func TestRun_UnmatchedTargetsAbortBeforePruning(t *testing.T) {
	t.Parallel()

	units, index := load(t, file{"A.java", "class A {\n    void m() {}\n    void n() {}\n}\n"})

	result, err := slicer.Run(context.Background(), units, index, slicer.Options{
		Targets: []string{"A#m()", "B#x()"},
		DryRun:  true,
	})

	var unmatched *slicer.UnmatchedTargetsError

	require.ErrorAs(t, err, &unmatched)
	assert.Equal(t, []string{"B#x()"}, unmatched.Targets)
	assert.Nil(t, result.Prune)
	assert.Nil(t, result.Emit)
	assert.False(t, rewrite.Modified(units[0]))
}

func TestRun_StrictModeFailsOnUnresolvedReferences(t *testing.T) {
	t.Parallel()

	src := "class A {\n    void m() {\n        missing();\n    }\n\n    void n() {}\n}\n"

	units, index := load(t, file{"A.java", src})

	result, err := slicer.Run(context.Background(), units, index, slicer.Options{
		Targets: []string{"A#m()"},
		Strict:  true,
		DryRun:  true,
	})
	require.ErrorIs(t, err, slicer.ErrUnresolvedReferences)
	assert.Len(t, result.Failures, 1)
	assert.False(t, rewrite.Modified(units[0]))

	units, index = load(t, file{"A.java", src})

	result, err = slicer.Run(context.Background(), units, index, slicer.Options{
		Targets: []string{"A#m()"},
		DryRun:  true,
	})
	require.NoError(t, err, "failures are reported, not fatal, without strict mode")
	assert.Len(t, result.Failures, 1)
	assert.Equal(t, 1, result.Removed())
}

func TestRun_PreservesFormattingOfRetainedText(t *testing.T) {
	t.Parallel()

	src := "package p;\r\n\r\n/** Type doc. */\r\nclass A\r\n{\r\n\t// target\r\n\tvoid   m ( )   {\r\n" +
		"\t\tn( ) ;   /* odd */\r\n\t}\r\n\r\n\tvoid gone() {}\r\n\r\n\tvoid n() {\t}\r\n}\r\n"

	units, index := load(t, file{"p/A.java", src})

	result, err := slicer.Run(context.Background(), units, index, slicer.Options{
		Targets: []string{"p.A#m()"},
		DryRun:  true,
	})
	require.NoError(t, err)

	want := "package p;\r\n\r\n/** Type doc. */\r\nclass A\r\n{\r\n\t// target\r\n\tvoid   m ( )   {\r\n" +
		"\t\tn( ) ;   /* odd */\r\n\t}\r\n\r\n\tvoid n() {\t}\r\n}\r\n"
	assert.Equal(t, want, string(result.Emit.Outputs[0].Text))
}

func TestManifest_RoundTrip(t *testing.T) {
	t.Parallel()

	units, index := load(t, file{"p/A.java", `package p;

class A {
    void m() {
        n();
        missing();
    }

    void n() {}

    void gone() {}
}
`}, file{"p/B.java", "package p;\n\nclass B {\n    void unused() {}\n}\n"})

	result, err := slicer.Run(context.Background(), units, index, slicer.Options{
		Targets:   []string{"p.A#m()"},
		OutputDir: t.TempDir(),
	})
	require.NoError(t, err)

	manifest := slicer.NewManifest(result)
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, slicer.WriteManifest(path, manifest))

	decoded, err := slicer.ReadManifest(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"p.A#m()"}, decoded.Root)
	assert.Equal(t, []string{"p.A#n()"}, decoded.Used)
	require.Len(t, decoded.Unresolved, 1)
	assert.Equal(t, "missing()", decoded.Unresolved[0].Expr)
	assert.Equal(t, 6, decoded.Unresolved[0].Line)
	assert.Equal(t, []slicer.ManifestUnit{
		{Path: "p/A.java", Status: slicer.StatusWritten, Kept: 2, Removed: 1},
		{Path: "p/B.java", Status: slicer.StatusSkipped, Kept: 0, Removed: 1},
	}, decoded.Units)
}
