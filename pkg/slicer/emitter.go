package slicer

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kelloggm/specimin/pkg/javaast"
	"github.com/kelloggm/specimin/pkg/rewrite"
)

const (
	dirPerm  fs.FileMode = 0o755
	filePerm fs.FileMode = 0o644
)

// IsEmptyUnit reports whether a unit has nothing worth emitting: every
// top-level item is a package declaration or a class or interface
// without members. Enums, records and annotation types always keep their
// unit, since their constants and components are declarations in their
// own right.
func IsEmptyUnit(unit *javaast.Unit) bool {
	for _, item := range unit.Items {
		switch it := item.(type) {
		case *javaast.PackageDecl:
		case *javaast.TypeDecl:
			if len(it.Members) > 0 {
				return false
			}

			if it.Kind != javaast.KindClass && it.Kind != javaast.KindInterface {
				return false
			}
		case *javaast.OtherItem:
			if !it.IsComment() {
				return false
			}
		case *javaast.ImportDecl:
			return false
		}
	}

	return true
}

// FileWriter persists emitted files.
type FileWriter interface {
	MkdirAll(path string, perm fs.FileMode) error
	WriteFile(name string, data []byte, perm fs.FileMode) error
}

// OSWriter writes to the local file system.
type OSWriter struct{}

// MkdirAll implements FileWriter.
func (OSWriter) MkdirAll(path string, perm fs.FileMode) error {
	return os.MkdirAll(path, perm) //nolint:wrapcheck // wrapped by the emitter.
}

// WriteFile implements FileWriter.
func (OSWriter) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(name, data, perm) //nolint:wrapcheck // wrapped by the emitter.
}

// Output is the rendered text of one kept unit.
type Output struct {
	// Path is the unit's path relative to the output directory.
	Path string
	// Dest is the file written, empty in dry-run mode.
	Dest     string
	Original []byte
	Text     []byte
	// Err is the write error, if any.
	Err error
}

// EmitFailure records a unit that could not be written.
type EmitFailure struct {
	Path string
	Err  error
}

// EmitResult describes what an emission produced.
type EmitResult struct {
	// Written lists the destination paths written, in unit order.
	Written []string
	// Skipped lists the relative paths of empty units.
	Skipped  []string
	Failures []EmitFailure
	Outputs  []Output
}

// Emitter renders kept units and writes them under OutputDir.
type Emitter struct {
	OutputDir string
	// DryRun renders without writing.
	DryRun bool
	// Writer defaults to OSWriter.
	Writer FileWriter
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Emit writes every non-empty unit. A unit that fails to write is
// recorded and the rest are still attempted; only cancellation aborts.
func (e *Emitter) Emit(ctx context.Context, units []*javaast.Unit) (*EmitResult, error) {
	writer := e.Writer
	if writer == nil {
		writer = OSWriter{}
	}

	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}

	result := &EmitResult{}

	for _, unit := range units {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if IsEmptyUnit(unit) {
			logger.DebugContext(ctx, "skipping empty unit", "unit", unit.Path)
			result.Skipped = append(result.Skipped, unit.Path)

			continue
		}

		out := Output{Path: unit.Path, Original: unit.Source, Text: rewrite.Render(unit)}

		if !e.DryRun {
			out.Dest = filepath.Join(e.OutputDir, filepath.FromSlash(unit.Path))
			out.Err = writeUnit(writer, out.Dest, out.Text)

			if out.Err != nil {
				logger.ErrorContext(ctx, "failed to write output file", "path", out.Dest, "error", out.Err)
				result.Failures = append(result.Failures, EmitFailure{Path: out.Dest, Err: out.Err})
			} else {
				result.Written = append(result.Written, out.Dest)
			}
		}

		result.Outputs = append(result.Outputs, out)
	}

	return result, nil
}

func writeUnit(w FileWriter, dest string, text []byte) error {
	if err := w.MkdirAll(filepath.Dir(dest), dirPerm); err != nil {
		return fmt.Errorf("create directory for %s: %w", dest, err)
	}

	if err := w.WriteFile(dest, text, filePerm); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}

	return nil
}
