// Package source loads the target units of a slicing run and indexes the
// rest of the source root so their references can be resolved.
package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/src-d/enry/v2"

	"github.com/kelloggm/specimin/pkg/javaast"
)

const (
	javaLanguage  = "Java"
	javaExtension = ".java"
)

// Sentinel errors for loading.
var (
	ErrOutsideRoot = errors.New("target file is outside the source root")
	ErrNotJava     = errors.New("not a Java source file")
	ErrNotDir      = errors.New("source root is not a directory")
)

// Set is the outcome of a load.
type Set struct {
	// Root is the absolute source root.
	Root string
	// Targets are the target units in the order they were requested.
	Targets []*javaast.Unit
	// All holds Targets followed by every other Java unit under Root,
	// sorted by path. The target units are shared, not re-parsed.
	All []*javaast.Unit
}

// Loader reads and parses Java units below a source root.
type Loader struct {
	Root   string
	Parser *javaast.Parser
	Logger *slog.Logger
	// Workers bounds concurrent parsing of index units. Zero means NumCPU.
	Workers int
}

// NewLoader creates a Loader with a fresh parser.
func NewLoader(root string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}

	return &Loader{Root: root, Parser: javaast.NewParser(), Logger: logger}
}

// Load parses the target files, given relative to the root, then walks
// the root for the rest of its Java units.
func (l *Loader) Load(ctx context.Context, targetFiles []string) (*Set, error) {
	root, err := l.root()
	if err != nil {
		return nil, err
	}

	set := &Set{Root: root}
	seen := make(map[string]bool, len(targetFiles))

	for _, rel := range targetFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		unit, err := l.loadTarget(ctx, root, rel)
		if err != nil {
			return nil, err
		}

		if seen[unit.Path] {
			continue
		}

		seen[unit.Path] = true
		set.Targets = append(set.Targets, unit)
	}

	others, err := l.discover(root, seen)
	if err != nil {
		return nil, err
	}

	indexed, err := l.parseAll(ctx, root, others)
	if err != nil {
		return nil, err
	}

	set.All = append(append(set.All, set.Targets...), indexed...)

	l.Logger.DebugContext(ctx, "loaded source root",
		"root", root, "targets", len(set.Targets), "indexed", len(indexed))

	return set, nil
}

func (l *Loader) root() (string, error) {
	abs, err := filepath.Abs(l.Root)
	if err != nil {
		return "", fmt.Errorf("resolve root %s: %w", l.Root, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("stat root: %w", err)
	}

	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotDir, abs)
	}

	return abs, nil
}

// Rel validates a target path given relative to the source root and
// returns it cleaned, in slash form.
func Rel(target string) (string, error) {
	if filepath.IsAbs(target) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, target)
	}

	clean := filepath.Clean(target)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, target)
	}

	return filepath.ToSlash(clean), nil
}

// IsJava reports whether the named content is Java source according to
// linguist's rules.
func IsJava(name string, content []byte) bool {
	return enry.GetLanguage(filepath.Base(name), content) == javaLanguage
}

func (l *Loader) loadTarget(ctx context.Context, root, target string) (*javaast.Unit, error) {
	rel, err := Rel(target)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, fmt.Errorf("read target %s: %w", rel, err)
	}

	if !IsJava(rel, content) {
		return nil, fmt.Errorf("%w: %s", ErrNotJava, rel)
	}

	return l.parse(ctx, rel, content)
}

func (l *Loader) parse(ctx context.Context, rel string, content []byte) (*javaast.Unit, error) {
	unit, err := l.Parser.Parse(ctx, rel, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rel, err)
	}

	if unit.ErrorCount > 0 {
		l.Logger.WarnContext(ctx, "unit has syntax errors", "unit", rel, "errors", unit.ErrorCount)
	}

	return unit, nil
}

// discover returns the slash paths of the Java files under root that are
// not in skip, sorted.
func (l *Loader) discover(root string, skip map[string]bool) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrPermission) {
				l.Logger.Warn("skipping unreadable path", "path", path)

				if entry != nil && entry.IsDir() {
					return filepath.SkipDir
				}

				return nil
			}

			return walkErr
		}

		if entry.IsDir() {
			if path != root && enry.IsDotFile(entry.Name()) {
				return filepath.SkipDir
			}

			return nil
		}

		if !strings.EqualFold(filepath.Ext(entry.Name()), javaExtension) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", path, err)
		}

		rel = filepath.ToSlash(rel)
		if !skip[rel] {
			paths = append(paths, rel)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Strings(paths)

	return paths, nil
}

type parsed struct {
	unit *javaast.Unit
	err  error
}

// parseAll parses paths with a bounded pool of workers. A file that cannot
// be read is logged and left out of the index; the result keeps the
// order of paths.
func (l *Loader) parseAll(ctx context.Context, root string, paths []string) ([]*javaast.Unit, error) {
	results := make([]parsed, len(paths))
	jobs := make(chan int)

	numWorkers := l.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	numWorkers = max(1, min(numWorkers, len(paths)))

	var wg sync.WaitGroup

	for range numWorkers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range jobs {
				results[i] = l.parseIndexed(ctx, root, paths[i])
			}
		}()
	}

	for i := range paths {
		if ctx.Err() != nil {
			break
		}

		jobs <- i
	}

	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	units := make([]*javaast.Unit, 0, len(paths))

	for _, r := range results {
		if r.err != nil {
			return nil, r.err
		}

		if r.unit != nil {
			units = append(units, r.unit)
		}
	}

	return units, nil
}

func (l *Loader) parseIndexed(ctx context.Context, root, rel string) parsed {
	content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		l.Logger.WarnContext(ctx, "skipping unreadable unit", "unit", rel, "error", err)

		return parsed{}
	}

	unit, err := l.parse(ctx, rel, content)

	return parsed{unit: unit, err: err}
}
