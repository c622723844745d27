package slicer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Unit statuses recorded in the manifest.
const (
	StatusWritten  = "written"
	StatusRendered = "rendered"
	StatusSkipped  = "skipped"
	StatusFailed   = "failed"
)

// Manifest summarises a run for tools that post-process the slice, such
// as a stub generator that needs the referenced but unresolved names.
type Manifest struct {
	Root       []string          `yaml:"root"`
	Used       []string          `yaml:"used"`
	Unresolved []UnresolvedEntry `yaml:"unresolved,omitempty"`
	Units      []ManifestUnit    `yaml:"units"`
}

// UnresolvedEntry is one resolution failure.
type UnresolvedEntry struct {
	Unit   string `yaml:"unit"`
	Line   int    `yaml:"line"`
	Column int    `yaml:"column"`
	Expr   string `yaml:"expr"`
	Reason string `yaml:"reason"`
}

// ManifestUnit is the outcome for one target unit.
type ManifestUnit struct {
	Path    string `yaml:"path"`
	Status  string `yaml:"status"`
	Kept    int    `yaml:"kept"`
	Removed int    `yaml:"removed"`
}

// NewManifest builds the manifest of a run result.
func NewManifest(r *Result) *Manifest {
	m := &Manifest{Root: []string{}, Used: []string{}, Units: []ManifestUnit{}}

	if r.Collect != nil {
		m.Root = r.Collect.Root.Strings()
		m.Used = r.Collect.Used.Strings()
	}

	for _, f := range r.Failures {
		m.Unresolved = append(m.Unresolved, UnresolvedEntry{
			Unit: f.Unit, Line: f.Line, Column: f.Column, Expr: f.Expr, Reason: f.Err.Error(),
		})
	}

	status := unitStatuses(r.Emit)

	for _, s := range r.Prune {
		m.Units = append(m.Units, ManifestUnit{Path: s.Unit, Status: status[s.Unit], Kept: s.Kept, Removed: s.Removed})
	}

	return m
}

func unitStatuses(e *EmitResult) map[string]string {
	status := make(map[string]string)
	if e == nil {
		return status
	}

	for _, path := range e.Skipped {
		status[path] = StatusSkipped
	}

	for _, out := range e.Outputs {
		switch {
		case out.Err != nil:
			status[out.Path] = StatusFailed
		case out.Dest != "":
			status[out.Path] = StatusWritten
		default:
			status[out.Path] = StatusRendered
		}
	}

	return status
}

// Marshal encodes the manifest as YAML.
func (m *Manifest) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}

	return data, nil
}

// WriteManifest encodes m as YAML into path.
func WriteManifest(path string, m *Manifest) error {
	data, err := m.Marshal()
	if err != nil {
		return err
	}

	if err = os.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("write manifest %s: %w", path, err)
	}

	return nil
}

// ReadManifest decodes a manifest written by WriteManifest.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}

	var m Manifest
	if err = yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", path, err)
	}

	return &m, nil
}
