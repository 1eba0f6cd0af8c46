// Package dataset resolves and loads the raw/cleaned table pairs.
package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/dqreport/internal/logging"
	"github.com/KaramelBytes/dqreport/internal/table"
)

// Dataset names of the fixed catalog.
const (
	Field         = "field"
	Manufacturing = "manufacturing"
	Sales         = "sales"
	Testing       = "testing"
)

// Versions in report order.
const (
	Raw     = "raw"
	Cleaned = "cleaned"
)

// Pair holds both versions of one dataset. Either side may be nil when it failed to load.
type Pair struct {
	Name    string
	Raw     *table.Table
	Cleaned *table.Table
}

// Complete reports whether both versions loaded.
func (p *Pair) Complete() bool { return p != nil && p.Raw != nil && p.Cleaned != nil }

// Get returns the table for a version name.
func (p *Pair) Get(version string) *table.Table {
	if p == nil {
		return nil
	}
	if version == Raw {
		return p.Raw
	}
	return p.Cleaned
}

// Layout maps dataset names to files under a data directory.
type Layout struct {
	DataDir        string
	RawPattern     string // relative to DataDir, %s = dataset name
	CleanedPattern string
}

// RawPath returns the raw file for name.
func (l Layout) RawPath(name string) string {
	return resolve(filepath.Join(l.DataDir, fmt.Sprintf(l.RawPattern, name)))
}

// CleanedPath returns the cleaned file for name.
func (l Layout) CleanedPath(name string) string {
	return resolve(filepath.Join(l.DataDir, fmt.Sprintf(l.CleanedPattern, name)))
}

// resolve falls back to an .xlsx sibling when the configured file is missing.
func resolve(path string) string {
	if _, err := os.Stat(path); err == nil {
		return path
	}
	alt := strings.TrimSuffix(path, filepath.Ext(path)) + ".xlsx"
	if _, err := os.Stat(alt); err == nil {
		return alt
	}
	return path
}

// LoadError records a failed dataset version.
type LoadError struct {
	Dataset string
	Version string
	Path    string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s %s (%s): %v", e.Dataset, e.Version, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load reads both versions of one dataset. A failed version is reported and
// left nil; the other version is still returned.
func Load(l Layout, name string) (*Pair, error) {
	p := &Pair{Name: name}
	var errs []error
	for _, v := range []string{Raw, Cleaned} {
		path := l.RawPath(name)
		if v == Cleaned {
			path = l.CleanedPath(name)
		}
		t, err := table.Load(path)
		if err != nil {
			errs = append(errs, &LoadError{Dataset: name, Version: v, Path: path, Err: err})
			continue
		}
		t.Name = name
		if v == Raw {
			p.Raw = t
		} else {
			p.Cleaned = t
		}
	}
	return p, errors.Join(errs...)
}

// LoadAll loads every named dataset in order. Failures are logged and the
// remaining datasets continue; the joined error lists every failure.
func LoadAll(l Layout, names []string) ([]*Pair, error) {
	var (
		out  []*Pair
		errs []error
	)
	for _, name := range names {
		p, err := Load(l, name)
		if err != nil {
			var le *LoadError
			for _, e := range flatten(err) {
				if errors.As(e, &le) {
					logging.Dataset(le.Dataset, le.Version).Error("load failed", "path", le.Path, "err", le.Err)
				}
			}
			errs = append(errs, err)
		}
		for _, v := range []string{Raw, Cleaned} {
			if t := p.Get(v); t != nil {
				logging.Dataset(name, v).Info("loaded", "path", t.Path, "rows", t.Rows(), "cols", t.Cols())
			}
		}
		out = append(out, p)
	}
	return out, errors.Join(errs...)
}

func flatten(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}

// Index maps pairs by dataset name.
func Index(pairs []*Pair) map[string]*Pair {
	m := make(map[string]*Pair, len(pairs))
	for _, p := range pairs {
		m[p.Name] = p
	}
	return m
}
