// Package manifest handles sol.toml project configuration.
package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the project file.
const FileName = "sol.toml"

// Defaults applied to unset fields.
const (
	DefaultEntryClass    = "Main"
	DefaultEntrySelector = "run"
)

// Manifest represents a sol.toml project configuration.
type Manifest struct {
	Project Project     `toml:"project"`
	Run     RunConfig   `toml:"run"`
	Log     LogConfig   `toml:"log"`
	Image   ImageConfig `toml:"image"`

	// Dir is the directory containing the sol.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// RunConfig configures what gets executed and how.
type RunConfig struct {
	Source        string `toml:"source"`
	Input         string `toml:"input"`
	EntryClass    string `toml:"entry-class"`
	EntrySelector string `toml:"entry-selector"`
	MaxDepth      int    `toml:"max-depth"`
}

// LogConfig configures diagnostic logging.
type LogConfig struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// ImageConfig configures program image output.
type ImageConfig struct {
	Output string `toml:"output"`
}

// Load parses the sol.toml file in the given directory.
func Load(dir string) (*Manifest, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile parses a project file at an explicit path.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}

	m.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}

	// Defaults
	if m.Run.EntryClass == "" {
		m.Run.EntryClass = DefaultEntryClass
	}
	if m.Run.EntrySelector == "" {
		m.Run.EntrySelector = DefaultEntrySelector
	}

	if m.Run.MaxDepth < 0 {
		return nil, fmt.Errorf("%s: max-depth must not be negative", path)
	}
	if m.Log.Verbosity < 0 {
		return nil, fmt.Errorf("%s: verbosity must not be negative", path)
	}
	return &m, nil
}

// FindAndLoad walks up from startDir to find a sol.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("cannot stat %s: %w", path, err)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// Resolve returns p relative to the manifest directory. Empty and absolute
// paths are returned unchanged.
func (m *Manifest) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}

// SourcePath returns the configured program source, resolved.
func (m *Manifest) SourcePath() string {
	return m.Resolve(m.Run.Source)
}

// InputPath returns the configured input file, resolved. Empty means stdin.
func (m *Manifest) InputPath() string {
	return m.Resolve(m.Run.Input)
}

// ImageOutputPath returns the configured image output, resolved.
func (m *Manifest) ImageOutputPath() string {
	return m.Resolve(m.Image.Output)
}

// LogFilePath returns the configured log file, resolved. Empty means stderr.
func (m *Manifest) LogFilePath() string {
	return m.Resolve(m.Log.File)
}
