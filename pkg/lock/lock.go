// Package lock resolves a configuration into a lock file: the fully
// expanded, immutable snapshot of plugin state that the shell
// integration step consumes.
package lock

import (
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/plugman-sh/plugman/pkg/errors"
)

// Settings captures the environment a lock file was generated under.
// A lock file is only reusable while its recorded settings still match.
type Settings struct {
	Version    string `toml:"version"`
	Home       string `toml:"home"`
	ConfigDir  string `toml:"config_dir"`
	DataDir    string `toml:"data_dir"`
	ConfigFile string `toml:"config_file"`
	Profile    string `toml:"profile"`
}

// Plugin is a fully resolved plugin entry. SourceDir/Files/Apply are
// set for the sourced variant, Raw/Profiles for the inline variant.
type Plugin struct {
	Name      string   `toml:"name"`
	SourceDir string   `toml:"source_dir,omitempty"`
	Files     []string `toml:"files,omitempty"`
	Apply     []string `toml:"apply,omitempty"`
	Raw       string   `toml:"raw,omitempty"`
	Profiles  []string `toml:"profiles,omitempty"`
}

// Inline reports whether the plugin is the inline variant
func (p *Plugin) Inline() bool {
	return p.Raw != ""
}

// File is a complete lock file
type File struct {
	Settings
	Plugins   []Plugin          `toml:"plugins,omitempty"`
	Templates map[string]string `toml:"templates,omitempty"`
}

// Load reads a lock file from path
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrFileNotFound, "lock file %q does not exist", path)
		}
		return nil, errors.Wrapf(err, errors.ErrFileRead, "failed to read lock file %q", path)
	}
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse lock file %q", path)
	}
	return &f, nil
}

// WriteTo serializes the lock file and atomically replaces the file at
// path. On failure the previous lock file, if any, is left untouched.
func (f *File) WriteTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create directory for %q", path)
	}
	data, err := toml.Marshal(f)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to serialize lock file")
	}
	if err := renameio.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write lock file %q", path)
	}
	return nil
}

// Verify reports whether the lock file can be reused: its settings
// still match and every resolved path still exists on disk.
func (f *File) Verify(set Settings) bool {
	if f.Settings != set {
		return false
	}
	for i := range f.Plugins {
		p := &f.Plugins[i]
		if p.Inline() {
			continue
		}
		info, err := os.Stat(p.SourceDir)
		if err != nil || !info.IsDir() {
			return false
		}
		for _, file := range p.Files {
			if _, err := os.Stat(file); err != nil {
				return false
			}
		}
	}
	return true
}
