package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/plugman-sh/plugman/pkg/errors"
)

// initialConfig is written by `plugman init` when no config file exists
const initialConfig = `# plugman configuration.
#
# Sourced plugins point at a directory of shell files:
#
#   [[plugins]]
#   name = "zsh-syntax-highlighting"
#   dir = "{{ data_dir }}/plugins/{{ name }}"
#
# Inline plugins embed shell text directly:
#
#   [[plugins]]
#   name = "work-aliases"
#   raw = "alias k=kubectl"
#   profiles = ["work"]

shell = "%s"
`

// File is an editable representation of the user's config file. Unlike
// Config it carries no merged defaults, so writing it back does not
// bake defaults into the user's file.
type File struct {
	Shell     string            `toml:"shell,omitempty"`
	Match     []string          `toml:"match,omitempty"`
	Apply     []string          `toml:"apply,omitempty"`
	Plugins   []Plugin          `toml:"plugins,omitempty"`
	Templates map[string]string `toml:"templates,omitempty"`
}

// ReadFile reads the user's config file for editing
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrFileNotFound, "config file %q does not exist", path)
		}
		return nil, errors.Wrapf(err, errors.ErrFileRead, "failed to read config file %q", path)
	}
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse config file %q", path)
	}
	return &f, nil
}

// AddPlugin appends a plugin entry, rejecting duplicates and invalid
// variants
func (f *File) AddPlugin(p Plugin) error {
	if err := p.Validate(); err != nil {
		return err
	}
	for i := range f.Plugins {
		if f.Plugins[i].Name == p.Name {
			return errors.Newf(errors.ErrPluginExists, "plugin %q already exists", p.Name)
		}
	}
	f.Plugins = append(f.Plugins, p)
	return nil
}

// RemovePlugin removes the named plugin entry
func (f *File) RemovePlugin(name string) error {
	for i := range f.Plugins {
		if f.Plugins[i].Name == name {
			f.Plugins = append(f.Plugins[:i], f.Plugins[i+1:]...)
			return nil
		}
	}
	return errors.Newf(errors.ErrPluginNotFound, "no plugin named %q", name)
}

// WriteTo serializes the config and atomically replaces the file at
// path, creating parent directories as needed
func (f *File) WriteTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create directory for %q", path)
	}
	data, err := toml.Marshal(f)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to serialize config")
	}
	if err := renameio.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write config file %q", path)
	}
	return nil
}

// Init writes a fresh commented config file for the given shell. It
// fails if the file already exists.
func Init(path, shell string) error {
	if _, err := os.Stat(path); err == nil {
		return errors.Newf(errors.ErrConfigValid, "config file %q already exists", path)
	}
	if shell != "zsh" && shell != "bash" {
		return errors.Newf(errors.ErrInvalidInput, "unsupported shell %q", shell)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create directory for %q", path)
	}
	data := []byte(fmt.Sprintf(initialConfig, shell))
	if err := renameio.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write config file %q", path)
	}
	return nil
}
