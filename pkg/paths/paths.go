// Package paths provides centralized path handling for plugman.
// It implements XDG Base Directory specification compliance and
// provides a consistent API for all path operations in the codebase.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/plugman-sh/plugman/pkg/errors"
)

// Environment variable names
const (
	// EnvConfigDir overrides the XDG config directory for plugman
	EnvConfigDir = "PLUGMAN_CONFIG_DIR"

	// EnvDataDir overrides the XDG data directory for plugman
	EnvDataDir = "PLUGMAN_DATA_DIR"

	// EnvProfile selects the active profile
	EnvProfile = "PLUGMAN_PROFILE"
)

// Default directories and files.
// These constants define plugman's on-disk layout and are not
// user-configurable beyond the directory overrides above.
const (
	// AppDirName is the directory name for plugman-specific files
	AppDirName = "plugman"

	// ConfigFileName is the name of the plugin configuration file
	ConfigFileName = "plugins.toml"

	// LockFileName is the name of the generated lock file
	LockFileName = "plugins.lock"

	// PluginsDirName is the subdirectory of the data dir that holds
	// plugin sources placed there by external tooling
	PluginsDirName = "plugins"
)

// Paths provides centralized path management for plugman
type Paths struct {
	// home is the user's home directory
	home string

	// configDir is the directory holding the config file
	configDir string

	// dataDir is the directory holding plugin sources and the lock file
	dataDir string
}

// New creates a new Paths instance. Empty arguments fall back to the
// PLUGMAN_CONFIG_DIR / PLUGMAN_DATA_DIR environment overrides and then
// to the XDG base directories.
func New(configDir, dataDir string) (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDirAccess, "failed to determine home directory")
	}

	p := &Paths{home: home}

	if configDir == "" {
		configDir = os.Getenv(EnvConfigDir)
	}
	if configDir == "" {
		configDir = filepath.Join(xdg.ConfigHome, AppDirName)
	}
	p.configDir, err = p.normalize(configDir)
	if err != nil {
		return nil, err
	}

	if dataDir == "" {
		dataDir = os.Getenv(EnvDataDir)
	}
	if dataDir == "" {
		dataDir = filepath.Join(xdg.DataHome, AppDirName)
	}
	p.dataDir, err = p.normalize(dataDir)
	if err != nil {
		return nil, err
	}

	return p, nil
}

// Home returns the user's home directory
func (p *Paths) Home() string {
	return p.home
}

// ConfigDir returns the configuration directory
func (p *Paths) ConfigDir() string {
	return p.configDir
}

// DataDir returns the data directory
func (p *Paths) DataDir() string {
	return p.dataDir
}

// ConfigFile returns the path of the plugin configuration file
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.configDir, ConfigFileName)
}

// LockFile returns the path of the generated lock file
func (p *Paths) LockFile() string {
	return filepath.Join(p.dataDir, LockFileName)
}

// PluginsDir returns the directory that holds plugin sources
func (p *Paths) PluginsDir() string {
	return filepath.Join(p.dataDir, PluginsDirName)
}

// ExpandHome expands a leading ~ or ~/ to the home directory
func (p *Paths) ExpandHome(path string) string {
	if path == "~" {
		return p.home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(p.home, path[2:])
	}
	return path
}

// normalize expands ~ and makes the path absolute
func (p *Paths) normalize(path string) (string, error) {
	path = p.ExpandHome(path)
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrDirAccess, "failed to get absolute path for %q", path)
	}
	return abs, nil
}
