// Package core wires the Load -> Resolve -> Render -> Serialize
// pipeline together for the CLI commands.
package core

import (
	"os"

	"github.com/plugman-sh/plugman/internal/version"
	"github.com/plugman-sh/plugman/pkg/config"
	"github.com/plugman-sh/plugman/pkg/lock"
	"github.com/plugman-sh/plugman/pkg/logging"
	"github.com/plugman-sh/plugman/pkg/paths"
	"github.com/plugman-sh/plugman/pkg/script"
)

// Options selects the environment a pipeline run operates in
type Options struct {
	// ConfigDir and DataDir override the XDG defaults
	ConfigDir string
	DataDir   string

	// Profile is the active profile; falls back to PLUGMAN_PROFILE
	Profile string

	// Relock forces re-resolution even when the lock file is current
	Relock bool
}

// Environment is the resolved set of paths and settings for a run
type Environment struct {
	Paths    *paths.Paths
	Settings lock.Settings
}

// NewEnvironment builds the run environment from options
func NewEnvironment(opts Options) (*Environment, error) {
	p, err := paths.New(opts.ConfigDir, opts.DataDir)
	if err != nil {
		return nil, err
	}

	profile := opts.Profile
	if profile == "" {
		profile = os.Getenv(paths.EnvProfile)
	}

	return &Environment{
		Paths: p,
		Settings: lock.Settings{
			Version:    version.Version,
			Home:       p.Home(),
			ConfigDir:  p.ConfigDir(),
			DataDir:    p.DataDir(),
			ConfigFile: p.ConfigFile(),
			Profile:    profile,
		},
	}, nil
}

// Lock loads the config, resolves it, and writes the lock file. The
// lock file is only replaced after a fully successful resolution.
func Lock(opts Options) (*lock.File, string, error) {
	env, err := NewEnvironment(opts)
	if err != nil {
		return nil, "", err
	}
	lf, err := relock(env)
	if err != nil {
		return nil, "", err
	}
	return lf, env.Paths.LockFile(), nil
}

// Source returns the shell script for the current configuration. An
// existing lock file is reused when it is still valid and the config
// file has not changed since it was written; otherwise the config is
// re-resolved and the lock file replaced.
func Source(opts Options) (string, error) {
	logger := logging.GetLogger("core")

	env, err := NewEnvironment(opts)
	if err != nil {
		return "", err
	}

	var lf *lock.File
	if !opts.Relock && lockCurrent(env) {
		if cached, err := lock.Load(env.Paths.LockFile()); err == nil && cached.Verify(env.Settings) {
			logger.Debug().Str("path", env.Paths.LockFile()).Msg("Reusing lock file")
			lf = cached
		}
	}
	if lf == nil {
		lf, err = relock(env)
		if err != nil {
			return "", err
		}
	}

	return script.Generate(lf)
}

// relock runs Load -> Resolve -> Serialize for the environment
func relock(env *Environment) (*lock.File, error) {
	logger := logging.GetLogger("core")

	cfg, err := config.Load(env.Paths.ConfigFile())
	if err != nil {
		return nil, err
	}

	lf, err := lock.Resolve(cfg, env.Settings)
	if err != nil {
		return nil, err
	}

	if err := lf.WriteTo(env.Paths.LockFile()); err != nil {
		return nil, err
	}
	logger.Info().
		Str("path", env.Paths.LockFile()).
		Int("plugins", len(lf.Plugins)).
		Msg("Lock file written")
	return lf, nil
}

// lockCurrent reports whether the lock file exists and is at least as
// new as the config file
func lockCurrent(env *Environment) bool {
	lockInfo, err := os.Stat(env.Paths.LockFile())
	if err != nil {
		return false
	}
	cfgInfo, err := os.Stat(env.Paths.ConfigFile())
	if err != nil {
		return false
	}
	return !cfgInfo.ModTime().After(lockInfo.ModTime())
}
