package lock

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/plugman-sh/plugman/pkg/config"
	"github.com/plugman-sh/plugman/pkg/errors"
	"github.com/plugman-sh/plugman/pkg/logging"
	"github.com/plugman-sh/plugman/pkg/template"
)

// Active is the profile predicate: an entry with a non-empty profile
// list is active iff the active profile is a member; an entry without
// one is active under every profile.
func Active(profiles []string, active string) bool {
	if len(profiles) == 0 {
		return true
	}
	for _, p := range profiles {
		if p == active {
			return true
		}
	}
	return false
}

// Resolve expands the configuration into a lock file under the given
// settings. It filters entries by the active profile, locates source
// directories and files on disk, applies template defaults, and checks
// that every referenced template exists and compiles. It performs no
// writes.
func Resolve(cfg *config.Config, set Settings) (*File, error) {
	logger := logging.GetLogger("lock")

	// Every template must compile before anything else is attempted
	if _, err := template.CompileTable(cfg.Templates); err != nil {
		return nil, err
	}

	lf := &File{
		Settings:  set,
		Templates: cfg.Templates,
	}

	for i := range cfg.Plugins {
		p := &cfg.Plugins[i]
		if !Active(p.Profiles, set.Profile) {
			logger.Debug().
				Str("plugin", p.Name).
				Str("profile", set.Profile).
				Msg("Plugin filtered out by profile")
			continue
		}

		if p.Inline() {
			lf.Plugins = append(lf.Plugins, Plugin{
				Name:     p.Name,
				Raw:      p.Raw,
				Profiles: p.Profiles,
			})
			continue
		}

		resolved, err := resolveSourced(p, cfg, set)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrResolve, "failed to resolve plugin %q", p.Name)
		}
		lf.Plugins = append(lf.Plugins, *resolved)
	}

	logger.Debug().
		Int("declared", len(cfg.Plugins)).
		Int("resolved", len(lf.Plugins)).
		Str("profile", set.Profile).
		Msg("Configuration resolved")

	return lf, nil
}

// resolveSourced locates a sourced plugin's directory and files and
// settles its apply list
func resolveSourced(p *config.Plugin, cfg *config.Config, set Settings) (*Plugin, error) {
	dir, err := resolveSourceDir(p, set)
	if err != nil {
		return nil, err
	}

	files, err := resolveFiles(p, cfg, set, dir)
	if err != nil {
		return nil, err
	}

	apply := p.Apply
	if len(apply) == 0 {
		apply = cfg.Apply
	}
	for _, name := range apply {
		if _, ok := cfg.Templates[name]; !ok {
			return nil, errors.Newf(errors.ErrTemplateNotFound, "apply references undefined template %q", name)
		}
	}

	return &Plugin{
		Name:      p.Name,
		SourceDir: dir,
		Files:     files,
		Apply:     apply,
	}, nil
}

// resolveSourceDir expands the dir template and checks the directory
// exists. The resolved path must be absolute; lock files never contain
// relative paths.
func resolveSourceDir(p *config.Plugin, set Settings) (string, error) {
	dir, err := template.Render(p.Dir, template.Vars{
		"name":     p.Name,
		"data_dir": set.DataDir,
		"home":     set.Home,
	})
	if err != nil {
		return "", err
	}

	dir = expandHome(dir, set.Home)
	dir = filepath.Clean(dir)
	if !filepath.IsAbs(dir) {
		return "", errors.Newf(errors.ErrResolve, "source directory %q is not absolute", dir)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrDirAccess, "failed to find source directory %q", dir)
	}
	if !info.IsDir() {
		return "", errors.Newf(errors.ErrDirAccess, "%q is not a directory", dir)
	}
	return dir, nil
}

// resolveFiles enumerates the plugin's files. Explicit uses patterns
// must each match at least one file; otherwise the global match list is
// tried in order and the first matching pattern wins.
func resolveFiles(p *config.Plugin, cfg *config.Config, set Settings, dir string) ([]string, error) {
	vars := template.Vars{
		"name":     p.Name,
		"dir":      dir,
		"data_dir": set.DataDir,
	}

	if len(p.Uses) > 0 {
		var files []string
		for _, pattern := range p.Uses {
			matched, err := matchGlob(pattern, dir, vars)
			if err != nil {
				return nil, err
			}
			if len(matched) == 0 {
				return nil, errors.Newf(errors.ErrResolve, "no files matched pattern %q", pattern)
			}
			files = append(files, matched...)
		}
		return files, nil
	}

	for _, pattern := range cfg.Match {
		matched, err := matchGlob(pattern, dir, vars)
		if err != nil {
			return nil, err
		}
		if len(matched) > 0 {
			return matched, nil
		}
	}
	return nil, errors.Newf(errors.ErrResolve, "no files in %q matched any pattern", dir)
}

// matchGlob renders a glob pattern and expands it. Relative patterns
// are rooted at dir; absolute patterns, such as ones built from
// {{ data_dir }}, are used as is. Glob results are sorted, which keeps
// resolution deterministic.
func matchGlob(pattern, dir string, vars template.Vars) ([]string, error) {
	rendered, err := template.Render(pattern, vars)
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(rendered) {
		rendered = filepath.Join(dir, rendered)
	}
	matched, err := filepath.Glob(rendered)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrResolve, "invalid glob pattern %q", rendered)
	}
	return matched, nil
}

// expandHome expands a leading ~ to the given home directory
func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
