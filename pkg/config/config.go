// Package config loads and edits the declarative plugin configuration.
package config

import (
	"github.com/plugman-sh/plugman/pkg/errors"
)

// Plugin is a single declared plugin entry. Exactly one of Dir (sourced
// variant) and Raw (inline variant) must be set.
type Plugin struct {
	// Name identifies the plugin and is used in template expansion
	Name string `koanf:"name" toml:"name"`

	// Dir locates the plugin source directory. It may use the
	// template variables name, data_dir and home, and a leading ~.
	Dir string `koanf:"dir" toml:"dir,omitempty"`

	// Uses lists glob patterns selecting the files to source. When
	// empty, the global match list is tried pattern by pattern.
	Uses []string `koanf:"uses" toml:"uses,omitempty"`

	// Apply names the templates rendered for this plugin, in order.
	// When empty, the global apply list is used.
	Apply []string `koanf:"apply" toml:"apply,omitempty"`

	// Raw is literal shell text for inline plugins
	Raw string `koanf:"raw" toml:"raw,omitempty"`

	// Profiles restricts the plugin to the named profiles. An empty
	// list means the plugin is active under every profile.
	Profiles []string `koanf:"profiles" toml:"profiles,omitempty"`
}

// Config is the fully merged configuration: embedded defaults, the
// user's config file and environment overrides.
type Config struct {
	// Shell is the target shell dialect (zsh or bash)
	Shell string `koanf:"shell" toml:"shell,omitempty"`

	// Match is the global ordered glob list used for plugins without
	// an explicit uses list; the first matching pattern wins
	Match []string `koanf:"match" toml:"match,omitempty"`

	// Apply is the global default apply list
	Apply []string `koanf:"apply" toml:"apply,omitempty"`

	// Plugins are the declared plugin entries, in file order
	Plugins []Plugin `koanf:"plugins" toml:"plugins,omitempty"`

	// Templates maps template names to template sources
	Templates map[string]string `koanf:"templates" toml:"templates,omitempty"`
}

// Inline reports whether the plugin is the inline variant
func (p *Plugin) Inline() bool {
	return p.Raw != ""
}

// Validate checks the tagged-variant invariant for a single entry
func (p *Plugin) Validate() error {
	if p.Name == "" {
		return errors.New(errors.ErrConfigValid, "plugin is missing a name")
	}
	if p.Raw != "" && p.Dir != "" {
		return errors.Newf(errors.ErrConfigValid, "plugin %q sets both raw and dir", p.Name)
	}
	if p.Raw == "" && p.Dir == "" {
		return errors.Newf(errors.ErrConfigValid, "plugin %q sets neither raw nor dir", p.Name)
	}
	if p.Raw != "" && (len(p.Uses) > 0 || len(p.Apply) > 0) {
		return errors.Newf(errors.ErrConfigValid, "inline plugin %q cannot set uses or apply", p.Name)
	}
	return nil
}

// Validate checks the whole configuration
func (c *Config) Validate() error {
	if c.Shell != "zsh" && c.Shell != "bash" {
		return errors.Newf(errors.ErrConfigValid, "unsupported shell %q", c.Shell)
	}
	seen := make(map[string]bool, len(c.Plugins))
	for i := range c.Plugins {
		p := &c.Plugins[i]
		if err := p.Validate(); err != nil {
			return err
		}
		if seen[p.Name] {
			return errors.Newf(errors.ErrConfigValid, "duplicate plugin %q", p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}
