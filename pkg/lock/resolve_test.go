// pkg/lock/resolve_test.go
// TEST TYPE: Unit Tests
// DEPENDENCIES: Temp filesystem
// PURPOSE: Test profile filtering and plugin resolution

package lock_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugman-sh/plugman/pkg/config"
	"github.com/plugman-sh/plugman/pkg/errors"
	"github.com/plugman-sh/plugman/pkg/lock"
)

func testTemplates() map[string]string {
	return map[string]string{
		"source": "{% for file in files %}source \"{{ file }}\"\n{% endfor %}",
		"PATH":   `export PATH="{{ dir }}:$PATH"`,
		"fpath":  `fpath=( "{{ dir }}" $fpath )`,
	}
}

func testConfig(plugins ...config.Plugin) *config.Config {
	return &config.Config{
		Shell: "zsh",
		Match: []string{
			"{{ name }}.plugin.zsh",
			"*.plugin.zsh",
			"init.zsh",
			"*.zsh",
			"*.sh",
		},
		Apply:     []string{"source"},
		Plugins:   plugins,
		Templates: testTemplates(),
	}
}

func testSettings(t *testing.T, dataDir, profile string) lock.Settings {
	t.Helper()
	return lock.Settings{
		Version:    "0.1.0",
		Home:       "/home/test",
		ConfigDir:  "/home/test/.config/plugman",
		DataDir:    dataDir,
		ConfigFile: "/home/test/.config/plugman/plugins.toml",
		Profile:    profile,
	}
}

// writePluginDir creates a plugin source directory under
// dataDir/plugins/name with the given files
func writePluginDir(t *testing.T, dataDir, name string, files ...string) string {
	t.Helper()
	dir := filepath.Join(dataDir, "plugins", name)
	require.NoError(t, os.MkdirAll(dir, 0755))
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("# "+f+"\n"), 0644))
	}
	return dir
}

func TestActive(t *testing.T) {
	tests := []struct {
		name     string
		profiles []string
		active   string
		expected bool
	}{
		{name: "no_profiles_default_profile", profiles: nil, active: "", expected: true},
		{name: "no_profiles_any_profile", profiles: nil, active: "p3", expected: true},
		{name: "member_profile", profiles: []string{"p1", "p2"}, active: "p1", expected: true},
		{name: "second_member_profile", profiles: []string{"p1", "p2"}, active: "p2", expected: true},
		{name: "non_member_profile", profiles: []string{"p1", "p2"}, active: "p3", expected: false},
		{name: "restricted_under_default", profiles: []string{"p1"}, active: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, lock.Active(tt.profiles, tt.active))
		})
	}
}

func TestResolveSourcedPlugin(t *testing.T) {
	dataDir := t.TempDir()
	dir := writePluginDir(t, dataDir, "myplug", "myplug.plugin.zsh", "extra.zsh")

	cfg := testConfig(config.Plugin{
		Name: "myplug",
		Dir:  "{{ data_dir }}/plugins/{{ name }}",
	})

	lf, err := lock.Resolve(cfg, testSettings(t, dataDir, ""))
	require.NoError(t, err)
	require.Len(t, lf.Plugins, 1)

	p := lf.Plugins[0]
	assert.Equal(t, "myplug", p.Name)
	assert.Equal(t, dir, p.SourceDir)
	// First match pattern wins: {{ name }}.plugin.zsh
	assert.Equal(t, []string{filepath.Join(dir, "myplug.plugin.zsh")}, p.Files)
	assert.Equal(t, []string{"source"}, p.Apply)
	assert.Empty(t, p.Raw)
}

func TestResolveUsesPatterns(t *testing.T) {
	dataDir := t.TempDir()
	dir := writePluginDir(t, dataDir, "multi", "a.zsh", "b.zsh", "readme.md")

	cfg := testConfig(config.Plugin{
		Name: "multi",
		Dir:  "{{ data_dir }}/plugins/{{ name }}",
		Uses: []string{"*.zsh"},
	})

	lf, err := lock.Resolve(cfg, testSettings(t, dataDir, ""))
	require.NoError(t, err)
	require.Len(t, lf.Plugins, 1)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.zsh"),
		filepath.Join(dir, "b.zsh"),
	}, lf.Plugins[0].Files)
}

func TestResolveUsesDataDirVariable(t *testing.T) {
	dataDir := t.TempDir()
	dir := writePluginDir(t, dataDir, "myplug", "myplug.plugin.zsh", "notes.md")

	cfg := testConfig(config.Plugin{
		Name: "myplug",
		Dir:  "{{ data_dir }}/plugins/{{ name }}",
		Uses: []string{"{{ data_dir }}/plugins/{{ name }}/*.zsh"},
	})

	lf, err := lock.Resolve(cfg, testSettings(t, dataDir, ""))
	require.NoError(t, err)
	require.Len(t, lf.Plugins, 1)
	assert.Equal(t, []string{filepath.Join(dir, "myplug.plugin.zsh")}, lf.Plugins[0].Files)
}

func TestResolveUsesPatternWithoutMatchFails(t *testing.T) {
	dataDir := t.TempDir()
	writePluginDir(t, dataDir, "empty", "readme.md")

	cfg := testConfig(config.Plugin{
		Name: "empty",
		Dir:  "{{ data_dir }}/plugins/{{ name }}",
		Uses: []string{"*.zsh"},
	})

	_, err := lock.Resolve(cfg, testSettings(t, dataDir, ""))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrResolve))
}

func TestResolveNoMatchingFilesFails(t *testing.T) {
	dataDir := t.TempDir()
	writePluginDir(t, dataDir, "bare", "readme.md")

	cfg := testConfig(config.Plugin{
		Name: "bare",
		Dir:  "{{ data_dir }}/plugins/{{ name }}",
	})

	_, err := lock.Resolve(cfg, testSettings(t, dataDir, ""))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrResolve))
}

func TestResolveMissingSourceDirFails(t *testing.T) {
	dataDir := t.TempDir()

	cfg := testConfig(config.Plugin{
		Name: "ghost",
		Dir:  "{{ data_dir }}/plugins/{{ name }}",
	})

	_, err := lock.Resolve(cfg, testSettings(t, dataDir, ""))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.New(errors.ErrDirAccess, ""))
}

func TestResolveUndefinedApplyTemplateFails(t *testing.T) {
	dataDir := t.TempDir()
	writePluginDir(t, dataDir, "myplug", "myplug.plugin.zsh")

	cfg := testConfig(config.Plugin{
		Name:  "myplug",
		Dir:   "{{ data_dir }}/plugins/{{ name }}",
		Apply: []string{"does-not-exist"},
	})

	_, err := lock.Resolve(cfg, testSettings(t, dataDir, ""))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.New(errors.ErrTemplateNotFound, ""))
}

func TestResolveUncompilableTemplateFails(t *testing.T) {
	cfg := testConfig()
	cfg.Templates["broken"] = "{{ dir"

	_, err := lock.Resolve(cfg, testSettings(t, t.TempDir(), ""))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrTemplateParse))
}

func TestResolveProfileFiltering(t *testing.T) {
	dataDir := t.TempDir()
	writePluginDir(t, dataDir, "everywhere", "everywhere.plugin.zsh")

	inline := config.Plugin{
		Name:     "work-aliases",
		Raw:      "alias k=kubectl",
		Profiles: []string{"p1", "p2"},
	}
	sourced := config.Plugin{
		Name: "everywhere",
		Dir:  "{{ data_dir }}/plugins/{{ name }}",
	}

	t.Run("inline_included_under_member_profile", func(t *testing.T) {
		lf, err := lock.Resolve(testConfig(sourced, inline), testSettings(t, dataDir, "p1"))
		require.NoError(t, err)
		require.Len(t, lf.Plugins, 2)
		assert.Equal(t, "work-aliases", lf.Plugins[1].Name)
		assert.Equal(t, "alias k=kubectl", lf.Plugins[1].Raw)
		assert.Equal(t, []string{"p1", "p2"}, lf.Plugins[1].Profiles)
	})

	t.Run("inline_excluded_under_other_profile", func(t *testing.T) {
		lf, err := lock.Resolve(testConfig(sourced, inline), testSettings(t, dataDir, "p3"))
		require.NoError(t, err)
		require.Len(t, lf.Plugins, 1)
		assert.Equal(t, "everywhere", lf.Plugins[0].Name)
	})

	t.Run("sourced_without_profiles_included_anywhere", func(t *testing.T) {
		for _, profile := range []string{"", "p1", "p3"} {
			lf, err := lock.Resolve(testConfig(sourced), testSettings(t, dataDir, profile))
			require.NoError(t, err)
			require.Len(t, lf.Plugins, 1)
			assert.Equal(t, profile, lf.Profile)
		}
	})
}

func TestResolveIsDeterministic(t *testing.T) {
	dataDir := t.TempDir()
	writePluginDir(t, dataDir, "a", "a.plugin.zsh")
	writePluginDir(t, dataDir, "b", "x.zsh", "y.zsh", "z.zsh")

	cfg := testConfig(
		config.Plugin{Name: "a", Dir: "{{ data_dir }}/plugins/{{ name }}"},
		config.Plugin{Name: "b", Dir: "{{ data_dir }}/plugins/{{ name }}", Uses: []string{"*.zsh"}},
		config.Plugin{Name: "inline", Raw: "alias g=git"},
	)
	set := testSettings(t, dataDir, "")

	first, err := lock.Resolve(cfg, set)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := lock.Resolve(cfg, set)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestResolvePreservesDeclarationOrder(t *testing.T) {
	dataDir := t.TempDir()
	writePluginDir(t, dataDir, "zeta", "zeta.plugin.zsh")
	writePluginDir(t, dataDir, "alpha", "alpha.plugin.zsh")

	cfg := testConfig(
		config.Plugin{Name: "zeta", Dir: "{{ data_dir }}/plugins/{{ name }}"},
		config.Plugin{Name: "mid", Raw: "true"},
		config.Plugin{Name: "alpha", Dir: "{{ data_dir }}/plugins/{{ name }}"},
	)

	lf, err := lock.Resolve(cfg, testSettings(t, dataDir, ""))
	require.NoError(t, err)
	require.Len(t, lf.Plugins, 3)
	assert.Equal(t, "zeta", lf.Plugins[0].Name)
	assert.Equal(t, "mid", lf.Plugins[1].Name)
	assert.Equal(t, "alpha", lf.Plugins[2].Name)
}

func TestResolveTildeDir(t *testing.T) {
	dataDir := t.TempDir()
	home := t.TempDir()
	dir := filepath.Join(home, "myplugin")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "init.zsh"), []byte("true\n"), 0644))

	cfg := testConfig(config.Plugin{Name: "local", Dir: "~/myplugin"})
	set := testSettings(t, dataDir, "")
	set.Home = home

	lf, err := lock.Resolve(cfg, set)
	require.NoError(t, err)
	require.Len(t, lf.Plugins, 1)
	assert.Equal(t, dir, lf.Plugins[0].SourceDir)
}
