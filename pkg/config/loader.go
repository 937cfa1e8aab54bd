package config

import (
	_ "embed"
	stderrors "errors"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/plugman-sh/plugman/pkg/errors"
	"github.com/plugman-sh/plugman/pkg/logging"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, stderrors.New("not implemented")
}

// systemDefaults returns the baseline configuration merged below
// everything else
func systemDefaults() map[string]interface{} {
	return map[string]interface{}{
		"shell": "zsh",
		"apply": []string{"source"},
		"match": []string{
			"{{ name }}.plugin.zsh",
			"*.plugin.zsh",
			"init.zsh",
			"*.zsh",
			"*.sh",
			"*.zsh-theme",
		},
	}
}

// Load reads the configuration file at path layered over the embedded
// defaults and PLUGMAN_* environment variables, and validates the
// result. A missing config file is an error; `plugman init` creates
// one.
func Load(path string) (*Config, error) {
	logger := logging.GetLogger("config")

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrFileNotFound, "config file %q does not exist, run `plugman init` to create it", path)
		}
		return nil, errors.Wrapf(err, errors.ErrFileRead, "failed to check config file %q", path)
	}

	k := koanf.New(".")

	// 1. System defaults
	if err := k.Load(confmap.Provider(systemDefaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. Embedded default templates
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load embedded defaults")
	}

	// 3. The user's config file
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse config file %q", path)
	}

	// 4. Environment overrides (e.g. PLUGMAN_SHELL=bash)
	err := k.Load(env.Provider("PLUGMAN_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "PLUGMAN_")), "_", ".")
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("path", path).
		Int("plugins", len(cfg.Plugins)).
		Int("templates", len(cfg.Templates)).
		Msg("Configuration loaded")

	return &cfg, nil
}
