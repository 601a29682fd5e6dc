// Package config loads applinker settings with koanf.
//
// Layering, lowest priority first: built-in defaults, an optional config
// file (TOML or YAML, probed under the XDG config directory unless an
// explicit path is given), then APPLINKER_* environment variables. CLI
// flags are applied on top by the command layer and always win.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/applinker/pkg/errors"
	"github.com/arthur-debert/applinker/pkg/paths"
)

// envPrefix namespaces the environment variables applinker reads.
const envPrefix = "APPLINKER_"

// Config holds every tunable setting.
type Config struct {
	LinkDir          string   `koanf:"link_dir"`
	SrcDirs          []string `koanf:"src_dirs"`
	Prefix           string   `koanf:"prefix"`
	Postfix          string   `koanf:"postfix"`
	ToLower          bool     `koanf:"to_lower"`
	Desktop          bool     `koanf:"desktop"`
	Watch            bool     `koanf:"watch"`
	NotifySecs       int      `koanf:"notify_secs"`
	PollIntervalSecs int      `koanf:"poll_interval_secs"`
}

// defaults are the built-in settings before any file or env overrides.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"link_dir":           "",
		"src_dirs":           paths.DefaultSourceDirs(),
		"prefix":             "",
		"postfix":            "",
		"to_lower":           false,
		"desktop":            false,
		"watch":              false,
		"notify_secs":        10,
		"poll_interval_secs": 5,
	}
}

// Load builds the configuration. When configFile is empty the standard
// candidate paths are probed and a missing file is not an error; an
// explicitly named file must exist.
func Load(configFile string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "loading defaults")
	}

	path := configFile
	if path == "" {
		for _, candidate := range paths.ConfigFileCandidates() {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "loading config file %s", path)
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "loading environment")
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "unmarshaling config")
	}
	return &cfg, nil
}

func parserFor(path string) koanf.Parser {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return yaml.Parser()
	default:
		return toml.Parser()
	}
}
