package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/githash/pkg/errors"
	"github.com/arthur-debert/githash/pkg/logging"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "GITHASH_"

// keyDelim separates nested keys. Regex keys are file names and may
// contain dots or slashes.
const keyDelim = "::"

// FileNames are the config files looked up in the working directory, in
// order of preference.
var FileNames = []string{"githash.toml", ".githash.toml"}

// Load builds the configuration from defaults, a config file and the
// environment. An explicit path must exist; without one the working
// directory is searched for FileNames.
func Load(path string) (*Config, error) {
	return load(".", path)
}

func load(dir, path string) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(keyDelim)

	// 1. Defaults
	if err := k.Load(confmap.Provider(Default().toMap(), keyDelim), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. Config file
	configPath, err := findConfigFile(dir, path)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse config file %s", configPath).
				WithDetail("path", configPath)
		}
		logger.Debug().Str("path", configPath).Msg("Loaded config file")
	}

	// 3. Environment
	if err := k.Load(env.Provider(EnvPrefix, keyDelim, envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment")
	}

	// 4. Unmarshal
	cfg := &Config{}
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to decode configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("placeholder", cfg.Placeholder).
		Bool("cleanup", cfg.Cleanup).
		Int("hash_length", cfg.HashLength).
		Msg("Configuration loaded")
	return cfg, nil
}

func findConfigFile(dir, path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", errors.Wrapf(err, errors.ErrConfigLoad, "cannot read config file %s", path).
				WithDetail("path", path)
		}
		return path, nil
	}
	for _, name := range FileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", nil
}

// envKey maps GITHASH_SKIP_HASH to skip_hash and GITHASH_REGEX_MAIN_JS to
// regex::main_js.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if rest, ok := strings.CutPrefix(key, "regex_"); ok {
		return "regex" + keyDelim + rest
	}
	return key
}
