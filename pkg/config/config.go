package config

import (
	"github.com/arthur-debert/githash/pkg/cleanup"
	"github.com/arthur-debert/githash/pkg/errors"
	"github.com/arthur-debert/githash/pkg/plugin"
	"github.com/arthur-debert/githash/pkg/versioner"
)

// Config holds the settings shared by every githash command.
type Config struct {
	Placeholder string            `koanf:"placeholder" toml:"placeholder"`
	Cleanup     bool              `koanf:"cleanup" toml:"cleanup"`
	SkipHash    string            `koanf:"skip_hash" toml:"skip_hash"`
	HashLength  int               `koanf:"hash_length" toml:"hash_length"`
	OutputPath  string            `koanf:"output_path" toml:"output_path"`
	Keep        []string          `koanf:"keep" toml:"keep"`
	Concurrency int               `koanf:"concurrency" toml:"concurrency"`
	Regex       map[string]string `koanf:"regex" toml:"regex"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Placeholder: versioner.DefaultPlaceholder,
		HashLength:  versioner.DefaultHashLength,
		Concurrency: cleanup.DefaultConcurrency,
		Keep:        []string{},
		Regex:       map[string]string{},
	}
}

// Validate rejects settings that cannot drive a build.
func (c *Config) Validate() error {
	if c.Placeholder == "" {
		return errors.New(errors.ErrConfigValid, "placeholder must not be empty")
	}
	if c.HashLength < 0 {
		return errors.Newf(errors.ErrConfigValid, "hash_length must not be negative, got %d", c.HashLength)
	}
	if c.Concurrency < 0 {
		return errors.Newf(errors.ErrConfigValid, "concurrency must not be negative, got %d", c.Concurrency)
	}
	return nil
}

// PluginOptions maps the settings onto plugin options. Callbacks are left
// for the caller to fill in.
func (c *Config) PluginOptions() plugin.Options {
	regex := make(map[string]string, len(c.Regex))
	for key, pattern := range c.Regex {
		regex[key] = pattern
	}
	return plugin.Options{
		Placeholder: c.Placeholder,
		Cleanup:     c.Cleanup,
		SkipHash:    c.SkipHash,
		HashLength:  c.HashLength,
		OutputPath:  c.OutputPath,
		Regex:       regex,
		Keep:        append([]string{}, c.Keep...),
		Concurrency: c.Concurrency,
	}
}

// toMap flattens c for the defaults layer.
func (c *Config) toMap() map[string]interface{} {
	regex := make(map[string]interface{}, len(c.Regex))
	for key, pattern := range c.Regex {
		regex[key] = pattern
	}
	return map[string]interface{}{
		"placeholder": c.Placeholder,
		"cleanup":     c.Cleanup,
		"skip_hash":   c.SkipHash,
		"hash_length": c.HashLength,
		"output_path": c.OutputPath,
		"keep":        append([]string{}, c.Keep...),
		"concurrency": c.Concurrency,
		"regex":       regex,
	}
}
