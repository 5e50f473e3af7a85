package config

import (
	_ "embed"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/arthur-debert/githash/pkg/errors"
)

//go:embed embedded/githash.toml
var templateConfig []byte

// Marshal renders cfg as TOML.
func Marshal(cfg *Config) ([]byte, error) {
	out, err := toml.Marshal(cfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to render configuration")
	}
	return out, nil
}

// Diff returns a unified diff from the built-in defaults to cfg, both
// rendered as TOML. It is empty when cfg only holds defaults.
func Diff(cfg *Config) (string, error) {
	defaults, err := Marshal(Default())
	if err != nil {
		return "", err
	}
	current, err := Marshal(cfg)
	if err != nil {
		return "", err
	}

	out, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(defaults)),
		B:        difflib.SplitLines(string(current)),
		FromFile: "defaults",
		ToFile:   "effective",
		Context:  2,
	})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to diff configuration")
	}
	return out, nil
}

// GenerateConfigContent returns the documented config file with every
// setting commented out.
func GenerateConfigContent() string {
	return commentOutConfigValues(string(templateConfig))
}

// commentOutConfigValues comments out every assignment, keeping blank lines,
// comments and table headers.
func commentOutConfigValues(content string) string {
	lines := strings.Split(content, "\n")
	result := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "", strings.HasPrefix(trimmed, "#"):
			result = append(result, line)
		case strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"):
			result = append(result, line)
		default:
			result = append(result, "# "+line)
		}
	}

	return strings.Join(result, "\n")
}
