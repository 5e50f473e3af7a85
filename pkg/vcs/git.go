// Package vcs resolves version tokens from the git CLI.
package vcs

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/arthur-debert/githash/pkg/errors"
	"github.com/arthur-debert/githash/pkg/logging"
)

// CommandRunner executes an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, dir string, name string, args ...string) (string, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run implements CommandRunner.
func (ExecRunner) Run(ctx context.Context, dir string, name string, args ...string) (string, error) {
	logging.LogCommand(name, args)

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
			return "", fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", err
	}
	return string(output), nil
}

// Git reads commit information with `git rev-parse`.
type Git struct {
	// Runner executes git (ExecRunner when nil)
	Runner CommandRunner

	// WorkDir is the directory git runs in (empty = current dir)
	WorkDir string
}

// NewGit creates a Git source rooted at workDir.
func NewGit(workDir string) *Git {
	return &Git{WorkDir: workDir}
}

// ShortHash returns the abbreviated HEAD commit hash. git may return more
// than length characters when the short form would be ambiguous.
func (g *Git) ShortHash(ctx context.Context, length int) (string, error) {
	if length <= 0 {
		return "", errors.Newf(errors.ErrInvalidInput, "hash length must be positive, got %d", length)
	}

	runner := g.Runner
	if runner == nil {
		runner = ExecRunner{}
	}

	out, err := runner.Run(ctx, g.WorkDir, "git", "rev-parse", fmt.Sprintf("--short=%d", length), "HEAD")
	if err != nil {
		return "", errors.Wrap(err, errors.ErrVersionUnavailable, "cannot read the last git commit").
			WithDetail("dir", g.WorkDir)
	}

	hash := strings.TrimSpace(out)
	if hash == "" {
		return "", errors.New(errors.ErrVersionUnavailable, "git returned an empty commit hash")
	}
	return hash, nil
}
