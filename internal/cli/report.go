package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/githash/pkg/cleanup"
	"github.com/arthur-debert/githash/pkg/errors"
	"github.com/arthur-debert/githash/pkg/style"
)

// Output formats accepted by --format.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// cleanResult is the rendered form of a cleanup pass.
type cleanResult struct {
	RunID      string   `json:"run_id" yaml:"run_id"`
	Version    string   `json:"version" yaml:"version"`
	OutputPath string   `json:"output_path" yaml:"output_path"`
	DryRun     bool     `json:"dry_run" yaml:"dry_run"`
	Scanned    int      `json:"scanned" yaml:"scanned"`
	Stale      []string `json:"stale" yaml:"stale"`
	Deleted    []string `json:"deleted" yaml:"deleted"`
	Kept       []string `json:"kept,omitempty" yaml:"kept,omitempty"`
	Errors     []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

func newCleanResult(version, outputPath string, dryRun bool, report *cleanup.Report) cleanResult {
	r := cleanResult{
		RunID:      report.RunID,
		Version:    version,
		OutputPath: outputPath,
		DryRun:     dryRun,
		Scanned:    report.Scanned,
		Stale:      nonNil(report.Stale),
		Deleted:    nonNil(report.Deleted),
		Kept:       report.Kept,
	}
	for _, err := range report.Errors {
		r.Errors = append(r.Errors, err.Error())
	}
	return r
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func validFormat(format string) error {
	switch format {
	case FormatText, FormatJSON, FormatYAML:
		return nil
	}
	return errors.Newf(errors.ErrInvalidInput, MsgErrUnknownFormat, format)
}

func renderCleanResult(w io.Writer, format string, r cleanResult) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case FormatText:
		_, err := io.WriteString(w, renderText(r))
		return err
	}
	return validFormat(format)
}

func renderText(r cleanResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, MsgVersionLine, style.VersionStyle.Render(r.Version))
	fmt.Fprintf(&b, MsgScannedFormat, style.Bold(strconv.Itoa(r.Scanned)), style.MutedStyle.Render(r.OutputPath))

	switch {
	case r.DryRun && len(r.Stale) > 0:
		b.WriteString(style.TitleStyle.Render(MsgWouldDelete) + "\n")
		b.WriteString(list(r.Stale, style.WarningStyle.Render))
	case len(r.Deleted) > 0:
		b.WriteString(style.TitleStyle.Render(MsgDeletedHeader) + "\n")
		b.WriteString(list(r.Deleted, style.SuccessStyle.Render))
	case len(r.Errors) == 0:
		b.WriteString(style.MutedStyle.Render(MsgNoStaleFiles) + "\n")
	}

	if len(r.Kept) > 0 {
		b.WriteString(style.TitleStyle.Render(MsgKeptHeader) + "\n")
		b.WriteString(list(r.Kept, style.MutedStyle.Render))
	}
	if len(r.Errors) > 0 {
		b.WriteString(style.TitleStyle.Render(MsgErrorsHeader) + "\n")
		b.WriteString(list(r.Errors, style.ErrorStyle.Render))
	}
	if r.DryRun {
		b.WriteString("\n" + style.WarningStyle.Render(MsgDryRunNotice) + "\n")
	}
	return b.String()
}

func list(items []string, render func(...string) string) string {
	var b strings.Builder
	for _, item := range items {
		b.WriteString(style.Indent(render(item), 1) + "\n")
	}
	return b.String()
}
