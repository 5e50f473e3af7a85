package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStylesKeepText(t *testing.T) {
	for name, render := range map[string]func(...string) string{
		"title":   TitleStyle.Render,
		"version": VersionStyle.Render,
		"success": SuccessStyle.Render,
		"error":   ErrorStyle.Render,
		"warning": WarningStyle.Render,
		"muted":   MutedStyle.Render,
	} {
		t.Run(name, func(t *testing.T) {
			assert.Contains(t, render("main.abc1234.js"), "main.abc1234.js")
		})
	}
	assert.Contains(t, Bold("x"), "x")
}

func TestIndent(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		level int
		want  string
	}{
		{"zero level", "a", 0, "a"},
		{"one level", "a", 1, "  a"},
		{"multi line", "a\nb", 2, "    a\n    b"},
		{"blank lines untouched", "a\n\nb", 1, "  a\n\n  b"},
		{"empty", "", 3, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Indent(tt.in, tt.level))
		})
	}
}
