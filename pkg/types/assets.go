package types

import (
	"sort"
	"time"
)

// Assets maps an emitted asset name (relative to the output path) to its
// content. Build hosts hand it to the plugin before writing, and the plugin
// may rename keys in place.
type Assets map[string][]byte

// Names returns a sorted snapshot of the asset names.
func (a Assets) Names() []string {
	names := make([]string, 0, len(a))
	for name := range a {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Rename moves the content stored under from to to. The content is not
// copied. It reports false when from is absent or when from == to.
func (a Assets) Rename(from, to string) bool {
	content, ok := a[from]
	if !ok || from == to {
		return false
	}
	a[to] = content
	delete(a, from)
	return true
}

// Stats describes a finished build.
type Stats struct {
	Assets   int           `json:"assets" yaml:"assets"`
	Bytes    int64         `json:"bytes" yaml:"bytes"`
	Errors   int           `json:"errors" yaml:"errors"`
	Warnings int           `json:"warnings" yaml:"warnings"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// CompletionFunc is invoked once per build-complete event with the version
// token, the files deleted during the build and the host's statistics.
type CompletionFunc func(version string, deleted []string, stats Stats)
