// Package types defines the core types and interfaces shared by the
// versioner, the cleanup engine and the build host adapters. This includes
// the FS collaborator interface, the Assets map a build host hands to the
// plugin, and the Stats reported on build completion.
package types
