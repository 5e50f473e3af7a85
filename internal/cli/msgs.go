package cli

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort      = "Stamp build output with the git commit hash"
	MsgVersionShort   = "Print version information"
	MsgVersionLong    = "Print detailed version information including commit hash and build date"
	MsgHashShort      = "Print the version token for the current commit"
	MsgCleanShort     = "Delete stale stamped files from an output directory"
	MsgBuildShort     = "Bundle entry points with esbuild and stamp the output"
	MsgGenConfigShort = "Print the configuration as TOML"
	MsgManShort       = "Generate man pages"

	// Report messages
	MsgVersionLine   = "Version %s\n"
	MsgDeletedHeader = "Deleted stale files:"
	MsgWouldDelete   = "Would delete:"
	MsgKeptHeader    = "Kept by keep globs:"
	MsgErrorsHeader  = "Errors:"
	MsgNoStaleFiles  = "No stale files found."
	MsgScannedFormat = "Scanned %s files in %s\n"
	MsgDryRunNotice  = "DRY RUN MODE - No files were deleted"
	MsgBuildOutputs  = "Wrote %d files (%d bytes) to %s\n"
	MsgConfigWritten = "Wrote %s\n"

	// Error messages
	MsgErrNoOutputPath  = "no output directory: pass --output or set output_path"
	MsgErrNoMatchers    = "nothing to match: pass asset names or configure [regex]"
	MsgErrUnknownFormat = "unknown format %q (want text, json or yaml)"
	MsgErrLocked        = "another githash process is working on %s"
	MsgErrDeletions     = "%d stale files could not be deleted"
	MsgErrBuildFailed   = "build failed with %d errors"
	MsgErrNoEntryPoints = "no entry points given"
	MsgErrConfigExists  = "%s already exists"

	// Flag descriptions
	MsgFlagVerbose    = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig     = "Config file (default githash.toml or .githash.toml)"
	MsgFlagDryRun     = "Report stale files without deleting them"
	MsgFlagOutput     = "Output directory to scan (overrides output_path)"
	MsgFlagFormat     = "Output format: text, json or yaml"
	MsgFlagKeep       = "Glob of files never deleted (repeatable)"
	MsgFlagOutdir     = "Output directory for the bundle"
	MsgFlagEntryNames = "Name template for entry point outputs"
	MsgFlagChunkNames = "Name template for shared chunks"
	MsgFlagAssetNames = "Name template for loaded assets"
	MsgFlagMinify     = "Minify the output"
	MsgFlagSplitting  = "Enable code splitting (ESM output)"
	MsgFlagSourcemap  = "Emit linked source maps"
	MsgFlagTemplate   = "Print the documented template instead of the effective config"
	MsgFlagDiff       = "Print a diff from the defaults to the effective config"
	MsgFlagWrite      = "Write githash.toml in the working directory instead of printing"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/clean-long.txt
	msgCleanLongRaw string
	MsgCleanLong    = strings.TrimSpace(msgCleanLongRaw)

	//go:embed msgs/clean-example.txt
	msgCleanExampleRaw string
	MsgCleanExample    = strings.TrimRight(msgCleanExampleRaw, "\n")

	//go:embed msgs/build-long.txt
	msgBuildLongRaw string
	MsgBuildLong    = strings.TrimSpace(msgBuildLongRaw)

	//go:embed msgs/build-example.txt
	msgBuildExampleRaw string
	MsgBuildExample    = strings.TrimRight(msgBuildExampleRaw, "\n")

	//go:embed msgs/genconfig-long.txt
	msgGenConfigLongRaw string
	MsgGenConfigLong    = strings.TrimSpace(msgGenConfigLongRaw)
)
