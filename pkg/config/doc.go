// Package config loads githash settings.
//
// Settings are layered, later layers overriding earlier ones:
//
//  1. built-in defaults
//  2. githash.toml or .githash.toml in the working directory, or the file
//     given with --config
//  3. GITHASH_* environment variables
//
// Environment keys are the lower-cased setting names, so GITHASH_SKIP_HASH
// sets skip_hash. Regex entries use GITHASH_REGEX_<KEY>. List settings
// accept comma separated values.
package config
