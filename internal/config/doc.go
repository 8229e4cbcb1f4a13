// Package config assembles runtime settings for both walletkeeper binaries.
//
// Values are applied in order: built-in defaults, an optional JSON or YAML
// file named by -c/-config, then command-line flags.
package config
