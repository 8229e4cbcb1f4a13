package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/walletkeeper/internal/flagx"
)

// parseFlags overlays command-line flags.
//
//	-s string   storage directory
//	-l string   mnemonic language
//	-a string   gRPC listen address
//	-r string   remote server address (cli)
//	-k string   access token secret
//	-v string   log level
//	-f string   log format: text, json or console
//
// Only these flags are picked out of args, so binaries may define their own.
func parseFlags(cfg *Config, args []string) error {
	filtered := flagx.FilterArgs(args, []string{"-s", "-l", "-a", "-r", "-k", "-v", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.StorageDir, "s", cfg.StorageDir, "storage directory")
	fs.StringVar(&cfg.Language, "l", cfg.Language, "mnemonic language")
	fs.StringVar(&cfg.ListenAddr, "a", cfg.ListenAddr, "address and port to run server")
	fs.StringVar(&cfg.ServerAddr, "r", cfg.ServerAddr, "remote server address")
	fs.StringVar(&cfg.TokenSecret, "k", cfg.TokenSecret, "access token secret")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "f", cfg.LogFormat, "log format")

	return fs.Parse(filtered)
}
