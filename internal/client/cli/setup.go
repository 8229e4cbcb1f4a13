package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/walletkeeper/internal/client/client"
	"github.com/dmitrijs2005/walletkeeper/internal/config"
	"github.com/dmitrijs2005/walletkeeper/internal/dispatch"
	"github.com/dmitrijs2005/walletkeeper/internal/engine"
	"github.com/dmitrijs2005/walletkeeper/internal/logging"
	"github.com/dmitrijs2005/walletkeeper/internal/prompt"
	"github.com/dmitrijs2005/walletkeeper/internal/server/auth"
)

// remoteClientID is the subject of tokens the cli mints from a configured
// secret.
const remoteClientID = "cli"

// Setup builds the App for cfg on the process's stdin and stdout. With no
// server address the wallet stack runs in-process; otherwise requests go
// over gRPC. The returned func releases whatever was opened.
func Setup(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, func(), error) {
	reader := bufio.NewReader(os.Stdin)
	term := prompt.NewTerminalFrom(reader, os.Stderr, int(os.Stdin.Fd()))
	if !prompt.Interactive() {
		logger.Warn(ctx, "stdin is not a terminal, passphrases will be read as plain lines")
	}

	if cfg.ServerAddr == "" {
		eng, err := engine.Open(ctx, cfg, term, logger)
		if err != nil {
			return nil, nil, err
		}
		app := NewApp(dispatch.NewClient(eng.Caller()), term, reader, os.Stdout, ModeLocal)
		return app, func() { eng.Close(ctx) }, nil
	}

	token, err := accessToken(cfg)
	if err != nil {
		return nil, nil, err
	}
	caller, err := client.NewGRPCCaller(cfg.ServerAddr, token)
	if err != nil {
		return nil, nil, err
	}
	app := NewApp(dispatch.NewClient(caller), term, reader, os.Stdout, ModeRemote)
	return app, func() { _ = caller.Close() }, nil
}

// accessToken mints a token from the shared secret, or falls back to the
// one the server wrote into the storage root.
func accessToken(cfg *config.Config) (string, error) {
	if cfg.TokenSecret != "" {
		return auth.GenerateToken(remoteClientID, []byte(cfg.TokenSecret), cfg.TokenTTL)
	}
	token, err := auth.ReadTokenFile(cfg.StorageDir)
	if err != nil {
		return "", fmt.Errorf("no access token (set -k or run the server with the same storage dir): %w", err)
	}
	return token, nil
}
