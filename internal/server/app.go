// Package server runs the walletkeeper daemon: the wallet stack behind the
// gRPC dispatcher, with a freshly minted access token written to the
// storage root for local clients.
package server

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/walletkeeper/internal/common"
	"github.com/dmitrijs2005/walletkeeper/internal/config"
	"github.com/dmitrijs2005/walletkeeper/internal/engine"
	"github.com/dmitrijs2005/walletkeeper/internal/logging"
	"github.com/dmitrijs2005/walletkeeper/internal/prompt"
	"github.com/dmitrijs2005/walletkeeper/internal/server/auth"

	gs "github.com/dmitrijs2005/walletkeeper/internal/server/grpc"
)

// localClientID is the subject of the token written to the storage root.
const localClientID = "local"

type App struct {
	config *config.Config
	logger logging.Logger
	engine *engine.Engine
	secret []byte
}

// NewApp opens the stack. The daemon has no operator, so store prompts
// always cancel and clients must pass credentials explicitly.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	secret := c.TokenSecret
	if secret == "" {
		s, err := common.MakeRandHexString(32)
		if err != nil {
			return nil, err
		}
		secret = s
	}

	eng, err := engine.Open(ctx, c, prompt.None{}, logger)
	if err != nil {
		return nil, err
	}

	app := &App{config: c, logger: logger, engine: eng, secret: []byte(secret)}

	token, err := auth.GenerateToken(localClientID, app.secret, c.TokenTTL)
	if err != nil {
		eng.Close(ctx)
		return nil, err
	}
	path, err := auth.WriteTokenFile(c.StorageDir, token)
	if err != nil {
		eng.Close(ctx)
		return nil, err
	}
	logger.Info(ctx, "access token written", "path", path, "ttl", c.TokenTTL.String())

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewServer(app.config.ListenAddr, app.engine.Caller(), app.secret, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// drains in-flight requests and closes the stack.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.engine.Close(context.WithoutCancel(ctx))
	app.logger.Info(ctx, "Stopped")
}
