package server

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/walletkeeper/internal/config"
	"github.com/dmitrijs2005/walletkeeper/internal/cryptox"
	"github.com/dmitrijs2005/walletkeeper/internal/logging"
	"github.com/dmitrijs2005/walletkeeper/internal/server/auth"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.StorageDir = filepath.Join(t.TempDir(), "wk")
	cfg.ListenAddr = "127.0.0.1:0"
	cfg.KDF = cryptox.KDFParams{Time: 1, MemoryKiB: 1024, Threads: 1}
	return cfg
}

func TestNewApp_WritesValidToken(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.TokenSecret = "configured-secret"

	app, err := NewApp(ctx, cfg, logging.Nop{})
	require.NoError(t, err)
	defer app.engine.Close(ctx)

	token, err := auth.ReadTokenFile(cfg.StorageDir)
	require.NoError(t, err)

	clientID, err := auth.ValidateToken(token, []byte("configured-secret"))
	require.NoError(t, err)
	assert.Equal(t, localClientID, clientID)
}

func TestNewApp_GeneratesSecret(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	app, err := NewApp(ctx, cfg, logging.Nop{})
	require.NoError(t, err)
	defer app.engine.Close(ctx)

	assert.Len(t, app.secret, 64)

	token, err := auth.ReadTokenFile(cfg.StorageDir)
	require.NoError(t, err)
	_, err = auth.ValidateToken(token, app.secret)
	require.NoError(t, err)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	cfg := testConfig(t)

	app, err := NewApp(context.Background(), cfg, logging.Nop{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop after cancel")
	}
}

func TestApp_RunStopsOnListenError(t *testing.T) {
	cfg := testConfig(t)
	cfg.ListenAddr = "127.0.0.1:99999"

	app, err := NewApp(context.Background(), cfg, logging.Nop{})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		app.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop after listen error")
	}
}
