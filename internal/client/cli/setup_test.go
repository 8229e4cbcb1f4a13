package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/walletkeeper/internal/config"
	"github.com/dmitrijs2005/walletkeeper/internal/cryptox"
	"github.com/dmitrijs2005/walletkeeper/internal/logging"
	"github.com/dmitrijs2005/walletkeeper/internal/server/auth"
)

func setupConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.StorageDir = filepath.Join(t.TempDir(), "wk")
	cfg.KDF = cryptox.KDFParams{Time: 1, MemoryKiB: 1024, Threads: 1}
	return cfg
}

func TestSetup_Local(t *testing.T) {
	app, cleanup, err := Setup(context.Background(), setupConfig(t), logging.Nop{})
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, ModeLocal, app.Mode)
}

func TestSetup_RemoteWithSecret(t *testing.T) {
	cfg := setupConfig(t)
	cfg.ServerAddr = "127.0.0.1:50061"
	cfg.TokenSecret = "shared"

	app, cleanup, err := Setup(context.Background(), cfg, logging.Nop{})
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, ModeRemote, app.Mode)
}

func TestAccessToken(t *testing.T) {
	cfg := setupConfig(t)

	_, err := accessToken(cfg)
	require.Error(t, err)

	cfg.StorageDir = t.TempDir()
	_, err = auth.WriteTokenFile(cfg.StorageDir, "from.server.file")
	require.NoError(t, err)
	tok, err := accessToken(cfg)
	require.NoError(t, err)
	assert.Equal(t, "from.server.file", tok)

	cfg.TokenSecret = "shared"
	tok, err = accessToken(cfg)
	require.NoError(t, err)
	id, err := auth.ValidateToken(tok, []byte("shared"))
	require.NoError(t, err)
	assert.Equal(t, remoteClientID, id)
}
