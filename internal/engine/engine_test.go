package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/walletkeeper/internal/config"
	"github.com/dmitrijs2005/walletkeeper/internal/cryptox"
	"github.com/dmitrijs2005/walletkeeper/internal/dispatch"
	"github.com/dmitrijs2005/walletkeeper/internal/logging"
	"github.com/dmitrijs2005/walletkeeper/internal/prompt"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.StorageDir = filepath.Join(t.TempDir(), "wk")
	cfg.KDF = cryptox.KDFParams{Time: 1, MemoryKiB: 1024, Threads: 1}
	return cfg
}

func TestOpen_WiresStack(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	e, err := Open(ctx, cfg, prompt.None{}, logging.Nop{})
	require.NoError(t, err)
	defer e.Close(ctx)

	fi, err := os.Stat(cfg.StorageDir)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())
	_, err = os.Stat(cfg.AuditPath())
	require.NoError(t, err)

	cl := dispatch.NewClient(e.Caller())
	var initialized bool
	_, err = cl.Do(ctx, dispatch.MethodInitialized, nil, &initialized)
	require.NoError(t, err)
	assert.False(t, initialized)

	_, err = cl.Do(ctx, dispatch.MethodSignupStart, nil, nil)
	require.NoError(t, err)
}

func TestOpen_WithoutJournal(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.AuditDB = ""

	e, err := Open(ctx, cfg, nil, logging.Nop{})
	require.NoError(t, err)
	defer e.Close(ctx)

	assert.Nil(t, e.journal)
	entries, err := os.ReadDir(cfg.StorageDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestOpen_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown language", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Language = "klingon"
		_, err := Open(ctx, cfg, nil, logging.Nop{})
		assert.Error(t, err)
	})

	t.Run("storage is a file", func(t *testing.T) {
		cfg := testConfig(t)
		file := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(file, nil, 0o600))
		cfg.StorageDir = file
		_, err := Open(ctx, cfg, nil, logging.Nop{})
		assert.Error(t, err)
	})

	t.Run("bad kdf", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.KDF.Threads = 0
		_, err := Open(ctx, cfg, nil, logging.Nop{})
		assert.Error(t, err)
	})
}
