// Package engine assembles the in-process wallet stack from configuration:
// the lifecycle journal, the user store, the dispatcher and the bridge that
// serializes every request onto one worker.
package engine

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/walletkeeper/internal/audit"
	"github.com/dmitrijs2005/walletkeeper/internal/config"
	"github.com/dmitrijs2005/walletkeeper/internal/dispatch"
	"github.com/dmitrijs2005/walletkeeper/internal/filex"
	"github.com/dmitrijs2005/walletkeeper/internal/logging"
	"github.com/dmitrijs2005/walletkeeper/internal/mnemonic"
	"github.com/dmitrijs2005/walletkeeper/internal/prompt"
	"github.com/dmitrijs2005/walletkeeper/internal/user"
)

// BridgeQueue is how many requests may wait for the worker.
const BridgeQueue = 16

type Engine struct {
	Store   *user.Store
	Bridge  *dispatch.Bridge
	journal *audit.Journal
	log     logging.Logger
}

// Open creates the storage root if needed and wires the stack. The journal
// is skipped when cfg.AuditDB is empty.
func Open(ctx context.Context, cfg *config.Config, p prompt.Provider, log logging.Logger) (*Engine, error) {
	language, err := mnemonic.ParseLanguage(cfg.Language)
	if err != nil {
		return nil, err
	}

	if _, err := filex.EnsureDir(cfg.StorageDir, ""); err != nil {
		return nil, fmt.Errorf("storage dir: %w", err)
	}

	e := &Engine{log: log.With("module", "engine")}

	var journal user.Journal
	if path := cfg.AuditPath(); path != "" {
		j, err := audit.Open(ctx, path, log)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		e.journal = j
		journal = j
	}

	store, err := user.New(user.Options{
		Root:        cfg.StorageDir,
		Language:    language,
		KDF:         cfg.KDF,
		TotpIssuer:  cfg.TotpIssuer,
		TotpAccount: cfg.TotpAccount,
		TotpSkew:    cfg.TotpSkew,
	}, p, journal, log)
	if err != nil {
		e.closeJournal(ctx)
		return nil, err
	}
	e.Store = store

	d := dispatch.New(store, dispatch.Options{
		LoginInterval: cfg.LoginRateInterval,
		LoginBurst:    cfg.LoginRateBurst,
	}, log)
	e.Bridge = dispatch.NewBridge(d, BridgeQueue, log)

	e.log.Debug(ctx, "engine ready", "storage", cfg.StorageDir, "language", string(language))
	return e, nil
}

// Caller sends requests through the bridge.
func (e *Engine) Caller() dispatch.Caller {
	return dispatch.NewBridgeCaller(e.Bridge)
}

// Close drains the bridge, then releases signup state and the journal.
func (e *Engine) Close(ctx context.Context) {
	e.Bridge.Close()
	e.Store.Close()
	e.closeJournal(ctx)
}

func (e *Engine) closeJournal(ctx context.Context) {
	if e.journal == nil {
		return
	}
	if err := e.journal.Close(); err != nil {
		e.log.Warn(ctx, "closing journal failed", "error", err)
	}
}
