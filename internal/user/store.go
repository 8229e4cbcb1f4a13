package user

import (
	"context"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/dmitrijs2005/walletkeeper/internal/account"
	"github.com/dmitrijs2005/walletkeeper/internal/audit"
	"github.com/dmitrijs2005/walletkeeper/internal/common"
	"github.com/dmitrijs2005/walletkeeper/internal/cryptox"
	"github.com/dmitrijs2005/walletkeeper/internal/filex"
	"github.com/dmitrijs2005/walletkeeper/internal/keystore"
	"github.com/dmitrijs2005/walletkeeper/internal/logging"
	"github.com/dmitrijs2005/walletkeeper/internal/mnemonic"
	"github.com/dmitrijs2005/walletkeeper/internal/prompt"
	"github.com/dmitrijs2005/walletkeeper/internal/totp"
)

const (
	keystoreDirName = "keystore"
	totpDirName     = "totp"

	promptTitle = "walletkeeper"
)

// Journal records lifecycle events. Implementations must not fail the
// caller.
type Journal interface {
	Record(ctx context.Context, typ audit.Type, address, detail string)
	List(ctx context.Context, limit int) ([]audit.Event, error)
}

// Options configure a Store.
type Options struct {
	// Root is the storage directory.
	Root     string
	Language mnemonic.Language
	KDF      cryptox.KDFParams

	TotpIssuer  string
	TotpAccount string
	// TotpSkew widens the accepted window by this many steps each side.
	TotpSkew uint
}

// Store owns the session directory and the active signup builder.
type Store struct {
	mu sync.RWMutex

	root    string
	gen     *mnemonic.Generator
	sealer  *keystore.Sealer
	engine  *totp.Engine
	prompt  prompt.Provider
	journal Journal
	log     logging.Logger
	now     func() time.Time

	userData *account.Directory
	builder  *account.Builder
}

// New builds a Store. journal may be nil.
func New(opts Options, p prompt.Provider, journal Journal, log logging.Logger) (*Store, error) {
	if opts.Root == "" {
		return nil, common.Errorf(common.KindIoError, "storage directory is not configured")
	}
	if opts.Language == "" {
		opts.Language = mnemonic.English
	}
	if opts.KDF == (cryptox.KDFParams{}) {
		opts.KDF = cryptox.DefaultKDFParams
	}

	gen, err := mnemonic.NewGenerator(opts.Language)
	if err != nil {
		return nil, err
	}
	sealer, err := keystore.NewSealer(opts.KDF)
	if err != nil {
		return nil, err
	}

	engine := totp.NewEngine()
	if opts.TotpIssuer != "" {
		engine.Issuer = opts.TotpIssuer
	}
	if opts.TotpAccount != "" {
		engine.Account = opts.TotpAccount
	}
	engine.Skew = opts.TotpSkew

	if p == nil {
		p = prompt.None{}
	}

	return &Store{
		root:    opts.Root,
		gen:     gen,
		sealer:  sealer,
		engine:  engine,
		prompt:  p,
		journal: journal,
		log:     log.With("module", "user"),
		now:     time.Now,
	}, nil
}

func (s *Store) directoryPath() string {
	return filepath.Join(s.root, account.FileName)
}

// ensureDir creates a storage subdirectory. Failing here aborts the
// operation.
func (s *Store) ensureDir(name string) (string, error) {
	dir, err := filex.EnsureDir(s.root, name)
	if err != nil {
		return "", common.NewError(common.KindIoError, "storage directory", err)
	}
	return dir, nil
}

func (s *Store) record(ctx context.Context, typ audit.Type, address, detail string) {
	if s.journal != nil {
		s.journal.Record(ctx, typ, address, detail)
	}
}

// Exists reports whether the session holds a primary account.
func (s *Store) Exists(ctx context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.userData == nil {
		return false, common.ErrNotAuthenticated
	}
	return s.userData.HasPrimary(), nil
}

// Bootstrap reports whether a wallet with a primary account exists on disk.
// It does not open a session.
func (s *Store) Bootstrap(ctx context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, err := account.LoadDirectory(s.directoryPath())
	if err != nil {
		if common.KindOf(err) == common.KindNotFound {
			return false, nil
		}
		return false, err
	}
	return d.HasPrimary(), nil
}

// ListAccounts returns every account in the session.
func (s *Store) ListAccounts(ctx context.Context) ([]account.View, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.userData == nil {
		return nil, common.ErrNotAuthenticated
	}
	return s.userData.Views(), nil
}

// History returns the newest journal events. Requires a session.
func (s *Store) History(ctx context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.userData == nil {
		return nil, common.ErrNotAuthenticated
	}
	if s.journal == nil {
		return []audit.Event{}, nil
	}
	events, err := s.journal.List(ctx, limit)
	if err != nil {
		return nil, common.NewError(common.KindIoError, "read journal", err)
	}
	if events == nil {
		events = []audit.Event{}
	}
	return events, nil
}

// Logout drops the session. Files on disk are untouched.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userData != nil {
		if _, v, ok := s.userData.Primary(); ok {
			s.record(ctx, audit.Logout, v.Address, "")
		}
	}
	s.userData = nil
	s.log.Info(ctx, "logged out")
	return nil
}

// Close finishes any active builder.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.builder != nil {
		s.builder.Finish()
		s.builder = nil
	}
}

// totpLocation splits the directory's relative TOTP path into the sealed
// file's directory and identifier.
func (s *Store) totpLocation(rel string) (dir, id string) {
	p := filepath.Join(s.root, filepath.FromSlash(rel))
	return filepath.Dir(p), filepath.Base(p)
}

func totpRelPath(id string) string {
	return path.Join(totpDirName, id)
}
