package user

import (
	"context"
	"os"
	"time"

	"github.com/dmitrijs2005/walletkeeper/internal/account"
	"github.com/dmitrijs2005/walletkeeper/internal/audit"
	"github.com/dmitrijs2005/walletkeeper/internal/common"
)

// SignupStart begins a signup with a fresh builder, wiping any previous
// one. It is refused while the session holds a primary account.
func (s *Store) SignupStart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userData != nil && s.userData.HasPrimary() {
		return common.ErrPrimaryAlreadyExists
	}

	if s.builder != nil {
		s.builder.Finish()
	}
	s.builder = account.NewBuilder(s.gen, s.sealer, s.engine)
	s.builder.SetClock(func() time.Time { return s.now() })
	s.log.Debug(ctx, "signup started")
	return nil
}

func (s *Store) activeBuilder() (*account.Builder, error) {
	if s.builder == nil {
		return nil, common.ErrSignupNotStarted
	}
	return s.builder, nil
}

// SignupPassphrase stages and returns a new login passphrase.
func (s *Store) SignupPassphrase(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.activeBuilder()
	if err != nil {
		return "", err
	}
	return b.Passphrase()
}

// SignupMnemonic stages and returns a new recovery mnemonic.
func (s *Store) SignupMnemonic(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.activeBuilder()
	if err != nil {
		return "", err
	}
	return b.Mnemonic()
}

// SignupTotp stages a TOTP secret and returns its provisioning URL.
func (s *Store) SignupTotp(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.activeBuilder()
	if err != nil {
		return "", err
	}
	return b.Totp()
}

// SignupVerify checks a code against the staged TOTP secret.
func (s *Store) SignupVerify(ctx context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.activeBuilder()
	if err != nil {
		return false, err
	}
	return b.Verify(code)
}

// SignupBuild writes the staged account to disk and makes it the session.
// The directory on disk is replaced by one holding only the new primary.
func (s *Store) SignupBuild(ctx context.Context) (*account.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.activeBuilder()
	if err != nil {
		return nil, err
	}

	keystoreDir, err := s.ensureDir(keystoreDirName)
	if err != nil {
		return nil, err
	}
	totpDir, err := s.ensureDir(totpDirName)
	if err != nil {
		return nil, err
	}

	built, err := b.Build(keystoreDir, totpDir)
	if err != nil {
		return nil, err
	}

	view := account.View{Address: built.Address, Kind: account.Primary}

	d := account.NewDirectory()
	if err := d.Insert(built.KeystoreID, view); err != nil {
		return nil, err
	}
	d.Totp = totpRelPath(built.TotpID)

	if prev, err := account.LoadDirectory(s.directoryPath()); err == nil && len(prev.Accounts) > 0 {
		s.log.Warn(ctx, "replacing existing account directory",
			"accounts", len(prev.Accounts), "imported", prev.Imported())
	}

	if err := account.SaveDirectory(s.directoryPath(), d); err != nil {
		_ = os.Remove(s.sealer.Path(keystoreDir, built.KeystoreID))
		_ = os.Remove(s.sealer.Path(totpDir, built.TotpID))
		return nil, err
	}

	s.userData = d
	s.record(ctx, audit.SignupBuilt, view.Address, "")
	s.log.Info(ctx, "primary account built", "address", view.Address, "keystore_id", built.KeystoreID)

	return &view, nil
}

// SignupFinish wipes and discards the builder. It succeeds when no signup
// is active.
func (s *Store) SignupFinish(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.builder != nil {
		s.builder.Finish()
		s.builder = nil
		s.log.Debug(ctx, "signup finished")
	}
	return nil
}
