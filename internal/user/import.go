package user

import (
	"context"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/walletkeeper/internal/account"
	"github.com/dmitrijs2005/walletkeeper/internal/audit"
	"github.com/dmitrijs2005/walletkeeper/internal/common"
	"github.com/dmitrijs2005/walletkeeper/internal/wallet"
)

// AddAccount imports an account from its recovery mnemonic. The key is
// sealed under the session's passphrase, which is checked against the
// primary keystore first. The primary entry is left as is.
func (s *Store) AddAccount(ctx context.Context, phrase, passphrase []byte) (*account.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userData == nil {
		return nil, common.ErrNotAuthenticated
	}
	if len(phrase) == 0 || len(passphrase) == 0 {
		return nil, common.Errorf(common.KindInvalidParams, "mnemonic and passphrase are required")
	}

	id, _, ok := s.userData.Primary()
	if !ok {
		return nil, common.NewError(common.KindNotFound, "cannot import without primary account", nil)
	}

	keystoreDir, err := s.ensureDir(keystoreDirName)
	if err != nil {
		return nil, err
	}

	primary, err := s.sealer.Unseal(keystoreDir, id, passphrase)
	if err != nil {
		return nil, err
	}
	common.WipeByteArray(primary)

	key, err := wallet.Derive(s.gen, phrase)
	if err != nil {
		return nil, err
	}
	defer key.Wipe()

	for _, v := range s.userData.Accounts {
		if v.Address == key.Address() {
			return nil, common.Errorf(common.KindInvalidParams, "account %s already exists", v.Address)
		}
	}

	newID, err := s.sealer.Seal(keystoreDir, key.Bytes(), passphrase)
	if err != nil {
		return nil, err
	}

	view := account.View{Address: key.Address(), Kind: account.Imported}

	next := s.cloneDirectory()
	if err := next.Insert(newID, view); err != nil {
		_ = os.Remove(filepath.Join(keystoreDir, newID))
		return nil, err
	}
	if err := account.SaveDirectory(s.directoryPath(), next); err != nil {
		_ = os.Remove(filepath.Join(keystoreDir, newID))
		return nil, err
	}

	s.userData = next
	s.record(ctx, audit.AccountImported, view.Address, "")
	s.log.Info(ctx, "account imported", "address", view.Address, "keystore_id", newID)
	return &view, nil
}

func (s *Store) cloneDirectory() *account.Directory {
	next := account.NewDirectory()
	next.Totp = s.userData.Totp
	for id, v := range s.userData.Accounts {
		next.Accounts[id] = v
	}
	return next
}
