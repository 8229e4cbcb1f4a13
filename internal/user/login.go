package user

import (
	"context"
	"path/filepath"

	"github.com/dmitrijs2005/walletkeeper/internal/account"
	"github.com/dmitrijs2005/walletkeeper/internal/audit"
	"github.com/dmitrijs2005/walletkeeper/internal/common"
	"github.com/dmitrijs2005/walletkeeper/internal/totp"
)

// Credentials replace the interactive prompts for non-interactive callers.
// Token is only consulted when the wallet has a second factor; an empty
// token then falls back to the prompt.
type Credentials struct {
	Passphrase []byte
	Token      string
}

// Wipe zeroes the passphrase.
func (c *Credentials) Wipe() {
	if c != nil {
		common.WipeByteArray(c.Passphrase)
	}
}

// Login authenticates against the primary account on disk. A nil view
// with a nil error means the operator cancelled a prompt. The session is
// only replaced once every check has passed.
func (s *Store) Login(ctx context.Context, creds *Credentials) (*account.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	view, err := s.login(ctx, creds)
	switch {
	case err != nil:
		s.record(ctx, audit.LoginFailed, "", string(common.KindOf(err)))
		s.log.Warn(ctx, "login failed", "kind", common.KindOf(err))
	case view == nil:
		s.record(ctx, audit.LoginCancelled, "", "")
		s.log.Info(ctx, "login cancelled")
	default:
		s.record(ctx, audit.LoginSucceeded, view.Address, "")
		s.log.Info(ctx, "logged in", "address", view.Address)
	}
	return view, err
}

func (s *Store) login(ctx context.Context, creds *Credentials) (*account.View, error) {
	var passphrase []byte
	if creds != nil && len(creds.Passphrase) > 0 {
		passphrase = creds.Passphrase
	} else {
		pw, ok, err := s.prompt.PasswordBox(promptTitle, "Enter your account passphrase:")
		if err != nil {
			return nil, common.NewError(common.KindIoError, "passphrase prompt", err)
		}
		if !ok {
			return nil, nil
		}
		defer common.WipeByteArray(pw)
		passphrase = pw
	}

	d, err := account.LoadDirectory(s.directoryPath())
	if err != nil {
		if common.KindOf(err) == common.KindNotFound {
			return nil, common.NewError(common.KindNotFound, "cannot login without user data", err)
		}
		return nil, err
	}

	id, view, ok := d.Primary()
	if !ok {
		return nil, common.NewError(common.KindNotFound, "cannot login without primary account", nil)
	}

	key, err := s.sealer.Unseal(filepath.Join(s.root, keystoreDirName), id, passphrase)
	if err != nil {
		return nil, err
	}
	common.WipeByteArray(key)

	if d.Totp != "" {
		ok, err := s.checkTotp(d.Totp, passphrase, creds)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
	}

	s.userData = d
	return &view, nil
}

// checkTotp unseals the TOTP secret and checks a code against it. ok is
// false when the operator cancelled the prompt.
func (s *Store) checkTotp(rel string, passphrase []byte, creds *Credentials) (bool, error) {
	dir, id := s.totpLocation(rel)
	raw, err := s.sealer.Unseal(dir, id, passphrase)
	if err != nil {
		return false, err
	}
	secret := totp.Secret(raw)
	defer secret.Wipe()

	var code string
	if creds != nil && creds.Token != "" {
		code = creds.Token
	} else {
		v, ok, err := s.prompt.InputBox(promptTitle, "Enter your 2FA code:", "")
		if err != nil {
			return false, common.NewError(common.KindIoError, "2FA prompt", err)
		}
		if !ok {
			return false, nil
		}
		code = v
	}

	if !s.engine.Check(secret, code, s.now()) {
		return false, common.ErrInvalidTotp
	}
	return true, nil
}
