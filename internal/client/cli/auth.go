package cli

import (
	"context"

	"github.com/dmitrijs2005/walletkeeper/internal/account"
	"github.com/dmitrijs2005/walletkeeper/internal/common"
	"github.com/dmitrijs2005/walletkeeper/internal/dispatch"
)

// Login unlocks the primary account. In local mode the store prompts for
// the passphrase and 2FA code itself; in remote mode they are read here and
// sent along.
func (a *App) Login(ctx context.Context) error {
	var params any
	if a.Mode == ModeRemote {
		pass, ok, err := a.prompt.PasswordBox("Login", "Enter passphrase")
		if err != nil {
			return err
		}
		if !ok {
			a.println("Login cancelled")
			return nil
		}
		defer common.WipeByteArray(pass)

		token, _, err := a.prompt.InputBox("Login", "2FA code (empty if not enabled)", "")
		if err != nil {
			return err
		}
		params = dispatch.LoginParams{Passphrase: string(pass), Token: token}
	}

	var view account.View
	ok, err := a.client.Do(ctx, dispatch.MethodLogin, params, &view)
	if err != nil {
		return err
	}
	if !ok {
		a.println("Login cancelled")
		return nil
	}

	a.loggedIn = true
	a.address = view.Address
	a.println("Logged in:", view.Address)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if _, err := a.client.Do(ctx, dispatch.MethodLogout, nil, nil); err != nil {
		return err
	}
	a.loggedIn = false
	a.address = ""
	a.println("Logged out")
	return nil
}
