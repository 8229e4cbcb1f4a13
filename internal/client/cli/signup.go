package cli

import (
	"context"

	"github.com/dmitrijs2005/walletkeeper/internal/account"
	"github.com/dmitrijs2005/walletkeeper/internal/dispatch"
)

// maxVerifyAttempts bounds how often a wrong 2FA code may be retyped.
const maxVerifyAttempts = 3

// Signup walks the operator through creating the primary wallet. The
// builder is always released with Signup.finish, whatever happens.
func (a *App) Signup(ctx context.Context) error {
	if _, err := a.client.Do(ctx, dispatch.MethodSignupStart, nil, nil); err != nil {
		return err
	}
	defer func() {
		if _, err := a.client.Do(context.WithoutCancel(ctx), dispatch.MethodSignupFinish, nil, nil); err != nil {
			a.println("Warning: could not release signup state:", describe(err))
		}
	}()

	var passphrase string
	if _, err := a.client.Do(ctx, dispatch.MethodSignupPassphrase, nil, &passphrase); err != nil {
		return err
	}
	a.println("Your passphrase. Write it down, it unlocks the wallet:")
	a.printf("\n  %s\n\n", passphrase)

	var phrase string
	if _, err := a.client.Do(ctx, dispatch.MethodSignupMnemonic, nil, &phrase); err != nil {
		return err
	}
	a.println("Your recovery phrase. Keep it offline, it restores the keys:")
	a.printf("\n  %s\n\n", phrase)

	var url string
	if _, err := a.client.Do(ctx, dispatch.MethodSignupTotp, nil, &url); err != nil {
		return err
	}
	a.println("Add this key to your authenticator app:")
	a.printf("\n  %s\n\n", url)

	verified := false
	for attempt := 0; attempt < maxVerifyAttempts && !verified; attempt++ {
		code, ok, err := a.prompt.InputBox("2FA", "Enter the 6-digit code from your authenticator app", "")
		if err != nil {
			return err
		}
		if !ok {
			a.println("Signup cancelled")
			return nil
		}
		if _, err := a.client.Do(ctx, dispatch.MethodSignupVerify, code, &verified); err != nil {
			return err
		}
		if !verified {
			a.println("Code does not match")
		}
	}
	if !verified {
		a.println("Too many attempts, signup cancelled")
		return nil
	}

	var view account.View
	if _, err := a.client.Do(ctx, dispatch.MethodSignupBuild, nil, &view); err != nil {
		return err
	}

	a.loggedIn = true
	a.address = view.Address
	a.println("Wallet created:", view.Address)
	return nil
}
