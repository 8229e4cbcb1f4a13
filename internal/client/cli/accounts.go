package cli

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/dmitrijs2005/walletkeeper/internal/account"
	"github.com/dmitrijs2005/walletkeeper/internal/audit"
	"github.com/dmitrijs2005/walletkeeper/internal/common"
	"github.com/dmitrijs2005/walletkeeper/internal/dispatch"
)

func (a *App) List(ctx context.Context) error {
	var views []account.View
	if _, err := a.client.Do(ctx, dispatch.MethodList, nil, &views); err != nil {
		return err
	}
	if len(views) == 0 {
		a.println("No accounts")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tADDRESS")
	for _, v := range views {
		fmt.Fprintf(w, "%s\t%s\n", v.Kind, v.Address)
	}
	return w.Flush()
}

func (a *App) Exists(ctx context.Context) error {
	var exists bool
	if _, err := a.client.Do(ctx, dispatch.MethodExists, nil, &exists); err != nil {
		return err
	}
	if exists {
		a.println("Primary account exists")
	} else {
		a.println("No primary account")
	}
	return nil
}

// Add imports an account from a recovery phrase, sealed with the wallet
// passphrase.
func (a *App) Add(ctx context.Context) error {
	phrase, ok, err := a.prompt.PasswordBox("Import", "Enter the recovery phrase")
	if err != nil {
		return err
	}
	if !ok {
		a.println("Import cancelled")
		return nil
	}
	defer common.WipeByteArray(phrase)

	pass, ok, err := a.prompt.PasswordBox("Import", "Enter passphrase")
	if err != nil {
		return err
	}
	if !ok {
		a.println("Import cancelled")
		return nil
	}
	defer common.WipeByteArray(pass)

	var view account.View
	params := dispatch.AddParams{Mnemonic: string(phrase), Passphrase: string(pass)}
	if _, err := a.client.Do(ctx, dispatch.MethodAdd, params, &view); err != nil {
		return err
	}
	a.println("Imported:", view.Address)
	return nil
}

// History prints recent lifecycle events, newest first. An optional
// argument sets how many.
func (a *App) History(ctx context.Context, args []string) error {
	var params any
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			a.println("Usage: history [n]")
			return nil
		}
		params = dispatch.HistoryParams{Limit: n}
	}

	var events []audit.Event
	if _, err := a.client.Do(ctx, dispatch.MethodHistory, params, &events); err != nil {
		return err
	}
	if len(events) == 0 {
		a.println("No events")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tEVENT\tADDRESS\tDETAIL")
	for _, e := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Type, e.Address, e.Detail)
	}
	return w.Flush()
}
