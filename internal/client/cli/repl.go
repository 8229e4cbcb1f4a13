package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/walletkeeper/internal/common"
	"github.com/dmitrijs2005/walletkeeper/internal/dispatch"
)

// execIface is the command surface the REPL needs. App satisfies it; tests
// use a stub.
type execIface interface {
	isLoggedIn() bool
	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	List(ctx context.Context) error
	Exists(ctx context.Context) error
	Add(ctx context.Context) error
	History(ctx context.Context, args []string) error
}

func describe(err error) string {
	if errors.Is(err, dispatch.ErrNotHandled) {
		return "command not supported by this store"
	}
	var ce *common.Error
	if errors.As(err, &ce) {
		return fmt.Sprintf("%s [%s]", ce.Error(), ce.Kind)
	}
	return err.Error()
}

// runREPL reads one command per line from reader and runs it on a. The loop
// ends on EOF, "exit" or "quit". Command errors are printed and the loop
// goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	for {
		fmt.Fprintf(out, "wk (%s) > ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(out)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(out, "Available commands: (l)ist, exists, add, history [n], logout, exit")
			} else {
				fmt.Fprintln(out, "Available commands: signup, login, exists, exit")
			}

		case "signup":
			cmdErr = a.Signup(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "l", "list":
			cmdErr = a.List(ctx)

		case "exists":
			cmdErr = a.Exists(ctx)

		case "add":
			cmdErr = a.Add(ctx)

		case "history":
			cmdErr = a.History(ctx, args)

		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return

		default:
			fmt.Fprintln(out, "Unknown command:", cmd)
		}

		if cmdErr != nil {
			fmt.Fprintln(out, "Error:", describe(cmdErr))
		}
	}
}
