package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/walletkeeper/internal/dispatch"
	"github.com/dmitrijs2005/walletkeeper/internal/prompt"
)

type Mode string

const (
	ModeLocal  Mode = "local"
	ModeRemote Mode = "remote"
)

type App struct {
	client   *dispatch.Client
	prompt   prompt.Provider
	reader   *bufio.Reader
	out      io.Writer
	Mode     Mode
	loggedIn bool
	address  string
}

// NewApp builds the front end. reader must be the same buffered reader the
// prompt provider reads from when both share stdin.
func NewApp(c *dispatch.Client, p prompt.Provider, reader *bufio.Reader, out io.Writer, mode Mode) *App {
	return &App{client: c, prompt: p, reader: reader, out: out, Mode: mode}
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) isLoggedIn() bool {
	return a.loggedIn
}

func (a *App) getStatus() string {
	if !a.loggedIn {
		return string(a.Mode)
	}
	addr := a.address
	if len(addr) > 10 {
		addr = addr[:6] + "…" + addr[len(addr)-4:]
	}
	return fmt.Sprintf("%s %s", a.Mode, addr)
}

// Run prints the banner and blocks in the REPL until exit or EOF.
func (a *App) Run(ctx context.Context) {
	a.println("walletkeeper (type 'help' for commands)")

	var initialized bool
	if _, err := a.client.Do(ctx, dispatch.MethodInitialized, nil, &initialized); err != nil {
		a.println("Error:", describe(err))
	} else if !initialized {
		a.println("No wallet found. Type 'signup' to create one.")
	}

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}
