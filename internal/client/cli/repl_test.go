package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/walletkeeper/internal/common"
	"github.com/dmitrijs2005/walletkeeper/internal/dispatch"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	args  []string
	err   error
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) hit(name string) error {
	f.calls = append(f.calls, name)
	return f.err
}
func (f *fakeExec) Signup(context.Context) error { return f.hit("signup") }
func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.hit("login")
}
func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.hit("logout")
}
func (f *fakeExec) List(context.Context) error   { return f.hit("list") }
func (f *fakeExec) Exists(context.Context) error { return f.hit("exists") }
func (f *fakeExec) Add(context.Context) error    { return f.hit("add") }
func (f *fakeExec) History(_ context.Context, args []string) error {
	f.args = args
	return f.hit("history")
}

func run(exec execIface, input string) string {
	var out bytes.Buffer
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewReader(strings.NewReader(input)), &out)
	return out.String()
}

func TestRunREPL_Commands(t *testing.T) {
	exec := &fakeExec{}

	out := run(exec, strings.Join([]string{
		"help",
		"signup",
		"login",
		"help",
		"l",
		"exists",
		"add",
		"history 5",
		"",
		"foobar",
		"logout",
		"exit",
		"list",
	}, "\n"))

	assert.Equal(t, []string{"signup", "login", "list", "exists", "add", "history", "logout"}, exec.calls)
	assert.Equal(t, []string{"5"}, exec.args)
	assert.Contains(t, out, "Available commands: signup, login, exists, exit")
	assert.Contains(t, out, "Available commands: (l)ist, exists, add, history [n], logout, exit")
	assert.Contains(t, out, "Unknown command: foobar")
	assert.Contains(t, out, "wk (status) > ")
	assert.Contains(t, out, "Bye!")
}

func TestRunREPL_EOFEnds(t *testing.T) {
	exec := &fakeExec{}
	run(exec, "list")
	assert.Equal(t, []string{"list"}, exec.calls)

	exec = &fakeExec{}
	run(exec, "")
	assert.Empty(t, exec.calls)
}

func TestRunREPL_ErrorsAreRenderedAndLoopContinues(t *testing.T) {
	exec := &fakeExec{err: common.ErrNotAuthenticated}

	out := run(exec, "list\nexists\nquit\n")

	assert.Equal(t, []string{"list", "exists"}, exec.calls)
	assert.Equal(t, 2, strings.Count(out, "Error: not logged in [NotAuthenticated]"))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "command not supported by this store", describe(dispatch.ErrNotHandled))
	assert.Equal(t, "mnemonic is not configured [IncompleteBuilder]", describe(common.IncompleteBuilder("mnemonic")))
	assert.Equal(t, "plain", describe(errors.New("plain")))
}
