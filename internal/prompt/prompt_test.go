package prompt

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTerminal(t *testing.T, tty bool, pw []byte, pwErr error) {
	t.Helper()
	oldRead, oldTTY := readPassword, isTerminal
	t.Cleanup(func() { readPassword, isTerminal = oldRead, oldTTY })

	isTerminal = func(int) bool { return tty }
	readPassword = func(int) ([]byte, error) { return pw, pwErr }
}

func newTestTerminal(input string) (*Terminal, *bytes.Buffer) {
	var out bytes.Buffer
	return NewTerminalFrom(bufio.NewReader(strings.NewReader(input)), &out, 0), &out
}

func TestTerminal_PasswordBox_TTY(t *testing.T) {
	withTerminal(t, true, []byte("s3cret"), nil)
	term, out := newTestTerminal("")

	pw, ok, err := term.PasswordBox("Login", "Enter passphrase")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("s3cret"), pw)
	assert.Contains(t, out.String(), "[Login]")
	assert.Contains(t, out.String(), "Enter passphrase")
}

func TestTerminal_PasswordBox_Empty(t *testing.T) {
	withTerminal(t, true, []byte{}, nil)
	term, _ := newTestTerminal("")

	_, ok, err := term.PasswordBox("", "pw")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTerminal_PasswordBox_Error(t *testing.T) {
	withTerminal(t, true, nil, errors.New("boom"))
	term, _ := newTestTerminal("")

	_, ok, err := term.PasswordBox("", "pw")
	require.Error(t, err)
	assert.False(t, ok)
}

func TestTerminal_PasswordBox_Piped(t *testing.T) {
	withTerminal(t, false, nil, errors.New("must not be called"))
	term, _ := newTestTerminal("piped words\n")

	pw, ok, err := term.PasswordBox("", "pw")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "piped words", string(pw))

	_, ok, err = term.PasswordBox("", "pw")
	require.NoError(t, err)
	assert.False(t, ok, "EOF cancels")
}

func TestTerminal_InputBox(t *testing.T) {
	term, _ := newTestTerminal("123456\n\n")

	v, ok, err := term.InputBox("2FA", "Enter code", "")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "123456", v)

	_, ok, err = term.InputBox("2FA", "Enter code", "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTerminal_InputBoxDefault(t *testing.T) {
	term, out := newTestTerminal("\n")

	v, ok, err := term.InputBox("", "Language", "english")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "english", v)
	assert.Contains(t, out.String(), "(default english)")

	_, ok, err = term.InputBox("", "Language", "english")
	require.NoError(t, err)
	assert.False(t, ok, "EOF cancels even with a default")
}

func TestStatic(t *testing.T) {
	s := NewStatic([]string{"one"}, []string{"111111"})

	pw, ok, err := s.PasswordBox("Login", "")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "one", string(pw))

	v, ok, err := s.InputBox("2FA", "", "")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "111111", v)

	_, ok, _ = s.PasswordBox("again", "")
	assert.False(t, ok)
	_, ok, _ = s.InputBox("again", "", "")
	assert.False(t, ok)

	assert.Equal(t, []string{"Login", "2FA", "again", "again"}, s.Asked)
}

func TestNone(t *testing.T) {
	var p Provider = None{}

	_, ok, err := p.PasswordBox("a", "b")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = p.InputBox("a", "b", "c")
	require.NoError(t, err)
	assert.False(t, ok)
}
