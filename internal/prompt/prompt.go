// Package prompt asks the human operator for secrets and short answers.
//
// A Provider blocks until the operator answers or cancels. A cancelled prompt
// is not an error: ok is false and the caller decides what cancelling means.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// Provider is a blocking prompt source.
type Provider interface {
	// PasswordBox asks for a secret without echo. The caller wipes the
	// returned slice.
	PasswordBox(title, message string) (secret []byte, ok bool, err error)
	// InputBox asks for a line of text, offering def as the default.
	InputBox(title, message, def string) (value string, ok bool, err error)
}

// test seams
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// Terminal prompts on a terminal. Empty answers and EOF count as
// cancellation.
type Terminal struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
	fd  int
}

// NewTerminalFrom prompts through an existing reader, so that a front end
// reading commands from the same stream keeps a single buffer.
func NewTerminalFrom(in *bufio.Reader, out io.Writer, fd int) *Terminal {
	return &Terminal{in: in, out: out, fd: fd}
}

// Interactive reports whether standard input is a terminal.
func Interactive() bool {
	return isTerminal(int(os.Stdin.Fd()))
}

func (t *Terminal) header(title, message string) error {
	if title != "" {
		if _, err := fmt.Fprintf(t.out, "[%s]\n", title); err != nil {
			return err
		}
	}
	_, err := fmt.Fprint(t.out, message+"\n> ")
	return err
}

func (t *Terminal) PasswordBox(title, message string) ([]byte, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.header(title, message); err != nil {
		return nil, false, err
	}

	if !isTerminal(t.fd) {
		line, _, err := t.readLine()
		if err != nil || line == "" {
			return nil, false, err
		}
		return []byte(line), true, nil
	}

	pw, err := readPassword(t.fd)
	fmt.Fprintln(t.out)
	if err != nil {
		return nil, false, err
	}
	if len(pw) == 0 {
		return nil, false, nil
	}
	return pw, true, nil
}

func (t *Terminal) InputBox(title, message, def string) (string, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if def != "" {
		message = fmt.Sprintf("%s (default %s)", message, def)
	}
	if err := t.header(title, message); err != nil {
		return "", false, err
	}

	line, eof, err := t.readLine()
	switch {
	case err != nil:
		return "", false, err
	case line != "":
		return line, true, nil
	case !eof && def != "":
		return def, true, nil
	}
	return "", false, nil
}

// readLine reads one trimmed line. eof is set when input ended before a
// newline.
func (t *Terminal) readLine() (line string, eof bool, err error) {
	line, err = t.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", false, err
		}
		eof, err = true, nil
	}
	return strings.TrimSpace(line), eof, nil
}

// Static answers from fixed queues, then cancels. Useful for
// non-interactive runs and tests.
type Static struct {
	mu        sync.Mutex
	passwords [][]byte
	inputs    []string
	// Asked records every prompt title in order.
	Asked []string
}

// NewStatic returns a Static provider. Each password is copied.
func NewStatic(passwords []string, inputs []string) *Static {
	s := &Static{inputs: append([]string(nil), inputs...)}
	for _, p := range passwords {
		s.passwords = append(s.passwords, []byte(p))
	}
	return s
}

func (s *Static) PasswordBox(title, _ string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Asked = append(s.Asked, title)

	if len(s.passwords) == 0 {
		return nil, false, nil
	}
	pw := s.passwords[0]
	s.passwords = s.passwords[1:]
	return pw, true, nil
}

func (s *Static) InputBox(title, _, _ string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Asked = append(s.Asked, title)

	if len(s.inputs) == 0 {
		return "", false, nil
	}
	v := s.inputs[0]
	s.inputs = s.inputs[1:]
	return v, true, nil
}

// None cancels every prompt. Used when no operator is attached.
type None struct{}

func (None) PasswordBox(string, string) ([]byte, bool, error) { return nil, false, nil }

func (None) InputBox(string, string, string) (string, bool, error) { return "", false, nil }
