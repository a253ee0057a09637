// Package execx runs the external OpenSSH tools sshkm delegates to.
package execx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// Runner starts external commands. Output captures combined output;
// Interactive attaches the terminal so the tool can prompt (passphrases).
type Runner interface {
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
	Interactive(ctx context.Context, name string, args ...string) error
}

// System runs commands on the host.
type System struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Log    zerolog.Logger
}

// NewSystem returns a runner bound to the process stdio.
func NewSystem(log zerolog.Logger) *System {
	return &System{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr, Log: log}
}

func (s *System) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	s.Log.Debug().Str("cmd", name).Strs("args", args).Msg("exec")
	var buf bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	if err := cmd.Run(); err != nil {
		return buf.Bytes(), &Error{Name: name, Output: strings.TrimSpace(buf.String()), Err: err}
	}
	return buf.Bytes(), nil
}

func (s *System) Interactive(ctx context.Context, name string, args ...string) error {
	s.Log.Debug().Str("cmd", name).Strs("args", args).Msg("exec interactive")
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = s.Stdin
	cmd.Stdout = s.Stdout
	cmd.Stderr = s.Stderr
	if err := cmd.Run(); err != nil {
		return &Error{Name: name, Err: err}
	}
	return nil
}

// Error is a failed external command.
type Error struct {
	Name   string
	Output string
	Err    error
}

func (e *Error) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("%s: %v: %s", e.Name, e.Err, e.Output)
	}
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
