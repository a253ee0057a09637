// Package agent talks to the running ssh-agent. Listing goes through the
// agent socket; loading and removing keys is delegated to ssh-add so
// passphrase prompts work as usual.
package agent

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/ssh"
	sshagent "golang.org/x/crypto/ssh/agent"

	apperr "sshkm/internal/error"
	"sshkm/internal/execx"
)

const (
	SocketEnv = "SSH_AUTH_SOCK"
	sshAdd    = "ssh-add"
)

// LoadedKey is a key currently held by the agent.
type LoadedKey struct {
	Type        string `json:"type"`
	Fingerprint string `json:"fingerprint"`
	Comment     string `json:"comment"`
}

type Agent struct {
	Socket string
	Runner execx.Runner
	Log    zerolog.Logger
}

// New returns an Agent for the socket named by SSH_AUTH_SOCK.
func New(runner execx.Runner, log zerolog.Logger) *Agent {
	return &Agent{Socket: os.Getenv(SocketEnv), Runner: runner, Log: log}
}

func (a *Agent) dial(ctx context.Context) (net.Conn, error) {
	if a.Socket == "" {
		return nil, apperr.AgentNotRunning(fmt.Errorf("%s is not set", SocketEnv))
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", a.Socket)
	if err != nil {
		return nil, apperr.AgentNotRunning(err)
	}
	return conn, nil
}

// Status checks that the agent answers and returns how many keys it holds.
func (a *Agent) Status(ctx context.Context) (int, error) {
	keys, err := a.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// List returns the keys loaded in the agent.
func (a *Agent) List(ctx context.Context) ([]LoadedKey, error) {
	conn, err := a.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	keys, err := sshagent.NewClient(conn).List()
	if err != nil {
		return nil, apperr.AgentFailed(err.Error())
	}

	out := make([]LoadedKey, 0, len(keys))
	for _, k := range keys {
		lk := LoadedKey{Type: k.Format, Comment: k.Comment}
		if pub, err := ssh.ParsePublicKey(k.Blob); err == nil {
			lk.Fingerprint = ssh.FingerprintSHA256(pub)
		} else {
			a.Log.Debug().Err(err).Str("comment", k.Comment).Msg("unparseable agent key")
		}
		out = append(out, lk)
	}
	return out, nil
}

// Load adds private keys to the agent. A non-zero lifetime is passed as
// ssh-add -t.
func (a *Agent) Load(ctx context.Context, paths []string, lifetime uint64) error {
	if err := a.ensureRunning(ctx); err != nil {
		return err
	}
	var args []string
	if lifetime > 0 {
		args = append(args, "-t", strconv.FormatUint(lifetime, 10))
	}
	args = append(args, paths...)
	if err := a.Runner.Interactive(ctx, sshAdd, args...); err != nil {
		return apperr.AgentFailed(err.Error())
	}
	a.Log.Info().Strs("keys", paths).Msg("loaded keys into agent")
	return nil
}

// Remove deletes the identities of the given keys from the agent.
func (a *Agent) Remove(ctx context.Context, paths []string) error {
	if err := a.ensureRunning(ctx); err != nil {
		return err
	}
	args := append([]string{"-d"}, paths...)
	if _, err := a.Runner.Output(ctx, sshAdd, args...); err != nil {
		return apperr.AgentFailed(err.Error())
	}
	return nil
}

// Clear removes every identity from the agent.
func (a *Agent) Clear(ctx context.Context) error {
	if err := a.ensureRunning(ctx); err != nil {
		return err
	}
	if _, err := a.Runner.Output(ctx, sshAdd, "-D"); err != nil {
		return apperr.AgentFailed(err.Error())
	}
	return nil
}

func (a *Agent) ensureRunning(ctx context.Context) error {
	conn, err := a.dial(ctx)
	if err != nil {
		return err
	}
	return conn.Close()
}
