package agent

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"net"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
	sshagent "golang.org/x/crypto/ssh/agent"

	apperr "sshkm/internal/error"
	"sshkm/internal/execx"
)

// serveKeyring runs an in-process agent on a unix socket.
func serveKeyring(t *testing.T) (string, sshagent.Agent) {
	t.Helper()
	keyring := sshagent.NewKeyring()
	sock := filepath.Join(t.TempDir(), "agent.sock")
	l, err := net.Listen("unix", sock)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				_ = sshagent.ServeAgent(keyring, conn)
			}()
		}
	}()
	return sock, keyring
}

func TestStatus_NoSocket(t *testing.T) {
	a := &Agent{Runner: &execx.Fake{}, Log: zerolog.Nop()}
	_, err := a.Status(context.Background())
	assert.True(t, apperr.Is(err, apperr.AgentNotRunningError))
}

func TestStatus_DeadSocket(t *testing.T) {
	a := &Agent{Socket: filepath.Join(t.TempDir(), "gone.sock"), Runner: &execx.Fake{}, Log: zerolog.Nop()}
	_, err := a.Status(context.Background())
	assert.True(t, apperr.Is(err, apperr.AgentNotRunningError))
}

func TestList_FromAgent(t *testing.T) {
	sock, keyring := serveKeyring(t)
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	require.NoError(t, keyring.Add(sshagent.AddedKey{PrivateKey: priv, Comment: "work"}))

	signer, err := ssh.NewSignerFromKey(priv)
	require.NoError(t, err)

	a := &Agent{Socket: sock, Runner: &execx.Fake{}, Log: zerolog.Nop()}
	keys, err := a.List(context.Background())
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, "ssh-ed25519", keys[0].Type)
	assert.Equal(t, "work", keys[0].Comment)
	assert.Equal(t, ssh.FingerprintSHA256(signer.PublicKey()), keys[0].Fingerprint)

	n, err := a.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestLoadRemoveClear(t *testing.T) {
	sock, _ := serveKeyring(t)
	fake := &execx.Fake{}
	a := &Agent{Socket: sock, Runner: fake, Log: zerolog.Nop()}
	ctx := context.Background()

	require.NoError(t, a.Load(ctx, []string{"/k/work"}, 3600))
	require.NoError(t, a.Load(ctx, []string{"/k/a", "/k/b"}, 0))
	require.NoError(t, a.Remove(ctx, []string{"/k/work"}))
	require.NoError(t, a.Clear(ctx))

	require.Len(t, fake.Calls, 4)
	assert.Equal(t, "ssh-add -t 3600 /k/work", fake.Calls[0].String())
	assert.True(t, fake.Calls[0].Interactive)
	assert.Equal(t, "ssh-add /k/a /k/b", fake.Calls[1].String())
	assert.Equal(t, "ssh-add -d /k/work", fake.Calls[2].String())
	assert.Equal(t, "ssh-add -D", fake.Calls[3].String())
}

func TestLoad_Failures(t *testing.T) {
	fake := &execx.Fake{}
	a := &Agent{Runner: fake, Log: zerolog.Nop()}
	err := a.Load(context.Background(), []string{"/k/work"}, 0)
	assert.True(t, apperr.Is(err, apperr.AgentNotRunningError))
	assert.Empty(t, fake.Calls, "ssh-add must not run without an agent")

	sock, _ := serveKeyring(t)
	a.Socket = sock
	a.Runner = &execx.Fake{Handler: func(execx.Call) ([]byte, error) { return nil, errors.New("exit status 1") }}
	err = a.Clear(context.Background())
	assert.True(t, apperr.Is(err, apperr.AgentError))
}
