package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_DefaultPaths(t *testing.T) {
	home := t.TempDir()

	s, err := Resolve(NewViper(home), home)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "sshkm", "hosts.toml"), s.HostsFile)
	assert.Equal(t, filepath.Join(home, ".ssh"), s.KeysDir)
	assert.Equal(t, filepath.Join(home, ".ssh", "config"), s.SSHConfig)
	assert.Equal(t, "warn", s.LogLevel)
}

func TestResolve_EnvOverride(t *testing.T) {
	home := t.TempDir()
	t.Setenv("SSHKM_SSH_CONFIG", "~/custom/config")
	t.Setenv("SSHKM_LOG_LEVEL", "debug")

	s, err := Resolve(NewViper(home), home)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "custom", "config"), s.SSHConfig)
	assert.Equal(t, "debug", s.LogLevel)
}

func TestResolve_ExplicitValue(t *testing.T) {
	home := t.TempDir()
	v := NewViper(home)
	v.Set(KeyHostsFile, "/srv/hosts.toml")

	s, err := Resolve(v, home)
	require.NoError(t, err)
	assert.Equal(t, "/srv/hosts.toml", s.HostsFile)
}
