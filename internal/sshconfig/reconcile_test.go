package sshconfig

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "sshkm/internal/error"
	"sshkm/internal/models"
)

func newReconciler() (*Reconciler, *bytes.Buffer) {
	var out bytes.Buffer
	return NewReconciler(&out, zerolog.Nop()), &out
}

func sampleInventory() *models.Inventory {
	return &models.Inventory{Hosts: []models.Host{
		{Name: "web", Hostname: "10.0.0.5", User: "deploy", Key: "work"},
		{Name: "db", Hostname: "10.0.0.6", ProxyJump: "web"},
	}}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestApply_NewFile(t *testing.T) {
	r, _ := newReconciler()
	path := filepath.Join(t.TempDir(), ".ssh", "config")
	rendered := Render(sampleInventory(), testOpts)

	res, err := r.Apply(path, rendered, ApplyOptions{})
	require.NoError(t, err)
	assert.True(t, res.Written)
	assert.True(t, res.Changed)
	assert.Empty(t, res.BackupPath, "nothing to back up")

	assert.Equal(t, rendered, readFile(t, path))
	_, err = os.Stat(path + ".old")
	assert.True(t, os.IsNotExist(err))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestApply_PreservesHandWrittenContent(t *testing.T) {
	r, _ := newReconciler()
	path := filepath.Join(t.TempDir(), "config")
	before := "# personal\nHost github.com\n    User git\n\n"
	after := "\nHost *\n    ServerAliveInterval 30\n"
	old := StartMarker + "\nHost stale\n    HostName old\n" + EndMarker + "\n"
	require.NoError(t, os.WriteFile(path, []byte(before+old+after), 0600))

	rendered := Render(sampleInventory(), testOpts)
	res, err := r.Apply(path, rendered, ApplyOptions{NoBackup: true})
	require.NoError(t, err)
	assert.True(t, res.Changed)

	assert.Equal(t, before+rendered+after, readFile(t, path))
}

func TestApply_AppendsBlockToFileWithoutOne(t *testing.T) {
	r, _ := newReconciler()
	path := filepath.Join(t.TempDir(), "config")
	existing := "Host github.com\n    User git"
	require.NoError(t, os.WriteFile(path, []byte(existing), 0600))

	rendered := Render(sampleInventory(), testOpts)
	_, err := r.Apply(path, rendered, ApplyOptions{NoBackup: true})
	require.NoError(t, err)

	assert.Equal(t, existing+"\n\n"+rendered, readFile(t, path))
}

func TestApply_Idempotent(t *testing.T) {
	r, _ := newReconciler()
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte("Host mine\n    User me\n"), 0600))
	inv := sampleInventory()

	_, err := r.Apply(path, Render(inv, testOpts), ApplyOptions{NoBackup: true})
	require.NoError(t, err)
	first := readFile(t, path)

	d, err := r.Diff(path, Render(inv, testOpts))
	require.NoError(t, err)
	assert.True(t, d.Empty())
	assert.Empty(t, d.Unified())

	res, err := r.Apply(path, Render(inv, testOpts), ApplyOptions{NoBackup: true})
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, first, readFile(t, path))
}

func TestApply_BackupSemantics(t *testing.T) {
	r, _ := newReconciler()
	rendered := Render(sampleInventory(), testOpts)

	t.Run("existing target is backed up", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config")
		require.NoError(t, os.WriteFile(path, []byte("Host original\n"), 0600))

		res, err := r.Apply(path, rendered, ApplyOptions{})
		require.NoError(t, err)
		assert.Equal(t, path+".old", res.BackupPath)
		assert.Equal(t, "Host original\n", readFile(t, path+".old"))
	})

	t.Run("no_backup skips the copy", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config")
		require.NoError(t, os.WriteFile(path, []byte("Host original\n"), 0600))

		res, err := r.Apply(path, rendered, ApplyOptions{NoBackup: true})
		require.NoError(t, err)
		assert.Empty(t, res.BackupPath)
		_, err = os.Stat(path + ".old")
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("missing target is never backed up", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config")

		_, err := r.Apply(path, rendered, ApplyOptions{})
		require.NoError(t, err)
		_, err = os.Stat(path + ".old")
		assert.True(t, os.IsNotExist(err))
	})
}

func TestApply_DryRunIsPure(t *testing.T) {
	r, out := newReconciler()
	dir := t.TempDir()
	path := filepath.Join(dir, "config")
	original := "Host original\n"
	require.NoError(t, os.WriteFile(path, []byte(original), 0600))
	rendered := Render(sampleInventory(), testOpts)

	res, err := r.Apply(path, rendered, ApplyOptions{DryRun: true})
	require.NoError(t, err)
	assert.True(t, res.DryRun)
	assert.True(t, res.Changed)
	assert.False(t, res.Written)
	assert.Equal(t, rendered, out.String())

	assert.Equal(t, original, readFile(t, path))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "dry run must not create backups or temp files")

	missing := filepath.Join(dir, "absent")
	_, err = r.Apply(missing, rendered, ApplyOptions{DryRun: true})
	require.NoError(t, err)
	_, err = os.Stat(missing)
	assert.True(t, os.IsNotExist(err))
}

func TestApply_BackupFailureLeavesTargetUntouched(t *testing.T) {
	r, _ := newReconciler()
	path := filepath.Join(t.TempDir(), "config")
	original := "Host original\n"
	require.NoError(t, os.WriteFile(path, []byte(original), 0600))
	// a non-empty directory where the backup should go makes the backup fail
	require.NoError(t, os.MkdirAll(filepath.Join(path+".old", "x"), 0700))

	_, err := r.Apply(path, Render(sampleInventory(), testOpts), ApplyOptions{})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ConfigWriteError))
	assert.Equal(t, original, readFile(t, path))
}

func TestApply_UnterminatedBlockIsRefused(t *testing.T) {
	r, _ := newReconciler()
	path := filepath.Join(t.TempDir(), "config")
	original := StartMarker + "\nHost a\n\nHost handwritten\n"
	require.NoError(t, os.WriteFile(path, []byte(original), 0600))

	_, err := r.Apply(path, Render(sampleInventory(), testOpts), ApplyOptions{})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ConfigParseError))
	assert.Equal(t, original, readFile(t, path))
	_, err = os.Stat(path + ".old")
	assert.True(t, os.IsNotExist(err))
}

func TestDiff_MissingFileIsEmptyBaseline(t *testing.T) {
	r, _ := newReconciler()
	path := filepath.Join(t.TempDir(), "config")
	rendered := Render(sampleInventory(), testOpts)

	d, err := r.Diff(path, rendered)
	require.NoError(t, err)
	assert.False(t, d.FileExists)
	assert.False(t, d.BlockExists)
	assert.Empty(t, d.Old)
	assert.Equal(t, Lines(rendered), d.New)
	assert.False(t, d.Empty())
	assert.Contains(t, d.Unified(), "+Host web")
}

func TestDiff_UnterminatedBlockIsEmptyBaseline(t *testing.T) {
	r, _ := newReconciler()
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte(StartMarker+"\nHost a\n"), 0600))

	d, err := r.Diff(path, Render(sampleInventory(), testOpts))
	require.NoError(t, err)
	assert.True(t, d.FileExists)
	assert.False(t, d.BlockExists)
	assert.Empty(t, d.Old)
}

func TestDiff_ShowsChangedLines(t *testing.T) {
	r, _ := newReconciler()
	path := filepath.Join(t.TempDir(), "config")
	inv := sampleInventory()
	_, err := r.Apply(path, Render(inv, testOpts), ApplyOptions{})
	require.NoError(t, err)

	inv.Hosts[0].Port = 2222
	d, err := r.Diff(path, Render(inv, testOpts))
	require.NoError(t, err)
	assert.True(t, d.BlockExists)
	assert.False(t, d.Empty())

	u := d.Unified()
	assert.Contains(t, u, "--- "+path+" (current)")
	assert.Contains(t, u, "+++ "+path+" (generated)")
	assert.Contains(t, u, "+    Port 2222")
	assert.NotContains(t, u, "-Host web")
}
