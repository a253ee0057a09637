// Package keys manages the key pairs in the keys directory. A managed key
// named N is the pair <dir>/N and <dir>/N.pub whose public half parses as an
// authorized key. Generation is delegated to ssh-keygen.
package keys

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/ssh"

	apperr "sshkm/internal/error"
	"sshkm/internal/execx"
	"sshkm/internal/models"
	"sshkm/internal/utils"
)

const (
	PublicSuffix = ".pub"
	DefaultType  = "ed25519"
	keygen       = "ssh-keygen"
)

var supportedTypes = map[string]bool{"ed25519": true, "rsa": true, "ecdsa": true}

type Store struct {
	Dir    string
	Runner execx.Runner
	Log    zerolog.Logger
}

func NewStore(dir string, runner execx.Runner, log zerolog.Logger) *Store {
	return &Store{Dir: dir, Runner: runner, Log: log}
}

// GenerateOptions mirror the ssh-keygen flags sshkm exposes.
type GenerateOptions struct {
	Name       string
	Type       string
	Comment    string
	Passphrase bool
}

func (s *Store) privatePath(name string) string {
	return filepath.Join(s.Dir, name)
}

// List returns the managed keys sorted by name. A missing keys directory
// yields no keys.
func (s *Store) List() ([]models.Key, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperr.IO(fmt.Errorf("failed to read keys directory: %w", err))
	}

	var keys []models.Key
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), PublicSuffix) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), PublicSuffix)
		key, err := s.load(name)
		if err != nil {
			s.Log.Debug().Str("key", name).Err(err).Msg("skipping key")
			continue
		}
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b models.Key) int {
		return strings.Compare(a.Name, b.Name)
	})
	return keys, nil
}

// Names returns the set of managed key names.
func (s *Store) Names() (models.KeySet, error) {
	keys, err := s.List()
	if err != nil {
		return nil, err
	}
	set := make(models.KeySet, len(keys))
	for _, k := range keys {
		set[k.Name] = struct{}{}
	}
	return set, nil
}

// Get returns a single managed key.
func (s *Store) Get(name string) (models.Key, error) {
	if err := checkName(name); err != nil {
		return models.Key{}, err
	}
	key, err := s.load(name)
	if err != nil {
		s.Log.Debug().Str("key", name).Err(err).Msg("key lookup failed")
		return models.Key{}, apperr.KeyNotFound(name)
	}
	return key, nil
}

func (s *Store) load(name string) (models.Key, error) {
	priv := s.privatePath(name)
	pub := priv + PublicSuffix

	info, err := os.Stat(priv)
	if err != nil {
		return models.Key{}, err
	}
	if !info.Mode().IsRegular() {
		return models.Key{}, fmt.Errorf("%s is not a regular file", priv)
	}

	data, err := os.ReadFile(pub)
	if err != nil {
		return models.Key{}, err
	}
	parsed, comment, _, _, err := ssh.ParseAuthorizedKey(data)
	if err != nil {
		return models.Key{}, fmt.Errorf("parse public key: %w", err)
	}

	return models.Key{
		Name:        name,
		Path:        priv,
		PublicPath:  pub,
		Type:        parsed.Type(),
		Fingerprint: ssh.FingerprintSHA256(parsed),
		Comment:     comment,
	}, nil
}

// Generate creates a new key pair through ssh-keygen.
func (s *Store) Generate(ctx context.Context, opts GenerateOptions) (models.Key, error) {
	if err := checkName(opts.Name); err != nil {
		return models.Key{}, err
	}
	if opts.Type == "" {
		opts.Type = DefaultType
	}
	opts.Type = strings.ToLower(opts.Type)
	if !supportedTypes[opts.Type] {
		return models.Key{}, apperr.InvalidInput(fmt.Sprintf("unsupported key type '%s' (use ed25519, rsa or ecdsa)", opts.Type))
	}

	priv := s.privatePath(opts.Name)
	for _, p := range []string{priv, priv + PublicSuffix} {
		exists, err := utils.Exists(p)
		if err != nil {
			return models.Key{}, apperr.IO(err)
		}
		if exists {
			return models.Key{}, apperr.KeyExists(opts.Name)
		}
	}

	if err := os.MkdirAll(s.Dir, 0700); err != nil {
		return models.Key{}, apperr.IO(fmt.Errorf("failed to create keys directory: %w", err))
	}

	if err := s.runKeygen(ctx, priv, opts); err != nil {
		return models.Key{}, err
	}
	if err := os.Chmod(priv, 0600); err != nil {
		return models.Key{}, apperr.IO(fmt.Errorf("failed to set key permissions: %w", err))
	}

	s.Log.Info().Str("key", opts.Name).Str("type", opts.Type).Msg("generated key")
	return s.Get(opts.Name)
}

func (s *Store) runKeygen(ctx context.Context, priv string, opts GenerateOptions) error {
	args := []string{"-t", opts.Type, "-f", priv, "-C", opts.Comment}
	if opts.Type == "rsa" {
		args = append(args, "-b", "4096")
	}

	if opts.Passphrase {
		if err := s.Runner.Interactive(ctx, keygen, args...); err != nil {
			return apperr.KeygenFailed(err)
		}
		return nil
	}

	args = append(args, "-q", "-N", "")
	if _, err := s.Runner.Output(ctx, keygen, args...); err != nil {
		return apperr.KeygenFailed(err)
	}
	return nil
}

// Delete removes both halves of a managed key.
func (s *Store) Delete(name string) error {
	key, err := s.Get(name)
	if err != nil {
		return err
	}
	for _, p := range []string{key.Path, key.PublicPath} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return apperr.IO(fmt.Errorf("failed to remove %s: %w", p, err))
		}
	}
	s.Log.Info().Str("key", name).Msg("deleted key")
	return nil
}

// Rotate replaces a key pair with a freshly generated one of the same type
// and comment. The previous pair is kept as N.old / N.pub.old and put back
// if generation fails.
func (s *Store) Rotate(ctx context.Context, name string, passphrase bool) (models.Key, error) {
	old, err := s.Get(name)
	if err != nil {
		return models.Key{}, err
	}
	algo := old.Algorithm()
	if algo == "" {
		algo = DefaultType
	}

	moved := [][2]string{
		{old.Path, old.Path + utils.BackupSuffix},
		{old.PublicPath, old.PublicPath + utils.BackupSuffix},
	}
	for i, m := range moved {
		if err := os.Rename(m[0], m[1]); err != nil {
			s.restore(moved[:i])
			return models.Key{}, apperr.IO(fmt.Errorf("failed to move old key aside: %w", err))
		}
	}

	key, err := s.Generate(ctx, GenerateOptions{Name: name, Type: algo, Comment: old.Comment, Passphrase: passphrase})
	if err != nil {
		_ = os.Remove(old.Path)
		_ = os.Remove(old.PublicPath)
		s.restore(moved)
		return models.Key{}, err
	}

	s.Log.Info().Str("key", name).Str("old", old.Fingerprint).Str("new", key.Fingerprint).Msg("rotated key")
	return key, nil
}

func (s *Store) restore(moved [][2]string) {
	for _, m := range moved {
		if err := os.Rename(m[1], m[0]); err != nil {
			s.Log.Error().Err(err).Str("path", m[0]).Msg("failed to restore key")
		}
	}
}

func checkName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return apperr.InvalidInput("key name cannot be empty")
	case name == "." || name == "..",
		strings.ContainsAny(name, `/\`),
		strings.HasPrefix(name, "."):
		return apperr.InvalidInput(fmt.Sprintf("invalid key name '%s'", name))
	case strings.HasSuffix(name, PublicSuffix), strings.HasSuffix(name, utils.BackupSuffix):
		return apperr.InvalidInput(fmt.Sprintf("key name '%s' must not end in %s or %s", name, PublicSuffix, utils.BackupSuffix))
	}
	return nil
}
