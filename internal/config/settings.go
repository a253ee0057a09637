package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	apperr "sshkm/internal/error"
	"sshkm/internal/utils"
)

const (
	DefaultConfigDir      = ".config/sshkm"
	DefaultConfigFileName = "hosts.toml"
	DefaultKeysDir        = ".ssh"
	DefaultSSHConfig      = ".ssh/config"
	EnvPrefix             = "SSHKM"
)

// Setting keys, shared by flags, environment (SSHKM_<KEY>) and viper.
const (
	KeyHostsFile = "hosts_file"
	KeyKeysDir   = "keys_dir"
	KeySSHConfig = "ssh_config"
	KeyLogLevel  = "log_level"
)

// Settings are the resolved file locations and options for one run.
type Settings struct {
	Home      string
	HostsFile string
	KeysDir   string
	SSHConfig string
	LogLevel  string
}

// HomeDir resolves the user's home directory.
func HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", apperr.HomeDirNotFound(err)
	}
	return home, nil
}

// GetDefaultConfigPath returns the default hosts file location under home.
func GetDefaultConfigPath(home string) string {
	return filepath.Join(home, DefaultConfigDir, DefaultConfigFileName)
}

// NewViper returns a viper instance reading SSHKM_* variables with the
// default locations derived from home.
func NewViper(home string) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyHostsFile, GetDefaultConfigPath(home))
	v.SetDefault(KeyKeysDir, filepath.Join(home, DefaultKeysDir))
	v.SetDefault(KeySSHConfig, filepath.Join(home, DefaultSSHConfig))
	v.SetDefault(KeyLogLevel, "warn")
	return v
}

// Resolve reads the effective settings from v. Flag > env > default
// precedence comes from viper's flag binding.
func Resolve(v *viper.Viper, home string) (Settings, error) {
	s := Settings{
		Home:      home,
		HostsFile: utils.ExpandHome(v.GetString(KeyHostsFile), home),
		KeysDir:   utils.ExpandHome(v.GetString(KeyKeysDir), home),
		SSHConfig: utils.ExpandHome(v.GetString(KeySSHConfig), home),
		LogLevel:  v.GetString(KeyLogLevel),
	}
	for name, value := range map[string]string{
		KeyHostsFile: s.HostsFile,
		KeyKeysDir:   s.KeysDir,
		KeySSHConfig: s.SSHConfig,
	} {
		if strings.TrimSpace(value) == "" {
			return Settings{}, apperr.InvalidInput(name + " cannot be empty")
		}
	}
	return s, nil
}
