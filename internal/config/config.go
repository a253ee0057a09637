// internal/config/config.go

package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/pelletier/go-toml/v2"

	apperr "sshkm/internal/error"
	"sshkm/internal/models"
	"sshkm/internal/utils"
)

const (
	DefaultFilePerms = 0600
	MaxPort          = 65535
)

// Manager owns the host inventory for the duration of one command.
type Manager struct {
	configPath string
	inventory  *models.Inventory
}

// NewManager creates an inventory manager for the hosts file at configPath.
func NewManager(configPath string) *Manager {
	return &Manager{
		configPath: configPath,
		inventory:  &models.Inventory{},
	}
}

// Path returns the hosts file location.
func (m *Manager) Path() string {
	return m.configPath
}

// Load reads the hosts file. A missing file is ConfigNotFound unless
// allowMissing is set, in which case the inventory starts empty.
func (m *Manager) Load(allowMissing bool) error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			if allowMissing {
				m.inventory = &models.Inventory{Hosts: make([]models.Host, 0)}
				return nil
			}
			return apperr.ConfigNotFound(m.configPath)
		}
		return apperr.IO(fmt.Errorf("failed to read %s: %w", m.configPath, err))
	}

	inv := &models.Inventory{}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(inv); err != nil {
		return apperr.ConfigParse(fmt.Sprintf("%s: %s", m.configPath, describeDecodeError(err)), nil)
	}
	if inv.Hosts == nil {
		inv.Hosts = make([]models.Host, 0)
	}
	m.inventory = inv
	return nil
}

func describeDecodeError(err error) string {
	var de *toml.DecodeError
	if errors.As(err, &de) {
		row, col := de.Position()
		return fmt.Sprintf("line %d, column %d: %s", row, col, de.Error())
	}
	var sme *toml.StrictMissingError
	if errors.As(err, &sme) {
		return strings.TrimSpace(sme.String())
	}
	return err.Error()
}

// Save writes the inventory back atomically.
func (m *Manager) Save() error {
	data, err := toml.Marshal(m.inventory)
	if err != nil {
		return apperr.ConfigWrite(m.configPath, err)
	}
	if err := utils.WriteFileAtomic(m.configPath, data, DefaultFilePerms); err != nil {
		return apperr.ConfigWrite(m.configPath, err)
	}
	return nil
}

// Inventory returns the loaded inventory.
func (m *Manager) Inventory() *models.Inventory {
	return m.inventory
}

// GetHosts returns all hosts in inventory order.
func (m *Manager) GetHosts() []models.Host {
	return m.inventory.Hosts
}

// FindHostByName looks a host up by name.
func (m *Manager) FindHostByName(name string) (models.Host, int, error) {
	for i, host := range m.inventory.Hosts {
		if host.Name == name {
			return host, i, nil
		}
	}
	return models.Host{}, -1, apperr.HostNotFound(name)
}

// AddHost appends a new host.
func (m *Manager) AddHost(host models.Host) error {
	if err := CheckHost(host); err != nil {
		return err
	}
	if _, _, err := m.FindHostByName(host.Name); err == nil {
		return apperr.HostExists(host.Name)
	}
	m.inventory.Hosts = append(m.inventory.Hosts, host)
	return nil
}

// EditHost applies the supplied fields of patch to the named host.
func (m *Manager) EditHost(name string, patch models.HostPatch) (models.Host, error) {
	host, index, err := m.FindHostByName(name)
	if err != nil {
		return models.Host{}, err
	}
	updated := patch.Apply(host)
	if err := CheckHost(updated); err != nil {
		return models.Host{}, err
	}
	m.inventory.Hosts[index] = updated
	return updated, nil
}

// DeleteHost removes the named host, keeping the order of the rest.
func (m *Manager) DeleteHost(name string) error {
	_, index, err := m.FindHostByName(name)
	if err != nil {
		return err
	}
	m.inventory.Hosts = append(m.inventory.Hosts[:index], m.inventory.Hosts[index+1:]...)
	return nil
}

// CheckHost validates the fields of a single entry.
func CheckHost(h models.Host) error {
	if strings.TrimSpace(h.Name) == "" {
		return apperr.InvalidInput("host name cannot be empty")
	}
	if strings.ContainsAny(h.Name, " \t\r\n") {
		return apperr.InvalidInput(fmt.Sprintf("host name '%s' contains whitespace", h.Name))
	}
	if strings.TrimSpace(h.Hostname) == "" {
		return apperr.InvalidInput(fmt.Sprintf("hostname for '%s' cannot be empty", h.Name))
	}
	if h.Port < 0 || h.Port > MaxPort {
		return apperr.InvalidInput(fmt.Sprintf("port %d for '%s' is out of range 1-%d", h.Port, h.Name, MaxPort))
	}
	for _, f := range []struct{ name, value string }{
		{"name", h.Name},
		{"hostname", h.Hostname},
		{"user", h.User},
		{"key", h.Key},
		{"proxy_jump", h.ProxyJump},
	} {
		if err := checkValue(h.Name, f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}

// checkValue rejects characters that cannot appear in a single ssh_config
// argument: control characters and double quotes.
func checkValue(host, field, value string) error {
	switch {
	case strings.ContainsFunc(value, unicode.IsControl):
		return apperr.InvalidInput(fmt.Sprintf("%s for '%s' contains a control character", field, host))
	case strings.ContainsRune(value, '"'):
		return apperr.InvalidInput(fmt.Sprintf("%s for '%s' contains a double quote", field, host))
	}
	return nil
}
