// internal/models/host.go

package models

// Host is one entry of the inventory. Only Name and Hostname are required.
type Host struct {
	Name      string `toml:"name" json:"name"`
	Hostname  string `toml:"hostname" json:"hostname"`
	User      string `toml:"user,omitempty" json:"user,omitempty"`
	Key       string `toml:"key,omitempty" json:"key,omitempty"`
	Port      int    `toml:"port,omitempty" json:"port,omitempty"`
	ProxyJump string `toml:"proxy_jump,omitempty" json:"proxy_jump,omitempty"`
}

// Inventory is the ordered host list stored in hosts.toml. Order is
// significant: it is the order hosts are rendered in.
type Inventory struct {
	Hosts []Host `toml:"hosts"`
}

// HostPatch carries the fields of an edit. A nil field was not supplied and
// is left unchanged.
type HostPatch struct {
	Hostname  *string
	User      *string
	Key       *string
	Port      *int
	ProxyJump *string
}

// Empty reports whether no field was supplied.
func (p HostPatch) Empty() bool {
	return p.Hostname == nil && p.User == nil && p.Key == nil && p.Port == nil && p.ProxyJump == nil
}

// Apply returns a copy of h with the supplied fields replaced.
func (p HostPatch) Apply(h Host) Host {
	if p.Hostname != nil {
		h.Hostname = *p.Hostname
	}
	if p.User != nil {
		h.User = *p.User
	}
	if p.Key != nil {
		h.Key = *p.Key
	}
	if p.Port != nil {
		h.Port = *p.Port
	}
	if p.ProxyJump != nil {
		h.ProxyJump = *p.ProxyJump
	}
	return h
}

// Names returns host names in inventory order.
func (inv *Inventory) Names() []string {
	names := make([]string, 0, len(inv.Hosts))
	for _, h := range inv.Hosts {
		names = append(names, h.Name)
	}
	return names
}
