package models

import "strings"

// Key is a managed key pair found in the keys directory.
type Key struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	PublicPath  string `json:"public_path"`
	Type        string `json:"type"`
	Fingerprint string `json:"fingerprint"`
	Comment     string `json:"comment,omitempty"`
}

// Algorithm maps the public key type onto the ssh-keygen -t value.
func (k Key) Algorithm() string {
	switch {
	case k.Type == "ssh-ed25519":
		return "ed25519"
	case k.Type == "ssh-rsa":
		return "rsa"
	case strings.HasPrefix(k.Type, "ecdsa-sha2-"):
		return "ecdsa"
	}
	return ""
}

// KeySet is the set of known managed key names.
type KeySet map[string]struct{}

func NewKeySet(names ...string) KeySet {
	s := make(KeySet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func (s KeySet) Has(name string) bool {
	_, ok := s[name]
	return ok
}
