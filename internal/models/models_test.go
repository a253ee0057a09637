package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHostPatch_ApplyOnlySuppliedFields(t *testing.T) {
	h := Host{Name: "web", Hostname: "10.0.0.5", User: "deploy", Key: "work", Port: 22, ProxyJump: "bastion"}
	port := 2222

	got := HostPatch{Port: &port}.Apply(h)

	assert.Equal(t, Host{Name: "web", Hostname: "10.0.0.5", User: "deploy", Key: "work", Port: 2222, ProxyJump: "bastion"}, got)
	assert.Equal(t, 22, h.Port, "original must not change")
}

func TestHostPatch_EmptyStringClears(t *testing.T) {
	empty := ""
	got := HostPatch{User: &empty, ProxyJump: &empty}.Apply(Host{Name: "a", Hostname: "h", User: "u", ProxyJump: "j"})
	assert.Equal(t, Host{Name: "a", Hostname: "h"}, got)
}

func TestHostPatch_Empty(t *testing.T) {
	assert.True(t, HostPatch{}.Empty())
	user := "root"
	assert.False(t, HostPatch{User: &user}.Empty())
}

func TestKey_Algorithm(t *testing.T) {
	assert.Equal(t, "ed25519", Key{Type: "ssh-ed25519"}.Algorithm())
	assert.Equal(t, "rsa", Key{Type: "ssh-rsa"}.Algorithm())
	assert.Equal(t, "ecdsa", Key{Type: "ecdsa-sha2-nistp256"}.Algorithm())
	assert.Equal(t, "", Key{Type: "ssh-dss"}.Algorithm())
}

func TestKeySet(t *testing.T) {
	s := NewKeySet("work", "personal")
	assert.True(t, s.Has("work"))
	assert.False(t, s.Has("missing"))
}
