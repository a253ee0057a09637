package sshconfig

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"sshkm/internal/models"
)

var testOpts = RenderOptions{KeysDir: "/home/u/.ssh", Home: "/home/u"}

func TestRender_FullEntry(t *testing.T) {
	inv := &models.Inventory{Hosts: []models.Host{
		{Name: "web", Hostname: "10.0.0.5", User: "deploy", Key: "work", Port: 2222, ProxyJump: "bastion"},
	}}

	want := StartMarker + "\n" +
		Notice + "\n" +
		"\n" +
		"Host web\n" +
		"    HostName 10.0.0.5\n" +
		"    User deploy\n" +
		"    IdentityFile ~/.ssh/work\n" +
		"    Port 2222\n" +
		"    ProxyJump bastion\n" +
		EndMarker + "\n"

	assert.Equal(t, want, Render(inv, testOpts))
}

func TestRender_OmitsAbsentFields(t *testing.T) {
	inv := &models.Inventory{Hosts: []models.Host{{Name: "min", Hostname: "min.example.com"}}}

	out := Render(inv, testOpts)

	assert.Contains(t, out, "Host min\n    HostName min.example.com\n"+EndMarker)
	for _, f := range []string{"User", "IdentityFile", "Port", "ProxyJump"} {
		assert.NotContains(t, out, f)
	}
	assert.NotContains(t, out, "\n    \n")
}

func TestRender_PreservesInventoryOrder(t *testing.T) {
	inv := &models.Inventory{Hosts: []models.Host{
		{Name: "B", Hostname: "b"},
		{Name: "A", Hostname: "a"},
		{Name: "C", Hostname: "c"},
	}}

	out := Render(inv, testOpts)

	b, a, c := strings.Index(out, "Host B\n"), strings.Index(out, "Host A\n"), strings.Index(out, "Host C\n")
	assert.True(t, b >= 0 && a >= 0 && c >= 0)
	assert.True(t, b < a && a < c, "expected B, A, C order:\n%s", out)
}

func TestRender_Deterministic(t *testing.T) {
	inv := &models.Inventory{Hosts: []models.Host{
		{Name: "x", Hostname: "x", Key: "k", Port: 22},
		{Name: "y", Hostname: "y", User: "me", ProxyJump: "x"},
	}}
	first := Render(inv, testOpts)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Render(inv, testOpts))
	}
}

func TestRender_EmptyInventory(t *testing.T) {
	assert.Equal(t, StartMarker+"\n"+Notice+"\n"+EndMarker+"\n", Render(&models.Inventory{}, testOpts))
}

func TestRender_IdentityOutsideHomeAndQuoting(t *testing.T) {
	inv := &models.Inventory{Hosts: []models.Host{{Name: "h", Hostname: "h", Key: "work"}}}

	out := Render(inv, RenderOptions{KeysDir: "/srv/my keys", Home: "/home/u"})

	assert.Contains(t, out, `    IdentityFile "/srv/my keys/work"`+"\n")
}
