package sshconfig

import (
	"path/filepath"
	"strconv"
	"strings"

	"sshkm/internal/models"
	"sshkm/internal/utils"
)

const (
	StartMarker = "# >>> sshkm managed block >>>"
	EndMarker   = "# <<< sshkm managed block <<<"
	Notice      = "# Generated by sshkm from the host inventory. Changes inside this block are overwritten."

	indent = "    "
)

// RenderOptions locate identity files. Home is contracted to "~" so the
// output does not depend on how $HOME is spelled.
type RenderOptions struct {
	KeysDir string
	Home    string
}

// IdentityFile returns the IdentityFile value for a key reference.
func (o RenderOptions) IdentityFile(key string) string {
	return utils.ContractHome(filepath.Join(o.KeysDir, key), o.Home)
}

// Render produces the managed block for inv: the markers, a notice line and
// one Host block per entry in inventory order. The result always ends with
// a newline and depends only on its arguments.
func Render(inv *models.Inventory, opts RenderOptions) string {
	var b strings.Builder
	b.WriteString(StartMarker + "\n")
	b.WriteString(Notice + "\n")
	for _, h := range inv.Hosts {
		b.WriteString("\n")
		renderHost(&b, h, opts)
	}
	b.WriteString(EndMarker + "\n")
	return b.String()
}

func renderHost(b *strings.Builder, h models.Host, opts RenderOptions) {
	b.WriteString("Host " + h.Name + "\n")
	field(b, "HostName", h.Hostname)
	field(b, "User", h.User)
	if h.Key != "" {
		field(b, "IdentityFile", opts.IdentityFile(h.Key))
	}
	if h.Port != 0 {
		field(b, "Port", strconv.Itoa(h.Port))
	}
	field(b, "ProxyJump", h.ProxyJump)
}

func field(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	b.WriteString(indent + name + " " + quote(value) + "\n")
}

// quote wraps values containing whitespace the way ssh_config expects.
func quote(v string) string {
	if strings.ContainsAny(v, " \t") {
		return `"` + v + `"`
	}
	return v
}
