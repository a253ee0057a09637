package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	apperr "sshkm/internal/error"
	"sshkm/internal/models"
	"sshkm/internal/ui"
)

func (a *app) newHostCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "host",
		Short: "Manage the host inventory",
	}
	cmd.AddCommand(a.newHostAddCommand())
	cmd.AddCommand(a.newHostListCommand())
	cmd.AddCommand(a.newHostEditCommand())
	cmd.AddCommand(a.newHostRemoveCommand())
	cmd.AddCommand(a.newHostShowCommand())
	return cmd
}

// hostFlags registers the optional host fields shared by add and edit.
func hostFlags(cmd *cobra.Command, h *models.Host) {
	cmd.Flags().StringVar(&h.Hostname, "hostname", "", "Address or DNS name to connect to")
	cmd.Flags().StringVar(&h.User, "user", "", "Remote user")
	cmd.Flags().StringVar(&h.Key, "key", "", "Name of a managed key")
	cmd.Flags().IntVar(&h.Port, "port", 0, "Remote port")
	cmd.Flags().StringVar(&h.ProxyJump, "proxy-jump", "", "Jump host (inventory name or user@host:port)")
}

func (a *app) newHostAddCommand() *cobra.Command {
	var host models.Host
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a host to the inventory",
		Args:  argsInput(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if host.Name == "" || host.Hostname == "" {
				if !a.interactive() {
					return apperr.InvalidInput("--name and --hostname are required when not running on a terminal")
				}
				filled, err := ui.RunHostForm(cmd.Context(), a.stdin, a.stdout, host)
				if err != nil {
					return err
				}
				host = filled
			}

			m, err := a.inventory(true)
			if err != nil {
				return err
			}
			if err := m.AddHost(host); err != nil {
				return err
			}
			a.warnUnknownKey(host)
			if err := m.Save(); err != nil {
				return err
			}
			a.out.Success("Added host '%s'", host.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&host.Name, "name", "", "Host alias used with ssh <name>")
	hostFlags(cmd, &host)
	return cmd
}

// warnUnknownKey flags a key reference that config generate would reject.
func (a *app) warnUnknownKey(h models.Host) {
	if h.Key == "" {
		return
	}
	if _, err := a.keyStore().Get(h.Key); err != nil {
		a.out.Warn("key '%s' for host '%s' is not a managed key in %s", h.Key, h.Name, a.settings.KeysDir)
	}
}

func (a *app) newHostListCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List hosts in inventory order",
		Args:  argsInput(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.inventory(true)
			if err != nil {
				return err
			}
			hosts := m.GetHosts()
			if asJSON {
				return a.out.JSON(hosts)
			}
			if len(hosts) == 0 {
				a.out.Println("No hosts in " + m.Path())
				return nil
			}
			rows := make([][]string, 0, len(hosts))
			for _, h := range hosts {
				rows = append(rows, []string{h.Name, h.Hostname, h.User, h.Key, portString(h.Port), h.ProxyJump})
			}
			a.out.Table([]string{"NAME", "HOSTNAME", "USER", "KEY", "PORT", "PROXYJUMP"}, rows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func (a *app) newHostEditCommand() *cobra.Command {
	var fields models.Host
	cmd := &cobra.Command{
		Use:   "edit <name>",
		Short: "Change fields of a host; only the given flags are updated",
		Args:  argsInput(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := patchFromFlags(cmd, fields)
			if patch.Empty() {
				return apperr.InvalidInput("nothing to change; pass at least one of --hostname, --user, --key, --port, --proxy-jump")
			}

			m, err := a.inventory(true)
			if err != nil {
				return err
			}
			updated, err := m.EditHost(args[0], patch)
			if err != nil {
				return err
			}
			if patch.Key != nil {
				a.warnUnknownKey(updated)
			}
			if err := m.Save(); err != nil {
				return err
			}
			a.out.Success("Updated host '%s'", updated.Name)
			return nil
		},
	}
	hostFlags(cmd, &fields)
	return cmd
}

// patchFromFlags keeps only the fields whose flags were given.
func patchFromFlags(cmd *cobra.Command, h models.Host) models.HostPatch {
	var p models.HostPatch
	changed := cmd.Flags().Changed
	if changed("hostname") {
		p.Hostname = &h.Hostname
	}
	if changed("user") {
		p.User = &h.User
	}
	if changed("key") {
		p.Key = &h.Key
	}
	if changed("port") {
		p.Port = &h.Port
	}
	if changed("proxy-jump") {
		p.ProxyJump = &h.ProxyJump
	}
	return p
}

func (a *app) newHostRemoveCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a host from the inventory",
		Args:  argsInput(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			m, err := a.inventory(true)
			if err != nil {
				return err
			}
			if _, _, err := m.FindHostByName(name); err != nil {
				return err
			}

			if !force {
				if !a.interactive() {
					return apperr.InvalidInput(fmt.Sprintf("refusing to remove '%s' without --force when not running on a terminal", name))
				}
				ok, err := ui.AskConfirm(cmd.Context(), a.stdin, a.stdout, fmt.Sprintf("Remove host '%s'?", name))
				if err != nil {
					return err
				}
				if !ok {
					a.out.Println("Aborted.")
					return nil
				}
			}

			if err := m.DeleteHost(name); err != nil {
				return err
			}
			if err := m.Save(); err != nil {
				return err
			}
			a.out.Success("Removed host '%s'", name)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Do not ask for confirmation")
	return cmd
}

func (a *app) newHostShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show one host",
		Args:  argsInput(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.inventory(true)
			if err != nil {
				return err
			}
			h, _, err := m.FindHostByName(args[0])
			if err != nil {
				return err
			}
			a.out.Title(h.Name)
			a.out.Field("Hostname", h.Hostname)
			a.out.Field("User", h.User)
			a.out.Field("Key", h.Key)
			a.out.Field("Port", portString(h.Port))
			a.out.Field("ProxyJump", h.ProxyJump)
			return nil
		},
	}
}

func portString(port int) string {
	if port == 0 {
		return ""
	}
	return strconv.Itoa(port)
}
