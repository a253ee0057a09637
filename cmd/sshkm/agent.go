package main

import (
	"github.com/spf13/cobra"

	apperr "sshkm/internal/error"
)

func (a *app) newAgentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Load and inspect keys in ssh-agent",
	}
	cmd.AddCommand(a.newAgentLoadCommand())
	cmd.AddCommand(a.newAgentRemoveCommand())
	cmd.AddCommand(a.newAgentClearCommand())
	cmd.AddCommand(a.newAgentListCommand())
	cmd.AddCommand(a.newAgentStatusCommand())
	return cmd
}

// keyPaths returns the private key path of the named key, or of every
// managed key when no name is given.
func (a *app) keyPaths(args []string) ([]string, error) {
	store := a.keyStore()
	if len(args) == 1 {
		key, err := store.Get(args[0])
		if err != nil {
			return nil, err
		}
		return []string{key.Path}, nil
	}

	list, err := store.List()
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, apperr.InvalidInput("no managed keys in " + a.settings.KeysDir)
	}
	paths := make([]string, 0, len(list))
	for _, k := range list {
		paths = append(paths, k.Path)
	}
	return paths, nil
}

func (a *app) newAgentLoadCommand() *cobra.Command {
	var lifetime uint64
	cmd := &cobra.Command{
		Use:   "load [name]",
		Short: "Load one managed key, or all of them, into ssh-agent",
		Args:  argsInput(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := a.keyPaths(args)
			if err != nil {
				return err
			}
			if err := a.agent().Load(cmd.Context(), paths, lifetime); err != nil {
				return err
			}
			a.out.Success("Loaded %d key(s) into ssh-agent", len(paths))
			return nil
		},
	}
	cmd.Flags().Uint64VarP(&lifetime, "lifetime", "t", 0, "Key lifetime in seconds (ssh-add -t)")
	return cmd
}

func (a *app) newAgentRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove [name]",
		Short: "Remove one managed key, or all of them, from ssh-agent",
		Args:  argsInput(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := a.keyPaths(args)
			if err != nil {
				return err
			}
			if err := a.agent().Remove(cmd.Context(), paths); err != nil {
				return err
			}
			a.out.Success("Removed %d key(s) from ssh-agent", len(paths))
			return nil
		},
	}
}

func (a *app) newAgentClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all keys from ssh-agent",
		Args:  argsInput(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.agent().Clear(cmd.Context()); err != nil {
				return err
			}
			a.out.Success("Removed all keys from ssh-agent")
			return nil
		},
	}
}

func (a *app) newAgentListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List keys currently loaded in ssh-agent",
		Args:  argsInput(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := a.agent().List(cmd.Context())
			if err != nil {
				return err
			}
			if len(loaded) == 0 {
				a.out.Println("The agent has no identities.")
				return nil
			}
			rows := make([][]string, 0, len(loaded))
			for _, k := range loaded {
				rows = append(rows, []string{k.Type, k.Fingerprint, k.Comment})
			}
			a.out.Table([]string{"TYPE", "FINGERPRINT", "COMMENT"}, rows)
			return nil
		},
	}
}

func (a *app) newAgentStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check whether ssh-agent is running",
		Args:  argsInput(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.agent().Status(cmd.Context())
			if err != nil {
				return err
			}
			a.out.Success("ssh-agent is running (%d key(s) loaded)", n)
			return nil
		},
	}
}
