package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"sshkm/internal/config"
	"sshkm/internal/models"
	"sshkm/internal/sshconfig"
	"sshkm/internal/utils"
	"sshkm/internal/validate"
)

func (a *app) newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Generate and inspect the managed ssh config",
	}
	cmd.AddCommand(a.newConfigGenerateCommand())
	cmd.AddCommand(a.newConfigValidateCommand())
	cmd.AddCommand(a.newConfigDiffCommand())
	cmd.AddCommand(a.newConfigPathCommand())
	return cmd
}

func (a *app) renderOptions() sshconfig.RenderOptions {
	return sshconfig.RenderOptions{KeysDir: a.settings.KeysDir, Home: a.settings.Home}
}

// loadChecked loads the inventory and the known key names and validates
// one against the other.
func (a *app) loadChecked() (*config.Manager, []validate.Violation, error) {
	m, err := a.inventory(false)
	if err != nil {
		return nil, nil, err
	}
	known, err := a.keyStore().Names()
	if err != nil {
		return nil, nil, err
	}
	return m, validate.Validate(m.Inventory(), known), nil
}

func (a *app) newConfigGenerateCommand() *cobra.Command {
	var (
		opts   sshconfig.ApplyOptions
		output string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the inventory into the managed block of the ssh config",
		Args:  argsInput(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, violations, err := a.loadChecked()
			if err != nil {
				return err
			}
			if err := validate.Errors(violations); err != nil {
				return err
			}

			target := a.settings.SSHConfig
			if output != "" {
				target = utils.ExpandHome(output, a.settings.Home)
			}
			rendered := sshconfig.Render(m.Inventory(), a.renderOptions())

			res, err := a.reconciler().Apply(target, rendered, opts)
			if err != nil {
				return err
			}
			if res.DryRun {
				return nil
			}

			if res.Changed {
				a.out.Success("Wrote %s to %s", hostCount(m.Inventory()), res.Path)
			} else {
				a.out.Success("%s is up to date (%s)", res.Path, hostCount(m.Inventory()))
			}
			if res.BackupPath != "" {
				a.out.Field("Backup", res.BackupPath)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Print the managed block without writing anything")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of the configured ssh config")
	cmd.Flags().BoolVar(&opts.NoBackup, "no-backup", false, "Do not copy the existing file to <file>.old first")
	return cmd
}

func (a *app) newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that every referenced key exists and the inventory is consistent",
		Args:  argsInput(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, violations, err := a.loadChecked()
			if err != nil {
				return err
			}
			if err := validate.Errors(violations); err != nil {
				return err
			}
			a.out.Success("Inventory is valid (%s)", hostCount(m.Inventory()))
			return nil
		},
	}
}

func (a *app) newConfigDiffCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "diff",
		Short: "Show what config generate would change in the managed block",
		Args:  argsInput(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, violations, err := a.loadChecked()
			if err != nil {
				return err
			}
			for _, v := range violations {
				a.out.Warn("%s", v.Error())
			}

			d, err := a.reconciler().Diff(a.settings.SSHConfig, sshconfig.Render(m.Inventory(), a.renderOptions()))
			if err != nil {
				return err
			}
			if d.Empty() {
				a.out.Println("No changes: " + d.Path + " is up to date")
				return nil
			}
			switch {
			case !d.FileExists:
				a.out.Println(d.Path + " does not exist yet; generate will create it")
			case !d.BlockExists:
				a.out.Println(d.Path + " has no managed block yet; generate will append one")
			}
			a.out.Diff(d.Unified())
			return nil
		},
	}
}

func (a *app) newConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the location of the host inventory file",
		Args:  argsInput(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.out.Println(a.settings.HostsFile)
			return nil
		},
	}
}

func hostCount(inv *models.Inventory) string {
	if len(inv.Hosts) == 1 {
		return "1 host"
	}
	return strconv.Itoa(len(inv.Hosts)) + " hosts"
}
