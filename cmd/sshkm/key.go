package main

import (
	"github.com/spf13/cobra"

	"sshkm/internal/keys"
	"sshkm/internal/models"
	"sshkm/internal/utils"
)

func (a *app) newKeyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage SSH key pairs",
	}
	cmd.AddCommand(a.newKeyGenerateCommand())
	cmd.AddCommand(a.newKeyListCommand())
	cmd.AddCommand(a.newKeyDeleteCommand())
	cmd.AddCommand(a.newKeyRotateCommand())
	return cmd
}

func (a *app) newKeyGenerateCommand() *cobra.Command {
	var opts keys.GenerateOptions
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new key pair with ssh-keygen",
		Args:  argsInput(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Comment == "" {
				opts.Comment = opts.Name
			}
			key, err := a.keyStore().Generate(cmd.Context(), opts)
			if err != nil {
				return err
			}
			a.out.Success("Generated %s key '%s'", key.Algorithm(), key.Name)
			a.out.Field("Private", utils.ContractHome(key.Path, a.settings.Home))
			a.out.Field("Public", utils.ContractHome(key.PublicPath, a.settings.Home))
			a.out.Field("Fingerprint", key.Fingerprint)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Name, "name", "", "Key name (file name in the keys directory)")
	cmd.Flags().StringVar(&opts.Type, "type", keys.DefaultType, "Key type: ed25519|rsa|ecdsa")
	cmd.Flags().StringVar(&opts.Comment, "comment", "", "Key comment (default: the key name)")
	cmd.Flags().BoolVar(&opts.Passphrase, "passphrase", false, "Let ssh-keygen prompt for a passphrase")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func (a *app) newKeyListCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List managed keys",
		Args:  argsInput(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.keyStore().List()
			if err != nil {
				return err
			}
			if asJSON {
				if list == nil {
					list = []models.Key{}
				}
				return a.out.JSON(list)
			}
			if len(list) == 0 {
				a.out.Println("No managed keys in " + utils.ContractHome(a.settings.KeysDir, a.settings.Home))
				return nil
			}
			rows := make([][]string, 0, len(list))
			for _, k := range list {
				rows = append(rows, []string{k.Name, k.Algorithm(), k.Fingerprint, k.Comment})
			}
			a.out.Table([]string{"NAME", "TYPE", "FINGERPRINT", "COMMENT"}, rows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func (a *app) newKeyDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a managed key pair",
		Args:  argsInput(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.keyStore().Delete(args[0]); err != nil {
				return err
			}
			a.out.Success("Deleted key '%s'", args[0])
			return nil
		},
	}
}

func (a *app) newKeyRotateCommand() *cobra.Command {
	var passphrase bool
	cmd := &cobra.Command{
		Use:   "rotate <name>",
		Short: "Replace a key pair with a new one, keeping the old pair as .old",
		Args:  argsInput(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := a.keyStore().Rotate(cmd.Context(), args[0], passphrase)
			if err != nil {
				return err
			}
			a.out.Success("Rotated key '%s'", key.Name)
			a.out.Field("Fingerprint", key.Fingerprint)
			a.out.Field("Previous", utils.ContractHome(key.Path+utils.BackupSuffix, a.settings.Home))
			return nil
		},
	}
	cmd.Flags().BoolVar(&passphrase, "passphrase", false, "Let ssh-keygen prompt for a passphrase")
	return cmd
}
