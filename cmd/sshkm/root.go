package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"sshkm/internal/agent"
	"sshkm/internal/config"
	apperr "sshkm/internal/error"
	"sshkm/internal/execx"
	"sshkm/internal/keys"
	"sshkm/internal/log"
	"sshkm/internal/sshconfig"
	"sshkm/internal/ui"
)

// Build-time variables
var (
	version = "dev"
	commit  = "none"
)

// app carries the streams and resolved settings shared by every command.
// home and runner are left empty in production and set by tests.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	home   string
	runner execx.Runner

	settings config.Settings
	log      zerolog.Logger
	out      *ui.Printer
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		log:    zerolog.Nop(),
		out:    ui.NewPrinter(stdout, stderr),
	}
}

// run is the main entry point; it returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	return newApp(stdin, stdout, stderr).execute(args)
}

func (a *app) execute(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := a.newRootCommand()
	root.SetArgs(args)
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		a.out.Error(err)
		return int(apperr.ExitCodeForErr(normalizeErr(err)))
	}
	return int(apperr.ExitOK)
}

func (a *app) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "sshkm",
		Short:         "Manage SSH keys, a host inventory and the generated ssh config",
		Version:       version + " (" + commit + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.configure(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String("hosts-file", "", "Host inventory file (default ~/.config/sshkm/hosts.toml)")
	flags.String("keys-dir", "", "Directory holding managed key pairs (default ~/.ssh)")
	flags.String("ssh-config", "", "SSH client config to manage (default ~/.ssh/config)")
	flags.String("log-level", "", "Log level: debug|info|warn|error (default warn)")

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return apperr.InvalidInput(err.Error())
	})

	root.AddCommand(a.newKeyCommand())
	root.AddCommand(a.newHostCommand())
	root.AddCommand(a.newConfigCommand())
	root.AddCommand(a.newAgentCommand())
	return root
}

// configure resolves settings with flag > SSHKM_* env > default
// precedence and builds the logger.
func (a *app) configure(cmd *cobra.Command) error {
	home := a.home
	if home == "" {
		h, err := config.HomeDir()
		if err != nil {
			return err
		}
		home = h
	}

	v := config.NewViper(home)
	if err := bindFlags(v, cmd); err != nil {
		return err
	}
	s, err := config.Resolve(v, home)
	if err != nil {
		return err
	}
	a.settings = s

	logger, err := log.New(a.stderr, s.LogLevel)
	if err != nil {
		return apperr.InvalidInput("log level: " + err.Error())
	}
	a.log = logger
	if a.runner == nil {
		sys := execx.NewSystem(logger)
		sys.Stdin, sys.Stdout, sys.Stderr = a.stdin, a.stdout, a.stderr
		a.runner = sys
	}
	a.log.Debug().
		Str("hosts_file", s.HostsFile).
		Str("keys_dir", s.KeysDir).
		Str("ssh_config", s.SSHConfig).
		Msg("settings resolved")
	return nil
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for key, flag := range map[string]string{
		config.KeyHostsFile: "hosts-file",
		config.KeyKeysDir:   "keys-dir",
		config.KeySSHConfig: "ssh-config",
		config.KeyLogLevel:  "log-level",
	} {
		f := cmd.Flags().Lookup(flag)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return apperr.InvalidInput(err.Error())
		}
	}
	return nil
}

func (a *app) inventory(allowMissing bool) (*config.Manager, error) {
	m := config.NewManager(a.settings.HostsFile)
	if err := m.Load(allowMissing); err != nil {
		return nil, err
	}
	return m, nil
}

func (a *app) keyStore() *keys.Store {
	return keys.NewStore(a.settings.KeysDir, a.runner, a.log)
}

func (a *app) agent() *agent.Agent {
	return agent.New(a.runner, a.log)
}

func (a *app) reconciler() *sshconfig.Reconciler {
	return sshconfig.NewReconciler(a.stdout, a.log)
}

// interactive reports whether prompts can be shown: stdin must be a
// terminal.
func (a *app) interactive() bool {
	f, ok := a.stdin.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// normalizeErr maps untyped errors (cobra argument checks, unknown
// commands) to the input category so they exit with the usage code.
func normalizeErr(err error) error {
	var v apperr.Violations
	if errors.As(err, &v) {
		return err
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	return apperr.InvalidInput(err.Error())
}

// argsInput wraps a cobra positional-args check so failures are input
// errors.
func argsInput(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return apperr.InvalidInput(err.Error())
		}
		return nil
	}
}
