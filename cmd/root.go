package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/poshell/poshell/core/audit"
	// Importing the builtin package installs the builtin utilities.
	_ "github.com/poshell/poshell/core/builtin"
	"github.com/poshell/poshell/core/config"
	"github.com/poshell/poshell/core/interp"
	"github.com/poshell/poshell/core/parse"
	"github.com/spf13/afero"
)

var (
	cfgPath     string
	flagCommand string
	flagStdin   bool
	flagOptions []string

	// auditSession records executed command lines when the configuration
	// names an audit log.
	auditSession = audit.Discard().NewSession()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "poshell [-c command | script [argument...]]",
	Short: "A POSIX command language interpreter",
	Long: `poshell runs POSIX shell scripts: word expansion, pipelines,
redirections, control flow, and the standard builtin utilities.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "poshell: %v\n", err)
		os.Exit(2)
	}
}

func init() {
	rootCmd.RunE = run
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config path")
	rootCmd.Flags().StringVarP(&flagCommand, "command", "c", "", "read commands from the operand")
	rootCmd.Flags().BoolVarP(&flagStdin, "stdin", "s", false, "read commands from standard input")
	rootCmd.Flags().StringArrayVarP(&flagOptions, "option", "O", nil, "enable a shell option letter (e.g. -O e)")

	// The set builtin's letters as ordinary flags.
	for _, letter := range []struct {
		name  string
		usage string
	}{
		{"e", "exit on command failure"},
		{"u", "treat unset parameters as errors"},
		{"f", "disable pathname expansion"},
		{"x", "trace commands"},
		{"a", "export assigned variables"},
		{"C", "refuse to overwrite files with >"},
		{"v", "echo input as it is read"},
	} {
		rootCmd.Flags().Bool(letter.name, false, letter.usage)
	}
}

func newShell(args []string, interactive bool) (*interp.Shell, error) {
	configuration, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	name := "poshell"
	var positional []string
	if len(args) > 0 {
		name = args[0]
		positional = args[1:]
	}

	sh := interp.New(
		interp.WithParser(parse.Program),
		interp.WithArgs(name, positional),
		interp.WithInteractive(interactive),
	)

	env := sh.Environment()
	for k, v := range configuration.Env {
		env.Set(k, v)
		env.MarkExported(k)
	}
	if _, ok := env.Get("PATH"); !ok {
		env.SetExported("PATH", configuration.DefaultPath)
	}
	if _, ok := env.Get("PS1"); !ok && configuration.Prompt != "" {
		env.Set("PS1", configuration.Prompt)
	}
	if _, ok := env.Get("PS2"); !ok && configuration.ContinuationPrompt != "" {
		env.Set("PS2", configuration.ContinuationPrompt)
	}
	if configuration.Umask != "" {
		if mask, err := strconv.ParseInt(configuration.Umask, 8, 32); err == nil {
			sh.SetUmask(int(mask))
		}
	}

	for _, flag := range []struct {
		name   string
		letter byte
	}{
		{"e", 'e'}, {"u", 'u'}, {"f", 'f'}, {"x", 'x'},
		{"a", 'a'}, {"C", 'C'}, {"v", 'v'},
	} {
		if on, _ := rootCmd.Flags().GetBool(flag.name); on {
			sh.Options().SetLetter(flag.letter, true)
		}
	}
	for _, name := range flagOptions {
		if len(name) == 1 {
			sh.Options().SetLetter(name[0], true)
		} else {
			sh.Options().SetName(name, true)
		}
	}

	if configuration.AuditLog != "" {
		f, err := os.OpenFile(configuration.AuditLog, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("audit log: %w", err)
		}
		auditSession = audit.NewJSONLinesLogger(f).NewSession()
	}

	sigCh := make(chan os.Signal, 8)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGHUP, syscall.SIGTERM,
		syscall.SIGQUIT, syscall.SIGUSR1, syscall.SIGUSR2)
	sh.NotifySignals(sigCh)

	return sh, nil
}

func run(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	switch {
	case flagCommand != "":
		// sh -c command [name [argument...]]
		sh, err := newShell(args, false)
		if err != nil {
			return err
		}
		status := runSource(ctx, sh, flagCommand, "-c")
		sh.RunExitTrap(ctx)
		os.Exit(status)

	case len(args) > 0 && !flagStdin:
		script := args[0]
		data, err := afero.ReadFile(afero.NewOsFs(), script)
		if err != nil {
			return fmt.Errorf("%s: %w", script, err)
		}
		sh, err := newShell(args, false)
		if err != nil {
			return err
		}
		status := runSource(ctx, sh, string(data), script)
		sh.RunExitTrap(ctx)
		os.Exit(status)

	default:
		interactive := isTerminal(os.Stdin)
		sh, err := newShell(args, interactive)
		if err != nil {
			return err
		}
		var status int
		if interactive {
			status = runInteractive(ctx, sh)
		} else {
			status = runScriptStream(ctx, sh, os.Stdin)
		}
		sh.RunExitTrap(ctx)
		os.Exit(status)
	}
	return nil
}

// runSource parses and executes a whole script, reporting its final status.
func runSource(ctx context.Context, sh *interp.Shell, src, name string) int {
	if sh.Options().Verbose {
		fmt.Fprintln(os.Stderr, strings.TrimSuffix(src, "\n"))
	}
	prog, err := parse.Program(src, name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", sh.Name(), err)
		return 2
	}
	status, err := sh.Run(ctx, prog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", sh.Name(), err)
		status = 1
	}
	_ = auditSession.Command(sh.WorkingDirectory(), src, status)
	return status
}
