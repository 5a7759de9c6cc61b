// Package cli implements storefrontctl, the admin command line for a
// running storefront. Every command goes through the same edit session a
// browser would use, over the HTTP remote client.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AtRiskMedia/storefront-go/internal/sync/session"
	"github.com/spf13/cobra"
)

var (
	// ErrUsage marks a malformed command line.
	ErrUsage = errors.New("usage")
	// errFailed is returned after the failure was already reported as a notice.
	errFailed = errors.New("command failed")

	errNotSignedIn = errors.New("not signed in; run `storefrontctl login` first")
)

// Options are the global flags. Values set here are the flag defaults.
type Options struct {
	ConfigPath string
	Endpoint   string
	BaseURL    string
	JSON       bool
	Verbose    bool
	// Clipboard overrides the OS clipboard used by `share --copy`.
	Clipboard session.Clipboard

	Stdout io.Writer
	Stderr io.Writer
}

// runner owns one invocation: the parsed global flags and the lazily
// connected app.
type runner struct {
	opts Options
	app  *app
}

// Run executes one command line.
func Run(ctx context.Context, opts Options, args []string) error {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	r := &runner{opts: opts}
	defer r.close()

	rootCmd := r.rootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(opts.Stdout)
	rootCmd.SetErr(opts.Stderr)
	return rootCmd.ExecuteContext(ctx)
}

func (r *runner) rootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "storefrontctl",
		Short: "Edit a running storefront from the terminal",
		Long: `storefrontctl signs in to a storefront server and edits its content,
products and website settings through the same sync layer the browser uses.`,
		Args:          usageArgs(cobra.NoArgs),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.SetFlagErrorFunc(usageError)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&r.opts.ConfigPath, "config", r.opts.ConfigPath, "config file (default ~/.config/storefront/config.toml)")
	pf.StringVar(&r.opts.Endpoint, "endpoint", r.opts.Endpoint, "storefront server URL, overrides the config file")
	pf.StringVar(&r.opts.BaseURL, "base-url", r.opts.BaseURL, "public storefront URL for share links")
	pf.BoolVar(&r.opts.JSON, "json", r.opts.JSON, "print JSON instead of text")
	pf.BoolVarP(&r.opts.Verbose, "verbose", "v", r.opts.Verbose, "debug logging on stderr")

	rootCmd.AddCommand(
		r.loginCommand(),
		r.logoutCommand(),
		r.signupCommand(),
		r.whoamiCommand(),
		r.contentCommand(),
		r.settingsCommand(),
		r.redirectCommand(),
		r.productsCommand(),
		r.importCommand(),
		r.templateCommand(),
		r.imageCommand(),
		r.shareCommand(),
		r.watchCommand(),
	)
	return rootCmd
}

// groupCommand is a verb that only holds subcommands.
func groupCommand(use, short string, subs ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(subs...)
	return cmd
}

// with connects to the server before handing off to fn.
func (r *runner) with(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if r.app == nil {
			a, err := newApp(cmd.Context(), r.opts)
			if err != nil {
				return err
			}
			r.app = a
		}
		return fn(cmd.Context(), r.app, args)
	}
}

func (r *runner) close() {
	if r.app != nil {
		r.app.close()
	}
}

func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return usageError(cmd, err)
		}
		return nil
	}
}

// usageError prints the command's usage and tags err as ErrUsage.
func usageError(cmd *cobra.Command, err error) error {
	cmd.PrintErrln(cmd.UsageString())
	return fmt.Errorf("%w: %v", ErrUsage, err)
}
