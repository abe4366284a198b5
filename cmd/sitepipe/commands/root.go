// Package commands implements the CLI commands for sitepipe.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/sitepipe/internal/app"
	"go.trai.ch/sitepipe/internal/build"
)

// CLI represents the command line interface for sitepipe.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
	opts    app.Options
}

// Application represents the application logic interface.
type Application interface {
	Run(ctx context.Context, names []string, opts app.Options) error
	Build(ctx context.Context, opts app.Options) error
	Lint(ctx context.Context, opts app.Options) error
	PostCSS(ctx context.Context, opts app.Options) error
	MinifyScripts(ctx context.Context, opts app.Options) error
	Dev(ctx context.Context, opts app.Options, dev app.DevOptions) error
	Clean(ctx context.Context, opts app.Options) error
	List(w io.Writer, opts app.Options) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	c := &CLI{app: a}

	// Without a subcommand sitepipe behaves like "sitepipe dev".
	dev := c.newDevCmd()
	rootCmd := &cobra.Command{
		Use:           "sitepipe",
		Short:         "An asset pipeline for static sites",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
		RunE:          dev.RunE,
	}
	rootCmd.Flags().AddFlagSet(dev.Flags())

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&c.opts.ConfigPath, "config", "c", "", "Path to sitepipe.yaml (disables discovery)")
	flags.StringVar(&c.opts.Root, "root", "", "Directory to start configuration discovery from")
	flags.BoolVar(&c.opts.CI, "ci", false, "Use plain line-by-line output")
	flags.BoolVar(&c.opts.JSON, "json", false, "Log as JSON and hide stage output")

	c.rootCmd = rootCmd

	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(dev)
	rootCmd.AddCommand(c.newLintCmd())
	rootCmd.AddCommand(c.newPostCSSCmd())
	rootCmd.AddCommand(c.newMinifyScriptsCmd())
	rootCmd.AddCommand(c.newRunCmd())
	rootCmd.AddCommand(c.newListCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
