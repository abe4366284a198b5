package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Clear the output and build every asset, minified",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Build(cmd.Context(), c.opts)
		},
	}
}

func (c *CLI) newLintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint",
		Short: "Validate the built HTML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Lint(cmd.Context(), c.opts)
		},
	}
}

func (c *CLI) newPostCSSCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "postcss",
		Short: "Prefix and minify the compiled stylesheets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.PostCSS(cmd.Context(), c.opts)
		},
	}
}

func (c *CLI) newMinifyScriptsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "minify-scripts",
		Short: "Minify the built scripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.MinifyScripts(cmd.Context(), c.opts)
		},
	}
}
