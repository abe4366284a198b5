package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/sitepipe/internal/app"
	"go.trai.ch/sitepipe/internal/core/domain"
)

func (c *CLI) newDevCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Build, serve the output and rebuild on change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			var dev app.DevOptions

			// Only flags given on the command line override the configuration.
			if flags.Changed("host") {
				host, _ := flags.GetString("host")
				dev.Host = &host
			}
			if flags.Changed("port") {
				port, _ := flags.GetInt("port")
				dev.Port = &port
			}
			if flags.Changed("debounce") {
				debounce, _ := flags.GetDuration("debounce")
				dev.Debounce = &debounce
			}
			dev.Open, _ = flags.GetBool("open")

			return c.app.Dev(cmd.Context(), c.opts, dev)
		},
	}
	cmd.Flags().String("host", domain.DefaultHost, "Address the dev server listens on")
	cmd.Flags().IntP("port", "p", domain.DefaultPort, "Port the dev server listens on")
	cmd.Flags().BoolP("open", "o", false, "Open the site in a browser once serving")
	cmd.Flags().Duration("debounce", 0, "Quiet period before a change triggers a rebuild")
	return cmd
}
