package cli

import (
	"smartinventory/internal/app"
	"smartinventory/internal/server"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the JSON API",
		Long: `Starts the HTTP API for products, movement logs, scan sessions and recommendations.

Set JWT_SECRET and OPERATOR_PASSWORD_HASH to require an operator login.`,
		Example: `  # Start server on the configured PORT (default 8080)
  inventory serve

  # Start server on custom port
  inventory serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(c *app.Container) error {
				if port != "" {
					c.Config.Port = port
				}

				e, err := c.NewServer(cmd.Context())
				if err != nil {
					return err
				}
				return server.Start(cmd.Context(), e, c.Config.Addr(), c.Logger)
			})
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides PORT)")

	return cmd
}
