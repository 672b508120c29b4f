// Package cli は inventory コマンド（cobra）。
package cli

import (
	"context"

	"smartinventory/internal/app"
	"smartinventory/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Smart inventory ledger with camera scanning and emotion-based recommendations",
		Long: `inventory keeps product stock levels and an append-only movement log.

Stock moves by manual adjustments or by camera scan sessions that count detected
objects in. A JSON API exposes the ledger, scanning and catalog recommendations.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newImportCmd(),
		newAdjustCmd(),
		newLowStockCmd(),
		newExportLogsCmd(),
		newHashPasswordCmd(),
	)

	return cmd
}

// withContainer は設定を読み、台帳まで組み立てて fn を実行する。
func withContainer(ctx context.Context, fn func(c *app.Container) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	c, err := app.NewContainer(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Shutdown(context.WithoutCancel(ctx))

	return fn(c)
}
