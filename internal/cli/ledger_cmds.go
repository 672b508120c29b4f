package cli

import (
	"fmt"
	"io"
	"os"

	"smartinventory/internal/app"
	"smartinventory/internal/domain/model"
	"smartinventory/internal/usecase"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the products and logs tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// NewContainer が InitSchema まで行う
			return withContainer(cmd.Context(), func(c *app.Container) error {
				fmt.Fprintf(cmd.OutOrStdout(), "schema ready (%s)\n", c.Config.DBDriver)
				return nil
			})
		},
	}
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <products.csv>",
		Short: "Add or update products from a CSV file",
		Long: `Reads a CSV with the columns "Product ID", "Product Name", "Category",
"Stock" and "Reorder Level". Every row is validated before any is saved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			return withContainer(cmd.Context(), func(c *app.Container) error {
				n, err := c.Inventory.ImportProductsCSV(cmd.Context(), f)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d products\n", n)
				return nil
			})
		},
	}
}

func newAdjustCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "adjust <product-id> <in|out>",
		Short:   "Move one unit of a product in or out",
		Example: `  inventory adjust P1 in`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := model.ParseDirection(args[1])
			if err != nil {
				return err
			}

			return withContainer(cmd.Context(), func(c *app.Container) error {
				entry, err := c.Inventory.AdjustStock(cmd.Context(), args[0], dir)
				if err != nil {
					return err
				}
				p, err := c.Inventory.GetProduct(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "log %d: %s %s, stock now %d\n", entry.LogID, p.ID, dir, p.Stock)
				return nil
			})
		},
	}
}

func newLowStockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "low-stock",
		Short: "List products at or below their reorder level",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(c *app.Container) error {
				names, err := c.Inventory.LowStock(cmd.Context())
				if err != nil {
					return err
				}
				for _, n := range names {
					fmt.Fprintln(cmd.OutOrStdout(), n)
				}
				return nil
			})
		},
	}
}

func newExportLogsCmd() *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export-logs",
		Short: "Write the movement log, newest first",
		Example: `  inventory export-logs > logs.csv
  inventory export-logs --format parquet --out logs.parquet`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != usecase.FormatCSV && format != usecase.FormatParquet {
				return fmt.Errorf("--format must be csv or parquet")
			}

			return withContainer(cmd.Context(), func(c *app.Container) error {
				if out == "" {
					return c.Inventory.WriteLogExport(cmd.Context(), format, cmd.OutOrStdout())
				}
				return writeFile(out, func(w io.Writer) error {
					return c.Inventory.WriteLogExport(cmd.Context(), format, w)
				})
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", usecase.FormatCSV, "csv or parquet")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")

	return cmd
}

// writeFile は path に書き出す。Close の失敗（書き込みの取りこぼし）もエラーにする。
func writeFile(path string, write func(w io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	return write(f)
}
