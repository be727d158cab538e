package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Veraticus/proposal-desk/internal/cli"
	"github.com/Veraticus/proposal-desk/internal/common"
	"github.com/Veraticus/proposal-desk/internal/config"
	"github.com/Veraticus/proposal-desk/internal/service"
	"github.com/Veraticus/proposal-desk/internal/sheets"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the eligibility catalog",
		Long: `Manage the region, agreement, product and status catalog used by the desk filters.

The catalog is read from Google Sheets (or a CSV export) and kept as a local
snapshot so the desk works offline.`,
	}

	cmd.AddCommand(catalogSyncCmd())
	cmd.AddCommand(catalogListCmd())

	return cmd
}

func catalogSyncCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Replace the local catalog snapshot",
		Example: `  # From the configured spreadsheet
  propostas catalog sync

  # From a CSV export
  propostas catalog sync --file ~/Downloads/convenios.csv`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			rows, source, err := fetchCatalog(ctx, file)
			if err != nil {
				return err
			}

			db, err := openSQLite(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			manager, err := db.NewCheckpointManager()
			if err != nil {
				return fmt.Errorf("failed to create checkpoint manager: %w", err)
			}
			if err := manager.AutoCheckpoint(ctx, "catalog-sync"); err != nil {
				common.LogError(err, "Failed to create checkpoint before catalog sync", nil)
			}

			bar := progressbar.NewOptions(len(rows),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("[cyan][bold]Gravando catálogo...[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(os.Stderr)
				}),
			)

			if err := db.ReplaceCatalog(ctx, rows, func() { _ = bar.Add(1) }); err != nil {
				return fmt.Errorf("failed to store catalog: %w", err)
			}

			common.LogInfo("Catalog synced", common.Fields{"source": source, "rows": len(rows)})
			cmd.Println(cli.FormatSuccess(fmt.Sprintf("Catálogo atualizado: %d linhas de %s", len(rows), source)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "read the catalog from a CSV export instead of Google Sheets")

	return cmd
}

// fetchCatalog reads every catalog row from the CSV file when given, else from
// the configured spreadsheet.
func fetchCatalog(ctx context.Context, file string) ([]service.CatalogRow, string, error) {
	if file != "" {
		idx, err := sheets.LoadCSVFile(config.ExpandPath(file), viper.GetInt("catalog.header_rows"))
		if err != nil {
			return nil, "", err
		}
		return idx.Rows(), file, nil
	}

	cfg, err := config.LoadSheetsConfig()
	if err != nil {
		return nil, "", common.NewUserError(`Google Sheets não configurado. Rode "propostas auth sheets" ou use --file`, err)
	}
	reader, err := sheets.NewReader(ctx, *cfg, slog.Default())
	if err != nil {
		return nil, "", err
	}
	rows, err := reader.Fetch(ctx)
	if err != nil {
		return nil, "", err
	}
	return rows, "planilha " + cfg.SpreadsheetID, nil
}

func catalogListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the catalog as a region tree",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			db, err := openSQLite(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			catalog, err := openCatalog(ctx, db)
			if err != nil {
				return err
			}

			regions, err := catalog.Regions(ctx)
			if err != nil {
				return err
			}
			if len(regions) == 0 {
				cmd.Println(cli.SubtitleStyle.Render("Catálogo vazio."))
				return nil
			}

			for _, region := range regions {
				cmd.Println(cli.FormatTitle(region))
				agreements, err := catalog.Agreements(ctx, region)
				if err != nil {
					return err
				}
				for _, agreement := range agreements {
					cmd.Println("  " + cli.InfoStyle.Render(agreement))
					products, err := catalog.Products(ctx, agreement)
					if err != nil {
						return err
					}
					for _, product := range products {
						status, err := catalog.Status(ctx, agreement, product)
						if err != nil {
							return err
						}
						cmd.Printf("    • %s  %s\n", product, cli.SubtleStyle.Render(status))
					}
				}
			}
			return nil
		},
	}
}
