package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"conti/internal/services"
	"conti/internal/sheets"
	gsheet "conti/internal/sheets/google"
	"conti/internal/sheets/memory"
)

var (
	exportQuery string
	exportSort  string
	exportDesc  bool
	exportDry   bool
)

var exportCmd = &cobra.Command{
	Use:   "export <file|url>",
	Short: "Append the filtered, sorted list to a Google spreadsheet",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportQuery, "query", "q", "", "Filter text")
	exportCmd.Flags().StringVarP(&exportSort, "sort", "s", "", "Field to sort by")
	exportCmd.Flags().BoolVar(&exportDesc, "desc", false, "Sort descending")
	exportCmd.Flags().BoolVar(&exportDry, "dry-run", false, "Print what would be exported instead of writing to the spreadsheet")
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := newApp(os.Stderr)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	list, _, err := a.openList(ctx, args[0], services.Deps{Logger: a.logger, Values: services.NewValueCache()})
	if err != nil {
		return err
	}
	if err := arrange(list, exportQuery, exportSort, exportDesc); err != nil {
		return err
	}

	if exportDry {
		store := memory.New(a.cfg.GoogleSheetName)
		res, err := exportView(ctx, store, list)
		if err != nil {
			return err
		}
		printGrid(cmd.OutOrStdout(), store.Rows())
		fmt.Fprintf(cmd.OutOrStdout(), "would export %d rows to %s\n", res.UpdatedRows, res.Range)
		return nil
	}

	if err := a.cfg.ValidateExport(); err != nil {
		return err
	}
	creds, err := a.cfg.ServiceAccountCredentials()
	if err != nil {
		return err
	}
	exporter, err := gsheet.NewExporter(ctx, a.cfg.GoogleSpreadsheetID, a.cfg.GoogleSheetName, creds, a.logger)
	if err != nil {
		return err
	}
	res, err := exportView(ctx, exporter, list)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported %d rows to %s\n", res.UpdatedRows, res.Range)
	return nil
}

// exportView writes the header labels and the filtered rows in display order.
func exportView(ctx context.Context, exporter sheets.ViewExporter, list *services.RecordList) (sheets.ExportResult, error) {
	header := append([]string{"ID"}, headerLabels(list)...)
	filtered := list.Filtered()
	rows := make([][]string, len(filtered))
	for i, c := range filtered {
		rows[i] = append([]string{c.ID}, rowCells(c, len(header)-1)...)
	}
	return exporter.Export(ctx, header, rows)
}

// printGrid prints exported rows; the first row is the header.
func printGrid(w io.Writer, grid [][]string) {
	if len(grid) == 0 {
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(grid[0]...).
		Rows(grid[1:]...)
	fmt.Fprintln(w, t.Render())
}
