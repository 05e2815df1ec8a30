package sheets

import "context"

// Ports for outbound adapters.
type (
	// ViewExporter writes a projected record view to a spreadsheet.
	ViewExporter interface {
		Export(ctx context.Context, header []string, rows [][]string) (ExportResult, error)
	}
)

// ExportResult reports where the rows landed.
type ExportResult struct {
	Range       string
	UpdatedRows int64
}
