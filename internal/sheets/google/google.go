package google

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	applog "conti/internal/log"
	ports "conti/internal/sheets"
)

// Ensure interface conformance
var _ ports.ViewExporter = (*Exporter)(nil)

// Exporter appends record views to a sheet of a spreadsheet.
type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *applog.Logger
	now           func() time.Time
}

// NewExporter creates an exporter authenticated with service account credentials.
func NewExporter(ctx context.Context, spreadsheetID, sheetName string, credentialsJSON []byte, logger *applog.Logger) (*Exporter, error) {
	if len(credentialsJSON) == 0 {
		return nil, errors.New("missing service account credentials")
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope),
		goption.WithHTTPClient(newHTTPClientWithPooling()))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewExporterWithService(svc, spreadsheetID, sheetName, logger)
}

// NewExporterWithService wraps an existing Sheets service.
func NewExporterWithService(svc *gsheet.Service, spreadsheetID, sheetName string, logger *applog.Logger) (*Exporter, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if strings.TrimSpace(sheetName) == "" {
		return nil, errors.New("missing GOOGLE_SHEET_NAME")
	}
	if logger == nil {
		logger = applog.Discard()
	}
	return &Exporter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        logger.WithComponent(applog.ComponentSheets),
		now:           time.Now,
	}, nil
}

// newHTTPClientWithPooling creates an HTTP client for the Sheets API with
// connection pooling and keep-alive.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   5,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

// quoteSheet quotes a sheet name for A1 notation when needed.
func quoteSheet(name string) string {
	if strings.ContainsAny(name, " '!") {
		return "'" + strings.ReplaceAll(name, "'", "''") + "'"
	}
	return name
}

// Export appends a title row, the header and the rows after the sheet's data.
func (e *Exporter) Export(ctx context.Context, header []string, rows [][]string) (ports.ExportResult, error) {
	if e.svc == nil {
		return ports.ExportResult{}, errors.New("sheets service not initialized")
	}
	if len(header) == 0 {
		return ports.ExportResult{}, errors.New("export needs a header row")
	}

	values := make([][]any, 0, len(rows)+2)
	values = append(values, []any{"Export " + e.now().Format("2006-01-02 15:04")})
	values = append(values, toRow(header))
	for _, r := range rows {
		values = append(values, toRow(r))
	}

	rng := quoteSheet(e.sheetName) + "!A1"
	resp, err := e.svc.Spreadsheets.Values.Append(e.spreadsheetID, rng, &gsheet.ValueRange{
		MajorDimension: "ROWS",
		Values:         values,
	}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return ports.ExportResult{}, fmt.Errorf("append to %s: %w", rng, err)
	}

	res := ports.ExportResult{Range: rng}
	if resp.Updates != nil {
		res.Range = resp.Updates.UpdatedRange
		res.UpdatedRows = resp.Updates.UpdatedRows
	}
	e.logger.InfoContext(ctx, "View exported",
		applog.FieldOperation, applog.OpExport, "range", res.Range, "rows", len(rows))
	return res, nil
}

func toRow(cells []string) []any {
	out := make([]any, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	return out
}
