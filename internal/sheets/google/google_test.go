package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

func newTestExporter(t *testing.T, h http.HandlerFunc) *Exporter {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	e, err := NewExporterWithService(svc, "sheet-id", "Transazioni 2024", nil)
	if err != nil {
		t.Fatal(err)
	}
	e.now = func() time.Time { return time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC) }
	return e
}

func TestExporter_Export(t *testing.T) {
	var gotPath, gotInput, gotInsert string
	var gotBody gsheet.ValueRange
	e := newTestExporter(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotInput = r.URL.Query().Get("valueInputOption")
		gotInsert = r.URL.Query().Get("insertDataOption")
		b, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(b, &gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"spreadsheetId":"sheet-id","updates":{"updatedRange":"'Transazioni 2024'!A10:C13","updatedRows":4}}`)
	})

	res, err := e.Export(context.Background(),
		[]string{"Data", "Descrizione", "Importo"},
		[][]string{{"2024-01-03", "Coffee", "2,50"}, {"2024-01-09", "Train", "7,10"}})
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(gotPath, "/spreadsheets/sheet-id/values/") || !strings.HasSuffix(gotPath, ":append") {
		t.Fatalf("unexpected path %s", gotPath)
	}
	if !strings.Contains(gotPath, "'Transazioni 2024'!A1") {
		t.Fatalf("range not quoted: %s", gotPath)
	}
	if gotInput != "USER_ENTERED" || gotInsert != "INSERT_ROWS" {
		t.Fatalf("options = %s/%s", gotInput, gotInsert)
	}
	want := [][]any{
		{"Export 2024-01-15 10:00"},
		{"Data", "Descrizione", "Importo"},
		{"2024-01-03", "Coffee", "2,50"},
		{"2024-01-09", "Train", "7,10"},
	}
	if diff := cmp.Diff(want, gotBody.Values); diff != "" {
		t.Fatalf("values (-want +got):\n%s", diff)
	}
	if res.UpdatedRows != 4 || res.Range != "'Transazioni 2024'!A10:C13" {
		t.Fatalf("result = %+v", res)
	}
}

func TestExporter_ExportError(t *testing.T) {
	e := newTestExporter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":{"code":403,"message":"The caller does not have permission"}}`)
	})
	_, err := e.Export(context.Background(), []string{"Data"}, nil)
	if err == nil || !strings.Contains(err.Error(), "permission") {
		t.Fatalf("expected permission error, got %v", err)
	}
}

func TestNewExporterWithService_Validation(t *testing.T) {
	if _, err := NewExporterWithService(nil, " ", "Export", nil); err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := NewExporterWithService(nil, "id", "", nil); err == nil {
		t.Fatal("expected error for missing sheet name")
	}
	if _, err := NewExporter(context.Background(), "id", "Export", nil, nil); err == nil {
		t.Fatal("expected error without credentials")
	}
	e, err := NewExporterWithService(nil, "id", "Export", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Export(context.Background(), []string{"a"}, nil); err == nil {
		t.Fatal("expected error without service")
	}
}

func TestQuoteSheet(t *testing.T) {
	tests := map[string]string{
		"Export":   "Export",
		"My Sheet": "'My Sheet'",
		"Luca's":   "'Luca''s'",
	}
	for in, want := range tests {
		if got := quoteSheet(in); got != want {
			t.Errorf("quoteSheet(%q) = %q, want %q", in, got, want)
		}
	}
}
