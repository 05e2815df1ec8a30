package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"conti/internal/api"
	"conti/internal/core"
	applog "conti/internal/log"
	"conti/internal/markup"
	"conti/internal/services"
	"conti/internal/sheets/memory"
	"conti/internal/storage"
)

func fixtureList(t *testing.T) *services.RecordList {
	t.Helper()
	f, err := os.Open("../../internal/markup/testdata/transactions.html")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	doc, err := markup.Parse(f)
	if err != nil {
		t.Fatal(err)
	}
	return services.NewRecordList(doc, services.ListOptions{
		Name: "transactions",
		Markup: markup.Options{
			Container:     ".table",
			Header:        ".table-header",
			SearchInputID: "search",
			PageInfoID:    "page-info",
		},
		PerPage: 5,
	}, services.Deps{})
}

func TestParseChoices(t *testing.T) {
	got, err := parseChoices([]string{"12=3", " 14 = 5 "})
	if err != nil {
		t.Fatal(err)
	}
	want := []api.ConflictResolution{{TransactionID: 12, RuleID: 3}, {TransactionID: 14, RuleID: 5}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parseChoices mismatch (-want +got):\n%s", diff)
	}

	for _, bad := range []string{"12", "x=3", "12=y"} {
		if _, err := parseChoices([]string{bad}); err == nil {
			t.Errorf("parseChoices(%q) should fail", bad)
		}
	}
}

func TestArrange(t *testing.T) {
	list := fixtureList(t)
	if err := arrange(list, "co", "amount", true); err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, c := range list.VisibleCards() {
		ids = append(ids, c.ID)
	}
	// Coffee beans before Coffee
	if diff := cmp.Diff([]string{"5", "2"}, ids); diff != "" {
		t.Errorf("arranged (-want +got):\n%s", diff)
	}
	if err := arrange(fixtureList(t), "", "nope", false); err == nil {
		t.Error("unknown sort field should fail")
	}
}

func TestPrintJSON(t *testing.T) {
	list := fixtureList(t)
	list.ApplyFilter("train")

	var buf bytes.Buffer
	if err := printJSON(&buf, list); err != nil {
		t.Fatal(err)
	}
	var got pageJSON
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Total != 1 || got.Page != 1 || got.Query != "train" {
		t.Errorf("page = %+v", got)
	}
	want := []map[string]string{{"id": "6", "date": "2024-01-09", "description": "Train", "amount": "7,10"}}
	if diff := cmp.Diff(want, got.Records); diff != "" {
		t.Errorf("records (-want +got):\n%s", diff)
	}
}

func TestPrintTable(t *testing.T) {
	list := fixtureList(t)
	var buf bytes.Buffer
	printTable(&buf, list, list.VisibleCards())
	out := buf.String()
	for _, want := range []string{"Importo", "Rent", "1.850,00"} {
		if !strings.Contains(out, want) {
			t.Errorf("table lacks %q:\n%s", want, out)
		}
	}
}

func TestPromptConfirmer(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Si\n", true},
		{"\n", false},
		{"no\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		p := promptConfirmer{in: bufio.NewReader(strings.NewReader(tt.input)), out: &out}
		if got := p.Confirm(context.Background(), services.ConfirmDeleteMessage); got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if !strings.Contains(out.String(), services.ConfirmDeleteMessage) {
			t.Errorf("prompt = %q", out.String())
		}
	}
}

func TestChange(t *testing.T) {
	if got := change("a", "a"); got != "a" {
		t.Errorf("change(a, a) = %q", got)
	}
	if got := change("a", "b"); got != "a → b" {
		t.Errorf("change(a, b) = %q", got)
	}
}

func TestNewApp_ClosesLogFileOnFailure(t *testing.T) {
	tests := []struct {
		name      string
		pageSize  string
		list      string
		wantErr   bool
		wantClose int
	}{
		{name: "invalid configuration", pageSize: "0", wantErr: true, wantClose: 1},
		{name: "unknown list", pageSize: "5", list: "budgets", wantErr: true, wantClose: 1},
		{name: "success keeps the log open", pageSize: "5", wantClose: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			t.Setenv("CONTI_LOG_FILE", filepath.Join(dir, "conti.log"))
			t.Setenv("CONTI_DB_PATH", filepath.Join(dir, "conti.db"))
			t.Setenv("CONTI_PAGE_SIZE", tt.pageSize)
			t.Setenv("CONTI_LISTS_FILE", "")

			closed := 0
			orig := openLogOutput
			openLogOutput = func(path string, fallback io.Writer) (io.Writer, func() error, error) {
				return io.Discard, func() error { closed++; return nil }, nil
			}
			origList := listName
			listName = tt.list
			t.Cleanup(func() {
				openLogOutput = orig
				listName = origList
			})

			a, err := newApp(io.Discard)
			if (err != nil) != tt.wantErr {
				t.Fatalf("newApp() error = %v, wantErr %v", err, tt.wantErr)
			}
			if closed != tt.wantClose {
				t.Fatalf("log closed %d times, want %d", closed, tt.wantClose)
			}
			if a != nil {
				a.close()
				if closed != 1 {
					t.Fatalf("close() closed the log %d times, want 1", closed)
				}
			}
		})
	}
}

func TestRestoreView(t *testing.T) {
	ctx := context.Background()
	saved := core.State{Query: "coffee", Sorts: []core.SortKey{{Field: "amount", Asc: false}}, Page: 2}

	tests := []struct {
		name        string
		fresh       bool
		wantRestore bool
		wantKept    bool
	}{
		{name: "restores the saved state", wantRestore: true, wantKept: true},
		{name: "fresh forgets the saved state", fresh: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "conti.db"), nil)
			if err != nil {
				t.Fatal(err)
			}
			defer repo.Close()
			if err := repo.SaveViewState(ctx, "transactions", saved); err != nil {
				t.Fatal(err)
			}

			var restored *core.State
			restoreView(ctx, applog.Discard(), repo, func(st core.State) { restored = &st }, "transactions", tt.fresh)

			if (restored != nil) != tt.wantRestore {
				t.Fatalf("restored = %+v, want restore %v", restored, tt.wantRestore)
			}
			if restored != nil && (restored.Query != "coffee" || restored.Page != 2) {
				t.Errorf("restored = %+v", restored)
			}
			_, err = repo.LoadViewState(ctx, "transactions")
			if kept := err == nil; kept != tt.wantKept {
				t.Errorf("state kept = %v (err %v), want %v", kept, err, tt.wantKept)
			}
			if !tt.wantKept && !errors.Is(err, storage.ErrNotFound) {
				t.Errorf("err = %v, want storage.ErrNotFound", err)
			}
		})
	}
}

func TestExportView_DryRun(t *testing.T) {
	list := fixtureList(t)
	if err := arrange(list, "co", "amount", true); err != nil {
		t.Fatal(err)
	}
	store := memory.New("Export")

	res, err := exportView(context.Background(), store, list)
	if err != nil {
		t.Fatal(err)
	}
	if res.UpdatedRows != 3 {
		t.Errorf("UpdatedRows = %d, want 3", res.UpdatedRows)
	}

	grid := store.Rows()
	var ids []string
	for _, r := range grid[1:] {
		ids = append(ids, r[0])
	}
	if grid[0][0] != "ID" {
		t.Errorf("header = %v", grid[0])
	}
	if diff := cmp.Diff([]string{"5", "2"}, ids); diff != "" {
		t.Errorf("exported ids (-want +got):\n%s", diff)
	}

	var buf bytes.Buffer
	printGrid(&buf, grid)
	if !strings.Contains(buf.String(), "ID") {
		t.Errorf("printed grid:\n%s", buf.String())
	}
}
