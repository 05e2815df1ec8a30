package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeLists(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lists.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadLists_Default(t *testing.T) {
	cfg := &Config{PageSize: 5, RecordEndpoint: "/transactions"}
	lists, err := cfg.LoadLists()
	if err != nil {
		t.Fatal(err)
	}
	want := []ListDefinition{{
		Name:           "transactions",
		Container:      ".table",
		Header:         ".table-header",
		SearchInputID:  "search",
		PageInfoID:     "page-info",
		PageSize:       5,
		RecordEndpoint: "/transactions",
	}}
	if diff := cmp.Diff(want, lists); diff != "" {
		t.Fatalf("lists mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadLists_FromYAML(t *testing.T) {
	path := writeLists(t, `
lists:
  - name: transactions
  - name: rules
    container: "#rules .table"
    page_size: 10
    endpoint: /rules
`)
	cfg := &Config{PageSize: 5, RecordEndpoint: "/transactions", ListsFile: path}
	lists, err := cfg.LoadLists()
	if err != nil {
		t.Fatal(err)
	}
	if len(lists) != 2 {
		t.Fatalf("expected 2 lists, got %d", len(lists))
	}
	rules, err := FindList(lists, "rules")
	if err != nil {
		t.Fatal(err)
	}
	if rules.Container != "#rules .table" || rules.PageSize != 10 || rules.RecordEndpoint != "/rules" {
		t.Fatalf("unexpected rules list %+v", rules)
	}
	if rules.Header != ".table-header" || rules.SearchInputID != "search" {
		t.Fatalf("defaults not applied: %+v", rules)
	}
	first, _ := FindList(lists, "")
	if first.Name != "transactions" {
		t.Fatalf("expected first list, got %s", first.Name)
	}
	if _, err := FindList(lists, "budgets"); err == nil {
		t.Fatal("expected unknown list error")
	}
}

func TestLoadLists_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty", "lists: []\n", "defines no lists"},
		{"duplicate", "lists:\n  - name: a\n  - name: a\n", "duplicate list name 'a'"},
		{"bad page size", "lists:\n  - name: a\n    page_size: -2\n", "invalid page size -2"},
		{"bad search id", "lists:\n  - name: a\n    search_input: \"#search\"\n", "invalid search input id"},
		{"missing name", "lists:\n  - container: .x\n", "list name cannot be empty"},
		{"not yaml", "lists: [", "parse lists file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{PageSize: 5, RecordEndpoint: "/transactions", ListsFile: writeLists(t, tt.body)}
			_, err := cfg.LoadLists()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
