package memory

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStore_Export(t *testing.T) {
	s := New("")
	ctx := context.Background()

	res, err := s.Export(ctx, []string{"ID", "Date", "Amount"}, [][]string{
		{"1", "2024-01-15", "12,30"},
		{"2", "2024-01-16", "2"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Range != "Export!A1:C3" || res.UpdatedRows != 3 {
		t.Fatalf("first export = %+v", res)
	}

	res, err = s.Export(ctx, []string{"ID"}, [][]string{{"3"}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Range != "Export!A4:A5" || res.UpdatedRows != 2 {
		t.Fatalf("second export = %+v", res)
	}

	want := [][]string{
		{"ID", "Date", "Amount"},
		{"1", "2024-01-15", "12,30"},
		{"2", "2024-01-16", "2"},
		{"ID"},
		{"3"},
	}
	if diff := cmp.Diff(want, s.Rows()); diff != "" {
		t.Errorf("rows (-want +got):\n%s", diff)
	}
}

func TestStore_ExportNeedsHeader(t *testing.T) {
	if _, err := New("Sheet1").Export(context.Background(), nil, nil); err == nil {
		t.Fatal("expected an error without a header")
	}
}

func TestColumn(t *testing.T) {
	tests := map[int]string{1: "A", 3: "C", 26: "Z", 27: "AA", 52: "AZ", 703: "AAA"}
	for n, want := range tests {
		if got := column(n); got != want {
			t.Errorf("column(%d) = %q, want %q", n, got, want)
		}
	}
}
