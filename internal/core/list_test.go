package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func ids(cards []*Card) string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return strings.Join(out, ",")
}

// sevenCards returns rows (id, description, amount, date) in unsorted amount order.
func sevenCards() []*Card {
	rows := [][]string{
		{"a", "Rent", "700,00", "2024-01-01"},
		{"b", "Coffee", "2,50", "2024-01-03"},
		{"c", "Groceries", "54,20", "2024-01-02"},
		{"d", "Salary", "1.850,00", "2024-01-27"},
		{"e", "Coffee beans", "12,90", "2024-01-05"},
		{"f", "Train", "7,10", "2024-01-09"},
		{"g", "Books", "31,00", "2024-01-12"},
	}
	cards := make([]*Card, len(rows))
	for i, r := range rows {
		cards[i] = NewCard(r[0], r[1], r[2], r[3])
	}
	return cards
}

func sevenColumns() Columns {
	return NewColumns([]string{"description", "amount", "date"})
}

func TestFilterIsCaseInsensitiveSubstring(t *testing.T) {
	l := NewList(sevenCards(), sevenColumns(), 5, nil)

	cases := []struct {
		query string
		want  string
	}{
		{"", "a,b,c,d,e,f,g"},
		{"coffee", "b,e"},
		{"COFFEE", "b,e"},
		{"2024-01-0", "a,b,c,e,f"},
		{"nothing matches", ""},
	}
	for _, tc := range cases {
		l.ApplyFilter(tc.query)
		if got := ids(l.Filtered()); got != tc.want {
			t.Fatalf("query %q: expected %s, got %s", tc.query, tc.want, got)
		}
		if l.CurrentPage() != 1 {
			t.Fatalf("query %q: expected page 1, got %d", tc.query, l.CurrentPage())
		}
	}
}

func TestSortByNumericFieldPaginates(t *testing.T) {
	l := NewList(sevenCards(), sevenColumns(), 5, nil)
	l.ApplyFilter("")

	key, err := l.SortBy("amount")
	if err != nil {
		t.Fatalf("sort: %v", err)
	}
	if !key.Asc {
		t.Fatalf("first sort should be ascending")
	}
	if got := ids(l.Visible()); got != "b,f,e,g,c" {
		t.Fatalf("page 1 expected b,f,e,g,c, got %s", got)
	}
	if got := l.Page().Status(); got != "Page 1 of 2 (7 items)" {
		t.Fatalf("unexpected status %q", got)
	}
	if !l.NextPage() {
		t.Fatalf("expected to advance")
	}
	if got := ids(l.Visible()); got != "a,d" {
		t.Fatalf("page 2 expected a,d, got %s", got)
	}
	if l.NextPage() {
		t.Fatalf("should not advance past the last page")
	}
	last := l.Visible()[1]
	if !last.Last || l.Visible()[0].Last {
		t.Fatalf("only the last visible row carries the last marker")
	}
	for _, c := range l.Cards() {
		visible := c.ID == "a" || c.ID == "d"
		if c.Hidden == visible {
			t.Fatalf("card %s hidden=%v on page 2", c.ID, c.Hidden)
		}
	}
}

func TestSortTogglesAndIsStable(t *testing.T) {
	cards := []*Card{
		NewCard("1", "x", "10"),
		NewCard("2", "y", "5"),
		NewCard("3", "z", "10"),
		NewCard("4", "w", "5"),
	}
	l := NewList(cards, NewColumns([]string{"name", "amount"}), 10, nil)

	if _, err := l.SortBy("amount"); err != nil {
		t.Fatal(err)
	}
	if got := ids(l.Filtered()); got != "2,4,1,3" {
		t.Fatalf("ascending expected 2,4,1,3, got %s", got)
	}
	key, _ := l.SortBy("amount")
	if key.Asc {
		t.Fatalf("second sort should be descending")
	}
	if got := ids(l.Filtered()); got != "1,3,2,4" {
		t.Fatalf("descending expected 1,3,2,4, got %s", got)
	}
	if !l.Ascending("amount") {
		t.Fatalf("two sorts should restore the ascending flag")
	}
	if len(l.Cards()) != 4 {
		t.Fatalf("sorting must not change membership")
	}
}

func TestSortReplaysPreviousOrderForTies(t *testing.T) {
	cards := []*Card{
		NewCard("1", "b", "1"),
		NewCard("2", "a", "2"),
		NewCard("3", "b", "0"),
		NewCard("4", "a", "1"),
	}
	l := NewList(cards, NewColumns([]string{"name", "amount"}), 10, nil)
	l.SortBy("amount")
	l.SortBy("name")
	// ties on name keep the amount order
	if got := ids(l.Filtered()); got != "4,2,3,1" {
		t.Fatalf("expected 4,2,3,1, got %s", got)
	}
}

func TestSortUnknownFieldIsNoop(t *testing.T) {
	l := NewList(sevenCards(), sevenColumns(), 5, nil)
	before := ids(l.Filtered())
	_, err := l.SortBy("category")
	if !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if got := ids(l.Filtered()); got != before {
		t.Fatalf("order changed: %s -> %s", before, got)
	}
}

func TestPaginationInvariant(t *testing.T) {
	for n := 0; n <= 23; n++ {
		for _, per := range []int{1, 3, 5, 10} {
			cards := make([]*Card, n)
			for i := range cards {
				cards[i] = NewCard(fmt.Sprint(i), fmt.Sprint(i))
			}
			l := NewList(cards, NewColumns([]string{"n"}), per, nil)
			wantPages := max(1, (n+per-1)/per)
			if l.TotalPages() != wantPages {
				t.Fatalf("n=%d per=%d: expected %d pages, got %d", n, per, wantPages, l.TotalPages())
			}
			if err := l.SetPage(wantPages); err != nil {
				t.Fatalf("n=%d per=%d: %v", n, per, err)
			}
			wantLast := n % per
			if wantLast == 0 && n > 0 {
				wantLast = per
			}
			if got := len(l.Visible()); got != wantLast {
				t.Fatalf("n=%d per=%d: last page shows %d, want %d", n, per, got, wantLast)
			}
		}
	}
}

func TestSetPageRejectsOutOfRange(t *testing.T) {
	l := NewList(sevenCards(), sevenColumns(), 5, nil)
	for _, p := range []int{0, 3, -1} {
		if err := l.SetPage(p); !errors.Is(err, ErrInvalidPage) {
			t.Fatalf("page %d: expected ErrInvalidPage, got %v", p, err)
		}
	}
	if l.CurrentPage() != 1 {
		t.Fatalf("rejected page must not move the list")
	}
}

func TestDeleteLastRecordOnLastPageMovesBack(t *testing.T) {
	cards := make([]*Card, 6)
	for i := range cards {
		cards[i] = NewCard(fmt.Sprint(i), fmt.Sprint(i))
	}
	l := NewList(cards, NewColumns([]string{"n"}), 5, nil)
	if err := l.SetPage(2); err != nil {
		t.Fatal(err)
	}
	only := l.Visible()
	if len(only) != 1 {
		t.Fatalf("expected one record on page 2, got %d", len(only))
	}
	if !l.Delete(only[0]) {
		t.Fatalf("delete failed")
	}
	if l.CurrentPage() != 1 || l.TotalPages() != 1 {
		t.Fatalf("expected page 1 of 1, got %d of %d", l.CurrentPage(), l.TotalPages())
	}
	if len(l.Visible()) != 5 {
		t.Fatalf("expected 5 visible, got %d", len(l.Visible()))
	}
}

func TestDeleteByIDAndAdd(t *testing.T) {
	l := NewList(sevenCards(), sevenColumns(), 5, nil)
	l.ApplyFilter("coffee")

	if _, ok := l.DeleteByID("missing"); ok {
		t.Fatalf("unexpected delete of missing id")
	}
	c, ok := l.DeleteByID("b")
	if !ok || c.ID != "b" {
		t.Fatalf("expected to delete b")
	}
	if got := ids(l.Filtered()); got != "e" {
		t.Fatalf("expected e, got %s", got)
	}

	l.Add(NewCard("h", "Coffee machine", "99,00", "2024-02-01"))
	if got := ids(l.Filtered()); got != "e,h" {
		t.Fatalf("added card should match the filter, got %s", got)
	}
	l.Add(NewCard("i", "Insurance", "40,00", "2024-02-02"))
	if got := ids(l.Filtered()); got != "e,h" {
		t.Fatalf("non matching card stays out of the filtered set, got %s", got)
	}
	if len(l.Cards()) != 8 {
		t.Fatalf("expected 8 records, got %d", len(l.Cards()))
	}
}

func TestFilterDropsSortOrder(t *testing.T) {
	l := NewList(sevenCards(), sevenColumns(), 10, nil)
	l.SortBy("amount")
	l.ApplyFilter("")
	if got := ids(l.Filtered()); got != "a,b,c,d,e,f,g" {
		t.Fatalf("filter should restore record order, got %s", got)
	}
	if l.Ascending("amount") {
		t.Fatalf("direction flag survives filtering")
	}
}

func TestRestoreState(t *testing.T) {
	l := NewList(sevenCards(), sevenColumns(), 5, nil)
	l.Restore(State{Query: "o", Sorts: []SortKey{{Field: "amount", Asc: false}, {Field: "nope", Asc: true}}, Page: 9})

	st := l.State()
	if st.Query != "o" || len(st.Sorts) != 1 || st.Sorts[0].Field != "amount" {
		t.Fatalf("unexpected state %+v", st)
	}
	if st.Page != l.TotalPages() {
		t.Fatalf("page should clamp to %d, got %d", l.TotalPages(), st.Page)
	}
	if !l.Ascending("amount") {
		t.Fatalf("restored descending sort leaves the next click ascending")
	}
}
