package core

import (
	"fmt"
	"slices"
	"strings"
)

// SortKey is one applied sort: a field and the direction it was applied with.
type SortKey struct {
	Field string `json:"field"`
	Asc   bool   `json:"asc"`
}

// State is the filter/sort/page state of a record list.
//
// Sorts holds the sorts applied since the last filter, oldest first. Because
// every sort is stable, replaying them in order reproduces sorting an already
// sorted list: earlier keys break ties of later ones.
type State struct {
	Query   string
	Sorts   []SortKey
	Page    int
	PerPage int
}

// Page is the projection of a record list for one page.
type Page struct {
	Items      []*Card
	Number     int
	TotalPages int
	Total      int
}

// Status renders the page-status line.
func (p Page) Status() string {
	return fmt.Sprintf("Page %d of %d (%d items)", p.Number, p.TotalPages, p.Total)
}

// ValueParser turns cell text into a sort key. ParseValue is the default.
type ValueParser func(string) Value

// TotalPages returns max(1, ceil(n/perPage)).
func TotalPages(n, perPage int) int {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	pages := (n + perPage - 1) / perPage
	if pages < 1 {
		return 1
	}
	return pages
}

// Filter returns the subsequence of cards whose text contains query,
// case-insensitively. An empty query keeps every card.
func Filter(cards []*Card, query string) []*Card {
	out := make([]*Card, 0, len(cards))
	q := strings.ToLower(query)
	for _, c := range cards {
		if q == "" || strings.Contains(strings.ToLower(c.Text), q) {
			out = append(out, c)
		}
	}
	return out
}

// Sort stably reorders cards in place by the cell at the field's column.
// Rows missing the cell compare equal to everything.
func Sort(cards []*Card, cols Columns, key SortKey, parse ValueParser) error {
	idx, err := cols.Index(key.Field)
	if err != nil {
		return fmt.Errorf("sort by %q: %w", key.Field, err)
	}
	if parse == nil {
		parse = ParseValue
	}

	type keyed struct {
		card *Card
		val  Value
		ok   bool
	}
	tmp := make([]keyed, len(cards))
	for i, c := range cards {
		raw, ok := c.Cell(idx)
		tmp[i] = keyed{card: c, ok: ok}
		if ok {
			tmp[i].val = parse(raw)
		}
	}
	slices.SortStableFunc(tmp, func(a, b keyed) int {
		if !a.ok || !b.ok {
			return 0
		}
		r := Compare(a.val, b.val)
		if !key.Asc {
			r = -r
		}
		return r
	})
	for i := range tmp {
		cards[i] = tmp[i].card
	}
	return nil
}

// View is the pure projection (records, filter, sort, page) -> visible slice.
// Sort keys naming unmapped fields are skipped. The returned page number is
// clamped into [1, TotalPages].
func View(cards []*Card, cols Columns, st State, parse ValueParser) Page {
	filtered := Arrange(cards, cols, st, parse)

	perPage := st.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	pages := TotalPages(len(filtered), perPage)
	page := clampPage(st.Page, pages)

	start := (page - 1) * perPage
	end := min(start+perPage, len(filtered))
	items := []*Card{}
	if start < end {
		items = filtered[start:end]
	}
	return Page{
		Items:      items,
		Number:     page,
		TotalPages: pages,
		Total:      len(filtered),
	}
}

// Arrange returns the filtered set in its current sort order.
func Arrange(cards []*Card, cols Columns, st State, parse ValueParser) []*Card {
	filtered := Filter(cards, st.Query)
	for _, key := range st.Sorts {
		// Unmapped keys never enter State through List; ignore them here too.
		_ = Sort(filtered, cols, key, parse)
	}
	return filtered
}

func clampPage(page, pages int) int {
	if page < 1 {
		return 1
	}
	if page > pages {
		return pages
	}
	return page
}
