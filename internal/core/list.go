package core

import (
	"fmt"
	"slices"
)

// List owns a record collection and its filter/sort/page state.
// It is not safe for concurrent use; callers serialize access on one loop.
type List struct {
	cards []*Card
	cols  Columns
	asc   map[string]bool
	state State
	parse ValueParser

	// cached projection, rebuilt on every mutation
	page Page
}

// NewList creates a list over cards. perPage <= 0 uses DefaultPerPage.
func NewList(cards []*Card, cols Columns, perPage int, parse ValueParser) *List {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if parse == nil {
		parse = ParseValue
	}
	l := &List{
		cards: slices.Clone(cards),
		cols:  cols,
		asc:   make(map[string]bool),
		state: State{Page: 1, PerPage: perPage},
		parse: parse,
	}
	l.refresh()
	return l
}

// State returns a copy of the current state.
func (l *List) State() State {
	st := l.state
	st.Sorts = slices.Clone(l.state.Sorts)
	return st
}

// Restore replaces query, sorts and page, dropping sort keys for unmapped fields.
func (l *List) Restore(st State) {
	l.state.Query = st.Query
	l.state.Sorts = l.state.Sorts[:0]
	for _, k := range st.Sorts {
		if _, ok := l.cols[k.Field]; ok {
			l.pushSort(k)
			l.asc[k.Field] = !k.Asc
		}
	}
	l.state.Page = st.Page
	l.refresh()
}

// Cards returns every record, filtered or not.
func (l *List) Cards() []*Card { return slices.Clone(l.cards) }

// Columns returns the field mapping.
func (l *List) Columns() Columns { return l.cols }

// Filtered returns the filtered set in its current order.
func (l *List) Filtered() []*Card {
	return Arrange(l.cards, l.cols, l.state, l.parse)
}

// Page returns the projection for the current page.
func (l *List) Page() Page { return l.page }

// Visible returns the records on the current page.
func (l *List) Visible() []*Card { return slices.Clone(l.page.Items) }

// CurrentPage returns the 1-based current page.
func (l *List) CurrentPage() int { return l.page.Number }

// TotalPages returns the number of pages of the filtered set.
func (l *List) TotalPages() int { return l.page.TotalPages }

// Ascending reports the direction the next sort on field will use.
func (l *List) Ascending(field string) bool {
	asc, seen := l.asc[field]
	return !seen || asc
}

// ApplyFilter sets the search text, resets to page 1 and drops the sort order:
// the filtered set is the matching subsequence of all records.
func (l *List) ApplyFilter(query string) {
	l.state.Query = query
	l.state.Sorts = l.state.Sorts[:0]
	l.state.Page = 1
	l.refresh()
}

// SortBy sorts the filtered set by field using the field's direction flag,
// then flips the flag. The first sort on a field is ascending.
// An unmapped field leaves everything unchanged.
func (l *List) SortBy(field string) (SortKey, error) {
	if _, err := l.cols.Index(field); err != nil {
		return SortKey{}, fmt.Errorf("sort by %q: %w", field, err)
	}
	key := SortKey{Field: field, Asc: l.Ascending(field)}
	l.asc[field] = !key.Asc
	l.pushSort(key)
	l.state.Page = 1
	l.refresh()
	return key, nil
}

// pushSort appends key, dropping an earlier key for the same field: the
// newer stable sort makes the older one irrelevant.
func (l *List) pushSort(key SortKey) {
	l.state.Sorts = slices.DeleteFunc(l.state.Sorts, func(k SortKey) bool { return k.Field == key.Field })
	l.state.Sorts = append(l.state.Sorts, key)
}

// NextPage advances one page when possible.
func (l *List) NextPage() bool {
	if l.state.Page >= l.page.TotalPages {
		return false
	}
	l.state.Page = l.page.Number + 1
	l.refresh()
	return true
}

// PrevPage goes back one page when possible.
func (l *List) PrevPage() bool {
	if l.page.Number <= 1 {
		return false
	}
	l.state.Page = l.page.Number - 1
	l.refresh()
	return true
}

// SetPage jumps to page; out-of-range pages are rejected.
func (l *List) SetPage(page int) error {
	if page < 1 || page > l.page.TotalPages {
		return fmt.Errorf("set page %d of %d: %w", page, l.page.TotalPages, ErrInvalidPage)
	}
	l.state.Page = page
	l.refresh()
	return nil
}

// Add appends a record and re-applies the current filter.
func (l *List) Add(c *Card) {
	l.cards = append(l.cards, c)
	l.ApplyFilter(l.state.Query)
}

// Delete removes the record by identity. It reports whether it was present.
// When the current page empties, the page moves back by one.
func (l *List) Delete(c *Card) bool {
	i := slices.Index(l.cards, c)
	if i < 0 {
		return false
	}
	l.cards = slices.Delete(l.cards, i, i+1)
	l.refresh()
	return true
}

// Find returns the first record with the given persisted identifier.
func (l *List) Find(id string) (*Card, bool) {
	if id == "" {
		return nil, false
	}
	for _, c := range l.cards {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// DeleteByID removes the first record with the given persisted identifier.
func (l *List) DeleteByID(id string) (*Card, bool) {
	c, ok := l.Find(id)
	if !ok {
		return nil, false
	}
	return c, l.Delete(c)
}

// Replace swaps the record set (after a rescan) and re-applies the filter.
func (l *List) Replace(cards []*Card) {
	l.cards = slices.Clone(cards)
	l.ApplyFilter(l.state.Query)
}

// refresh recomputes the projection, clamps the page and updates the
// Hidden/Last markers on every record.
func (l *List) refresh() {
	l.page = View(l.cards, l.cols, l.state, l.parse)
	l.state.Page = l.page.Number

	for _, c := range l.cards {
		c.Hidden = true
		c.Last = false
	}
	for i, c := range l.page.Items {
		c.Hidden = false
		c.Last = i == len(l.page.Items)-1
	}
}
