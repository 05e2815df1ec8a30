package core

import (
	"errors"
	"strings"
)

// DefaultDisplay is the visible display style assumed for rows without one.
const DefaultDisplay = "grid"

// DefaultPerPage is the page size used when none is configured.
const DefaultPerPage = 5

var (
	ErrUnknownField  = errors.New("field not found in mapping")
	ErrMissingRegion = errors.New("required region not found")
	ErrInvalidPage   = errors.New("page out of range")
)

type (
	// Card is one rendered row of a record list.
	Card struct {
		ID          string   // persisted identifier (row data-id), may be empty
		DeleteID    string   // identifier carried by the row's delete control
		Cells       []string // rendered text per column, in order
		Text        string   // full rendered text of the row
		OrigDisplay string   // remembered visible display style
		Hidden      bool
		Last        bool

		// Node is the rendering handle owned by the markup layer.
		Node any
	}

	// Columns maps logical field names to positional cell indexes.
	Columns map[string]int
)

// NewCard builds a card from its cells. Text is the cells joined by a tab,
// the way a rendered row reads back.
func NewCard(id string, cells ...string) *Card {
	return &Card{
		ID:          id,
		DeleteID:    id,
		Cells:       cells,
		Text:        strings.Join(cells, "\t"),
		OrigDisplay: DefaultDisplay,
	}
}

// Cell returns the text at index, or false when the row has no such cell.
func (c *Card) Cell(index int) (string, bool) {
	if index < 0 || index >= len(c.Cells) {
		return "", false
	}
	return c.Cells[index], true
}

// Display returns the style the row should carry in its current state.
func (c *Card) Display() string {
	if c.Hidden {
		return "none"
	}
	if c.OrigDisplay == "" || c.OrigDisplay == "none" {
		return DefaultDisplay
	}
	return c.OrigDisplay
}

// NewColumns maps field names to their position. Empty names are skipped but
// still take up a position; the first occurrence of a name wins.
func NewColumns(fields []string) Columns {
	cols := make(Columns, len(fields))
	for i, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if _, dup := cols[f]; dup {
			continue
		}
		cols[f] = i
	}
	return cols
}

// Index resolves a field name to a column index.
func (c Columns) Index(field string) (int, error) {
	idx, ok := c[field]
	if !ok {
		return 0, ErrUnknownField
	}
	return idx, nil
}
