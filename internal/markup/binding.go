package markup

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"conti/internal/core"
)

// Class names and attributes the record list markup is expected to carry.
const (
	ClassRow       = "table-row"
	ClassSortable  = "sortable"
	ClassIndicator = "sort-indicator"
	ClassLastRow   = "last-row"
	ClassDelete    = "delete-btn"

	AttrID    = "data-id"
	AttrField = "data-field"
	AttrAsc   = "data-asc"
)

// Sort indicator glyphs.
const (
	IndicatorNone = "↕"
	IndicatorAsc  = "↓"
	IndicatorDesc = "↑"
)

var (
	rowSelector       = MustCompile("." + ClassRow)
	sortableSelector  = MustCompile("." + ClassSortable)
	indicatorSelector = MustCompile("." + ClassIndicator)
	deleteSelector    = MustCompile("." + ClassDelete)
)

// Options locates the regions of one record list.
type Options struct {
	Container     string // selector of the element holding the rows
	Header        string // selector of the header row
	SearchInputID string
	PageInfoID    string
}

// RegionError names every region that could not be found.
type RegionError struct {
	Missing []string
}

func (e *RegionError) Error() string {
	return fmt.Sprintf("%s: %s", core.ErrMissingRegion, strings.Join(e.Missing, ", "))
}

func (e *RegionError) Unwrap() error { return core.ErrMissingRegion }

// Header is one sortable column header.
type Header struct {
	Field string
	Label string
	Node  *html.Node
}

// Binding ties a record list to the regions of a document.
type Binding struct {
	doc       *Document
	opts      Options
	container *html.Node
	header    *html.Node
	search    *html.Node
	pageInfo  *html.Node
	headers   []Header
}

// Bind locates the regions described by opts. When any region is missing it
// returns a *RegionError wrapping core.ErrMissingRegion.
func Bind(doc *Document, opts Options) (*Binding, error) {
	b := &Binding{doc: doc, opts: opts}
	var missing []string

	find := func(region, sel string) *html.Node {
		n, err := doc.Query(sel)
		if err != nil || n == nil {
			missing = append(missing, fmt.Sprintf("%s %q", region, sel))
			return nil
		}
		return n
	}
	b.container = find("container", opts.Container)
	b.header = find("header", opts.Header)
	if b.search = doc.ByID(opts.SearchInputID); b.search == nil {
		missing = append(missing, fmt.Sprintf("search input #%s", opts.SearchInputID))
	}
	if b.pageInfo = doc.ByID(opts.PageInfoID); b.pageInfo == nil {
		missing = append(missing, fmt.Sprintf("page info #%s", opts.PageInfoID))
	}
	if len(missing) > 0 {
		return nil, &RegionError{Missing: missing}
	}

	for _, h := range sortableSelector.QueryAll(b.header) {
		b.headers = append(b.headers, Header{
			Field: strings.TrimSpace(Attr(h, AttrField)),
			Label: headerLabel(h),
			Node:  h,
		})
		if _, ok := lookupAttr(h, AttrAsc); !ok {
			SetAttr(h, AttrAsc, "true")
		}
	}
	return b, nil
}

// IsMissingRegion reports whether err came from a missing region.
func IsMissingRegion(err error) bool {
	return errors.Is(err, core.ErrMissingRegion)
}

func headerLabel(h *html.Node) string {
	label := Text(h)
	if ind := indicatorSelector.Query(h); ind != nil {
		label = strings.TrimSpace(strings.TrimSuffix(label, Text(ind)))
	}
	return label
}

// Headers returns the sortable headers in order.
func (b *Binding) Headers() []Header { return b.headers }

// Fields returns the sortable field names in header order.
func (b *Binding) Fields() []string {
	out := make([]string, len(b.headers))
	for i, h := range b.headers {
		out[i] = h.Field
	}
	return out
}

// Columns maps each sortable field to the position of its header among the
// sortable headers; that position is the cell index within a row.
func (b *Binding) Columns() core.Columns {
	return core.NewColumns(b.Fields())
}

// Query returns the current value of the search input.
func (b *Binding) Query() string { return Attr(b.search, "value") }

// Rescan reads the rows currently in the container.
func (b *Binding) Rescan() []*core.Card {
	rows := rowSelector.QueryAll(b.container)
	cards := make([]*core.Card, len(rows))
	for i, r := range rows {
		cards[i] = cardFromRow(r)
	}
	return cards
}

func cardFromRow(row *html.Node) *core.Card {
	children := ElementChildren(row)
	cells := make([]string, len(children))
	for i, c := range children {
		cells[i] = Text(c)
	}
	c := &core.Card{
		ID:          Attr(row, AttrID),
		Cells:       cells,
		Text:        Text(row),
		OrigDisplay: core.DefaultDisplay,
		Node:        row,
	}
	if d := StyleProperty(row, "display"); d != "" && d != "none" {
		c.OrigDisplay = d
	}
	c.DeleteID = c.ID
	if btn := deleteSelector.Query(row); btn != nil {
		if id := Attr(btn, AttrID); id != "" {
			c.DeleteID = id
		}
	}
	return c
}

// rowParent is where visible rows are re-appended: the parent of the existing
// rows, or the container when it holds none.
func (b *Binding) rowParent(cards []*core.Card) *html.Node {
	for _, c := range cards {
		if n, ok := c.Node.(*html.Node); ok && n.Parent != nil {
			return n.Parent
		}
	}
	return b.container
}

// AppendRow parses a row fragment and appends it after the existing rows.
// The fragment must contain an element carrying the row class.
func (b *Binding) AppendRow(markup string, existing []*core.Card) (*core.Card, error) {
	parent := b.rowParent(existing)
	nodes, err := html.ParseFragment(strings.NewReader(markup), parent)
	if err != nil {
		return nil, fmt.Errorf("parse row: %w", err)
	}
	var row *html.Node
	for _, n := range nodes {
		if rowSelector[0].match(n) {
			row = n
		} else if row == nil {
			row = rowSelector.Query(n)
		}
		if row != nil {
			break
		}
	}
	if row == nil {
		return nil, fmt.Errorf("row markup has no .%s element", ClassRow)
	}
	Detach(row)
	parent.AppendChild(row)
	return cardFromRow(row), nil
}

// ReplaceRows swaps the rows of the bound container for the rows of the same
// container in src, typically a fresh parse of the same page. The moved rows
// are detached from src. It returns the number of rows moved in.
func (b *Binding) ReplaceRows(src *Document) (int, error) {
	from, err := src.Query(b.opts.Container)
	if err != nil {
		return 0, err
	}
	if from == nil {
		return 0, &RegionError{Missing: []string{fmt.Sprintf("container %q", b.opts.Container)}}
	}

	old := b.Rescan()
	parent := b.rowParent(old)
	for _, c := range old {
		b.RemoveRow(c)
	}
	rows := rowSelector.QueryAll(from)
	for _, r := range rows {
		Detach(r)
		parent.AppendChild(r)
	}
	return len(rows), nil
}

// RemoveRow detaches the card's row from the document.
func (b *Binding) RemoveRow(c *core.Card) {
	if n, ok := c.Node.(*html.Node); ok {
		Detach(n)
	}
}

// View is what Project writes into the document.
type View struct {
	Cards  []*core.Card // every record, hidden or not
	Page   core.Page
	Query  string
	Sorted *core.SortKey // most recent sort, nil when the order is the record order
	// NextAsc reports the direction the next click on a field will sort.
	NextAsc func(field string) bool
}

// Project writes a view into the document. Projecting the same view twice
// yields the same document.
func (b *Binding) Project(v View) {
	for _, c := range v.Cards {
		if n, ok := c.Node.(*html.Node); ok {
			SetStyleProperty(n, "display", "none")
			SetClass(n, ClassLastRow, false)
		}
	}

	parent := b.rowParent(v.Cards)
	for _, c := range v.Page.Items {
		n, ok := c.Node.(*html.Node)
		if !ok {
			continue
		}
		SetStyleProperty(n, "display", c.Display())
		Detach(n)
		parent.AppendChild(n)
		SetClass(n, ClassLastRow, c.Last)
	}

	SetText(b.pageInfo, v.Page.Status())
	SetAttr(b.search, "value", v.Query)

	for _, h := range b.headers {
		if ind := indicatorSelector.Query(h.Node); ind != nil {
			glyph := IndicatorNone
			if v.Sorted != nil && v.Sorted.Field == h.Field {
				glyph = IndicatorDesc
				if v.Sorted.Asc {
					glyph = IndicatorAsc
				}
			}
			SetText(ind, glyph)
		}
		if v.NextAsc != nil && h.Field != "" {
			SetAttr(h.Node, AttrAsc, fmt.Sprint(v.NextAsc(h.Field)))
		}
	}
}
