package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"conti/internal/cache"
	"conti/internal/core"
	applog "conti/internal/log"
	"conti/internal/markup"
)

// ErrInert is returned by operations on a list whose regions were not found.
var ErrInert = errors.New("record list is inert")

// ListOptions is the construction configuration of a RecordList.
type ListOptions struct {
	Name     string
	Markup   markup.Options
	PerPage  int
	Endpoint string // base path records are deleted under
}

// Deps are the collaborators of a RecordList. Every field is optional.
type Deps struct {
	Deleter   Deleter
	Journal   DeletionJournal
	Publisher EventPublisher
	Confirmer Confirmer
	Notifier  Notifier
	Logger    *applog.Logger
	// Values memoizes cell value inference across refreshes.
	Values *cache.LRUCache[core.Value]
}

// NewValueCache returns a value cache sized for a few thousand distinct cells.
func NewValueCache() *cache.LRUCache[core.Value] {
	return cache.NewLRUCache[core.Value](4096, 30*time.Minute)
}

// RecordList is the controller of one rendered record list: it filters,
// sorts, paginates, inserts and deletes rows, and projects the result back
// into the document after every change.
//
// It is not safe for concurrent use. Mutations happen on the UI loop; only
// Deletion.Do may run elsewhere.
type RecordList struct {
	name     string
	endpoint string
	binding  *markup.Binding
	list     *core.List
	deps     Deps
	logger   *applog.Logger
	err      error

	sorted   *core.SortKey
	inFlight map[string]bool
}

// NewRecordList binds a list to doc. When a required region is missing the
// error is logged as a configuration error and the returned list is inert:
// every operation is a no-op.
func NewRecordList(doc *markup.Document, opts ListOptions, deps Deps) *RecordList {
	logger := deps.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	r := &RecordList{
		name:     opts.Name,
		endpoint: opts.Endpoint,
		deps:     deps,
		logger:   logger.WithComponent(applog.ComponentList).With(applog.FieldList, opts.Name),
		inFlight: make(map[string]bool),
	}

	b, err := markup.Bind(doc, opts.Markup)
	if err != nil {
		r.err = fmt.Errorf("bind list %s: %w", opts.Name, err)
		fields := applog.NewFields().
			WithError(err).
			WithErrorType(applog.ErrorTypeConfiguration).
			WithOperation(applog.OpBind)
		var re *markup.RegionError
		if errors.As(err, &re) {
			fields[applog.FieldMissing] = strings.Join(re.Missing, ", ")
		}
		r.logger.Error("One or more required elements not found", fields.ToSlice()...)
		return r
	}
	r.binding = b

	r.list = core.NewList(b.Rescan(), b.Columns(), opts.PerPage, r.parseValue)
	r.RenderPage()
	if strings.TrimSpace(b.Query()) != "" {
		r.ApplyFilter(b.Query())
	}
	return r
}

func (r *RecordList) parseValue(raw string) core.Value {
	if r.deps.Values == nil {
		return core.ParseValue(raw)
	}
	return r.deps.Values.GetOrCompute(raw, func() core.Value { return core.ParseValue(raw) })
}

// Inert reports whether the list failed to bind.
func (r *RecordList) Inert() bool { return r.binding == nil }

// Err returns the binding error of an inert list.
func (r *RecordList) Err() error { return r.err }

// Name returns the configured list name.
func (r *RecordList) Name() string { return r.name }

// Endpoint returns the base path records are deleted under.
func (r *RecordList) Endpoint() string { return r.endpoint }

// Headers returns the sortable headers in order.
func (r *RecordList) Headers() []markup.Header {
	if r.Inert() {
		return nil
	}
	return r.binding.Headers()
}

// ApplyFilter keeps the records whose text contains query, case-insensitively,
// and goes back to page 1.
func (r *RecordList) ApplyFilter(query string) {
	if r.Inert() {
		return
	}
	r.list.ApplyFilter(query)
	r.sorted = nil
	r.RenderPage()
	r.logger.Debug("Filter applied",
		applog.FieldOperation, applog.OpFilter, applog.FieldQuery, query,
		"matches", r.list.Page().Total)
}

// HandleHeaderClick sorts the filtered records by field in the field's current
// direction, then flips it. An unmapped field is reported and ignored.
func (r *RecordList) HandleHeaderClick(field string) error {
	if r.Inert() {
		return ErrInert
	}
	key, err := r.list.SortBy(field)
	if err != nil {
		r.logger.Warn("Field not found in mapping",
			applog.NewFields().
				WithField(applog.FieldField, field).
				WithError(err).
				WithErrorType(applog.ErrorTypeMapping).
				WithOperation(applog.OpSort).
				ToSlice()...)
		return err
	}
	r.sorted = &key
	r.RenderPage()
	return nil
}

// SortedBy returns the most recent sort, or nil.
func (r *RecordList) SortedBy() *core.SortKey {
	if r.sorted == nil {
		return nil
	}
	k := *r.sorted
	return &k
}

// RenderPage projects the current page into the document.
func (r *RecordList) RenderPage() {
	if r.Inert() {
		return
	}
	r.binding.Project(markup.View{
		Cards:   r.list.Cards(),
		Page:    r.list.Page(),
		Query:   r.list.State().Query,
		Sorted:  r.sorted,
		NextAsc: r.list.Ascending,
	})
}

// NextPage advances one page when there is one.
func (r *RecordList) NextPage() bool {
	if r.Inert() || !r.list.NextPage() {
		return false
	}
	r.RenderPage()
	return true
}

// PrevPage goes back one page when possible.
func (r *RecordList) PrevPage() bool {
	if r.Inert() || !r.list.PrevPage() {
		return false
	}
	r.RenderPage()
	return true
}

// SetCurrentPage jumps to page. Out-of-range pages are ignored.
func (r *RecordList) SetCurrentPage(page int) error {
	if r.Inert() {
		return ErrInert
	}
	if err := r.list.SetPage(page); err != nil {
		return err
	}
	r.RenderPage()
	return nil
}

// AddCard inserts a rendered row and re-applies the current filter.
func (r *RecordList) AddCard(rowMarkup string) (*core.Card, error) {
	if r.Inert() {
		return nil, ErrInert
	}
	c, err := r.binding.AppendRow(rowMarkup, r.list.Cards())
	if err != nil {
		return nil, fmt.Errorf("add card: %w", err)
	}
	r.list.Add(c)
	r.sorted = nil
	r.RenderPage()
	r.logger.Debug("Card added", applog.FieldOperation, applog.OpAdd, applog.FieldRecordID, c.ID)
	return c, nil
}

// DeleteCard removes a record and its row. It reports whether the record was
// known to the list.
func (r *RecordList) DeleteCard(c *core.Card) bool {
	if r.Inert() || c == nil || !r.list.Delete(c) {
		return false
	}
	r.binding.RemoveRow(c)
	r.RenderPage()
	return true
}

// DeleteCardByID removes the first record with the given identifier.
func (r *RecordList) DeleteCardByID(id string) bool {
	if r.Inert() {
		return false
	}
	c, ok := r.list.Find(id)
	if !ok {
		return false
	}
	return r.DeleteCard(c)
}

// RefreshCards re-reads the rows from the document, keeping the display style
// remembered for rows already known, and re-applies the current filter.
func (r *RecordList) RefreshCards() {
	if r.Inert() {
		return
	}
	known := make(map[any]string)
	for _, c := range r.list.Cards() {
		known[c.Node] = c.OrigDisplay
	}
	cards := r.binding.Rescan()
	for _, c := range cards {
		if d, ok := known[c.Node]; ok {
			c.OrigDisplay = d
		}
	}
	r.list.Replace(cards)
	r.sorted = nil
	r.RenderPage()
	r.logger.Debug("Cards refreshed", applog.FieldOperation, applog.OpRefresh, "count", len(cards))
}

// ReloadFrom moves the rows of a fresh parse of the page into the bound
// document and refreshes.
func (r *RecordList) ReloadFrom(doc *markup.Document) error {
	if r.Inert() {
		return ErrInert
	}
	if _, err := r.binding.ReplaceRows(doc); err != nil {
		return fmt.Errorf("reload %s: %w", r.name, err)
	}
	r.RefreshCards()
	return nil
}

// Restore applies a saved filter/sort/page state.
func (r *RecordList) Restore(st core.State) {
	if r.Inert() {
		return
	}
	r.list.Restore(st)
	r.sorted = nil
	if sorts := r.list.State().Sorts; len(sorts) > 0 {
		k := sorts[len(sorts)-1]
		r.sorted = &k
	}
	r.RenderPage()
}

// State returns the current filter/sort/page state.
func (r *RecordList) State() core.State {
	if r.Inert() {
		return core.State{Page: 1}
	}
	return r.list.State()
}

// Cards returns every record.
func (r *RecordList) Cards() []*core.Card {
	if r.Inert() {
		return nil
	}
	return r.list.Cards()
}

// Filtered returns the filtered records in display order.
func (r *RecordList) Filtered() []*core.Card {
	if r.Inert() {
		return nil
	}
	return r.list.Filtered()
}

// VisibleCards returns the records on the current page.
func (r *RecordList) VisibleCards() []*core.Card {
	if r.Inert() {
		return nil
	}
	return r.list.Visible()
}

// TotalPages returns max(1, ceil(filtered/perPage)).
func (r *RecordList) TotalPages() int {
	if r.Inert() {
		return 1
	}
	return r.list.TotalPages()
}

// CurrentPage returns the 1-based current page.
func (r *RecordList) CurrentPage() int {
	if r.Inert() {
		return 1
	}
	return r.list.CurrentPage()
}

// Status returns the page-status line, e.g. "Page 1 of 2 (7 items)".
func (r *RecordList) Status() string {
	if r.Inert() {
		return ""
	}
	return r.list.Page().Status()
}
