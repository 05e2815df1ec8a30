// Package tui is the interactive record browser: one bubbletea loop driving
// a services.RecordList.
package tui

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"conti/internal/charts"
	"conti/internal/core"
	applog "conti/internal/log"
	"conti/internal/markup"
	"conti/internal/services"
)

// ChartID identifies the page chart in the chart registry.
const ChartID = "page-values"

// ChartMode is the chart shown under the table.
type ChartMode int

const (
	ChartOff ChartMode = iota
	ChartBars
	ChartShares
)

// Board collects the messages surfaced by the record list. It implements
// services.Notifier.
type Board struct {
	mu  sync.Mutex
	msg string
}

// NewBoard returns an empty board.
func NewBoard() *Board { return &Board{} }

// Notify replaces the current message.
func (b *Board) Notify(message string) {
	b.mu.Lock()
	b.msg = message
	b.mu.Unlock()
}

// Message returns the current message.
func (b *Board) Message() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.msg
}

// Clear drops the current message.
func (b *Board) Clear() { b.Notify("") }

// Options configures a Model.
type Options struct {
	Title  string
	Board  *Board
	Charts *charts.Registry
	Logger *applog.Logger

	// Reload re-reads the source page; nil disables refresh.
	Reload func(ctx context.Context) (*markup.Document, error)
	// Changes delivers a value whenever the source changed on disk.
	Changes <-chan struct{}
	// SaveState is called with the final view state on quit.
	SaveState func(ctx context.Context, st core.State) error

	ValueField string // sortable field charted with 'c'; empty picks the last numeric one
	LabelField string // field labelling the bars; empty picks the first text one
}

type (
	deleteDoneMsg struct {
		d   *services.Deletion
		err error
	}
	sourceChangedMsg struct{}
	reloadedMsg      struct {
		doc *markup.Document
		err error
	}
)

// Model is the bubbletea model of the browser.
type Model struct {
	ctx    context.Context
	list   *services.RecordList
	opts   Options
	keys   KeyMap
	help   help.Model
	search textinput.Model
	styles Styles
	logger *applog.Logger

	cursor     int
	confirming *core.Card
	chart      ChartMode
	width      int
	height     int
	quitting   bool
}

// New builds the browser around list.
func New(ctx context.Context, list *services.RecordList, opts Options) *Model {
	if opts.Board == nil {
		opts.Board = NewBoard()
	}
	if opts.Charts == nil {
		opts.Charts = charts.NewRegistry(charts.LightPalette(), opts.Logger)
	}
	logger := opts.Logger
	if logger == nil {
		logger = applog.Discard()
	}

	search := textinput.New()
	search.Placeholder = "filtra..."
	search.Prompt = "/ "
	search.CharLimit = 256
	search.SetValue(list.State().Query)

	return &Model{
		ctx:    ctx,
		list:   list,
		opts:   opts,
		keys:   DefaultKeyMap(),
		help:   help.New(),
		search: search,
		styles: NewStyles(opts.Charts.Palette()),
		logger: logger.WithComponent(applog.ComponentTUI),
		width:  80,
	}
}

// Init starts listening for source changes.
func (m *Model) Init() tea.Cmd {
	return m.waitForChange()
}

func (m *Model) waitForChange() tea.Cmd {
	if m.opts.Changes == nil {
		return nil
	}
	ch := m.opts.Changes
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return sourceChangedMsg{}
	}
}

func (m *Model) reload() tea.Cmd {
	if m.opts.Reload == nil {
		return nil
	}
	ctx, reload := m.ctx, m.opts.Reload
	return func() tea.Msg {
		doc, err := reload(ctx)
		return reloadedMsg{doc: doc, err: err}
	}
}

// Update handles one message on the loop.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case deleteDoneMsg:
		if err := m.list.CompleteDelete(m.ctx, msg.d, msg.err); err == nil {
			m.opts.Board.Clear()
		}
		m.clampCursor()
		return m, nil

	case sourceChangedMsg:
		return m, tea.Batch(m.reload(), m.waitForChange())

	case reloadedMsg:
		if msg.err != nil {
			m.logger.Warn("Reload failed", applog.FieldError, msg.err)
			m.opts.Board.Notify(msg.err.Error())
			return m, nil
		}
		if err := m.list.ReloadFrom(msg.doc); err != nil {
			m.opts.Board.Notify(err.Error())
		}
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirming != nil {
		return m.handleConfirm(msg)
	}

	if m.search.Focused() {
		switch msg.Type {
		case tea.KeyEsc, tea.KeyEnter:
			m.search.Blur()
			return m, nil
		case tea.KeyCtrlC:
			return m.quit()
		}
		var cmd tea.Cmd
		before := m.search.Value()
		m.search, cmd = m.search.Update(msg)
		if m.search.Value() != before {
			m.list.ApplyFilter(m.search.Value())
			m.cursor = 0
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Search):
		m.search.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Sort):
		m.sortColumn(int(msg.Runes[0] - '1'))
	case key.Matches(msg, m.keys.Next):
		if m.list.NextPage() {
			m.cursor = 0
		}
	case key.Matches(msg, m.keys.Prev):
		if m.list.PrevPage() {
			m.cursor = 0
		}
	case key.Matches(msg, m.keys.Down):
		m.cursor++
		m.clampCursor()
	case key.Matches(msg, m.keys.Up):
		m.cursor--
		m.clampCursor()
	case key.Matches(msg, m.keys.Delete):
		if c := m.selected(); c != nil {
			m.confirming = c
		}
	case key.Matches(msg, m.keys.Refresh):
		if cmd := m.reload(); cmd != nil {
			return m, cmd
		}
		m.list.RefreshCards()
		m.clampCursor()
	case key.Matches(msg, m.keys.Chart):
		m.chart = (m.chart + 1) % 3
		if m.chart == ChartOff {
			m.opts.Charts.Teardown(ChartID)
		}
	case key.Matches(msg, m.keys.Theme):
		p := charts.DarkPalette()
		if m.opts.Charts.Palette().Name == charts.ThemeDark {
			p = charts.LightPalette()
		}
		m.opts.Charts.SetPalette(p)
		m.styles = NewStyles(p)
	}
	return m, nil
}

func (m *Model) handleConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		card := m.confirming
		m.confirming = nil
		d, err := m.list.BeginDelete(m.ctx, card)
		if err != nil {
			if !errors.Is(err, services.ErrDeleteInFlight) {
				m.opts.Board.Notify(err.Error())
			}
			return m, nil
		}
		ctx := m.ctx
		return m, func() tea.Msg {
			return deleteDoneMsg{d: d, err: d.Do(ctx)}
		}
	case key.Matches(msg, m.keys.Cancel):
		m.confirming = nil
	}
	return m, nil
}

func (m *Model) sortColumn(i int) {
	headers := m.list.Headers()
	if i < 0 || i >= len(headers) {
		return
	}
	if err := m.list.HandleHeaderClick(headers[i].Field); err == nil {
		m.cursor = 0
	}
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	if m.opts.SaveState != nil {
		if err := m.opts.SaveState(m.ctx, m.list.State()); err != nil {
			m.logger.Warn("Failed to save view state", applog.FieldError, err)
		}
	}
	m.opts.Charts.Close()
	return m, tea.Quit
}

// Chart returns the chart mode currently shown.
func (m *Model) Chart() ChartMode { return m.chart }

func (m *Model) selected() *core.Card {
	visible := m.list.VisibleCards()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return nil
	}
	return visible[m.cursor]
}

func (m *Model) clampCursor() {
	n := len(m.list.VisibleCards())
	m.cursor = max(min(m.cursor, n-1), 0)
}
