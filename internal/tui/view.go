package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"conti/internal/charts"
	"conti/internal/core"
	"conti/internal/markup"
	"conti/internal/services"
)

// View renders the browser.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	var sb strings.Builder

	title := m.opts.Title
	if title == "" {
		title = m.list.Name()
	}
	sb.WriteString(m.styles.Title.Render(title))
	sb.WriteByte('\n')
	sb.WriteString(m.search.View())
	sb.WriteString("\n\n")
	sb.WriteString(m.renderTable())
	sb.WriteByte('\n')
	sb.WriteString(m.styles.Status.Render(m.list.Status()))
	sb.WriteByte('\n')

	if m.chart != ChartOff {
		if chart := m.renderChart(); chart != "" {
			sb.WriteByte('\n')
			sb.WriteString(chart)
			sb.WriteByte('\n')
		}
	}
	if m.confirming != nil {
		sb.WriteByte('\n')
		sb.WriteString(m.styles.Prompt.Render(services.ConfirmDeleteMessage + " (y/n)"))
		sb.WriteByte('\n')
	}
	if msg := m.opts.Board.Message(); msg != "" {
		sb.WriteByte('\n')
		sb.WriteString(m.styles.Notice.Render(msg))
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}

func (m *Model) renderTable() string {
	headers := m.list.Headers()
	visible := m.list.VisibleCards()
	sorted := m.list.SortedBy()

	cols := make([][]string, len(headers))
	for i, h := range headers {
		glyph := markup.IndicatorNone
		if sorted != nil && sorted.Field == h.Field {
			glyph = markup.IndicatorDesc
			if sorted.Asc {
				glyph = markup.IndicatorAsc
			}
		}
		label := fmt.Sprintf("%d %s %s", i+1, h.Label, glyph)
		cells := []string{m.styles.Header.Render(label)}
		for r, c := range visible {
			text, _ := c.Cell(i)
			style := m.styles.Cell
			if r == m.cursor {
				style = m.styles.Selected
			}
			cells = append(cells, style.Render(text))
		}
		cols[i] = cells
	}

	marks := []string{"  "}
	for r, c := range visible {
		mark := "  "
		switch {
		case m.list.Deleting(c.DeleteID):
			mark = "… "
		case r == m.cursor:
			mark = "> "
		}
		marks = append(marks, mark)
	}

	blocks := []string{lipgloss.JoinVertical(lipgloss.Left, marks...)}
	for _, c := range cols {
		blocks = append(blocks, lipgloss.JoinVertical(lipgloss.Left, c...))
	}
	if len(visible) == 0 {
		return lipgloss.JoinHorizontal(lipgloss.Top, blocks...) + "\n" + m.styles.Muted.Render("  nessun risultato")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, blocks...)
}

func (m *Model) renderChart() string {
	labels, data, field := chartSeries(m.list.Headers(), m.list.VisibleCards(), m.opts.ValueField, m.opts.LabelField)
	if field == "" {
		return m.styles.Muted.Render("nessuna colonna numerica")
	}
	var c charts.Chart = charts.NewBars(ChartID, field, labels, data, charts.Style{})
	if m.chart == ChartShares {
		c = charts.NewShares(ChartID, labels, data)
	}
	chart, err := m.opts.Charts.Create(c)
	if err != nil {
		return ""
	}
	return chart.Render(max(m.width-2, 20))
}

// chartSeries picks the charted column and reads it from cards. The value
// column is valueField or the last column whose cells are all numbers; the
// label column is labelField or the first column holding text.
func chartSeries(headers []markup.Header, cards []*core.Card, valueField, labelField string) ([]string, []float64, string) {
	index := func(field string) int {
		for i, h := range headers {
			if h.Field == field {
				return i
			}
		}
		return -1
	}
	kinds := func(i int) (numeric, text bool) {
		numeric = len(cards) > 0
		for _, c := range cards {
			raw, _ := c.Cell(i)
			switch core.ParseValue(raw).Kind {
			case core.KindNumber:
			case core.KindText:
				numeric, text = false, true
			default:
				numeric = false
			}
		}
		return numeric, text
	}

	vi := index(valueField)
	if valueField == "" {
		for i := len(headers) - 1; i >= 0; i-- {
			if numeric, _ := kinds(i); numeric {
				vi = i
				break
			}
		}
	}
	if vi < 0 {
		return nil, nil, ""
	}
	li := index(labelField)
	if labelField == "" {
		for i := range headers {
			if _, text := kinds(i); text && i != vi {
				li = i
				break
			}
		}
	}

	labels := make([]string, len(cards))
	data := make([]float64, len(cards))
	for r, c := range cards {
		raw, _ := c.Cell(vi)
		data[r] = core.ParseValue(raw).Num
		labels[r] = c.ID
		if li >= 0 {
			labels[r], _ = c.Cell(li)
		}
	}
	return labels, data, headers[vi].Field
}
