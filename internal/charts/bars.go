package charts

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Style overrides the palette colors of a series. Zero fields keep the palette.
type Style struct {
	Color    lipgloss.Color
	Negative lipgloss.Color
}

// Bars is a horizontal bar chart, one bar per label.
type Bars struct {
	id     string
	title  string
	labels []string
	data   []float64
	style  Style

	palette   Palette
	destroyed bool
}

// NewBars builds a bar chart. Labels and data are paired by position; extra
// entries on either side are dropped.
func NewBars(id, title string, labels []string, data []float64, style Style) *Bars {
	n := min(len(labels), len(data))
	return &Bars{
		id:      id,
		title:   title,
		labels:  labels[:n],
		data:    data[:n],
		style:   style,
		palette: LightPalette(),
	}
}

func (b *Bars) ID() string { return b.id }

func (b *Bars) SetPalette(p Palette) { b.palette = p }

// Destroy releases the chart; a destroyed chart renders nothing.
func (b *Bars) Destroy() { b.destroyed = true }

// Destroyed reports whether Destroy was called.
func (b *Bars) Destroyed() bool { return b.destroyed }

// Render draws the chart within width columns.
func (b *Bars) Render(width int) string {
	if b.destroyed {
		return ""
	}
	text := lipgloss.NewStyle().Foreground(b.palette.Text)
	if len(b.data) == 0 {
		return text.Render(b.title + "\n(no data)")
	}

	labelWidth := 0
	valueWidth := 0
	values := make([]string, len(b.data))
	peak := 0.0
	for i, v := range b.data {
		labelWidth = max(labelWidth, lipgloss.Width(b.labels[i]))
		values[i] = formatValue(v)
		valueWidth = max(valueWidth, len(values[i]))
		peak = max(peak, math.Abs(v))
	}
	barWidth := max(width-labelWidth-valueWidth-2, 1)

	pos := lipgloss.NewStyle().Foreground(pick(b.style.Color, b.palette.Line))
	neg := lipgloss.NewStyle().Foreground(pick(b.style.Negative, b.palette.Negative))
	grid := lipgloss.NewStyle().Foreground(b.palette.Grid)

	var sb strings.Builder
	if b.title != "" {
		sb.WriteString(text.Bold(true).Render(b.title))
		sb.WriteByte('\n')
	}
	for i, v := range b.data {
		n := 0
		if peak > 0 {
			n = int(math.Round(math.Abs(v) / peak * float64(barWidth)))
		}
		bar := strings.Repeat("█", n)
		if v < 0 {
			bar = neg.Render(bar)
		} else {
			bar = pos.Render(bar)
		}
		fmt.Fprintf(&sb, "%s %s%s %s\n",
			text.Render(padRight(b.labels[i], labelWidth)),
			bar,
			grid.Render(strings.Repeat("·", barWidth-n)),
			text.Render(fmt.Sprintf("%*s", valueWidth, values[i])))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func pick(c, fallback lipgloss.Color) lipgloss.Color {
	if c == "" {
		return fallback
	}
	return c
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
