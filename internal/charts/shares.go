package charts

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Shares draws the part each label takes of the total as a stacked strip
// followed by a legend. Negative values count by magnitude.
type Shares struct {
	id     string
	labels []string
	data   []float64

	palette   Palette
	destroyed bool
}

// NewShares builds a share chart. Labels and data are paired by position.
func NewShares(id string, labels []string, data []float64) *Shares {
	n := min(len(labels), len(data))
	return &Shares{id: id, labels: labels[:n], data: data[:n], palette: LightPalette()}
}

func (s *Shares) ID() string { return s.id }

func (s *Shares) SetPalette(p Palette) { s.palette = p }

func (s *Shares) Destroy() { s.destroyed = true }

// Percentages returns each label's share of the total, in percent.
func (s *Shares) Percentages() []float64 {
	total := 0.0
	for _, v := range s.data {
		total += math.Abs(v)
	}
	out := make([]float64, len(s.data))
	if total == 0 {
		return out
	}
	for i, v := range s.data {
		out[i] = math.Abs(v) / total * 100
	}
	return out
}

// Render draws the strip within width columns and one legend line per label.
func (s *Shares) Render(width int) string {
	if s.destroyed {
		return ""
	}
	text := lipgloss.NewStyle().Foreground(s.palette.Text)
	if len(s.data) == 0 {
		return text.Render("(no data)")
	}
	width = max(width, len(s.data))

	pcts := s.Percentages()
	var strip, legend strings.Builder
	used := 0
	for i, p := range pcts {
		seg := lipgloss.NewStyle().Foreground(s.segment(i))
		n := int(math.Round(p / 100 * float64(width)))
		if i == len(pcts)-1 {
			n = width - used
		}
		n = max(min(n, width-used), 0)
		used += n
		strip.WriteString(seg.Render(strings.Repeat("█", n)))
		fmt.Fprintf(&legend, "\n%s %s %5.1f%%", seg.Render("■"), text.Render(s.labels[i]), p)
	}
	return strip.String() + legend.String()
}

func (s *Shares) segment(i int) lipgloss.Color {
	if len(s.palette.Segments) == 0 {
		return s.palette.Line
	}
	return s.palette.Segments[i%len(s.palette.Segments)]
}
