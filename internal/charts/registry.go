// Package charts renders small terminal charts and keeps them in a registry
// scoped to the view that owns them.
package charts

import (
	"fmt"
	"slices"
	"sync"

	applog "conti/internal/log"
)

// Chart is a themed chart bound to an identifier.
type Chart interface {
	ID() string
	Render(width int) string
	SetPalette(p Palette)
	Destroy()
}

// Registry holds the live charts of one view, keyed by identifier.
type Registry struct {
	mu      sync.Mutex
	charts  map[string]Chart
	palette Palette
	logger  *applog.Logger
}

// NewRegistry creates an empty registry drawing with palette.
func NewRegistry(palette Palette, logger *applog.Logger) *Registry {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Registry{
		charts:  make(map[string]Chart),
		palette: palette,
		logger:  logger.WithComponent(applog.ComponentCharts),
	}
}

// Create registers c, destroying any chart previously registered under the
// same identifier.
func (r *Registry) Create(c Chart) (Chart, error) {
	if c == nil || c.ID() == "" {
		return nil, fmt.Errorf("create chart: empty identifier")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.charts[c.ID()]; ok {
		prev.Destroy()
		r.logger.Debug("Replaced chart", applog.FieldChartID, c.ID())
	}
	c.SetPalette(r.palette)
	r.charts[c.ID()] = c
	return c, nil
}

// Get returns the chart registered under id.
func (r *Registry) Get(id string) (Chart, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.charts[id]
	return c, ok
}

// Teardown destroys and forgets the chart registered under id.
func (r *Registry) Teardown(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.charts[id]
	if !ok {
		return false
	}
	c.Destroy()
	delete(r.charts, id)
	return true
}

// SetPalette re-themes every live chart.
func (r *Registry) SetPalette(p Palette) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.palette = p
	for _, c := range r.charts {
		c.SetPalette(p)
	}
}

// Palette returns the palette new charts are drawn with.
func (r *Registry) Palette() Palette {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.palette
}

// IDs returns the registered identifiers, sorted.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.charts))
	for id := range r.charts {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Close destroys every chart. The registry stays usable.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.charts {
		c.Destroy()
		delete(r.charts, id)
	}
}
