package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	ports "conti/internal/sheets"
)

var _ ports.ViewExporter = (*Store)(nil)

// Store is an in-memory sheet. Exports append to it the way the Google
// adapter appends after a sheet's data.
type Store struct {
	mu    sync.Mutex
	sheet string
	grid  [][]string
}

func New(sheet string) *Store {
	if sheet == "" {
		sheet = "Export"
	}
	return &Store{sheet: sheet}
}

// Export appends the header and the rows and reports the A1 range they took.
func (s *Store) Export(_ context.Context, header []string, rows [][]string) (ports.ExportResult, error) {
	if len(header) == 0 {
		return ports.ExportResult{}, errors.New("export needs a header row")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	first := len(s.grid) + 1
	width := len(header)
	s.grid = append(s.grid, append([]string(nil), header...))
	for _, r := range rows {
		width = max(width, len(r))
		s.grid = append(s.grid, append([]string(nil), r...))
	}
	last := len(s.grid)
	return ports.ExportResult{
		Range:       fmt.Sprintf("%s!A%d:%s%d", s.sheet, first, column(width), last),
		UpdatedRows: int64(last - first + 1),
	}, nil
}

// Rows returns a copy of everything exported so far.
func (s *Store) Rows() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]string, len(s.grid))
	for i, r := range s.grid {
		out[i] = append([]string(nil), r...)
	}
	return out
}

// column converts a 1-based column number to its A1 letters.
func column(n int) string {
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}
