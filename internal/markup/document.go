// Package markup binds record lists to rendered HTML documents.
//
// The rendered markup is the data source: rows, cells, identifiers and
// sortable headers are read from the document, and every render writes the
// current projection back into it.
package markup

import (
	"fmt"
	"io"

	"golang.org/x/net/html"
)

// Document is a parsed HTML page.
type Document struct {
	root *html.Node
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{root: root}, nil
}

// Root returns the document node.
func (d *Document) Root() *html.Node { return d.root }

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	if err := html.Render(w, d.root); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

// Query returns the first element matching sel, or nil.
func (d *Document) Query(sel string) (*html.Node, error) {
	s, err := Compile(sel)
	if err != nil {
		return nil, err
	}
	return s.Query(d.root), nil
}

// QueryAll returns every element matching sel in document order.
func (d *Document) QueryAll(sel string) ([]*html.Node, error) {
	s, err := Compile(sel)
	if err != nil {
		return nil, err
	}
	return s.QueryAll(d.root), nil
}

// ByID returns the first element whose id attribute equals id.
func (d *Document) ByID(id string) *html.Node {
	if id == "" {
		return nil
	}
	return compound{id: id}.first(d.root)
}

func (c compound) first(root *html.Node) *html.Node {
	return Selector{c}.Query(root)
}
