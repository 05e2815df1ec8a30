package markup

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Selector is a compiled chain of compound selectors joined by the
// descendant combinator, e.g. "#rules .table tr.table-row[data-id]".
type Selector []compound

type compound struct {
	tag     string
	id      string
	classes []string
	attrs   []attrMatch
}

type attrMatch struct {
	key    string
	val    string
	hasVal bool
}

// Compile parses a selector. Supported forms are tag, #id, .class, [attr],
// [attr=value] and their combinations, separated by whitespace.
func Compile(s string) (Selector, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty selector")
	}
	sel := make(Selector, 0, len(fields))
	for _, f := range fields {
		c, err := compileCompound(f)
		if err != nil {
			return nil, fmt.Errorf("selector %q: %w", s, err)
		}
		sel = append(sel, c)
	}
	return sel, nil
}

// MustCompile is Compile for selectors known at build time.
func MustCompile(s string) Selector {
	sel, err := Compile(s)
	if err != nil {
		panic(err)
	}
	return sel
}

func isIdentByte(b byte) bool {
	return b == '-' || b == '_' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func readIdent(s string, i int) (string, int) {
	j := i
	for j < len(s) && isIdentByte(s[j]) {
		j++
	}
	return s[i:j], j
}

func compileCompound(s string) (compound, error) {
	var c compound
	i := 0
	if s[0] == '*' {
		i = 1
	} else if isIdentByte(s[0]) {
		c.tag, i = readIdent(s, 0)
		c.tag = strings.ToLower(c.tag)
	}
	for i < len(s) {
		switch s[i] {
		case '#', '.':
			kind := s[i]
			name, j := readIdent(s, i+1)
			if name == "" {
				return c, fmt.Errorf("missing name after %q at %d", kind, i)
			}
			if kind == '#' {
				c.id = name
			} else {
				c.classes = append(c.classes, name)
			}
			i = j
		case '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return c, fmt.Errorf("unterminated attribute selector at %d", i)
			}
			body := s[i+1 : i+end]
			am := attrMatch{key: strings.ToLower(body)}
			if k, v, ok := strings.Cut(body, "="); ok {
				am = attrMatch{key: strings.ToLower(k), val: strings.Trim(v, `"'`), hasVal: true}
			}
			if am.key == "" {
				return c, fmt.Errorf("empty attribute selector at %d", i)
			}
			c.attrs = append(c.attrs, am)
			i += end + 1
		default:
			return c, fmt.Errorf("unsupported character %q at %d", s[i], i)
		}
	}
	return c, nil
}

func (c compound) match(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if c.tag != "" && n.Data != c.tag {
		return false
	}
	if c.id != "" && Attr(n, "id") != c.id {
		return false
	}
	for _, cl := range c.classes {
		if !HasClass(n, cl) {
			return false
		}
	}
	for _, a := range c.attrs {
		v, ok := lookupAttr(n, a.key)
		if !ok || (a.hasVal && v != a.val) {
			return false
		}
	}
	return true
}

// Match reports whether n matches the selector.
func (s Selector) Match(n *html.Node) bool {
	if len(s) == 0 || !s[len(s)-1].match(n) {
		return false
	}
	i := len(s) - 2
	for p := n.Parent; p != nil && i >= 0; p = p.Parent {
		if s[i].match(p) {
			i--
		}
	}
	return i < 0
}

// QueryAll returns the descendants of root matching s, in document order.
func (s Selector) QueryAll(root *html.Node) []*html.Node {
	var out []*html.Node
	walk(root, func(n *html.Node) bool {
		if n != root && s.Match(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Query returns the first descendant of root matching s, or nil.
func (s Selector) Query(root *html.Node) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n != root && s.Match(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// walk visits n and its descendants depth-first; fn returning false skips children.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}
