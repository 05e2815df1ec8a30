package markup

import (
	"strings"

	"golang.org/x/net/html"
)

func lookupAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Attr returns the value of attribute key, or "".
func Attr(n *html.Node, key string) string {
	v, _ := lookupAttr(n, key)
	return v
}

// SetAttr sets attribute key, adding it when missing.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes attribute key.
func RemoveAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace != "" || a.Key != key {
			out = append(out, a)
		}
	}
	n.Attr = out
}

// HasClass reports whether the class attribute contains name.
func HasClass(n *html.Node, name string) bool {
	for _, c := range strings.Fields(Attr(n, "class")) {
		if c == name {
			return true
		}
	}
	return false
}

// SetClass adds or removes name from the class attribute.
func SetClass(n *html.Node, name string, on bool) {
	classes := strings.Fields(Attr(n, "class"))
	out := classes[:0]
	for _, c := range classes {
		if c != name {
			out = append(out, c)
		}
	}
	if on {
		out = append(out, name)
	}
	if len(out) == 0 {
		RemoveAttr(n, "class")
		return
	}
	SetAttr(n, "class", strings.Join(out, " "))
}

// ElementChildren returns the element children of n in order.
func ElementChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

var inline = map[string]bool{
	"a": true, "abbr": true, "b": true, "code": true, "em": true, "i": true,
	"label": true, "small": true, "span": true, "strong": true, "sub": true, "sup": true,
}

// Text returns the rendered text of n with whitespace runs collapsed.
// Block-level boundaries separate words; script and style contents are skipped.
func Text(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		block := n.Type == html.ElementNode && !inline[n.Data]
		if block {
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
		if block {
			b.WriteByte(' ')
		}
	}
	collect(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

// SetText replaces the children of n with a single text node.
func SetText(n *html.Node, s string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: s})
}

// Detach removes n from its parent, if any.
func Detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// StyleProperty returns the value of an inline style property.
func StyleProperty(n *html.Node, prop string) string {
	for _, decl := range strings.Split(Attr(n, "style"), ";") {
		k, v, ok := strings.Cut(decl, ":")
		if ok && strings.EqualFold(strings.TrimSpace(k), prop) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// SetStyleProperty sets an inline style property, keeping the others in order.
func SetStyleProperty(n *html.Node, prop, val string) {
	var decls []string
	found := false
	for _, decl := range strings.Split(Attr(n, "style"), ";") {
		if strings.TrimSpace(decl) == "" {
			continue
		}
		k, _, ok := strings.Cut(decl, ":")
		if ok && strings.EqualFold(strings.TrimSpace(k), prop) {
			if !found {
				decls = append(decls, prop+": "+val)
				found = true
			}
			continue
		}
		decls = append(decls, strings.TrimSpace(decl))
	}
	if !found {
		decls = append(decls, prop+": "+val)
	}
	SetAttr(n, "style", strings.Join(decls, "; "))
}
