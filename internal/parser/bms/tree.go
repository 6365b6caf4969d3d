package bms

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"collisionos/internal/parser"
)

// node is a generic XML element. Names are lower-cased local names so that
// lookups ignore namespaces and producer casing.
type node struct {
	name     string
	text     string
	attrs    map[string]string
	children []*node
}

func buildTree(content []byte) (*node, error) {
	dec := xml.NewDecoder(bytes.NewReader(content))
	dec.CharsetReader = parser.CharsetReader

	var (
		root  *node
		stack []*node
		texts []*strings.Builder
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{name: strings.ToLower(t.Name.Local)}
			if len(t.Attr) > 0 {
				n.attrs = make(map[string]string, len(t.Attr))
				for _, a := range t.Attr {
					n.attrs[strings.ToLower(a.Name.Local)] = strings.TrimSpace(a.Value)
				}
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New("multiple root elements")
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			}
			stack = append(stack, n)
			texts = append(texts, &strings.Builder{})
		case xml.CharData:
			if len(texts) > 0 {
				texts[len(texts)-1].Write(t)
			}
		case xml.EndElement:
			n := stack[len(stack)-1]
			n.text = strings.TrimSpace(texts[len(texts)-1].String())
			stack = stack[:len(stack)-1]
			texts = texts[:len(texts)-1]
		}
	}

	if root == nil {
		return nil, errors.New("no root element")
	}
	if len(stack) != 0 {
		return nil, errors.New("unexpected end of document")
	}
	return root, nil
}

func (n *node) isLeaf() bool {
	return len(n.children) == 0
}

func (n *node) matches(aliases []string) bool {
	for _, a := range aliases {
		if n.name == a {
			return true
		}
	}
	return false
}

// find returns the first descendant (depth-first, document order) whose name
// matches any alias. Aliases are tried in priority order.
func (n *node) find(aliases ...string) *node {
	if n == nil {
		return nil
	}
	for _, a := range aliases {
		if found := n.findName(lower(a)); found != nil {
			return found
		}
	}
	return nil
}

func (n *node) findName(name string) *node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
		if found := c.findName(name); found != nil {
			return found
		}
	}
	return nil
}

// value returns the text of the first non-empty leaf descendant matching an
// alias, in alias priority order.
func (n *node) value(aliases ...string) string {
	if n == nil {
		return ""
	}
	for _, a := range aliases {
		if v := n.leafText(lower(a)); v != "" {
			return v
		}
	}
	return ""
}

func (n *node) leafText(name string) string {
	for _, c := range n.children {
		if c.name == name && c.isLeaf() && c.text != "" {
			return c.text
		}
		if v := c.leafText(name); v != "" {
			return v
		}
	}
	return ""
}

// collect returns every descendant matching an alias without descending into
// a match, so nested groups are not counted twice.
func (n *node) collect(aliases ...string) []*node {
	names := lowerAll(aliases)
	var out []*node
	var walk func(*node)
	walk = func(cur *node) {
		for _, c := range cur.children {
			if c.matches(names) {
				out = append(out, c)
				continue
			}
			walk(c)
		}
	}
	if n != nil {
		walk(n)
	}
	return out
}

// child returns the first direct child matching an alias.
func (n *node) child(aliases ...string) *node {
	if n == nil {
		return nil
	}
	names := lowerAll(aliases)
	for _, c := range n.children {
		if c.matches(names) {
			return c
		}
	}
	return nil
}

func lower(s string) string {
	return strings.ToLower(s)
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
