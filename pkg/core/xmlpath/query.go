package xmlpath

import (
	"strings"
)

// Query is a qualified path anchored on the descendant axis. Build one with
// [Template.Build].
type Query struct {
	steps []Step
}

// String renders the query in XPath notation, e.g.
// descendant::x:descriptiveMetadata[@xml:lang="nl"]/x:title.
func (q Query) String() string {
	var b strings.Builder
	b.WriteString("descendant::")
	for i, s := range q.steps {
		if i > 0 {
			b.WriteByte('/')
		}
		if s.Attribute {
			b.WriteByte('@')
		}
		writeQName(&b, s.Prefix, s.Name)
		for _, p := range s.Predicates {
			b.WriteByte('[')
			if p.Attribute {
				b.WriteByte('@')
			}
			writeQName(&b, p.Prefix, p.Name)
			if p.HasValue {
				b.WriteString(`="`)
				b.WriteString(p.Value)
				b.WriteByte('"')
			}
			b.WriteByte(']')
		}
	}
	return b.String()
}

func writeQName(b *strings.Builder, prefix, name string) {
	if prefix != "" {
		b.WriteString(prefix)
		b.WriteByte(':')
	}
	b.WriteString(name)
}

// Select evaluates the query against doc and returns the matching nodes in
// document order. The first step matches elements anywhere below the root;
// later steps match children of the previous selection.
func (q Query) Select(doc *Document) []*Node {
	if doc == nil || doc.Root == nil || len(q.steps) == 0 {
		return nil
	}

	var current []*Node
	first := q.steps[0]
	if first.Attribute {
		return nil
	}
	walk(doc.Root, func(n *Node) {
		if matchElement(doc, n, first) {
			current = append(current, n)
		}
	})

	for _, s := range q.steps[1:] {
		var next []*Node
		for _, n := range current {
			if s.Attribute {
				space := doc.Resolve(s.Prefix)
				for _, a := range n.Attr {
					if a.Name.Local == s.Name && a.Name.Space == space {
						next = append(next, &Node{Type: AttributeNode, Space: space, Local: s.Name, Data: a.Value, Parent: n})
					}
				}
				continue
			}
			for _, c := range n.Children {
				if matchElement(doc, c, s) {
					next = append(next, c)
				}
			}
		}
		current = next
		if len(current) == 0 {
			break
		}
	}
	return current
}

// Values returns the string values of the nodes selected by the query.
func (q Query) Values(doc *Document) []string {
	nodes := q.Select(doc)
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Value()
	}
	return out
}

func walk(n *Node, fn func(*Node)) {
	for _, c := range n.Children {
		if c.Type != ElementNode {
			continue
		}
		fn(c)
		walk(c, fn)
	}
}

func matchElement(doc *Document, n *Node, s Step) bool {
	if n.Type != ElementNode || !n.Named(doc.Resolve(s.Prefix), s.Name) {
		return false
	}
	for _, p := range s.Predicates {
		if !matchPredicate(doc, n, p) {
			return false
		}
	}
	return true
}

func matchPredicate(doc *Document, n *Node, p Predicate) bool {
	space := doc.Resolve(p.Prefix)
	if p.Attribute {
		v, ok := n.AttrValue(space, p.Name)
		return ok && (!p.HasValue || v == p.Value)
	}
	for _, c := range n.Children {
		if c.Type == ElementNode && c.Named(space, p.Name) && (!p.HasValue || c.Value() == p.Value) {
			return true
		}
	}
	return false
}
