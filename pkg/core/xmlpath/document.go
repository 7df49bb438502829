package xmlpath

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// XMLNamespace is the URI bound to the reserved xml: prefix.
const XMLNamespace = "http://www.w3.org/XML/1998/namespace"

// NodeType identifies the kind of a [Node].
type NodeType int

const (
	DocumentNode NodeType = iota
	ElementNode
	TextNode
	AttributeNode
)

// Node is an element, text or attribute node of a parsed document.
type Node struct {
	Type NodeType

	// Space is the resolved namespace URI of an element or attribute.
	Space string
	Local string

	// Data holds the character data of text nodes and the value of
	// attribute nodes.
	Data string

	Attr     []xml.Attr
	Parent   *Node
	Children []*Node
}

// Value returns the string value of the node: the concatenated character data
// of all descendant text nodes for elements, Data otherwise.
func (n *Node) Value() string {
	switch n.Type {
	case TextNode, AttributeNode:
		return n.Data
	}
	var b strings.Builder
	n.writeText(&b)
	return b.String()
}

func (n *Node) writeText(b *strings.Builder) {
	for _, c := range n.Children {
		if c.Type == TextNode {
			b.WriteString(c.Data)
		} else if c.Type == ElementNode {
			c.writeText(b)
		}
	}
}

// Named reports whether n is an element or attribute with the given
// namespace URI and local name.
func (n *Node) Named(space, local string) bool {
	return n.Local == local && n.Space == space
}

// AttrValue returns the value of the attribute with the given namespace URI
// and local name.
func (n *Node) AttrValue(space, local string) (string, bool) {
	for _, a := range n.Attr {
		if a.Name.Local == local && a.Name.Space == space {
			return a.Value, true
		}
	}
	return "", false
}

// Elements returns the element children of n.
func (n *Node) Elements() []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Type == ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// Document is a parsed XML document.
type Document struct {
	Root *Node

	// prefixes maps namespace prefixes to URIs. The first declaration of a
	// prefix anywhere in the document wins.
	prefixes map[string]string
}

// Resolve returns the namespace URI bound to prefix. The xml prefix is always
// bound; an empty prefix resolves to no namespace. A prefix the document
// never declares resolves to itself, which is how the decoder records
// elements using an undeclared prefix.
func (d *Document) Resolve(prefix string) string {
	switch prefix {
	case "":
		return ""
	case "xml":
		return XMLNamespace
	}
	if uri, ok := d.prefixes[prefix]; ok {
		return uri
	}
	return prefix
}

// ErrEmptyDocument is returned by [Parse] when the input has no root element.
var ErrEmptyDocument = errors.New("xmlpath: document has no root element")

// Parse reads an XML document into a tree.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	doc := &Document{
		Root:     &Node{Type: DocumentNode},
		prefixes: make(map[string]string),
	}

	cur := doc.Root
	sawRoot := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("xmlpath: parse: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" {
					if _, seen := doc.prefixes[a.Name.Local]; !seen {
						doc.prefixes[a.Name.Local] = a.Value
					}
				}
			}
			n := &Node{
				Type:   ElementNode,
				Space:  t.Name.Space,
				Local:  t.Name.Local,
				Attr:   append([]xml.Attr(nil), t.Attr...),
				Parent: cur,
			}
			cur.Children = append(cur.Children, n)
			cur = n
			sawRoot = true
		case xml.EndElement:
			if cur.Parent != nil {
				cur = cur.Parent
			}
		case xml.CharData:
			if cur.Type == DocumentNode {
				continue
			}
			cur.Children = append(cur.Children, &Node{Type: TextNode, Data: string(t), Parent: cur})
		}
	}

	if !sawRoot {
		return nil, ErrEmptyDocument
	}
	return doc, nil
}
