package metadata

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/imagehub/pkg/core/record"
	"github.com/matzehuels/imagehub/pkg/core/xmlpath"
)

// Relation is a direct related-work edge declared by a harvested record.
type Relation struct {
	DataID    string
	Kind      string
	SortOrder int
}

// Result is everything extracted from one harvested record.
type Result struct {
	Relations []Relation

	// Metadata maps display label to language code to value.
	Metadata map[string]map[string]string

	// Display fields, taken from the default language only.
	Label       string
	Attribution string
	Description string
}

// Extract parses one harvested record for dataID and evaluates every
// configured path against it. Edges pointing back at dataID are discarded.
func (e *Extractor) Extract(dataID string, r io.Reader) (*Result, error) {
	doc, err := xmlpath.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("metadata: %s: %w", dataID, err)
	}

	res := &Result{Metadata: make(map[string]map[string]string)}
	res.Relations = e.relations(doc, dataID)

	for _, lang := range e.languages {
		for _, f := range e.fields {
			v, ok := lastValue(f.tpl.Build(e.namespace, lang).Values(doc))
			if !ok {
				continue
			}
			if f.label != "" {
				if res.Metadata[f.label] == nil {
					res.Metadata[f.label] = make(map[string]string)
				}
				res.Metadata[f.label][lang] = v
			}
			if lang != e.language {
				continue
			}
			switch f.key {
			case FieldTitle:
				res.Label = v
			case FieldPublisher:
				res.Attribution = v
			case FieldShortDescription:
				res.Description = v
			}
		}
	}
	return res, nil
}

// lastValue implements the last-wins policy: every match except "n/a"
// overwrites the previous one, so a trailing empty match clears the field.
// Surrounding whitespace is trimmed.
func lastValue(values []string) (string, bool) {
	var out string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == NotAvailable {
			continue
		}
		out = v
	}
	return out, out != ""
}

func (e *Extractor) relations(doc *xmlpath.Document, self string) []Relation {
	ns := doc.Resolve(e.namespace)

	var out []Relation
	for _, set := range e.related.Select(doc) {
		rel := Relation{SortOrder: parseSortOrder(set, ns)}
		for _, child := range set.Elements() {
			switch {
			case child.Named(ns, "relatedWork"):
				descend(child, func(n *xmlpath.Node) {
					if t, ok := n.AttrValue(ns, "type"); ok && t == "oai" {
						if id := strings.TrimSpace(n.Value()); id != "" {
							rel.DataID = id
						}
					}
				})
			case child.Named(ns, "relatedWorkRelType"):
				descend(child, func(n *xmlpath.Node) {
					if n.Named(ns, "conceptID") {
						rel.Kind = kindOf(n.Value())
					}
				})
			}
		}
		if rel.DataID == "" || rel.DataID == self {
			continue
		}
		if rel.Kind == "" {
			rel.Kind = record.KindRelated
		}
		out = append(out, rel)
	}
	return out
}

// kindOf returns the part of a concept identifier after its last slash,
// e.g. "http://purl.org/dc/terms/isPartOf" yields "isPartOf".
func kindOf(conceptID string) string {
	conceptID = strings.TrimSpace(conceptID)
	if i := strings.LastIndexByte(conceptID, '/'); i >= 0 {
		return conceptID[i+1:]
	}
	return conceptID
}

func parseSortOrder(n *xmlpath.Node, ns string) int {
	v, ok := n.AttrValue(ns, "sortorder")
	if !ok {
		return record.DefaultSortOrder
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || i < 1 {
		return record.DefaultSortOrder
	}
	return i
}

func descend(n *xmlpath.Node, fn func(*xmlpath.Node)) {
	for _, c := range n.Elements() {
		fn(c)
		descend(c, fn)
	}
}

// Apply merges res into the record for dataID. Relations are added in
// document order; a later relation to the same work replaces the earlier one
// in place. Related-work refs take image
// identifier and dimensions from the referenced record when it is part of
// set; unknown references keep zero values. Apply reports whether dataID was
// found in set.
//
// Apply must run after every record in set received its dimensions, and
// should run once all harvests completed so that the result does not depend
// on harvest order.
func Apply(set record.Set, dataID string, res *Result) bool {
	rec, ok := set.Get(dataID)
	if !ok || res == nil {
		return false
	}

	for label, values := range res.Metadata {
		for lang, v := range values {
			rec.SetMetadata(label, lang, v)
		}
	}
	if res.Label != "" {
		rec.Label = res.Label
	}
	if res.Attribution != "" {
		rec.Attribution = res.Attribution
	}
	if res.Description != "" {
		rec.Description = res.Description
	}

	for _, rel := range res.Relations {
		if rel.DataID == dataID {
			continue
		}
		rw := record.RelatedWork{Kind: rel.Kind, DataID: rel.DataID, SortOrder: rel.SortOrder}
		if other, ok := set.Get(rel.DataID); ok {
			rw.ImageID = other.ImageID
			rw.Width = other.Width
			rw.Height = other.Height
		}
		rec.SetRelated(rw)
	}
	return true
}
