package relations

import (
	"bytes"
	"context"
	"fmt"
	"slices"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/imagehub/pkg/core/record"
)

// Graph is the undirected relation graph of a record set.
type Graph struct {
	adj    map[string]map[string]bool
	labels map[string]string
	kinds  map[[2]string]string
}

// NewGraph builds the graph from the related works of set. Nodes outside set
// appear with their data identifier as label.
func NewGraph(set record.Set) *Graph {
	g := &Graph{
		adj:    make(map[string]map[string]bool),
		labels: make(map[string]string),
		kinds:  make(map[[2]string]string),
	}
	for _, id := range set.IDs() {
		rec := set[id]
		g.addNode(id)
		if rec.Label != "" {
			g.labels[id] = rec.Label
		}
		for _, other := range rec.RelatedIDs() {
			g.addNode(other)
			g.adj[id][other] = true
			g.adj[other][id] = true
			key := edgeKey(id, other)
			if k := rec.RelatedWorks[other].Kind; k != record.KindRelated || g.kinds[key] == "" {
				g.kinds[key] = k
			}
		}
	}
	return g
}

func (g *Graph) addNode(id string) {
	if g.adj[id] == nil {
		g.adj[id] = make(map[string]bool)
	}
}

func edgeKey(a, b string) [2]string {
	if b < a {
		a, b = b, a
	}
	return [2]string{a, b}
}

// Nodes returns every node id in sorted order.
func (g *Graph) Nodes() []string {
	out := make([]string, 0, len(g.adj))
	for id := range g.adj {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Neighbors returns the sorted neighbours of id.
func (g *Graph) Neighbors(id string) []string {
	out := make([]string, 0, len(g.adj[id]))
	for n := range g.adj[id] {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// Edges returns each undirected edge once, as sorted pairs in sorted order.
func (g *Graph) Edges() [][2]string {
	var out [][2]string
	for _, a := range g.Nodes() {
		for _, b := range g.Neighbors(a) {
			if a < b {
				out = append(out, [2]string{a, b})
			}
		}
	}
	return out
}

// ToDOT renders the graph in Graphviz DOT format. Isolated nodes are left
// out; edges are labelled with their relation kind.
func (g *Graph) ToDOT() string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("\n")

	for _, id := range g.Nodes() {
		if len(g.adj[id]) == 0 {
			continue
		}
		label := id
		if l, ok := g.labels[id]; ok {
			label = l + "\n" + id
		}
		fmt.Fprintf(&buf, "  %q [label=%q];\n", id, label)
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -- %q [label=%q];\n", e[0], e[1], g.kinds[e])
	}
	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
