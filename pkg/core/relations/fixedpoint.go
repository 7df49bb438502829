package relations

import "maps"

// Edges is a directed edge set: Edges[a][b] holds when a references b.
type Edges map[string]map[string]bool

// EdgesOf returns the direct edges of set. Every key of set is a known
// node, even without targets; ids that only appear as targets are not.
func EdgesOf(set map[string][]string) Edges {
	e := make(Edges, len(set))
	for a, targets := range set {
		if e[a] == nil {
			e[a] = make(map[string]bool)
		}
		for _, b := range targets {
			e.add(a, b)
		}
	}
	return e
}

func (e Edges) add(a, b string) bool {
	if a == b {
		return false
	}
	if e[a] == nil {
		e[a] = make(map[string]bool)
	}
	if e[a][b] {
		return false
	}
	e[a][b] = true
	return true
}

// Has reports whether a references b.
func (e Edges) Has(a, b string) bool { return e[a][b] }

// FixedPoint closes edges by repeated copying: whenever q references a known
// node p, q receives every reference p has, and p receives a reference back
// to q. Nodes that are not keys of edges are unknown; they never pass
// references on. The loop runs until a full pass changes nothing. It is
// O(N³) per pass and only meant as a reference for [Close].
func FixedPoint(edges Edges) Edges {
	out := make(Edges, len(edges))
	for a, targets := range edges {
		out[a] = maps.Clone(targets)
	}

	for changed := true; changed; {
		changed = false
		for q := range maps.Keys(out) {
			for p := range maps.Keys(out[q]) {
				if _, known := out[p]; !known {
					continue
				}
				if out.add(p, q) {
					changed = true
				}
				for r := range maps.Keys(out[p]) {
					if r != q && out.add(q, r) {
						changed = true
					}
				}
			}
		}
	}
	return out
}
