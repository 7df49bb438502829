// Package relations closes the related-work graph of a record set.
//
// Direct edges come from harvested metadata and are rarely complete: a
// triptych panel may only name the centre panel, which in turn names both
// wings. After [Close] every connected component of the graph is a clique, so
// each manifest shows every work its component contains.
//
// [Close] treats the edges between records of the set as undirected and
// computes components with union-find. [FixedPoint] is the straightforward edge-copying formulation;
// it is kept as a reference for tests.
package relations

import (
	"slices"

	"github.com/matzehuels/imagehub/pkg/core/record"
)

// Close completes the related works of every record in set.
//
// Components are formed over records of set only: two records that merely
// reference the same unknown id stay unrelated. For each record A and each
// other member B of A's component, A receives a ref to B unless it already
// has one; the ref uses kind [record.KindRelated] and copies image
// identifier, dimensions and sort order from B. A then receives every id
// outside set that some member of its component references, with zero
// values and the default sort order. Existing refs are never replaced and
// no records are created for ids outside set.
//
// Refs are added in sorted id order, members first. Close returns the
// number of refs it added.
func Close(set record.Set) int {
	added := 0
	for _, comp := range Components(set) {
		outside := outsideRefs(set, comp)
		for _, a := range comp {
			rec := set[a]
			for _, b := range comp {
				if b != a && rec.AddRelated(set[b].Basic(record.KindRelated)) {
					added++
				}
			}
			for _, x := range outside {
				if rec.AddRelated(record.RelatedWork{
					Kind:      record.KindRelated,
					DataID:    x,
					SortOrder: record.DefaultSortOrder,
				}) {
					added++
				}
			}
		}
	}
	return added
}

// outsideRefs returns the sorted ids outside set referenced by members of comp.
func outsideRefs(set record.Set, comp []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, id := range comp {
		for _, other := range set[id].RelatedIDs() {
			if _, ok := set[other]; ok || seen[other] {
				continue
			}
			seen[other] = true
			out = append(out, other)
		}
	}
	slices.Sort(out)
	return out
}

// Components returns the connected components of the relation graph of set
// that contain at least two records. Only ids of set take part; edges to
// other ids are ignored. Ids inside a component are sorted, and components
// are ordered by their first id.
func Components(set record.Set) [][]string {
	uf := newUnionFind()
	for _, id := range set.IDs() {
		uf.add(id)
		for _, other := range set[id].RelatedIDs() {
			if _, ok := set[other]; ok {
				uf.union(id, other)
			}
		}
	}

	groups := make(map[string][]string)
	for _, id := range uf.ids() {
		root := uf.find(id)
		groups[root] = append(groups[root], id)
	}

	var out [][]string
	for _, g := range groups {
		if len(g) < 2 {
			continue
		}
		slices.Sort(g)
		out = append(out, g)
	}
	slices.SortFunc(out, func(a, b []string) int {
		switch {
		case a[0] < b[0]:
			return -1
		case a[0] > b[0]:
			return 1
		}
		return 0
	})
	return out
}

type unionFind struct {
	parent map[string]string
	rank   map[string]int
	order  []string
}

func newUnionFind() *unionFind {
	return &unionFind{parent: make(map[string]string), rank: make(map[string]int)}
}

func (u *unionFind) add(x string) {
	if _, ok := u.parent[x]; ok {
		return
	}
	u.parent[x] = x
	u.order = append(u.order, x)
}

func (u *unionFind) find(x string) string {
	u.add(x)
	root := x
	for u.parent[root] != root {
		root = u.parent[root]
	}
	for u.parent[x] != root {
		next := u.parent[x]
		u.parent[x] = root
		x = next
	}
	return root
}

func (u *unionFind) union(a, b string) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	switch {
	case u.rank[ra] < u.rank[rb]:
		u.parent[ra] = rb
	case u.rank[ra] > u.rank[rb]:
		u.parent[rb] = ra
	default:
		u.parent[rb] = ra
		u.rank[ra]++
	}
}

func (u *unionFind) ids() []string { return u.order }
