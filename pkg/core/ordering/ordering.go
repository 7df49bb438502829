// Package ordering places the canvases of a manifest.
//
// Every canvas starts at its declared sort order. When the slot is taken it
// moves to the next free one, so declared hints decide relative order and
// collisions never drop a canvas. The emitted index is always dense: the K
// canvases of a manifest are numbered 1..K.
package ordering

import (
	"slices"

	"github.com/matzehuels/imagehub/pkg/core/record"
)

// Entry is one placed canvas.
type Entry struct {
	DataID  string
	ImageID string
	Kind    string // empty for the record itself
	Width   int
	Height  int

	// Position is the slot after collision resolution; Index is the dense
	// 1-based presentation index.
	Position int
	Index    int
}

// Order places the record itself, then its extra images in catalog order,
// then its related works in the order they were added to the record
// (declared refs in document order, closure refs after them). Placement
// order decides which entry keeps a contested slot. The result is sorted by
// position and holds 1 + len(RelatedWorks) + len(Extra) entries.
func Order(rec *record.Record) []Entry {
	taken := make(map[int]bool)
	entries := make([]Entry, 0, 1+len(rec.RelatedWorks)+len(rec.Extra))

	place := func(e Entry, hint int) {
		pos := max(hint, record.DefaultSortOrder)
		for taken[pos] {
			pos++
		}
		taken[pos] = true
		e.Position = pos
		entries = append(entries, e)
	}

	place(Entry{
		DataID:  rec.DataID,
		ImageID: rec.ImageID,
		Width:   rec.Width,
		Height:  rec.Height,
	}, rec.SortOrder)

	for _, rw := range rec.Extra {
		place(fromRelated(rw), rw.SortOrder)
	}
	for _, id := range rec.RelatedIDs() {
		place(fromRelated(rec.RelatedWorks[id]), rec.RelatedWorks[id].SortOrder)
	}

	slices.SortFunc(entries, func(a, b Entry) int { return a.Position - b.Position })
	for i := range entries {
		entries[i].Index = i + 1
	}
	return entries
}

func fromRelated(rw record.RelatedWork) Entry {
	return Entry{
		DataID:  rw.DataID,
		ImageID: rw.ImageID,
		Kind:    rw.Kind,
		Width:   rw.Width,
		Height:  rw.Height,
	}
}
