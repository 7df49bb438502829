// Package record defines the working data model shared by every stage of a
// manifest generation run.
//
// A [Record] is created per catalog work (keyed by its data identifier),
// annotated with pixel dimensions, enriched with harvested metadata and
// relation edges, and finally turned into a manifest. A [Set] holds all
// records of one run.
package record

import (
	"slices"
	"strings"
)

// Relation kinds that are not taken from the harvested metadata.
const (
	// KindRelatedTo marks an additional catalog image of the same work.
	KindRelatedTo = "relatedto"

	// KindRelated marks an edge that exists only through relation closure, or
	// a declared edge whose relation type could not be resolved.
	KindRelated = "related"
)

// DefaultSortOrder is the position hint used when none is declared.
const DefaultSortOrder = 1

// RelatedWork carries enough information about a related work to place a
// canvas for it without fetching the related record again.
type RelatedWork struct {
	Kind      string `json:"kind"`
	DataID    string `json:"data_id"`
	ImageID   string `json:"image_id"`
	SortOrder int    `json:"sort_order"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// Record is one catalog work and everything collected about it.
//
// Metadata maps a display label to language code to value. RelatedWorks is
// keyed by the related data identifier and never contains the record's own
// identifier; additional images of the same work live in Extra. The order in
// which refs were added is kept separately and reported by [Record.RelatedIDs],
// since canvas placement depends on it.
type Record struct {
	DataID      string `json:"data_id"`
	ManifestID  string `json:"manifest_id"`
	ImageID     string `json:"image_id"`
	Label       string `json:"label"`
	Attribution string `json:"attribution"`
	Description string `json:"description"`
	Related     string `json:"related"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	SortOrder   int    `json:"sort_order"`

	Metadata     map[string]map[string]string `json:"metadata"`
	RelatedWorks map[string]RelatedWork      `json:"related_works"`
	Extra        []RelatedWork               `json:"extra,omitempty"`

	order []string
}

// New returns a record for dataID with its manifest identifier derived and
// the default sort order set.
func New(dataID, imageID string) *Record {
	return &Record{
		DataID:       dataID,
		ManifestID:   ManifestID(dataID),
		ImageID:      imageID,
		SortOrder:    DefaultSortOrder,
		Metadata:     make(map[string]map[string]string),
		RelatedWorks: make(map[string]RelatedWork),
	}
}

// ManifestID strips the institution and collection segments from a data
// identifier: "oai:example.org:1234" becomes "1234". Remaining segments are
// kept joined by ":". Identifiers with fewer than three segments yield "".
func ManifestID(dataID string) string {
	parts := strings.Split(dataID, ":")
	if len(parts) < 3 {
		return ""
	}
	return strings.Join(parts[2:], ":")
}

// Basic returns the placement information of the record itself, as used for
// related-work placeholders on other records.
func (r *Record) Basic(kind string) RelatedWork {
	return RelatedWork{
		Kind:      kind,
		DataID:    r.DataID,
		ImageID:   r.ImageID,
		SortOrder: r.SortOrder,
		Width:     r.Width,
		Height:    r.Height,
	}
}

// AddRelated stores rw unless it refers to the record itself or a ref for the
// same data identifier already exists. It reports whether rw was stored.
func (r *Record) AddRelated(rw RelatedWork) bool {
	if rw.DataID == "" || rw.DataID == r.DataID {
		return false
	}
	if _, ok := r.RelatedWorks[rw.DataID]; ok {
		return false
	}
	r.SetRelated(rw)
	return true
}

// SetRelated stores rw, replacing an existing ref for the same data
// identifier in place. A ref to the record itself is ignored.
func (r *Record) SetRelated(rw RelatedWork) {
	if rw.DataID == "" || rw.DataID == r.DataID {
		return
	}
	if r.RelatedWorks == nil {
		r.RelatedWorks = make(map[string]RelatedWork)
	}
	if _, ok := r.RelatedWorks[rw.DataID]; !ok {
		r.order = append(r.order, rw.DataID)
	}
	r.RelatedWorks[rw.DataID] = rw
}

// SetMetadata records value for label in language.
func (r *Record) SetMetadata(label, language, value string) {
	if r.Metadata == nil {
		r.Metadata = make(map[string]map[string]string)
	}
	if r.Metadata[label] == nil {
		r.Metadata[label] = make(map[string]string)
	}
	r.Metadata[label][language] = value
}

// RelatedIDs returns the keys of RelatedWorks in the order they were added
// through [Record.SetRelated] or [Record.AddRelated]. Keys written to the map
// directly follow in sorted order.
func (r *Record) RelatedIDs() []string {
	ids := make([]string, 0, len(r.RelatedWorks))
	tracked := make(map[string]bool, len(r.order))
	for _, id := range r.order {
		if _, ok := r.RelatedWorks[id]; ok && !tracked[id] {
			tracked[id] = true
			ids = append(ids, id)
		}
	}
	var rest []string
	for id := range r.RelatedWorks {
		if !tracked[id] {
			rest = append(rest, id)
		}
	}
	slices.Sort(rest)
	return append(ids, rest...)
}

// Set is the working set of a run, keyed by data identifier.
type Set map[string]*Record

// IDs returns the data identifiers of the set in sorted order. Stages iterate
// in this order so that a run is deterministic.
func (s Set) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Get returns the record for dataID, if present.
func (s Set) Get(dataID string) (*Record, bool) {
	r, ok := s[dataID]
	return r, ok
}
