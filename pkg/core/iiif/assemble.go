package iiif

import (
	"slices"
	"strconv"

	"github.com/matzehuels/imagehub/pkg/core/ordering"
	"github.com/matzehuels/imagehub/pkg/core/record"
)

// Assembler builds documents for one deployment.
type Assembler struct {
	// ServiceURL prefixes manifest and canvas identifiers. It is used
	// verbatim and normally ends with a slash.
	ServiceURL string

	// ImageURL prefixes image service identifiers. Defaults to ServiceURL.
	ImageURL string
}

// ManifestID returns the identity URI of the manifest for rec.
func (a Assembler) ManifestID(rec *record.Record) string {
	return a.ServiceURL + rec.ManifestID + "/manifest.json"
}

// CanvasID returns the identity URI of canvas index of rec's manifest.
func (a Assembler) CanvasID(rec *record.Record, index int) string {
	return a.ServiceURL + rec.ManifestID + "/canvas/" + strconv.Itoa(index) + ".json"
}

func (a Assembler) imageBase() string {
	if a.ImageURL != "" {
		return a.ImageURL
	}
	return a.ServiceURL
}

// Assemble returns the manifest for rec and its canvases in index order. The
// canvases are the same values embedded in the manifest's sequence.
func (a Assembler) Assemble(rec *record.Record, entries []ordering.Entry) (*Manifest, []*Canvas) {
	canvases := make([]*Canvas, 0, len(entries))
	for _, e := range entries {
		canvases = append(canvases, a.canvas(rec, e))
	}

	m := &Manifest{
		Context:          PresentationContext,
		Type:             TypeManifest,
		ID:               a.ManifestID(rec),
		Label:            rec.Label,
		Attribution:      rec.Attribution,
		Related:          rec.Related,
		Description:      rec.Description,
		Metadata:         metadataEntries(rec.Metadata),
		ViewingDirection: ViewingDirection,
		ViewingHint:      ViewingHint,
		Sequences: []Sequence{{
			Type:     TypeSequence,
			Context:  PresentationContext,
			Canvases: canvases,
		}},
	}
	return m, canvases
}

func (a Assembler) canvas(rec *record.Record, e ordering.Entry) *Canvas {
	id := a.CanvasID(rec, e.Index)
	service := a.imageBase() + e.ImageID
	return &Canvas{
		ID:     id,
		Type:   TypeCanvas,
		Label:  e.ImageID,
		Height: e.Height,
		Width:  e.Width,
		Images: []Annotation{{
			Context:    PresentationContext,
			Type:       TypeAnnotation,
			Motivation: MotivationPainting,
			Resource: Resource{
				ID:     service + "/full/full/0/default.jpg",
				Type:   TypeImage,
				Format: FormatJPEG,
				Service: Service{
					Context: ImageContext,
					ID:      service,
					Profile: ImageProfile,
				},
				Height: e.Height,
				Width:  e.Width,
			},
			On: id,
		}},
	}
}

// metadataEntries reshapes label → language → value into entries sorted by
// label with values sorted by language.
func metadataEntries(md map[string]map[string]string) []MetadataEntry {
	labels := make([]string, 0, len(md))
	for l := range md {
		labels = append(labels, l)
	}
	slices.Sort(labels)

	out := make([]MetadataEntry, 0, len(labels))
	for _, l := range labels {
		langs := make([]string, 0, len(md[l]))
		for lang := range md[l] {
			langs = append(langs, lang)
		}
		slices.Sort(langs)

		entry := MetadataEntry{Label: l, Value: make([]LanguageValue, 0, len(langs))}
		for _, lang := range langs {
			entry.Value = append(entry.Value, LanguageValue{Language: lang, Value: md[l][lang]})
		}
		out = append(out, entry)
	}
	return out
}
