// Package iiif builds IIIF Presentation 2.0 manifests and canvases.
//
// [Assembler] is pure: it turns one enriched record and its ordered canvas
// entries into documents and leaves persistence to the caller.
package iiif

// JSON-LD contexts, types and fixed values of the Presentation and Image
// APIs.
const (
	PresentationContext = "http://iiif.io/api/presentation/2/context.json"
	ImageContext        = "http://iiif.io/api/image/2/context.json"
	ImageProfile        = "http://iiif.io/api/image/2/level2.json"

	TypeManifest   = "sc:Manifest"
	TypeSequence   = "sc:Sequence"
	TypeCanvas     = "sc:Canvas"
	TypeAnnotation = "oa:Annotation"
	TypeImage      = "dctypes:Image"

	MotivationPainting = "sc:painting"
	FormatJPEG         = "image/jpeg"

	ViewingDirection = "left-to-right"
	ViewingHint      = "individuals"
)

// Manifest is a sc:Manifest document.
type Manifest struct {
	Context          string          `json:"@context"`
	Type             string          `json:"@type"`
	ID               string          `json:"@id"`
	Label            string          `json:"label"`
	Attribution      string          `json:"attribution"`
	Related          string          `json:"related"`
	Description      string          `json:"description"`
	Metadata         []MetadataEntry `json:"metadata"`
	ViewingDirection string          `json:"viewingDirection"`
	ViewingHint      string          `json:"viewingHint"`
	Sequences        []Sequence      `json:"sequences"`
}

// MetadataEntry is one labelled, multilingual metadata pair.
type MetadataEntry struct {
	Label string          `json:"label"`
	Value []LanguageValue `json:"value"`
}

// LanguageValue is a JSON-LD value with a language tag.
type LanguageValue struct {
	Language string `json:"@language"`
	Value    string `json:"@value"`
}

// Sequence is the single sc:Sequence of a manifest.
type Sequence struct {
	Type     string    `json:"@type"`
	Context  string    `json:"@context"`
	Canvases []*Canvas `json:"canvases"`
}

// Canvas is a sc:Canvas document. Canvases are embedded in their manifest
// and also persisted on their own.
type Canvas struct {
	ID     string       `json:"@id"`
	Type   string       `json:"@type"`
	Label  string       `json:"label"`
	Height int          `json:"height"`
	Width  int          `json:"width"`
	Images []Annotation `json:"images"`
}

// Annotation paints an image resource onto a canvas.
type Annotation struct {
	Context    string   `json:"@context"`
	Type       string   `json:"@type"`
	Motivation string   `json:"motivation"`
	Resource   Resource `json:"resource"`
	On         string   `json:"on"`
}

// Resource is the image painted by an [Annotation].
type Resource struct {
	ID      string  `json:"@id"`
	Type    string  `json:"@type"`
	Format  string  `json:"format"`
	Service Service `json:"service"`
	Height  int     `json:"height"`
	Width   int     `json:"width"`
}

// Service points at the image server endpoint of a resource.
type Service struct {
	Context string `json:"@context"`
	ID      string `json:"@id"`
	Profile string `json:"profile"`
}
