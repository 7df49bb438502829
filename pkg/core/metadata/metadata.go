// Package metadata extracts multilingual descriptive fields and related-work
// edges from harvested XML records.
//
// Extraction is data driven: a [Table] maps field keys to path templates (see
// [xmlpath]) and optional display labels. The same table serves every
// configured language; templates reference the language through the
// {language} placeholder.
//
// Three keys feed the single-language display fields of a manifest when
// evaluated for the default language: [FieldTitle] (label), [FieldPublisher]
// (attribution) and [FieldShortDescription] (description).
package metadata

import (
	"fmt"
	"slices"

	"github.com/matzehuels/imagehub/pkg/core/xmlpath"
)

// Well-known field keys.
const (
	FieldTitle            = "title"
	FieldPublisher        = "publisher"
	FieldShortDescription = "short_description"
)

// NotAvailable is the placeholder value the metadata source uses for
// missing fields. It is treated as absent.
const NotAvailable = "n/a"

// DefaultRelatedWorksPath locates related-work sets in a LIDO record.
const DefaultRelatedWorksPath = `descriptiveMetadata[@xml:lang="{language}"]/objectRelationWrap/relatedWorksWrap/relatedWorkSet`

// Definition describes where one field lives and how it is displayed.
// Fields without a Label are not shown in manifest metadata; apart from
// [FieldShortDescription] they are not extracted at all.
type Definition struct {
	XPath string `toml:"xpath"`
	Label string `toml:"label,omitempty"`
}

// Table maps field keys to their definitions.
type Table map[string]Definition

// Config configures an [Extractor]. It is copied on construction.
type Config struct {
	// Namespace is the prefix used to qualify template steps, e.g. "lido".
	Namespace string

	// Language is the default language. Display fields are only taken from
	// values extracted for this language.
	Language string

	// Languages lists every language to extract metadata for.
	Languages []string

	// Fields is the field definition table.
	Fields Table

	// RelatedWorksPath locates related-work sets. Defaults to
	// [DefaultRelatedWorksPath].
	RelatedWorksPath string
}

type field struct {
	key   string
	label string
	tpl   xmlpath.Template
}

// Extractor extracts [Result] values from harvested records. It is immutable
// and safe for concurrent use.
type Extractor struct {
	namespace string
	language  string
	languages []string
	fields    []field
	related   xmlpath.Query
}

// New validates cfg and compiles its templates.
func New(cfg Config) (*Extractor, error) {
	if cfg.Language == "" {
		return nil, fmt.Errorf("metadata: default language is required")
	}
	languages := slices.Clone(cfg.Languages)
	if !slices.Contains(languages, cfg.Language) {
		languages = append(languages, cfg.Language)
	}

	keys := make([]string, 0, len(cfg.Fields))
	for k := range cfg.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	e := &Extractor{
		namespace: cfg.Namespace,
		language:  cfg.Language,
		languages: languages,
	}
	for _, k := range keys {
		def := cfg.Fields[k]
		if def.Label == "" && k != FieldShortDescription {
			continue
		}
		tpl, err := xmlpath.ParseTemplate(def.XPath)
		if err != nil {
			return nil, fmt.Errorf("metadata: field %s: %w", k, err)
		}
		e.fields = append(e.fields, field{key: k, label: def.Label, tpl: tpl})
	}

	relPath := cfg.RelatedWorksPath
	if relPath == "" {
		relPath = DefaultRelatedWorksPath
	}
	relTpl, err := xmlpath.ParseTemplate(relPath)
	if err != nil {
		return nil, fmt.Errorf("metadata: related works path: %w", err)
	}
	e.related = relTpl.Build(cfg.Namespace, cfg.Language)
	return e, nil
}

// Languages returns the languages the extractor evaluates, default included.
func (e *Extractor) Languages() []string { return slices.Clone(e.languages) }
