package pipeline

import (
	"fmt"

	"github.com/matzehuels/imagehub/pkg/core/iiif"
	"github.com/matzehuels/imagehub/pkg/core/metadata"
)

const (
	// DefaultWorkers bounds concurrent dimension lookups and harvests.
	DefaultWorkers = 8

	// DefaultCatalogURL prefixes the "related" link of every manifest.
	DefaultCatalogURL = "https://arthub.vlaamsekunstcollectie.be/nl/catalog/"
)

// DuplicatePolicy decides what happens to catalog resources whose data
// identifier was already seen. It only affects the record's own manifest:
// under either policy, a placeholder for the record in another manifest
// shows the first-seen image and its dimensions.
type DuplicatePolicy string

const (
	// DuplicateFirstSeen keeps the first resource as the record's image and
	// adds later ones as extra "relatedto" canvases.
	DuplicateFirstSeen DuplicatePolicy = "first-seen"

	// DuplicatePrimaryOnly discards later resources.
	DuplicatePrimaryOnly DuplicatePolicy = "primary-only"
)

// ParseDuplicatePolicy parses a policy name. The empty string selects
// [DuplicateFirstSeen].
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch p := DuplicatePolicy(s); p {
	case "":
		return DuplicateFirstSeen, nil
	case DuplicateFirstSeen, DuplicatePrimaryOnly:
		return p, nil
	default:
		return "", fmt.Errorf("unknown duplicate policy %q (want %s or %s)", s, DuplicateFirstSeen, DuplicatePrimaryOnly)
	}
}

// Options configures a run.
type Options struct {
	// Extractor turns harvested records into metadata and relations.
	Extractor *metadata.Extractor

	// Assembler builds manifest and canvas documents.
	Assembler iiif.Assembler

	// CatalogURL prefixes the manifest "related" link.
	CatalogURL string

	// Workers bounds concurrent upstream calls per stage.
	Workers int

	// Limit caps the number of catalog resources processed. Zero means all.
	Limit int

	// DuplicatePolicy handles resources sharing a data identifier.
	DuplicatePolicy DuplicatePolicy

	// Refresh bypasses the response cache of the image server and the
	// metadata repository.
	Refresh bool
}

// ValidateAndSetDefaults checks required fields and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Extractor == nil {
		return fmt.Errorf("extractor is required")
	}
	if o.Assembler.ServiceURL == "" {
		return fmt.Errorf("service URL is required")
	}
	if o.CatalogURL == "" {
		o.CatalogURL = DefaultCatalogURL
	}
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	if o.Limit < 0 {
		return fmt.Errorf("limit cannot be negative")
	}
	p, err := ParseDuplicatePolicy(string(o.DuplicatePolicy))
	if err != nil {
		return err
	}
	o.DuplicatePolicy = p
	return nil
}
