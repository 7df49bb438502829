package config

import (
	"time"

	"github.com/matzehuels/imagehub/pkg/core/metadata"
	"github.com/matzehuels/imagehub/pkg/integrations/resourcespace"
)

const (
	defaultCatalogURL      = "https://arthub.vlaamsekunstcollectie.be/nl/catalog/"
	defaultWorkers         = 8
	defaultDuplicatePolicy = "first-seen"
	defaultMetadataPrefix  = "oai_lido"
	defaultNamespace       = "lido"
	defaultLanguage        = "nl"
	defaultStoreBackend    = BackendMongo
	defaultDatabase        = "imagehub"
	defaultStoreDir        = "~/.local/share/imagehub/manifests"
	defaultCacheTTL        = 7 * 24 * time.Hour
)

// Store backends.
const (
	BackendMongo  = "mongo"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Default returns the built-in configuration. Endpoints and credentials
// have no defaults.
func Default() Config {
	return Config{
		CatalogURL:      defaultCatalogURL,
		Workers:         defaultWorkers,
		DuplicatePolicy: defaultDuplicatePolicy,
		ResourceSpace: ResourceSpace{
			DataField:  resourcespace.DefaultDataField,
			ImageField: resourcespace.DefaultImageField,
		},
		Datahub: Datahub{
			MetadataPrefix: defaultMetadataPrefix,
			Namespace:      defaultNamespace,
			Language:       defaultLanguage,
			Languages:      []string{"nl", "en"},
		},
		Store: Store{
			Backend:  defaultStoreBackend,
			Database: defaultDatabase,
			Dir:      defaultStoreDir,
		},
		Cache: Cache{
			TTL: Duration{defaultCacheTTL},
		},
	}
}

// DefaultFields returns the LIDO field definitions used when the config
// file defines none.
func DefaultFields() metadata.Table {
	const desc = `descriptiveMetadata[@xml:lang="{language}"]/`
	const admin = `administrativeMetadata[@xml:lang="{language}"]/`
	return metadata.Table{
		metadata.FieldTitle: {
			XPath: desc + "objectIdentificationWrap/titleWrap/titleSet/appellationValue",
			Label: "Title",
		},
		metadata.FieldShortDescription: {
			XPath: desc + "objectIdentificationWrap/objectDescriptionWrap/objectDescriptionSet/descriptiveNoteValue",
		},
		metadata.FieldPublisher: {
			XPath: admin + "recordWrap/recordSource/legalBodyName/appellationValue",
			Label: "Publisher",
		},
		"creator": {
			XPath: desc + "eventWrap/eventSet/event/eventActor/actorInRole/actor/nameActorSet/appellationValue",
			Label: "Creator",
		},
		"date": {
			XPath: desc + "eventWrap/eventSet/event/eventDate/displayDate",
			Label: "Date",
		},
		"object_name": {
			XPath: desc + "objectClassificationWrap/objectWorkTypeWrap/objectWorkType/term",
			Label: "Object name",
		},
		"object_number": {
			XPath: desc + "objectIdentificationWrap/repositoryWrap/repositorySet/workID",
			Label: "Object number",
		},
		"rights": {
			XPath: admin + "rightsWorkWrap/rightsWorkSet/creditLine",
		},
	}
}
