package config

import (
	"slices"
	"sort"

	"golang.org/x/text/language"

	"github.com/matzehuels/imagehub/pkg/core/xmlpath"
	"github.com/matzehuels/imagehub/pkg/errors"
	"github.com/matzehuels/imagehub/pkg/pipeline"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	for _, check := range []func() error{
		c.validateURLs,
		c.validateResourceSpace,
		c.validateDatahub,
		c.validateRun,
		c.validateStore,
		c.validateCache,
	} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateURLs() error {
	if err := errors.ValidateBaseURL("service_url", c.ServiceURL, true); err != nil {
		return err
	}
	if c.ImageURL != "" {
		if err := errors.ValidateBaseURL("image_url", c.ImageURL, true); err != nil {
			return err
		}
	}
	if err := errors.ValidateBaseURL("catalog_url", c.CatalogURL, true); err != nil {
		return err
	}
	return errors.ValidateBaseURL("cantaloupe.url", c.Cantaloupe.URL, true)
}

func (c *Config) validateResourceSpace() error {
	rs := c.ResourceSpace
	if err := errors.ValidateBaseURL("resourcespace.api_url", rs.APIURL, false); err != nil {
		return err
	}
	if rs.User == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "resourcespace.user is required")
	}
	if rs.Key == "" {
		return errors.New(errors.ErrCodeInvalidConfig,
			"resourcespace.key is required. Set %sAPI_KEY or edit the config file (create with 'imagehub config init')", EnvPrefix)
	}
	if rs.DataField == "" || rs.ImageField == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "resourcespace field names cannot be empty")
	}
	return nil
}

func (c *Config) validateDatahub() error {
	dh := c.Datahub
	if err := errors.ValidateBaseURL("datahub.url", dh.URL, false); err != nil {
		return err
	}
	if dh.MetadataPrefix == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "datahub.metadata_prefix is required")
	}
	if !validPrefix(dh.Namespace) {
		return errors.New(errors.ErrCodeInvalidConfig, "datahub.namespace %q is not a valid XML prefix", dh.Namespace)
	}
	if dh.Language == "" {
		return errors.New(errors.ErrCodeInvalidLanguage, "datahub.language is required")
	}
	if !slices.Contains(dh.Languages, dh.Language) {
		return errors.New(errors.ErrCodeInvalidLanguage, "datahub.languages must include the default language %q", dh.Language)
	}
	for _, l := range dh.Languages {
		if _, err := language.Parse(l); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidLanguage, err, "datahub language %q", l)
		}
	}

	keys := make([]string, 0, len(dh.Fields))
	for k := range dh.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := xmlpath.ParseTemplate(dh.Fields[k].XPath); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "datahub.fields.%s.xpath", k)
		}
	}
	if dh.RelatedWorksPath != "" {
		if _, err := xmlpath.ParseTemplate(dh.RelatedWorksPath); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "datahub.related_works_path")
		}
	}
	return nil
}

func (c *Config) validateRun() error {
	if c.Workers < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "workers must be at least 1")
	}
	if _, err := pipeline.ParseDuplicatePolicy(c.DuplicatePolicy); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "duplicate_policy")
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case BackendMongo:
		if c.Store.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.mongo_uri is required. Set %sMONGO_URI or edit the config file", EnvPrefix)
		}
	case BackendFile:
		if err := errors.ValidateOutputDir(c.Store.Dir); err != nil {
			return err
		}
	case BackendMemory:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "store.backend must be one of mongo, file, memory; got %q", c.Store.Backend)
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl cannot be negative")
	}
	return nil
}

// validPrefix reports whether s can be used as an XML namespace prefix.
func validPrefix(s string) bool {
	if s == "" || s == "xml" || s == "xmlns" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r == '-' || r == '.' || r >= '0' && r <= '9'):
		default:
			return false
		}
	}
	return true
}
