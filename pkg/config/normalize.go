package config

import (
	"slices"
	"strings"
)

func (c *Config) normalize() error {
	c.ServiceURL = strings.TrimSpace(c.ServiceURL)
	c.ImageURL = strings.TrimSpace(c.ImageURL)
	c.CatalogURL = strings.TrimSpace(c.CatalogURL)
	c.ResourceSpace.APIURL = strings.TrimRight(strings.TrimSpace(c.ResourceSpace.APIURL), "?")
	c.Cantaloupe.URL = strings.TrimSpace(c.Cantaloupe.URL)
	c.Datahub.URL = strings.TrimSpace(c.Datahub.URL)
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	c.DuplicatePolicy = strings.ToLower(strings.TrimSpace(c.DuplicatePolicy))

	langs := make([]string, 0, len(c.Datahub.Languages)+1)
	for _, l := range c.Datahub.Languages {
		if l = strings.TrimSpace(l); l != "" && !slices.Contains(langs, l) {
			langs = append(langs, l)
		}
	}
	c.Datahub.Language = strings.TrimSpace(c.Datahub.Language)
	if c.Datahub.Language != "" && !slices.Contains(langs, c.Datahub.Language) {
		langs = append(langs, c.Datahub.Language)
	}
	c.Datahub.Languages = langs

	if len(c.Datahub.Fields) == 0 {
		c.Datahub.Fields = DefaultFields()
	}

	if c.Store.Backend == BackendFile {
		dir, err := expandPath(c.Store.Dir)
		if err != nil {
			return err
		}
		c.Store.Dir = dir
	}
	if c.Cache.Dir != "" {
		dir, err := expandPath(c.Cache.Dir)
		if err != nil {
			return err
		}
		c.Cache.Dir = dir
	}
	return nil
}
