package config

import (
	_ "embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/matzehuels/imagehub/pkg/core/metadata"
	"github.com/matzehuels/imagehub/pkg/errors"
)

//go:embed sample_config.toml
var sampleConfig string

// EnvPrefix prefixes every environment override.
const EnvPrefix = "IMAGEHUB_"

// Duration is a time.Duration written as a string such as "168h".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ResourceSpace configures the asset catalog API.
type ResourceSpace struct {
	APIURL     string `toml:"api_url" env:"API_URL"`
	User       string `toml:"user" env:"API_USER"`
	Key        string `toml:"key" env:"API_KEY"`
	DataField  string `toml:"data_pid_field" env:"API_DATA_FIELD"`
	ImageField string `toml:"image_field" env:"API_IMAGE_FIELD"`
}

// Cantaloupe configures the IIIF image server.
type Cantaloupe struct {
	URL string `toml:"url" env:"CANTALOUPE_URL"`
}

// Datahub configures the OAI-PMH repository and metadata extraction.
type Datahub struct {
	URL              string         `toml:"url" env:"DATAHUB_URL"`
	MetadataPrefix   string         `toml:"metadata_prefix" env:"DATAHUB_METADATA_PREFIX"`
	Namespace        string         `toml:"namespace" env:"DATAHUB_NAMESPACE"`
	Language         string         `toml:"language" env:"DATAHUB_LANGUAGE"`
	Languages        []string       `toml:"languages" env:"DATAHUB_LANGUAGES" envSeparator:","`
	RelatedWorksPath string         `toml:"related_works_path,omitempty"`
	Fields           metadata.Table `toml:"fields"`
}

// Store selects where manifests are written.
type Store struct {
	Backend  string `toml:"backend" env:"STORE_BACKEND"`
	MongoURI string `toml:"mongo_uri" env:"MONGO_URI"`
	Database string `toml:"database" env:"MONGO_DATABASE"`
	Dir      string `toml:"dir" env:"OUTPUT_DIR"`
}

// Cache configures the HTTP response cache.
type Cache struct {
	Disabled bool     `toml:"disabled" env:"CACHE_DISABLED"`
	Dir      string   `toml:"dir" env:"CACHE_DIR"`
	RedisURL string   `toml:"redis_url" env:"REDIS_URL"`
	TTL      Duration `toml:"ttl" env:"CACHE_TTL"`
}

// Config is the complete imagehub configuration.
//
// Sections:
//   - ResourceSpace: catalog search and field lookups
//   - Cantaloupe: image dimensions
//   - Datahub: record harvesting and the field definition table
//   - Store: manifest output
//   - Cache: upstream response caching
type Config struct {
	// ServiceURL prefixes manifest and canvas identifiers.
	ServiceURL string `toml:"service_url" env:"SERVICE_URL"`
	// ImageURL prefixes image service identifiers. Defaults to ServiceURL.
	ImageURL string `toml:"image_url,omitempty" env:"IMAGE_URL"`
	// CatalogURL prefixes the manifest "related" link.
	CatalogURL string `toml:"catalog_url" env:"CATALOG_URL"`

	Workers         int    `toml:"workers" env:"WORKERS"`
	DuplicatePolicy string `toml:"duplicate_policy" env:"DUPLICATE_POLICY"`

	ResourceSpace ResourceSpace `toml:"resourcespace"`
	Cantaloupe    Cantaloupe    `toml:"cantaloupe"`
	Datahub       Datahub       `toml:"datahub"`
	Store         Store         `toml:"store"`
	Cache         Cache         `toml:"cache"`
}

// DefaultConfigPath returns the absolute path of the per-user config file.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/imagehub/config.toml")
}

// Load locates, parses and validates a configuration file, applying
// environment overrides. It returns the config, the resolved path and
// whether a file existed there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}
	if path != "" && !exists {
		return nil, "", false, errors.New(errors.ErrCodeInvalidConfig, "config file %s does not exist", resolved)
	}
	if exists {
		if _, err := toml.DecodeFile(resolved, &cfg); err != nil {
			return nil, "", false, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", resolved)
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, "", false, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read environment")
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

// Parse decodes TOML from r on top of the defaults, then normalizes and
// validates the result. Environment variables are not consulted.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if os.IsNotExist(err) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("imagehub.toml")
	if err != nil {
		return "", false, err
	}
	for _, p := range []string{defaultPath, projectPath} {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true, nil
		}
	}
	return defaultPath, false, nil
}

// Metadata returns the extractor configuration.
func (c *Config) Metadata() metadata.Config {
	return metadata.Config{
		Namespace:        c.Datahub.Namespace,
		Language:         c.Datahub.Language,
		Languages:        append([]string(nil), c.Datahub.Languages...),
		Fields:           c.Datahub.Fields,
		RelatedWorksPath: c.Datahub.RelatedWorksPath,
	}
}

// Redacted returns a copy with credentials masked.
func (c Config) Redacted() Config {
	if c.ResourceSpace.Key != "" {
		c.ResourceSpace.Key = "********"
	}
	c.Store.MongoURI = RedactURI(c.Store.MongoURI)
	c.Cache.RedisURL = RedactURI(c.Cache.RedisURL)
	return c
}

// RedactURI masks the password of a connection URI.
func RedactURI(raw string) string {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return raw
	}
	creds, host, ok := strings.Cut(rest, "@")
	if !ok {
		return raw
	}
	user, _, _ := strings.Cut(creds, ":")
	return scheme + "://" + user + ":********@" + host
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// SampleConfig returns the annotated sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes the sample configuration to path. An existing file is
// never overwritten.
func CreateSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return errors.New(errors.ErrCodeInvalidPath, "%s already exists", expanded)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", expanded, err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), fs.FileMode(0o600))
}

func expandPath(p string) (string, error) {
	if p == "" {
		return p, nil
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		p = filepath.Join(home, strings.TrimPrefix(p[1:], "/"))
	}
	abs, err := filepath.Abs(filepath.Clean(p))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", p, err)
	}
	return abs, nil
}
