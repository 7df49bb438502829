// Package cli implements the imagehub command-line interface.
//
// # Commands
//
//   - generate: rebuild all manifests and canvases
//   - graph: export the closed relation graph as DOT or SVG
//   - config: show, create or locate the configuration file
//   - cache: manage the upstream response cache
//
// All commands accept --config and --verbose (-v).
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/imagehub/pkg/buildinfo"
	"github.com/matzehuels/imagehub/pkg/cache"
	"github.com/matzehuels/imagehub/pkg/config"
	"github.com/matzehuels/imagehub/pkg/core/iiif"
	"github.com/matzehuels/imagehub/pkg/core/metadata"
	"github.com/matzehuels/imagehub/pkg/errors"
	"github.com/matzehuels/imagehub/pkg/integrations/cantaloupe"
	"github.com/matzehuels/imagehub/pkg/integrations/oaipmh"
	"github.com/matzehuels/imagehub/pkg/integrations/resourcespace"
	"github.com/matzehuels/imagehub/pkg/pipeline"
	"github.com/matzehuels/imagehub/pkg/store"
	"github.com/matzehuels/imagehub/pkg/store/file"
	"github.com/matzehuels/imagehub/pkg/store/memory"
	"github.com/matzehuels/imagehub/pkg/store/mongo"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger     *log.Logger
	configPath string
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "imagehub",
		Short: "imagehub builds IIIF manifests for a collection of artworks",
		Long: `imagehub reconciles the asset catalog (ResourceSpace), the image server
(Cantaloupe) and the metadata repository (OAI-PMH datahub) into IIIF
Presentation 2 manifests, and rebuilds the manifest store from them.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}
	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/imagehub/config.toml, then ./imagehub.toml)")

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	return root
}

func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, path, exists, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if exists {
		c.Logger.Debug("loaded config", "path", path)
	} else {
		c.Logger.Debug("no config file found, using defaults and environment", "path", path)
	}
	return cfg, nil
}

// runFlags are shared by the commands that talk to the upstream systems.
type runFlags struct {
	datahubURL string
	noCache    bool
	refresh    bool
	limit      int
	workers    int
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.datahubURL, "datahub-url", "", "override the configured OAI-PMH endpoint")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the response cache")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "refetch cached image info and records")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "process at most this many catalog resources")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "concurrent upstream requests (default from config)")
}

func openCache(ctx context.Context, cfg *config.Config, disabled bool) (cache.Cache, error) {
	return cache.Open(ctx, cache.Options{
		Disabled: disabled || cfg.Cache.Disabled,
		RedisURL: cfg.Cache.RedisURL,
		Dir:      cfg.Cache.Dir,
	})
}

func openStore(ctx context.Context, cfg *config.Config, dryRun bool) (store.Store, error) {
	if dryRun {
		return memory.NewStore(), nil
	}
	switch cfg.Store.Backend {
	case config.BackendMongo:
		return mongo.Connect(ctx, cfg.Store.MongoURI, cfg.Store.Database)
	case config.BackendFile:
		return file.NewStore(cfg.Store.Dir, cfg.ServiceURL)
	default:
		return memory.NewStore(), nil
	}
}

// newRunner wires the upstream clients described by cfg.
func (c *CLI) newRunner(cfg *config.Config, backend cache.Cache, st store.Store, f runFlags) (*pipeline.Runner, error) {
	datahubURL := cfg.Datahub.URL
	if f.datahubURL != "" {
		if err := errors.ValidateBaseURL("--datahub-url", f.datahubURL, false); err != nil {
			return nil, err
		}
		datahubURL = f.datahubURL
	}
	ttl := cfg.Cache.TTL.Duration

	src := pipeline.Sources{
		Catalog: resourcespace.NewClient(resourcespace.Config{
			APIURL:     cfg.ResourceSpace.APIURL,
			User:       cfg.ResourceSpace.User,
			Key:        cfg.ResourceSpace.Key,
			DataField:  cfg.ResourceSpace.DataField,
			ImageField: cfg.ResourceSpace.ImageField,
		}),
		Dimensions: cantaloupe.NewClient(cfg.Cantaloupe.URL, backend, ttl),
		Harvester:  oaipmh.NewClient(datahubURL, cfg.Datahub.MetadataPrefix, backend, ttl),
	}
	return pipeline.NewRunner(src, st, c.Logger), nil
}

func runOptions(cfg *config.Config, f runFlags) (pipeline.Options, error) {
	ex, err := metadata.New(cfg.Metadata())
	if err != nil {
		return pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "field definitions")
	}
	policy, err := pipeline.ParseDuplicatePolicy(cfg.DuplicatePolicy)
	if err != nil {
		return pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "duplicate_policy")
	}
	workers := cfg.Workers
	if f.workers > 0 {
		workers = f.workers
	}
	return pipeline.Options{
		Extractor:       ex,
		Assembler:       iiif.Assembler{ServiceURL: cfg.ServiceURL, ImageURL: cfg.ImageURL},
		CatalogURL:      cfg.CatalogURL,
		Workers:         workers,
		Limit:           f.limit,
		DuplicatePolicy: policy,
		Refresh:         f.refresh,
	}, nil
}
