package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/imagehub/pkg/core/record"
	"github.com/matzehuels/imagehub/pkg/integrations/cantaloupe"
	"github.com/matzehuels/imagehub/pkg/integrations/resourcespace"
	"github.com/matzehuels/imagehub/pkg/store"
)

// Stage names reported to logs and observability hooks.
const (
	StageFetch      = "fetch"
	StageDimensions = "dimensions"
	StageHarvest    = "harvest"
	StageClose      = "close"
	StageLink       = "link"
	StagePersist    = "persist"
)

// Catalog lists the image resources of the asset catalog.
type Catalog interface {
	Search(ctx context.Context) ([]string, error)
	Resource(ctx context.Context, ref string) (resourcespace.Resource, error)
}

// Dimensions reports the pixel size of an image.
type Dimensions interface {
	Dimensions(ctx context.Context, imageID string, refresh bool) (cantaloupe.Info, error)
}

// Harvester fetches the metadata record of a work.
type Harvester interface {
	GetRecord(ctx context.Context, identifier string, refresh bool) ([]byte, error)
}

// Sources groups the upstream systems of a run.
type Sources struct {
	Catalog    Catalog
	Dimensions Dimensions
	Harvester  Harvester
}

// Issue records a record-level failure that did not abort the run.
type Issue struct {
	DataID string
	Ref    string // catalog resource reference, set for fetch issues
	Stage  string
	Err    error
}

// Stats summarizes a run.
type Stats struct {
	Resources    int // catalog resources processed
	Skipped      int // resources whose lookup failed or that lack a usable data identifier
	Duplicates   int // resources sharing a data identifier with an earlier one
	Records      int // records surviving the harvest
	Placeholders int // related-work refs added by closure
	Manifests    int
	Canvases     int

	FetchTime      time.Duration
	DimensionsTime time.Duration
	HarvestTime    time.Duration
	PersistTime    time.Duration
}

// Result is the outcome of a run.
type Result struct {
	RunID    string
	Records  record.Set
	Skipped  []Issue
	Dropped  []Issue
	Degraded []Issue
	Stats    Stats
}

// Runner executes runs against one set of sources and one store. It holds
// no per-run state; each call to [Runner.Execute] starts from scratch.
type Runner struct {
	Sources Sources
	Store   store.Store
	Logger  *log.Logger
}

// NewRunner creates a runner. A nil logger selects log.Default().
func NewRunner(src Sources, st store.Store, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Sources: src, Store: st, Logger: logger}
}

// Execute runs every stage and rebuilds the store. The returned error is
// non-nil only for fatal failures; dropped and degraded records are listed
// in the result.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	res, logger, err := r.collect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := r.persist(ctx, logger, opts, res); err != nil {
		return nil, err
	}
	logger.Info("run complete",
		"manifests", res.Stats.Manifests,
		"canvases", res.Stats.Canvases,
		"dropped", len(res.Dropped),
		"degraded", len(res.Degraded))
	return res, nil
}

// Collect runs every stage except persistence and returns the linked record
// set. The store is not touched.
func (r *Runner) Collect(ctx context.Context, opts Options) (*Result, error) {
	res, _, err := r.collect(ctx, opts)
	return res, err
}

func (r *Runner) collect(ctx context.Context, opts Options) (*Result, *log.Logger, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, err
	}
	res := &Result{RunID: uuid.NewString()}
	logger := r.Logger.With("run", res.RunID[:8])

	if err := r.fetch(ctx, logger, opts, res); err != nil {
		return nil, nil, err
	}
	if err := r.dimensions(ctx, logger, opts, res); err != nil {
		return nil, nil, err
	}
	if err := r.harvest(ctx, logger, opts, res); err != nil {
		return nil, nil, err
	}
	r.close(ctx, logger, res)
	r.link(ctx, logger, opts, res)
	return res, logger, nil
}
