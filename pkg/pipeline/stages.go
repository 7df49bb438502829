package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/imagehub/pkg/core/metadata"
	"github.com/matzehuels/imagehub/pkg/core/ordering"
	"github.com/matzehuels/imagehub/pkg/core/record"
	"github.com/matzehuels/imagehub/pkg/core/relations"
	"github.com/matzehuels/imagehub/pkg/errors"
	"github.com/matzehuels/imagehub/pkg/integrations/resourcespace"
	"github.com/matzehuels/imagehub/pkg/observability"
	"github.com/matzehuels/imagehub/pkg/store"
)

// stage wraps fn with timing, hooks and a completion log line.
func stage(ctx context.Context, logger *log.Logger, name string, items int, fn func() error) (time.Duration, error) {
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, name, items)
	start := time.Now()
	err := fn()
	dur := time.Since(start)
	hooks.OnStageComplete(ctx, name, items, dur, err)
	if err == nil {
		logger.Debug("stage complete", "stage", name, "items", items, "duration", dur)
	}
	return dur, err
}

func (r *Runner) fetch(ctx context.Context, logger *log.Logger, opts Options, res *Result) error {
	var (
		resources []resourcespace.Resource
		failures  []error
	)
	dur, err := stage(ctx, logger, StageFetch, 0, func() error {
		refs, err := r.Sources.Catalog.Search(ctx)
		if err != nil {
			return errors.Wrap(errors.ErrCodeFetchFailed, err, "catalog search")
		}
		if opts.Limit > 0 && len(refs) > opts.Limit {
			refs = refs[:opts.Limit]
		}

		resources = make([]resourcespace.Resource, len(refs))
		failures = make([]error, len(refs))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Workers)
		for i, ref := range refs {
			g.Go(func() error {
				rs, err := r.Sources.Catalog.Resource(gctx, ref)
				if err != nil {
					if gctx.Err() != nil {
						return errors.Wrap(errors.ErrCodeFetchFailed, gctx.Err(), "catalog resource %s", ref)
					}
					rs.Ref = ref
					failures[i] = err
				}
				resources[i] = rs
				return nil
			})
		}
		return g.Wait()
	})
	if err != nil {
		return err
	}

	res.Records = make(record.Set, len(resources))
	for i, rs := range resources {
		res.Stats.Resources++
		cause := failures[i]
		if cause == nil {
			cause = errors.ValidateDataID(rs.DataID)
		}
		if cause != nil {
			err := errors.Wrap(errors.ErrCodeResourceFailed, cause, "catalog resource %s", rs.Ref)
			logger.Warn("skipping catalog resource", "ref", rs.Ref, "reason", errors.UserMessage(cause))
			res.Skipped = append(res.Skipped, Issue{DataID: rs.DataID, Ref: rs.Ref, Stage: StageFetch, Err: err})
			res.Stats.Skipped++
			continue
		}
		primary, seen := res.Records[rs.DataID]
		if !seen {
			res.Records[rs.DataID] = record.New(rs.DataID, rs.ImageID)
			continue
		}
		res.Stats.Duplicates++
		if opts.DuplicatePolicy == DuplicatePrimaryOnly {
			logger.Debug("discarding duplicate resource", "ref", rs.Ref, "data_id", rs.DataID)
			continue
		}
		primary.Extra = append(primary.Extra, record.RelatedWork{
			Kind:      record.KindRelatedTo,
			DataID:    rs.DataID,
			ImageID:   rs.ImageID,
			SortOrder: record.DefaultSortOrder,
		})
	}
	res.Stats.FetchTime = dur
	logger.Info("fetched catalog",
		"resources", res.Stats.Resources,
		"records", len(res.Records),
		"duplicates", res.Stats.Duplicates,
		"skipped", res.Stats.Skipped,
		"duration", dur)
	return nil
}

// imageRef addresses one image of the set: the primary image of a record
// when extra is -1, otherwise an entry of its Extra slice.
type imageRef struct {
	dataID  string
	extra   int
	imageID string
}

func (r *Runner) dimensions(ctx context.Context, logger *log.Logger, opts Options, res *Result) error {
	var images []imageRef
	for _, id := range res.Records.IDs() {
		rec := res.Records[id]
		images = append(images, imageRef{dataID: id, extra: -1, imageID: rec.ImageID})
		for i, rw := range rec.Extra {
			images = append(images, imageRef{dataID: id, extra: i, imageID: rw.ImageID})
		}
	}

	type outcome struct {
		width, height int
		err           error
	}
	outcomes := make([]outcome, len(images))

	dur, err := stage(ctx, logger, StageDimensions, len(images), func() error {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Workers)
		for i, img := range images {
			g.Go(func() error {
				info, err := r.Sources.Dimensions.Dimensions(gctx, img.imageID, opts.Refresh)
				if err != nil && gctx.Err() != nil {
					return gctx.Err()
				}
				outcomes[i] = outcome{width: info.Width, height: info.Height, err: err}
				return nil
			})
		}
		return g.Wait()
	})
	if err != nil {
		return err
	}

	degraded := make(map[string]bool)
	for i, img := range images {
		rec := res.Records[img.dataID]
		o := outcomes[i]
		if o.err != nil {
			err := errors.Wrap(errors.ErrCodeDimensionsFailed, o.err, "image %s", img.imageID)
			logger.Warn("image dimensions unavailable", "data_id", img.dataID, "image_id", img.imageID, "err", o.err)
			observability.Pipeline().OnRecordDegraded(ctx, StageDimensions, img.dataID, err)
			if !degraded[img.dataID] {
				degraded[img.dataID] = true
				res.Degraded = append(res.Degraded, Issue{DataID: img.dataID, Stage: StageDimensions, Err: err})
			}
			continue
		}
		if img.extra < 0 {
			rec.Width, rec.Height = o.width, o.height
		} else {
			rec.Extra[img.extra].Width, rec.Extra[img.extra].Height = o.width, o.height
		}
	}
	res.Stats.DimensionsTime = dur
	logger.Info("annotated dimensions", "images", len(images), "degraded", len(res.Degraded), "duration", dur)
	return nil
}

func (r *Runner) harvest(ctx context.Context, logger *log.Logger, opts Options, res *Result) error {
	ids := res.Records.IDs()
	type outcome struct {
		result *metadata.Result
		err    error
	}
	outcomes := make([]outcome, len(ids))

	dur, err := stage(ctx, logger, StageHarvest, len(ids), func() error {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Workers)
		for i, id := range ids {
			g.Go(func() error {
				payload, err := r.Sources.Harvester.GetRecord(gctx, id, opts.Refresh)
				if err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					outcomes[i].err = err
					return nil
				}
				outcomes[i].result, outcomes[i].err = opts.Extractor.Extract(id, bytes.NewReader(payload))
				return nil
			})
		}
		return g.Wait()
	})
	if err != nil {
		return err
	}

	// Drop first so that every surviving record sees the same set while
	// related-work refs are resolved.
	for i, id := range ids {
		if outcomes[i].err == nil {
			continue
		}
		err := errors.Wrap(errors.ErrCodeHarvestFailed, outcomes[i].err, "record %s", id)
		logger.Warn("dropping record", "data_id", id, "err", outcomes[i].err)
		observability.Pipeline().OnRecordDropped(ctx, StageHarvest, id, err)
		res.Dropped = append(res.Dropped, Issue{DataID: id, Stage: StageHarvest, Err: err})
		delete(res.Records, id)
	}
	for i, id := range ids {
		if outcomes[i].err == nil {
			metadata.Apply(res.Records, id, outcomes[i].result)
		}
	}
	res.Stats.Records = len(res.Records)
	res.Stats.HarvestTime = dur
	logger.Info("harvested metadata", "records", len(res.Records), "dropped", len(res.Dropped), "duration", dur)
	return nil
}

func (r *Runner) close(ctx context.Context, logger *log.Logger, res *Result) {
	stage(ctx, logger, StageClose, len(res.Records), func() error {
		res.Stats.Placeholders = relations.Close(res.Records)
		return nil
	})
	logger.Info("closed relations", "added", res.Stats.Placeholders)
}

func (r *Runner) link(ctx context.Context, logger *log.Logger, opts Options, res *Result) {
	stage(ctx, logger, StageLink, len(res.Records), func() error {
		for _, rec := range res.Records {
			rec.Related = opts.CatalogURL + rec.ManifestID
		}
		return nil
	})
}

// persist clears the store and writes every manifest with its canvases.
// Clearing waits until all upstream data is in hand, so a run that fails
// earlier leaves the previous output in place.
func (r *Runner) persist(ctx context.Context, logger *log.Logger, opts Options, res *Result) error {
	dur, err := stage(ctx, logger, StagePersist, len(res.Records), func() error {
		if err := r.Store.Clear(ctx); err != nil {
			return errors.Wrap(errors.ErrCodeStoreFailed, err, "clear store")
		}
		for _, id := range res.Records.IDs() {
			if err := ctx.Err(); err != nil {
				return err
			}
			rec := res.Records[id]
			manifest, canvases := opts.Assembler.Assemble(rec, ordering.Order(rec))
			for _, c := range canvases {
				if err := put(ctx, r.Store.PutCanvas, c.ID, c); err != nil {
					return err
				}
				res.Stats.Canvases++
			}
			if err := put(ctx, r.Store.PutManifest, manifest.ID, manifest); err != nil {
				return err
			}
			res.Stats.Manifests++
		}
		if err := r.Store.Flush(ctx); err != nil {
			return errors.Wrap(errors.ErrCodeStoreFailed, err, "flush store")
		}
		return nil
	})
	if err != nil {
		return err
	}
	res.Stats.PersistTime = dur
	logger.Info("stored manifests", "manifests", res.Stats.Manifests, "canvases", res.Stats.Canvases, "duration", dur)
	return nil
}

func put(ctx context.Context, fn func(context.Context, store.Document) error, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode %s", id)
	}
	if err := fn(ctx, store.Document{ID: id, Data: data}); err != nil {
		return errors.Wrap(errors.ErrCodeStoreFailed, err, "write %s", id)
	}
	return nil
}
