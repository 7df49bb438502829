// Package pipeline runs a manifest generation: it reconciles the asset
// catalog, the image server and the metadata repository into IIIF manifests
// and rebuilds the manifest store from them.
//
// # Stages
//
//  1. Fetch: list catalog resources and group them by data identifier.
//     Failure aborts the run.
//  2. Dimensions: look up the pixel size of every image. Failure leaves the
//     image at 0x0 and marks the record degraded.
//  3. Harvest: fetch and extract the metadata record of every work. Failure
//     drops the record from the run.
//  4. Close: make related-work links transitive and symmetric.
//  5. Link: attach the catalog URL of every record.
//  6. Persist: clear the store, then write one manifest and its canvases per
//     record. Failure aborts the run.
//
// Dimension lookups and harvests run on a bounded worker pool. Results are
// merged by a single goroutine in data identifier order once every task of
// the stage has finished, so the output does not depend on scheduling.
//
// # Usage
//
//	runner := pipeline.NewRunner(pipeline.Sources{
//	    Catalog:    rs,        // *resourcespace.Client
//	    Dimensions: iiifInfo,  // *cantaloupe.Client
//	    Harvester:  datahub,   // *oaipmh.Client
//	}, mongoStore, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Extractor: extractor,
//	    Assembler: iiif.Assembler{ServiceURL: cfg.ServiceURL},
//	})
package pipeline
