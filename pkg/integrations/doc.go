// Package integrations provides HTTP clients for the upstream services of a
// manifest generation run. Each service has its own subpackage:
//
//   - [resourcespace]: the asset catalog (signed search and field queries)
//   - [cantaloupe]: the IIIF image server (pixel dimensions)
//   - [oaipmh]: the OAI-PMH repository (LIDO records)
//
// # Shared Infrastructure
//
// [Client] gives every subpackage the same behaviour: a request timeout,
// retry with exponential backoff for network errors, 429 and 5xx responses,
// and response caching through [cache.Cache] with a per-service key prefix.
// Errors wrap [ErrNotFound] or [ErrNetwork] so callers can tell them apart
// with errors.Is.
//
// [resourcespace]: github.com/matzehuels/imagehub/pkg/integrations/resourcespace
// [cantaloupe]: github.com/matzehuels/imagehub/pkg/integrations/cantaloupe
// [oaipmh]: github.com/matzehuels/imagehub/pkg/integrations/oaipmh
// [cache.Cache]: github.com/matzehuels/imagehub/pkg/cache.Cache
package integrations
