// Package observability provides hooks for metrics, tracing and logging.
//
// Libraries emit events through the registered hooks; main registers
// implementations at startup. The defaults are no-ops, so nothing in the
// pipeline depends on a particular metrics or tracing backend.
//
//	observability.SetPipelineHooks(&promHooks{})
//
//	observability.Pipeline().OnStageStart(ctx, "harvest", len(ids))
//	// ... harvest ...
//	observability.Pipeline().OnStageComplete(ctx, "harvest", n, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks receives events from a manifest generation run.
type PipelineHooks interface {
	// OnStageStart fires when a stage begins working on items records.
	OnStageStart(ctx context.Context, stage string, items int)

	// OnStageComplete fires when a stage ends. err is only set for failures
	// that abort the run.
	OnStageComplete(ctx context.Context, stage string, items int, duration time.Duration, err error)

	// OnRecordDropped fires when a record is removed from the working set.
	OnRecordDropped(ctx context.Context, stage, dataID string, err error)

	// OnRecordDegraded fires when a record continues with missing data.
	OnRecordDegraded(ctx context.Context, stage, dataID string, err error)
}

// CacheHooks receives events from response caching.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, namespace string)
	OnCacheMiss(ctx context.Context, namespace string)
	OnCacheSet(ctx context.Context, namespace string, size int)
}

// HTTPHooks receives events from upstream HTTP calls.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records a transport failure such as a timeout or refused
	// connection.
	OnError(ctx context.Context, method, host, path string, err error)
}

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnStageStart(context.Context, string, int)                           {}
func (NoopPipelineHooks) OnStageComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnRecordDropped(context.Context, string, string, error)             {}
func (NoopPipelineHooks) OnRecordDegraded(context.Context, string, string, error)            {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

var (
	hooksMu       sync.RWMutex
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
)

// SetPipelineHooks registers pipeline hooks. A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers cache hooks. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers HTTP hooks. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores the no-op defaults. Tests use it to clean up.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
