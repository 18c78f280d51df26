package nav

import (
	"context"
	"log/slog"
	"maps"
	"sync"

	"github.com/ib-77/navload/internal/logger"
	"github.com/ib-77/navload/pkg/navload/metrics"
)

// Router is the per-instance navigation state that loaders need: the Entry
// Store, the current and pending targets, and the server/client snapshots.
// Several routers can coexist; entries are never shared between them.
type Router struct {
	entries *Store

	mu          sync.RWMutex
	current     *Target
	pending     *Target
	initialData map[string]any
	serverData  map[string]any

	server  bool
	log     *slog.Logger
	metrics metrics.LoaderMetrics
}

type Option func(*Router)

// WithLogger sets the router logger. Defaults to the process logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.log = l
		}
	}
}

// WithMetrics enables instrumentation. nil keeps it disabled.
func WithMetrics(m metrics.LoaderMetrics) Option {
	return func(r *Router) {
		r.metrics = m
	}
}

// WithServerMode marks the router as rendering on the server: every fetch
// error propagates and committed keyed values are recorded in the server
// snapshot.
func WithServerMode(server bool) Option {
	return func(r *Router) {
		r.server = server
	}
}

// WithInitialData installs a one-shot snapshot, see SetInitialData.
func WithInitialData(data map[string]any) Option {
	return func(r *Router) {
		r.initialData = maps.Clone(data)
	}
}

// New creates a router positioned on the start location "/".
func New(opts ...Option) *Router {
	r := &Router{
		entries: NewStore(),
		current: NewTarget(context.Background(), Location{Path: "/"}),
		log:     logger.Get(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.server {
		r.serverData = make(map[string]any)
	}
	return r
}

// Entries returns the router's Entry Store.
func (r *Router) Entries() *Store {
	return r.entries
}

func (r *Router) Logger() *slog.Logger {
	return r.log
}

func (r *Router) Metrics() metrics.LoaderMetrics {
	return r.metrics
}

func (r *Router) IsServer() bool {
	return r.server
}

// Current is the last accepted navigation.
func (r *Router) Current() *Target {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Pending is the navigation in progress, or nil.
func (r *Router) Pending() *Target {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pending
}

// Begin makes t the pending navigation and returns the one it replaces.
func (r *Router) Begin(t *Target) (previous *Target) {
	r.mu.Lock()
	defer r.mu.Unlock()
	previous = r.pending
	r.pending = t
	return previous
}

// Finish clears the pending navigation if it is still t. When accept is
// true t also becomes the current navigation. It reports whether t was
// still pending.
func (r *Router) Finish(t *Target, accept bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending != t {
		return false
	}
	r.pending = nil
	if accept {
		r.current = t
	}
	return true
}

// SetInitialData installs a key to value snapshot produced by a server
// render. Each key is consumed by the first load that asks for it.
func (r *Router) SetInitialData(data map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.initialData = maps.Clone(data)
}

// TakeInitialData removes and returns the snapshot value for key.
func (r *Router) TakeInitialData(key string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.initialData == nil {
		return nil, false
	}
	v, ok := r.initialData[key]
	if ok {
		delete(r.initialData, key)
	}
	return v, ok
}

// RecordServerData stores a committed value for the server snapshot. It is
// a no-op outside server mode or for an empty key.
func (r *Router) RecordServerData(key string, v any) {
	if !r.server || key == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.serverData[key] = v
}

// ServerSnapshot returns a copy of the values recorded in server mode.
func (r *Router) ServerSnapshot() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.serverData)
}
