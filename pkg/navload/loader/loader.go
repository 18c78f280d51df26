package loader

import (
	"context"
	"fmt"
	"time"

	"github.com/ib-77/navload/internal/logger"
	"github.com/ib-77/navload/pkg/navload"
	"github.com/ib-77/navload/pkg/navload/core"
	"github.com/ib-77/navload/pkg/navload/metrics"
	"github.com/ib-77/navload/pkg/navload/nav"
)

// FetchFunc produces a loader's data for a navigation. ctx is cancelled when
// the navigation is aborted or superseded; honouring it is optional. Return
// a *nav.Result as the error to redirect or cancel the navigation.
type FetchFunc[T any] func(ctx context.Context, to *nav.Target) (T, error)

// Loadable is the non-generic view of a loader used by the guard.
type Loadable interface {
	Handle() nav.Handle
	Options() Options
	// Load dispatches (or reuses) the fetch for to.
	Load(ctx context.Context, to *nav.Target, r *nav.Router) *Load
	// Commit publishes the entry's staged state for to.
	Commit(r *nav.Router, to *nav.Target)
	// Entry returns the loader's state in r, if it was ever loaded there.
	Entry(r *nav.Router) (Entry, bool)

	isLoader()
}

// IsLoader reports whether v was created by Define.
func IsLoader(v any) bool {
	_, ok := v.(Loadable)
	return ok
}

// Loader is a reusable loader handle created by Define.
type Loader[T any] struct {
	handle  nav.Handle
	fetch   FetchFunc[T]
	options Options
}

var _ Loadable = (*Loader[int])(nil)

// Define creates a loader around fetch.
func Define[T any](fetch FetchFunc[T], opts ...Option) *Loader[T] {
	return &Loader[T]{
		handle:  nav.NewHandle(),
		fetch:   fetch,
		options: resolveOptions(opts),
	}
}

func (l *Loader[T]) isLoader() {}

func (l *Loader[T]) Handle() nav.Handle {
	return l.handle
}

func (l *Loader[T]) Options() Options {
	return l.options
}

func (l *Loader[T]) Entry(r *nav.Router) (Entry, bool) {
	s := r.Entries()
	s.Lock()
	defer s.Unlock()
	e, ok := s.Get(l.handle)
	if !ok {
		return nil, false
	}
	return e.(Entry), true
}

func (l *Loader[T]) Commit(r *nav.Router, to *nav.Target) {
	if e, ok := l.Entry(r); ok {
		e.Commit(to)
	}
}

// Load runs the loader as a top-level load for to.
func (l *Loader[T]) Load(ctx context.Context, to *nav.Target, r *nav.Router) *Load {
	return l.load(ctx, to, r, loadParams{})
}

type loadParams struct {
	// parent is the entry expected to be the caller, nil for top level
	parent Entry
	// force skips deduplication
	force bool
}

// entryLocked resolves or creates the entry; the store must be locked.
func (l *Loader[T]) entryLocked(r *nav.Router) *entry[T] {
	e, _ := r.Entries().GetOrCreate(l.handle, func() nav.Entry {
		return newEntry[T](r, l.options)
	})
	return e.(*entry[T])
}

func (l *Loader[T]) load(ctx context.Context, to *nav.Target, r *nav.Router, p loadParams) *Load {
	key := l.options.Key
	log := r.Logger().With(logger.KeyLoader, key, logger.KeyTarget, to.ID, logger.KeyPath, to.String())

	s := r.Entries()
	s.Lock()
	e := l.entryLocked(r)

	// a nested loader may be asked before the guard reaches it
	if !p.force && e.pendingTo == to && e.pendingLoad != nil {
		pending := e.pendingLoad
		s.Unlock()
		metrics.RecordDeduplicated(r.Metrics(), key)
		log.Debug("reusing in-flight fetch")
		return pending
	}

	if key != "" {
		if raw, ok := r.TakeInitialData(key); ok {
			if v, ok := raw.(T); ok {
				e.data.Set(v)
				load := resolvedLoad(Settlement{Key: key, Target: to})
				e.pendingLoad = load
				s.Unlock()
				metrics.RecordInitialData(r.Metrics(), key)
				log.Debug("served from initial data")
				return load
			}
			log.Warn("initial data has the wrong type, fetching instead",
				"type", fmt.Sprintf("%T", raw))
		}
	}

	var current nav.Entry
	if f, ok := core.CurrentFrame(ctx); ok {
		current = f.Entry
	}
	var parent nav.Entry
	if p.parent != nil {
		parent = p.parent
	}
	mismatch := parent != current

	e.pendingTo = to
	e.isLoading.Set(true)
	var zero T
	e.staged = zero
	e.hasStaged = false
	// keep the committed error visible until the new attempt settles
	e.stagedError = e.err.Get()
	e.children = nil

	load := newLoad()
	e.pendingLoad = load
	s.Unlock()

	if mismatch {
		log.Warn("loader parent differs from the current context",
			logger.KeyWarning, navload.WarningParentMismatch)
	}
	log.Debug("fetch dispatched")

	fetchCtx := core.WithFrame(to.Context(), core.Frame{Entry: e, Router: r, Target: to})
	go l.run(fetchCtx, e, to, r, load, time.Now())

	return load
}

// run executes the fetch and applies its settlement if the load is still the
// entry's accepted one.
func (l *Loader[T]) run(ctx context.Context, e *entry[T], to *nav.Target, r *nav.Router, load *Load, start time.Time) {
	data, err := l.call(ctx, to)

	key := l.options.Key
	st := Settlement{Key: key, Target: to, Duration: time.Since(start)}

	s := r.Entries()
	s.Lock()
	accepted := e.pendingLoad == load

	var res navload.Result[Settlement]
	swallowed := false
	switch {
	case !accepted:
		res = navload.Cancel(st, navload.ErrStaleResult)
	case err != nil:
		if marker, ok := nav.AsResult(err); ok {
			to.Collect(marker)
			res = navload.Success(st)
			break
		}
		e.stagedError = err
		if !l.options.Lazy || r.IsServer() {
			res = navload.Fail(st, &navload.FetchError{Key: key, Target: to.ID, Err: err})
		} else {
			swallowed = true
			res = navload.Success(st)
		}
	default:
		e.staged = data
		e.hasStaged = true
		e.stagedError = nil
		res = navload.Success(st)
	}

	if accepted {
		e.isLoading.Set(false)
		// nested loaders commit here so their parents see them ready
		if l.options.Commit == CommitImmediate || r.Pending() == nil {
			e.commitLocked(to)
		}
	}
	s.Unlock()

	log := r.Logger().With(logger.KeyLoader, key, logger.KeyTarget, to.ID, "settlement", res.Id(), "settled_at", res.SettledAt())
	switch {
	case !accepted:
		metrics.RecordStale(r.Metrics(), key)
		log.Debug("dropping stale result")
	case swallowed:
		log.Debug("lazy fetch failed", logger.KeyError, err)
	case res.IsFailure():
		log.Debug("fetch failed", logger.KeyError, err)
	}
	metrics.ObserveFetch(r.Metrics(), key, navload.Outcome[Settlement](res), st.Duration)

	load.settle(res)
}

// call invokes the fetch function, turning a panic into an error.
func (l *Loader[T]) call(ctx context.Context, to *nav.Target) (data T, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("loader panicked: %v", p)
		}
	}()
	return l.fetch(ctx, to)
}
