package loader

import (
	"context"
	"errors"

	"github.com/ib-77/navload/internal/logger"
	"github.com/ib-77/navload/pkg/navload"
	"github.com/ib-77/navload/pkg/navload/cell"
	"github.com/ib-77/navload/pkg/navload/core"
	"github.com/ib-77/navload/pkg/navload/nav"
)

// ErrNoRouter is returned by Use when ctx carries neither a loading frame
// nor an ambient router.
var ErrNoRouter = errors.New("loader: no router in context")

// Accessor exposes a loader's state to a view or to another loader.
type Accessor[T any] struct {
	loader *Loader[T]
	router *nav.Router
	entry  *entry[T]
	load   *Load
	nested bool
}

// Use returns the loader's state for the navigation found in ctx.
//
// Inside a fetch function (ctx carries a frame) the loader becomes a child of
// the running entry and is loaded for the same navigation if it is not
// already. A fetch that was superseded or aborted gets an error instead and
// leaves the loader untouched. Elsewhere it resolves the ambient router (core.WithRouter) and its
// current navigation, loading only if the loader never ran on that router.
func (l *Loader[T]) Use(ctx context.Context) (*Accessor[T], error) {
	frame, nested := core.CurrentFrame(ctx)

	var (
		r      *nav.Router
		to     *nav.Target
		parent Entry
	)
	if nested {
		r, to = frame.Router, frame.Target
		parent, _ = frame.Entry.(Entry)
	} else {
		var ok bool
		if r, ok = core.RouterFrom(ctx); !ok {
			return nil, ErrNoRouter
		}
		to = r.Current()
	}

	s := r.Entries()
	s.Lock()
	if nested && frameSupersededLocked(frame, parent) {
		s.Unlock()
		return nil, staleFrameError(frame)
	}
	existing, ok := s.Get(l.handle)
	needLoad := !ok || (nested && existing.(*entry[T]).pendingTo != to)
	s.Unlock()

	if needLoad {
		l.load(ctx, to, r, loadParams{parent: parent})
	}

	s.Lock()
	if nested && frameSupersededLocked(frame, parent) {
		s.Unlock()
		return nil, staleFrameError(frame)
	}
	e := l.entryLocked(r)
	selfParent := false
	if parent != nil {
		if parent == Entry(e) {
			selfParent = true
		} else {
			parent.addChildLocked(e)
		}
	}
	pending := e.pendingLoad
	s.Unlock()

	if selfParent {
		r.Logger().Warn("loader uses itself as a dependency",
			logger.KeyWarning, navload.WarningSelfParent,
			logger.KeyLoader, l.options.Key)
	}

	return &Accessor[T]{
		loader: l,
		router: r,
		entry:  e,
		load:   pending,
		nested: nested,
	}, nil
}

// frameSupersededLocked reports whether the fetch that owns frame is no longer
// its entry's accepted one, or its navigation was aborted.
func frameSupersededLocked(frame core.Frame, parent Entry) bool {
	if frame.Target.Aborted() {
		return true
	}
	return parent != nil && parent.pendingToLocked() != frame.Target
}

func staleFrameError(frame core.Frame) error {
	if cause := frame.Target.Cause(); cause != nil {
		return cause
	}
	return navload.ErrStaleResult
}

// Data is the last committed value.
func (a *Accessor[T]) Data() *cell.Cell[T] {
	return a.entry.data
}

// Error is the last committed error.
func (a *Accessor[T]) Error() *cell.Cell[error] {
	return a.entry.err
}

func (a *Accessor[T]) IsLoading() *cell.Cell[bool] {
	return a.entry.isLoading
}

// Reload fetches again for to, bypassing deduplication, and commits once the
// fetch settles. A nil target reloads the router's current navigation.
func (a *Accessor[T]) Reload(ctx context.Context, to *nav.Target) error {
	if to == nil {
		to = a.router.Current()
	}
	load := a.loader.load(core.WithoutFrame(ctx), to, a.router, loadParams{force: true})
	if err := load.Wait(ctx); err != nil {
		return err
	}
	a.entry.Commit(to)
	return nil
}

// Wait blocks until the load observed by Use settles and returns the staged
// value, or the committed one when nothing is staged.
//
// Errors are only reported to nested callers, which need them to fail their
// own fetch. Top-level callers get the zero value and read the Error cell.
func (a *Accessor[T]) Wait(ctx context.Context) (T, error) {
	var zero T
	if a.load != nil {
		err := a.load.Wait(ctx)
		if cerr := ctx.Err(); cerr != nil && errors.Is(err, cerr) {
			return zero, err
		}
		if err != nil {
			if a.nested {
				return zero, err
			}
			return zero, nil
		}
	}

	s := a.router.Entries()
	s.Lock()
	defer s.Unlock()
	return a.entry.stagedOrCommittedLocked(), nil
}
