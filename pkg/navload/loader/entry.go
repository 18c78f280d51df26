package loader

import (
	"slices"

	"github.com/ib-77/navload/internal/logger"
	"github.com/ib-77/navload/pkg/navload"
	"github.com/ib-77/navload/pkg/navload/cell"
	"github.com/ib-77/navload/pkg/navload/metrics"
	"github.com/ib-77/navload/pkg/navload/nav"
)

// Entry is the state one loader keeps inside one router.
type Entry interface {
	nav.Entry
	Key() string
	// PendingTo is the navigation the entry is loading for, nil once
	// committed.
	PendingTo() *nav.Target
	// Children are the nested entries attached during the current load cycle.
	Children() []Entry

	commitLocked(t *nav.Target)
	addChildLocked(child Entry)
	pendingToLocked() *nav.Target
}

type entry[T any] struct {
	router  *nav.Router
	options Options

	data      *cell.Cell[T]
	err       *cell.Cell[error]
	isLoading *cell.Cell[bool]

	pendingTo   *nav.Target
	pendingLoad *Load

	staged      T
	hasStaged   bool
	stagedError error

	children []Entry
}

func newEntry[T any](r *nav.Router, options Options) *entry[T] {
	var zero T
	return &entry[T]{
		router:    r,
		options:   options,
		data:      cell.New(zero),
		err:       cell.New[error](nil),
		isLoading: cell.New(false),
	}
}

func (e *entry[T]) Key() string {
	return e.options.Key
}

func (e *entry[T]) PendingTo() *nav.Target {
	s := e.router.Entries()
	s.Lock()
	defer s.Unlock()
	return e.pendingTo
}

func (e *entry[T]) pendingToLocked() *nav.Target {
	return e.pendingTo
}

func (e *entry[T]) Children() []Entry {
	s := e.router.Entries()
	s.Lock()
	defer s.Unlock()
	return slices.Clone(e.children)
}

// Commit publishes the staged value and error if the entry is still pending
// for t, then commits its children. Calling it for any other target, or a
// second time, does nothing.
func (e *entry[T]) Commit(t *nav.Target) {
	s := e.router.Entries()
	s.Lock()
	defer s.Unlock()
	e.commitLocked(t)
}

func (e *entry[T]) commitLocked(t *nav.Target) {
	if t == nil || e.pendingTo != t {
		return
	}

	if e.hasStaged {
		e.data.Set(e.staged)
		e.router.RecordServerData(e.options.Key, e.staged)
	} else {
		e.router.Logger().Debug("commit without staged value",
			logger.KeyWarning, navload.WarningNoStagedValue,
			logger.KeyLoader, e.options.Key,
			logger.KeyTarget, t.ID)
	}
	// the error is always published: a failed attempt keeps the last good
	// data next to the new error
	e.err.Set(e.stagedError)

	var zero T
	e.staged = zero
	e.hasStaged = false
	e.stagedError = e.err.Get()
	// pendingLoad stays so later readers can still wait on it
	e.pendingTo = nil

	metrics.RecordCommit(e.router.Metrics(), e.options.Key)

	for _, child := range e.children {
		child.commitLocked(t)
	}
}

func (e *entry[T]) addChildLocked(child Entry) {
	if slices.Contains(e.children, child) {
		return
	}
	e.children = append(e.children, child)
}

// stagedOrCommittedLocked prefers the staged value, which is newer than
// anything committed.
func (e *entry[T]) stagedOrCommittedLocked() T {
	if e.hasStaged {
		return e.staged
	}
	return e.data.Get()
}
