package nav

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrAborted is the default abort cause of a target.
var ErrAborted = errors.New("nav: navigation aborted")

// Target is one navigation attempt. Its pointer identity is what loaders
// compare; two attempts to the same location are distinct targets.
//
// The target's context is the abort signal handed to every fetch started for
// this attempt. The collector gathers redirect and cancel markers returned by
// those fetches.
type Target struct {
	ID       uuid.UUID
	Location Location

	ctx    context.Context
	cancel context.CancelCauseFunc

	mu      sync.Mutex
	results []*Result
}

// NewTarget creates an attempt whose abort signal derives from parent.
func NewTarget(parent context.Context, loc Location) *Target {
	ctx, cancel := context.WithCancelCause(parent)
	return &Target{
		ID:       uuid.New(),
		Location: loc,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Context is cancelled when the attempt is aborted or superseded.
func (t *Target) Context() context.Context {
	return t.ctx
}

// Abort signals every fetch of this attempt. A nil cause uses ErrAborted.
func (t *Target) Abort(cause error) {
	if cause == nil {
		cause = ErrAborted
	}
	t.cancel(cause)
}

// Aborted reports whether the abort signal fired.
func (t *Target) Aborted() bool {
	return t.ctx.Err() != nil
}

// Cause returns why the attempt was aborted, or nil.
func (t *Target) Cause() error {
	return context.Cause(t.ctx)
}

// Collect stores a marker for the guard.
func (t *Target) Collect(r *Result) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.results = append(t.results, r)
}

// Results returns the collected markers in arrival order.
func (t *Target) Results() []*Result {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*Result, len(t.results))
	copy(out, t.results)
	return out
}

func (t *Target) Path() string {
	return t.Location.Path
}

func (t *Target) String() string {
	return t.Location.FullPath()
}
