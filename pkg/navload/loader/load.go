package loader

import (
	"context"
	"time"

	"github.com/ib-77/navload/pkg/navload"
	"github.com/ib-77/navload/pkg/navload/nav"
)

// Settlement describes a finished fetch attempt.
type Settlement struct {
	Key      string
	Target   *nav.Target
	Duration time.Duration
}

// Load is the handle of one dispatched fetch. It settles exactly once:
// success (including swallowed lazy errors and redirect markers), failure
// with a *navload.FetchError when the error must fail the navigation, or
// cancel with navload.ErrStaleResult when a newer fetch superseded it.
type Load struct {
	done chan struct{}
	res  navload.Result[Settlement]
}

var _ navload.Awaitable[Settlement] = (*Load)(nil)

func newLoad() *Load {
	return &Load{done: make(chan struct{})}
}

func resolvedLoad(s Settlement) *Load {
	l := newLoad()
	l.settle(navload.Success(s))
	return l
}

func (l *Load) settle(r navload.Result[Settlement]) {
	l.res = r
	close(l.done)
}

func (l *Load) Done() <-chan struct{} {
	return l.done
}

// Result is valid once Done is closed.
func (l *Load) Result() navload.Result[Settlement] {
	return l.res
}

// Wait blocks until the load settles or ctx ends. Only failures are
// returned as errors.
func (l *Load) Wait(ctx context.Context) error {
	select {
	case <-l.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	if l.res.IsFailure() {
		return l.res.Err()
	}
	return nil
}
