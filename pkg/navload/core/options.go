package core

import (
	"context"

	"github.com/ib-77/navload/pkg/navload/nav"
)

type ContextKey string

const (
	FrameContextKey  ContextKey = "navload_frame"
	RouterContextKey ContextKey = "navload_router"
)

// Frame is the current loading context: the entry whose fetch is running,
// the router it belongs to, and the navigation it runs for. A loader invoked
// with a frame in its context is a nested dependency of Frame.Entry.
type Frame struct {
	Entry  nav.Entry
	Router *nav.Router
	Target *nav.Target
}

// WithFrame returns ctx with f as the current frame. The parent context keeps
// its own frame, so restoring the caller's frame needs no bookkeeping.
func WithFrame(ctx context.Context, f Frame) context.Context {
	return context.WithValue(ctx, FrameContextKey, f)
}

// WithoutFrame hides any frame inherited from ctx.
func WithoutFrame(ctx context.Context) context.Context {
	return context.WithValue(ctx, FrameContextKey, Frame{})
}

// CurrentFrame returns the frame carried by ctx. ok is false when no loader
// is executing in this context.
func CurrentFrame(ctx context.Context) (f Frame, ok bool) {
	f, ok = ctx.Value(FrameContextKey).(Frame)
	if !ok || f.Entry == nil {
		return Frame{}, false
	}
	return f, true
}

// WithRouter attaches the ambient router used when no frame is present,
// the way a view obtains the application router.
func WithRouter(ctx context.Context, r *nav.Router) context.Context {
	return context.WithValue(ctx, RouterContextKey, r)
}

func RouterFrom(ctx context.Context) (*nav.Router, bool) {
	r, ok := ctx.Value(RouterContextKey).(*nav.Router)
	return r, ok && r != nil
}
