package guard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ib-77/navload/internal/logger"
	"github.com/ib-77/navload/pkg/navload"
	"github.com/ib-77/navload/pkg/navload/core"
	"github.com/ib-77/navload/pkg/navload/loader"
	"github.com/ib-77/navload/pkg/navload/metrics"
	"github.com/ib-77/navload/pkg/navload/nav"
)

// DefaultMaxRedirects bounds redirect chains started by a single Navigate.
const DefaultMaxRedirects = 10

// View is a routable destination and the loaders it needs.
type View struct {
	Path    string
	Loaders []loader.Loadable
}

// Guard drives navigations on one router: it loads every loader of the
// destination view and then commits, redirects or aborts.
type Guard struct {
	router *nav.Router

	mu    sync.RWMutex
	views map[string]View

	maxRedirects int
	log          *slog.Logger
}

type Option func(*Guard)

// WithMaxRedirects sets how many redirects one navigation may follow.
func WithMaxRedirects(n int) Option {
	return func(g *Guard) {
		if n >= 0 {
			g.maxRedirects = n
		}
	}
}

// WithLogger overrides the router's logger for navigation events.
func WithLogger(l *slog.Logger) Option {
	return func(g *Guard) {
		if l != nil {
			g.log = l
		}
	}
}

func New(r *nav.Router, opts ...Option) *Guard {
	g := &Guard{
		router:       r,
		views:        make(map[string]View),
		maxRedirects: DefaultMaxRedirects,
		log:          r.Logger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Register adds or replaces the view for v.Path.
func (g *Guard) Register(v View) *Guard {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.views[v.Path] = v
	return g
}

func (g *Guard) Router() *nav.Router {
	return g.router
}

// View returns the view registered for path.
func (g *Guard) View(path string) (View, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, ok := g.views[path]
	return v, ok
}

// Navigate moves the router to loc. It returns the accepted target, which
// differs from the requested location when a loader redirected.
//
// Cancelling ctx aborts the navigation; loaders see it through the target's
// context.
func (g *Guard) Navigate(ctx context.Context, loc nav.Location) (*nav.Target, error) {
	start := time.Now()
	to, err := g.navigate(ctx, loc, 0)
	metrics.ObserveNavigation(g.router.Metrics(), outcome(err), time.Since(start))
	return to, err
}

func (g *Guard) navigate(ctx context.Context, loc nav.Location, redirects int) (*nav.Target, error) {
	view, ok := g.View(loc.Path)
	if !ok {
		return nil, &UnknownViewError{Path: loc.Path}
	}

	// the target outlives ctx only as far as its abort cause is concerned
	to := nav.NewTarget(context.WithoutCancel(ctx), loc)
	stop := context.AfterFunc(ctx, func() {
		to.Abort(context.Cause(ctx))
	})
	defer stop()

	log := g.log.With(logger.KeyTarget, to.ID, logger.KeyPath, to.String())

	if prev := g.router.Begin(to); prev != nil {
		prev.Abort(ErrNavigationAborted)
		log.Debug("superseding pending navigation", "previous", prev.ID)
	}

	loaders := g.activeLoaders(view)
	loadCtx := core.WithoutFrame(ctx)
	items := make([]navload.Awaitable[loader.Settlement], len(loaders))
	for i, l := range loaders {
		items[i] = l.Load(loadCtx, to, g.router)
	}
	log.Debug("navigation started", "loaders", len(items))

	results := core.Gather(to.Context(), items, core.GatherHandlers[loader.Settlement]{
		OnCancel: func(_ context.Context, unsettled []int) {
			log.Debug("navigation aborted while loading", "unsettled", len(unsettled))
		},
	})

	if to.Aborted() || g.router.Pending() != to {
		g.router.Finish(to, false)
		return nil, abortError(to.Cause())
	}

	if i := core.FirstFailure(results); i >= 0 {
		err := results[i].Err()
		to.Abort(err)
		g.router.Finish(to, false)
		log.Warn("navigation failed", logger.KeyError, err)
		return nil, err
	}

	if markers := to.Results(); len(markers) > 0 {
		m := markers[0]
		to.Abort(m)
		g.router.Finish(to, false)
		if m.Kind == nav.KindCancel {
			log.Debug("navigation cancelled by loader")
			return nil, ErrNavigationCancelled
		}
		if redirects >= g.maxRedirects {
			return nil, ErrTooManyRedirects
		}
		log.Debug("navigation redirected", "to", m.To.String())
		return g.navigate(ctx, m.To, redirects+1)
	}

	if !g.router.Finish(to, true) {
		return nil, ErrNavigationAborted
	}
	for _, l := range loaders {
		l.Commit(g.router, to)
	}
	log.Debug("navigation accepted")
	return to, nil
}

// activeLoaders drops client-only loaders when rendering on the server.
func (g *Guard) activeLoaders(v View) []loader.Loadable {
	if !g.router.IsServer() {
		return v.Loaders
	}
	out := make([]loader.Loadable, 0, len(v.Loaders))
	for _, l := range v.Loaders {
		if l.Options().Server {
			out = append(out, l)
		}
	}
	return out
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case navload.IsFetchError(err):
		return "failed"
	case errors.Is(err, ErrNavigationCancelled):
		return "cancelled"
	case errors.Is(err, ErrTooManyRedirects):
		return "redirect_limit"
	default:
		return "aborted"
	}
}
