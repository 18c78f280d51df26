package guard_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ib-77/navload/internal/logger"
	"github.com/ib-77/navload/pkg/navload"
	"github.com/ib-77/navload/pkg/navload/core"
	"github.com/ib-77/navload/pkg/navload/guard"
	"github.com/ib-77/navload/pkg/navload/loader"
	"github.com/ib-77/navload/pkg/navload/nav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func newRouter(opts ...nav.Option) *nav.Router {
	return nav.New(append([]nav.Option{nav.WithLogger(logger.Discard())}, opts...)...)
}

func testCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func loc(raw string) nav.Location {
	return nav.MustParseLocation(raw)
}

// read returns a loader's committed state as a view would see it.
func read[T any](t *testing.T, ctx context.Context, r *nav.Router, l *loader.Loader[T]) *loader.Accessor[T] {
	t.Helper()
	acc, err := l.Use(core.WithRouter(ctx, r))
	require.NoError(t, err)
	return acc
}

type recordingMetrics struct {
	mu          sync.Mutex
	navigations []string
}

func (m *recordingMetrics) ObserveFetch(string, string, time.Duration) {}
func (m *recordingMetrics) RecordDeduplicated(string)                  {}
func (m *recordingMetrics) RecordStale(string)                         {}
func (m *recordingMetrics) RecordCommit(string)                        {}
func (m *recordingMetrics) RecordInitialData(string)                   {}

func (m *recordingMetrics) ObserveNavigation(outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.navigations = append(m.navigations, outcome)
}

func (m *recordingMetrics) outcomes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.navigations...)
}

func TestNavigate_InitialDataThenFetch(t *testing.T) {
	t.Parallel()
	ctx := testCtx(t)

	spy := atomic.NewInt32(0)
	l := loader.Define(func(_ context.Context, to *nav.Target) (string, error) {
		spy.Inc()
		return to.Location.Query.Get("p"), nil
	}, loader.WithKey("d1"))

	r := newRouter(nav.WithInitialData(map[string]any{"d1": "f1"}))
	g := guard.New(r).Register(guard.View{Path: "/fetch", Loaders: []loader.Loadable{l}})

	_, err := g.Navigate(ctx, loc("/fetch"))
	require.NoError(t, err)
	assert.Equal(t, "f1", read(t, ctx, r, l).Data().Get())
	assert.Equal(t, int32(0), spy.Load())

	to, err := g.Navigate(ctx, loc("/fetch?p=two"))
	require.NoError(t, err)
	assert.Same(t, to, r.Current())
	assert.Equal(t, int32(1), spy.Load())
	assert.Equal(t, "two", read(t, ctx, r, l).Data().Get())
}

func TestNavigate_NonLazyRejectionFailsNavigation(t *testing.T) {
	t.Parallel()
	ctx := testCtx(t)

	boom := errors.New("boom")
	l := loader.Define(func(context.Context, *nav.Target) (int, error) { return 0, boom })
	r := newRouter()
	g := guard.New(r).Register(guard.View{Path: "/a", Loaders: []loader.Loadable{l}})
	before := r.Current()

	to, err := g.Navigate(ctx, loc("/a"))
	assert.Nil(t, to)
	assert.ErrorIs(t, err, boom)
	assert.True(t, navload.IsFetchError(err))
	assert.Same(t, before, r.Current())
	assert.Nil(t, r.Pending())
}

func TestNavigate_LazyRejectionKeepsData(t *testing.T) {
	t.Parallel()
	ctx := testCtx(t)

	boom := errors.New("boom")
	fail := atomic.NewBool(false)
	l := loader.Define(func(context.Context, *nav.Target) (string, error) {
		if fail.Load() {
			return "", boom
		}
		return "ok", nil
	}, loader.Lazy())
	r := newRouter()
	g := guard.New(r).Register(guard.View{Path: "/a", Loaders: []loader.Loadable{l}})

	_, err := g.Navigate(ctx, loc("/a?n=1"))
	require.NoError(t, err)

	fail.Store(true)
	_, err = g.Navigate(ctx, loc("/a?n=2"))
	require.NoError(t, err)

	acc := read(t, ctx, r, l)
	assert.Equal(t, boom, acc.Error().Get())
	assert.Equal(t, "ok", acc.Data().Get())
}

func TestNavigate_NestedLoaderCommittedWithParent(t *testing.T) {
	t.Parallel()
	ctx := testCtx(t)

	user := loader.Define(func(_ context.Context, to *nav.Target) (string, error) {
		return "user-" + to.Location.Query.Get("id"), nil
	}, loader.WithCommit(loader.CommitAfterLoad))
	page := loader.Define(func(ctx context.Context, _ *nav.Target) (string, error) {
		acc, err := user.Use(ctx)
		if err != nil {
			return "", err
		}
		name, err := acc.Wait(ctx)
		if err != nil {
			return "", err
		}
		return "profile of " + name, nil
	}, loader.WithCommit(loader.CommitAfterLoad))

	r := newRouter()
	g := guard.New(r).Register(guard.View{Path: "/profile", Loaders: []loader.Loadable{page}})

	_, err := g.Navigate(ctx, loc("/profile?id=7"))
	require.NoError(t, err)

	assert.Equal(t, "profile of user-7", read(t, ctx, r, page).Data().Get())
	assert.Equal(t, "user-7", read(t, ctx, r, user).Data().Get())
}

func TestNavigate_NestedRejectionFailsParent(t *testing.T) {
	t.Parallel()
	ctx := testCtx(t)

	boom := errors.New("child down")
	child := loader.Define(func(context.Context, *nav.Target) (int, error) { return 0, boom })
	parent := loader.Define(func(ctx context.Context, _ *nav.Target) (int, error) {
		acc, err := child.Use(ctx)
		if err != nil {
			return 0, err
		}
		return acc.Wait(ctx)
	})
	r := newRouter()
	g := guard.New(r).Register(guard.View{Path: "/p", Loaders: []loader.Loadable{parent}})

	_, err := g.Navigate(ctx, loc("/p"))
	assert.ErrorIs(t, err, boom)
}

func TestNavigate_Redirect(t *testing.T) {
	t.Parallel()
	ctx := testCtx(t)

	auth := loader.Define(func(context.Context, *nav.Target) (bool, error) {
		return false, nav.Redirect(loc("/login?next=/private"))
	})
	form := loader.Define(func(context.Context, *nav.Target) (string, error) { return "form", nil })

	r := newRouter()
	g := guard.New(r).
		Register(guard.View{Path: "/private", Loaders: []loader.Loadable{auth}}).
		Register(guard.View{Path: "/login", Loaders: []loader.Loadable{form}})

	to, err := g.Navigate(ctx, loc("/private"))
	require.NoError(t, err)
	assert.Equal(t, "/login", to.Path())
	assert.Equal(t, "/private", to.Location.Query.Get("next"))
	assert.Same(t, to, r.Current())
	assert.Equal(t, "form", read(t, ctx, r, form).Data().Get())
}

func TestNavigate_RedirectLoop(t *testing.T) {
	t.Parallel()
	ctx := testCtx(t)

	ping := loader.Define(func(context.Context, *nav.Target) (int, error) {
		return 0, nav.Redirect(loc("/pong"))
	})
	pong := loader.Define(func(context.Context, *nav.Target) (int, error) {
		return 0, nav.Redirect(loc("/ping"))
	})
	m := &recordingMetrics{}
	r := newRouter(nav.WithMetrics(m))
	g := guard.New(r, guard.WithMaxRedirects(3)).
		Register(guard.View{Path: "/ping", Loaders: []loader.Loadable{ping}}).
		Register(guard.View{Path: "/pong", Loaders: []loader.Loadable{pong}})

	_, err := g.Navigate(ctx, loc("/ping"))
	assert.ErrorIs(t, err, guard.ErrTooManyRedirects)
	assert.Equal(t, []string{"redirect_limit"}, m.outcomes())
}

func TestNavigate_CancelMarker(t *testing.T) {
	t.Parallel()
	ctx := testCtx(t)

	l := loader.Define(func(context.Context, *nav.Target) (int, error) { return 0, nav.Cancel() })
	r := newRouter()
	g := guard.New(r).Register(guard.View{Path: "/stay", Loaders: []loader.Loadable{l}})
	before := r.Current()

	_, err := g.Navigate(ctx, loc("/stay"))
	assert.ErrorIs(t, err, guard.ErrNavigationCancelled)
	assert.Same(t, before, r.Current())
}

func TestNavigate_UnknownView(t *testing.T) {
	t.Parallel()

	g := guard.New(newRouter())
	_, err := g.Navigate(testCtx(t), loc("/nowhere"))

	var uv *guard.UnknownViewError
	require.ErrorAs(t, err, &uv)
	assert.Equal(t, "/nowhere", uv.Path)
}

func TestNavigate_SupersededByNewerNavigation(t *testing.T) {
	t.Parallel()
	ctx := testCtx(t)

	started := make(chan struct{})
	slow := loader.Define(func(ctx context.Context, _ *nav.Target) (int, error) {
		close(started)
		<-ctx.Done()
		return 0, ctx.Err()
	})
	fast := loader.Define(func(context.Context, *nav.Target) (int, error) { return 1, nil })

	r := newRouter()
	g := guard.New(r).
		Register(guard.View{Path: "/slow", Loaders: []loader.Loadable{slow}}).
		Register(guard.View{Path: "/fast", Loaders: []loader.Loadable{fast}})

	errs := make(chan error, 1)
	go func() {
		_, err := g.Navigate(ctx, loc("/slow"))
		errs <- err
	}()
	<-started

	to, err := g.Navigate(ctx, loc("/fast"))
	require.NoError(t, err)
	assert.Same(t, to, r.Current())

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, guard.ErrNavigationAborted)
	case <-ctx.Done():
		t.Fatalf("superseded navigation did not return")
	}
}

func TestNavigate_CallerCancellation(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	l := loader.Define(func(ctx context.Context, _ *nav.Target) (int, error) {
		close(started)
		<-ctx.Done()
		return 0, ctx.Err()
	})
	r := newRouter()
	g := guard.New(r).Register(guard.View{Path: "/a", Loaders: []loader.Loadable{l}})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := g.Navigate(ctx, loc("/a"))
	assert.ErrorIs(t, err, guard.ErrNavigationAborted)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, r.Pending())
}

func TestNavigate_ServerModeSkipsClientOnly(t *testing.T) {
	t.Parallel()
	ctx := testCtx(t)

	clientCalls := atomic.NewInt32(0)
	shared := loader.Define(func(context.Context, *nav.Target) (string, error) {
		return "rendered", nil
	}, loader.WithKey("shared"))
	browser := loader.Define(func(context.Context, *nav.Target) (string, error) {
		clientCalls.Inc()
		return "window", nil
	}, loader.WithKey("browser"), loader.ClientOnly())

	r := newRouter(nav.WithServerMode(true))
	g := guard.New(r).Register(guard.View{Path: "/", Loaders: []loader.Loadable{shared, browser}})

	_, err := g.Navigate(ctx, loc("/"))
	require.NoError(t, err)
	assert.Equal(t, int32(0), clientCalls.Load())
	assert.Equal(t, map[string]any{"shared": "rendered"}, r.ServerSnapshot())
}

func TestNavigate_ServerSnapshotHydratesClient(t *testing.T) {
	t.Parallel()
	ctx := testCtx(t)

	calls := atomic.NewInt32(0)
	define := func() *loader.Loader[string] {
		return loader.Define(func(context.Context, *nav.Target) (string, error) {
			calls.Inc()
			return "fresh", nil
		}, loader.WithKey("page"))
	}

	server := newRouter(nav.WithServerMode(true))
	_, err := guard.New(server).
		Register(guard.View{Path: "/", Loaders: []loader.Loadable{define()}}).
		Navigate(ctx, loc("/"))
	require.NoError(t, err)
	require.Equal(t, int32(1), calls.Load())

	l := define()
	client := newRouter(nav.WithInitialData(server.ServerSnapshot()))
	_, err = guard.New(client).
		Register(guard.View{Path: "/", Loaders: []loader.Loadable{l}}).
		Navigate(ctx, loc("/"))
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "fresh", read(t, ctx, client, l).Data().Get())
}

func TestNavigate_Metrics(t *testing.T) {
	t.Parallel()
	ctx := testCtx(t)

	ok := loader.Define(func(context.Context, *nav.Target) (int, error) { return 1, nil })
	bad := loader.Define(func(context.Context, *nav.Target) (int, error) { return 0, errors.New("x") })
	m := &recordingMetrics{}
	r := newRouter(nav.WithMetrics(m))
	g := guard.New(r).
		Register(guard.View{Path: "/ok", Loaders: []loader.Loadable{ok}}).
		Register(guard.View{Path: "/bad", Loaders: []loader.Loadable{bad}})

	_, _ = g.Navigate(ctx, loc("/ok"))
	_, _ = g.Navigate(ctx, loc("/bad"))
	assert.Equal(t, []string{"accepted", "failed"}, m.outcomes())
}
