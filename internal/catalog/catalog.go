// Package catalog is the small storefront the navdemo CLI navigates: a
// product page whose loader depends on a nested stock loader, an account page
// that redirects guests, and lazy client-only reviews.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ib-77/navload/pkg/navload/core"
	"github.com/ib-77/navload/pkg/navload/guard"
	"github.com/ib-77/navload/pkg/navload/loader"
	"github.com/ib-77/navload/pkg/navload/nav"
	"go.uber.org/atomic"
)

var (
	ErrNotFound           = errors.New("catalog: product not found")
	ErrReviewsUnavailable = errors.New("catalog: reviews unavailable")
)

// Loader keys, also used in snapshots.
const (
	KeySession = "session"
	KeyAccount = "account"
	KeyProduct = "product"
	KeyStock   = "stock"
	KeyReviews = "reviews"
)

type Product struct {
	ID         string `toml:"id"`
	Name       string `toml:"name"`
	PriceCents int64  `toml:"price_cents"`
}

type Stock struct {
	ProductID string `toml:"product_id"`
	Available int64  `toml:"available"`
}

type Account struct {
	User   string `toml:"user"`
	Orders int64  `toml:"orders"`
}

var products = map[string]Product{
	"1": {ID: "1", Name: "Gopher plush", PriceCents: 1999},
	"2": {ID: "2", Name: "Mug", PriceCents: 899},
	"3": {ID: "3", Name: "Sticker pack", PriceCents: 299},
}

var stock = map[string]int64{"1": 12, "2": 0, "3": 250}

type Options struct {
	// Latency is added to every fetch.
	Latency time.Duration
	// Commit applies to the nested loaders (session and stock).
	Commit loader.CommitMode
}

// Catalog owns one set of loaders. Routers may share it; each keeps its own
// entries.
type Catalog struct {
	Session *loader.Loader[string]
	Account *loader.Loader[Account]
	Product *loader.Loader[Product]
	Stock   *loader.Loader[Stock]
	Reviews *loader.Loader[[]string]

	latency time.Duration
	calls   map[string]*atomic.Int64
}

func New(opts Options) *Catalog {
	c := &Catalog{
		latency: opts.Latency,
		calls: map[string]*atomic.Int64{
			KeySession: atomic.NewInt64(0),
			KeyAccount: atomic.NewInt64(0),
			KeyProduct: atomic.NewInt64(0),
			KeyStock:   atomic.NewInt64(0),
			KeyReviews: atomic.NewInt64(0),
		},
	}

	c.Session = loader.Define(func(ctx context.Context, to *nav.Target) (string, error) {
		if err := c.fetching(ctx, KeySession); err != nil {
			return "", err
		}
		return to.Location.Query.Get("user"), nil
	}, loader.WithKey(KeySession), loader.WithCommit(opts.Commit))

	c.Account = loader.Define(func(ctx context.Context, to *nav.Target) (Account, error) {
		if err := c.fetching(ctx, KeyAccount); err != nil {
			return Account{}, err
		}
		user, err := waitFor(ctx, c.Session)
		if err != nil {
			return Account{}, err
		}
		if user == "" {
			login := nav.MustParseLocation("/login")
			login.Query.Set("next", to.String())
			return Account{}, nav.Redirect(login)
		}
		return Account{User: user, Orders: int64(len(user))}, nil
	}, loader.WithKey(KeyAccount), loader.WithCommit(loader.CommitAfterLoad))

	c.Stock = loader.Define(func(ctx context.Context, to *nav.Target) (Stock, error) {
		if err := c.fetching(ctx, KeyStock); err != nil {
			return Stock{}, err
		}
		id := to.Location.Query.Get("id")
		return Stock{ProductID: id, Available: stock[id]}, nil
	}, loader.WithKey(KeyStock), loader.WithCommit(opts.Commit))

	c.Product = loader.Define(func(ctx context.Context, to *nav.Target) (Product, error) {
		if err := c.fetching(ctx, KeyProduct); err != nil {
			return Product{}, err
		}
		id := to.Location.Query.Get("id")
		p, ok := products[id]
		if !ok {
			return Product{}, fmt.Errorf("%w: %q", ErrNotFound, id)
		}
		if _, err := waitFor(ctx, c.Stock); err != nil {
			return Product{}, err
		}
		return p, nil
	}, loader.WithKey(KeyProduct), loader.WithCommit(loader.CommitAfterLoad))

	c.Reviews = loader.Define(func(ctx context.Context, to *nav.Target) ([]string, error) {
		if err := c.fetching(ctx, KeyReviews); err != nil {
			return nil, err
		}
		switch to.Location.Query.Get("id") {
		case "1":
			return []string{"soft", "would hug again"}, nil
		case "2":
			return nil, ErrReviewsUnavailable
		default:
			return []string{}, nil
		}
	}, loader.WithKey(KeyReviews), loader.Lazy(), loader.ClientOnly())

	return c
}

func waitFor[T any](ctx context.Context, l *loader.Loader[T]) (T, error) {
	acc, err := l.Use(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return acc.Wait(ctx)
}

// fetching counts a fetch and applies the configured latency.
func (c *Catalog) fetching(ctx context.Context, key string) error {
	c.calls[key].Inc()
	if c.latency <= 0 {
		return nil
	}
	t := time.NewTimer(c.latency)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}

// Calls reports how many times the fetch for key ran.
func (c *Catalog) Calls(key string) int64 {
	if n, ok := c.calls[key]; ok {
		return n.Load()
	}
	return 0
}

func (c *Catalog) Views() []guard.View {
	return []guard.View{
		{Path: "/"},
		{Path: "/login", Loaders: []loader.Loadable{c.Session}},
		{Path: "/account", Loaders: []loader.Loadable{c.Account}},
		{Path: "/product", Loaders: []loader.Loadable{c.Product, c.Reviews}},
	}
}

// Register adds every catalog view to g.
func (c *Catalog) Register(g *guard.Guard) *guard.Guard {
	for _, v := range c.Views() {
		g.Register(v)
	}
	return g
}

// Describe renders the committed state of every loader that ran on r, one
// "key: value" line each, sorted by key.
func (c *Catalog) Describe(ctx context.Context, r *nav.Router) []string {
	ctx = core.WithRouter(ctx, r)
	var lines []string
	lines = appendState(ctx, lines, r, c.Session)
	lines = appendState(ctx, lines, r, c.Account)
	lines = appendState(ctx, lines, r, c.Product)
	lines = appendState(ctx, lines, r, c.Stock)
	lines = appendState(ctx, lines, r, c.Reviews)
	sort.Strings(lines)
	return lines
}

func appendState[T any](ctx context.Context, lines []string, r *nav.Router, l *loader.Loader[T]) []string {
	// Use would load a loader that never ran here
	if _, ok := l.Entry(r); !ok {
		return lines
	}
	acc, err := l.Use(ctx)
	if err != nil {
		return lines
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %+v", l.Options().Key, acc.Data().Get())
	if err := acc.Error().Get(); err != nil {
		fmt.Fprintf(&b, " (error: %v)", err)
	}
	return append(lines, b.String())
}
