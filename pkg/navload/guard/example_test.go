package guard_test

import (
	"context"
	"fmt"

	"github.com/ib-77/navload/internal/logger"
	"github.com/ib-77/navload/pkg/navload/core"
	"github.com/ib-77/navload/pkg/navload/guard"
	"github.com/ib-77/navload/pkg/navload/loader"
	"github.com/ib-77/navload/pkg/navload/nav"
)

type Article struct {
	Slug  string
	Title string
}

func ExampleGuard_Navigate() {
	ctx := context.Background()

	session := loader.Define(func(context.Context, *nav.Target) (bool, error) {
		return true, nil
	}, loader.WithKey("session"))

	article := loader.Define(func(ctx context.Context, to *nav.Target) (Article, error) {
		acc, err := session.Use(ctx)
		if err != nil {
			return Article{}, err
		}
		if ok, err := acc.Wait(ctx); err != nil || !ok {
			return Article{}, nav.Redirect(nav.MustParseLocation("/login"))
		}
		slug := to.Location.Query.Get("slug")
		return Article{Slug: slug, Title: "All about " + slug}, nil
	}, loader.WithKey("article"), loader.WithCommit(loader.CommitAfterLoad))

	r := nav.New(nav.WithLogger(logger.Discard()))
	g := guard.New(r).
		Register(guard.View{Path: "/article", Loaders: []loader.Loadable{article}})

	to, err := g.Navigate(ctx, nav.MustParseLocation("/article?slug=gophers"))
	if err != nil {
		fmt.Println("navigation failed:", err)
		return
	}
	fmt.Println("at", to)

	acc, _ := article.Use(core.WithRouter(ctx, r))
	fmt.Println(acc.Data().Get().Title)

	_, err = g.Navigate(ctx, nav.MustParseLocation("/missing"))
	fmt.Println(err)

	// Output:
	// at /article?slug=gophers
	// All about gophers
	// guard: no view registered for "/missing"
}
