package core

import (
	"context"

	"github.com/ib-77/navload/pkg/navload"
)

type GatherHandlers[T any] struct {
	// OnSettled runs, in settlement order, for each item that settled in time.
	OnSettled func(ctx context.Context, index int, r navload.Result[T])
	// OnCancel runs once if ctx ends first, with the indexes still unsettled.
	OnCancel func(ctx context.Context, unsettled []int)
}

type indexed[T any] struct {
	index int
	res   navload.Result[T]
}

// Gather waits for every item and returns the results in item order. If ctx
// ends first, unsettled items are reported as Cancel results carrying the
// context's cause.
func Gather[T any](ctx context.Context, items []navload.Awaitable[T], handlers GatherHandlers[T]) []navload.Result[T] {
	results := make([]navload.Result[T], len(items))
	settled := make([]bool, len(items))

	// buffered so waiters never block once the collector has returned
	out := make(chan indexed[T], len(items))

	for i, it := range items {
		go func() {
			select {
			case <-it.Done():
				out <- indexed[T]{index: i, res: it.Result()}
			case <-ctx.Done():
			}
		}()
	}

	for remaining := len(items); remaining > 0; remaining-- {
		select {
		case r := <-out:
			results[r.index] = r.res
			settled[r.index] = true
			if handlers.OnSettled != nil {
				handlers.OnSettled(ctx, r.index, r.res)
			}
		case <-ctx.Done():
			var zero T
			unsettled := make([]int, 0, remaining)
			for i := range items {
				if !settled[i] {
					unsettled = append(unsettled, i)
					results[i] = navload.Cancel(zero, context.Cause(ctx))
				}
			}
			if handlers.OnCancel != nil {
				handlers.OnCancel(ctx, unsettled)
			}
			return results
		}
	}

	return results
}

// FirstFailure returns the index of the first failed result, or -1.
func FirstFailure[T any](results []navload.Result[T]) int {
	for i, r := range results {
		if r.IsFailure() {
			return i
		}
	}
	return -1
}
