// Package core contains the plumbing shared by loaders and the guard: the
// loading-context stack carried through context.Context and the gatherer that
// waits for a batch of loads. It holds no loading policy itself.
//
// Key constructs:
// - Frame, WithFrame, CurrentFrame: which entry is executing, for nested loaders
// - WithRouter, RouterFrom: the ambient router for views outside any loader
// - Gather: wait for many awaitables with early exit on cancellation
package core
