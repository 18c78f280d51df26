// Package navload holds the types shared by the navigation-scoped data loading
// packages: the settlement record Result[T], the error taxonomy, and warning
// kinds.
//
// Packages:
// - cell: observable value containers read by views
// - nav: navigation targets, markers, and the per-instance router state
// - core: the context stack carried through context.Context, settlement gathering
// - loader: Define, the entry lifecycle and the staged-commit protocol
// - guard: runs loaders on navigation and decides commit, redirect, or abort
// - metrics: optional instrumentation
package navload
