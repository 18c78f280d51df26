// Package loader turns fetch functions into navigation-scoped loaders.
//
// A loader is created once with Define and keeps one entry per router. For
// every navigation the guard calls Load; the loader dispatches the fetch at
// most once per navigation target and stages its result. Staged results
// become visible (the Data and Error cells) on Commit, which the guard issues
// once the whole navigation is accepted, or right away for CommitImmediate
// loaders and loads made outside a navigation.
//
// A fetch that calls Use on another loader makes it a nested dependency: the
// child is loaded for the same target, waited on through Accessor.Wait, and
// committed together with its parent.
//
// Key constructs:
// - Define, Options: create a loader (Key, Lazy, ClientOnly, WithCommit)
// - Loader.Load/Commit: the protocol the guard drives
// - Loader.Use, Accessor: cells for views, Reload, Wait
// - Load: the settle-once handle of a dispatched fetch
//
// Only the latest dispatched fetch of an entry may change it; settlements of
// superseded fetches are dropped and reported as navload.ErrStaleResult.
package loader
