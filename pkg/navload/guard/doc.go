// Package guard runs navigations for a nav.Router.
//
// Views are registered with the loaders they need. Navigate creates a fresh
// target, supersedes any navigation still pending, loads every loader of the
// destination view and waits for all of them. Then exactly one of:
//
//   - a loader failed: the navigation fails with its *navload.FetchError
//   - a loader returned a redirect marker: Navigate follows it
//   - a loader returned a cancel marker: ErrNavigationCancelled
//   - the target was aborted meanwhile: ErrNavigationAborted
//   - otherwise the target becomes current and every loader is committed
//
// Loaders marked ClientOnly are skipped when the router is in server mode.
package guard
