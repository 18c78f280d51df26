// Package nav models the navigation engine surface that loaders consume.
//
// Highlights:
// - Location/ParseLocation: where a navigation goes
// - Target: one navigation attempt, with an abort signal and a marker collector
// - Redirect/Cancel: markers a fetch returns as its error to steer the navigation
// - Router: per-instance Entry Store, pending/current targets, snapshots
// - Handle/Store: loader identity tokens and the entry map keyed by them
package nav
