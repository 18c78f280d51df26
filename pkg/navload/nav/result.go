package nav

import (
	"errors"
	"fmt"
)

type ResultKind int

const (
	KindRedirect ResultKind = iota
	KindCancel
)

// Result is the marker a fetch returns, as its error, to redirect or cancel
// the navigation instead of producing data. It is not a failure: loaders
// forward it to the target's collector.
type Result struct {
	Kind ResultKind
	To   Location // set for KindRedirect
}

// Redirect asks the guard to navigate to loc instead.
func Redirect(loc Location) *Result {
	return &Result{Kind: KindRedirect, To: loc}
}

// Cancel asks the guard to abandon the navigation.
func Cancel() *Result {
	return &Result{Kind: KindCancel}
}

func (r *Result) Error() string {
	if r.Kind == KindRedirect {
		return fmt.Sprintf("nav: redirect to %s", r.To.FullPath())
	}
	return "nav: navigation cancelled by loader"
}

// AsResult extracts a marker from err.
func AsResult(err error) (*Result, bool) {
	var r *Result
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}
