package navload

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrStaleResult marks a settlement that arrived after its fetch was
// superseded by a newer one. It is only carried by Cancel results and never
// reaches the navigation.
var ErrStaleResult = errors.New("navload: stale result dropped")

// FetchError wraps an error returned (or a panic raised) by a loader's fetch
// function.
type FetchError struct {
	Key    string    // loader key, may be empty
	Target uuid.UUID // navigation the fetch was started for
	Err    error
}

func (e *FetchError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("navload: fetch rejected: %v", e.Err)
	}
	return fmt.Sprintf("navload: fetch %q rejected: %v", e.Key, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsFetchError reports whether err wraps a *FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// Warning names a non-fatal integrity diagnostic. Warnings are logged, never
// returned.
type Warning string

const (
	WarningParentMismatch Warning = "parent_mismatch"
	WarningNoStagedValue  Warning = "commit_without_staged_value"
	WarningSelfParent     Warning = "self_parent"
)
