package guard

import (
	"errors"
	"fmt"
)

var (
	// ErrNavigationAborted is returned when a newer navigation, or the
	// caller's context, ended the attempt before it was accepted.
	ErrNavigationAborted = errors.New("guard: navigation aborted")
	// ErrNavigationCancelled is returned when a loader produced a cancel
	// marker.
	ErrNavigationCancelled = errors.New("guard: navigation cancelled by loader")
	// ErrTooManyRedirects is returned when redirects chain beyond the
	// configured limit.
	ErrTooManyRedirects = errors.New("guard: too many redirects")
)

// UnknownViewError is returned for a path with no registered view.
type UnknownViewError struct {
	Path string
}

func (e *UnknownViewError) Error() string {
	return fmt.Sprintf("guard: no view registered for %q", e.Path)
}

// abortError turns a target's abort cause into the error returned by Navigate.
func abortError(cause error) error {
	if cause == nil || errors.Is(cause, ErrNavigationAborted) {
		return ErrNavigationAborted
	}
	return fmt.Errorf("%w: %w", ErrNavigationAborted, cause)
}
