package navload

import "time"

type ValueProvider[T any] interface {
	// Value returns the settled payload
	Value() T
	// SettledAt time of settlement (UTC)
	SettledAt() time.Time
}

// WithError defines an interface for settlements that may carry an error
type WithError[T any] interface {
	ValueProvider[T]
	// Err returns the error if the attempt failed or was cancelled
	Err() error
	// IsSuccess returns true if the attempt succeeded
	IsSuccess() bool
}

// WithCancel extends WithError with cancellation support
type WithCancel[T any] interface {
	WithError[T]
	// IsCancel returns true if the attempt was superseded or aborted
	IsCancel() bool
}

// Awaitable is an operation that settles exactly once.
type Awaitable[T any] interface {
	// Done is closed once the result is available
	Done() <-chan struct{}
	// Result is only meaningful after Done is closed
	Result() Result[T]
}

// Outcome names a settlement for logs and metrics labels.
func Outcome[T any](r WithCancel[T]) string {
	switch {
	case r.IsSuccess():
		return "success"
	case r.IsCancel():
		return "cancel"
	default:
		return "failure"
	}
}
