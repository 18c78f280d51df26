package navload

import (
	"time"

	"github.com/google/uuid"
)

// Result records how a single fetch attempt settled.
// A result is either a success, a failure carrying the error that the
// navigation should see, or a cancel for attempts that were superseded.
type Result[T any] struct {
	id        uuid.UUID
	settledAt time.Time
	value     T
	err       error
	isSuccess bool
	isCancel  bool
}

func Success[T any](v T) Result[T] {
	return Result[T]{
		value:     v,
		isSuccess: true,
		settledAt: time.Now().UTC(),
		id:        uuid.New(),
	}
}

func Fail[T any](v T, err error) Result[T] {
	return Result[T]{
		value:     v,
		err:       err,
		settledAt: time.Now().UTC(),
		id:        uuid.New(),
	}
}

func Cancel[T any](v T, err error) Result[T] {
	return Result[T]{
		value:     v,
		err:       err,
		isCancel:  true,
		settledAt: time.Now().UTC(),
		id:        uuid.New(),
	}
}

// Value returns the payload. It is set for every kind of result.
func (r Result[T]) Value() T {
	return r.value
}

func (r Result[T]) Err() error {
	return r.err
}

func (r Result[T]) IsSuccess() bool {
	return r.isSuccess
}

// IsFailure reports a result that the navigation must treat as an error.
func (r Result[T]) IsFailure() bool {
	return !r.isSuccess && !r.isCancel
}

func (r Result[T]) IsCancel() bool {
	return r.isCancel
}

// SettledAt is the UTC time the result was created.
func (r Result[T]) SettledAt() time.Time {
	return r.settledAt
}

func (r Result[T]) Id() uuid.UUID {
	return r.id
}
