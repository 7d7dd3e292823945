package rop

import (
	"context"
	"errors"
)

func IsCancellationError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

// FromError builds a failure, or a cancellation when err comes from an ended
// context.
func FromError[T any](err error) Result[T] {
	if IsCancellationError(err) {
		return Cancel[T](err)
	}
	return Fail[T](err)
}
