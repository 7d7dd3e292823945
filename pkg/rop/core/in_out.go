package core

import (
	"context"

	"github.com/ib-77/vrcdecode/pkg/rop"
)

// ToChanManyResults feeds values as successful results until the values run
// out or ctx ends.
func ToChanManyResults[T any](ctx context.Context, values []T) <-chan rop.Result[T] {
	in := make(chan rop.Result[T])

	go func() {
		defer close(in)

		for _, v := range values {
			if ctx.Err() != nil {
				return
			}

			select {
			case in <- rop.Success(v):
			case <-ctx.Done():
				return
			}
		}
	}()

	return in
}

// FromChanMany drains out until it is closed or ctx ends.
func FromChanMany[T any](ctx context.Context, out <-chan T) []T {
	res := make([]T, 0)

	for {
		select {
		case v, ok := <-out:
			if !ok {
				return res
			}
			res = append(res, v)
		case <-ctx.Done():
			return res
		}
	}
}
