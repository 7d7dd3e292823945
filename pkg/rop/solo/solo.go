package solo

import (
	"context"

	"github.com/ib-77/vrcdecode/pkg/rop"
)

func Switch[In any, Out any](ctx context.Context,
	input rop.Result[In],
	onSuccess func(ctx context.Context, r In) rop.Result[Out]) rop.Result[Out] {

	if input.IsSuccess() {
		return onSuccess(ctx, input.Result())
	}
	return rop.Rethrow[In, Out](input)
}

func Map[In any, Out any](ctx context.Context,
	input rop.Result[In],
	onSuccess func(ctx context.Context, r In) Out) rop.Result[Out] {

	if input.IsSuccess() {
		return rop.Success(onSuccess(ctx, input.Result()))
	}
	return rop.Rethrow[In, Out](input)
}

func Try[In any, Out any](ctx context.Context, input rop.Result[In],
	onTryExecute func(ctx context.Context, r In) (Out, error)) rop.Result[Out] {

	if !input.IsSuccess() {
		return rop.Rethrow[In, Out](input)
	}

	out, err := onTryExecute(ctx, input.Result())
	if err != nil {
		return rop.FromError[Out](err)
	}
	return rop.Success(out)
}

// Check keeps a successful input untouched unless guard rejects it.
func Check[T any](ctx context.Context, input rop.Result[T],
	guard func(ctx context.Context, in T) error) rop.Result[T] {

	if !input.IsSuccess() {
		return input
	}

	if err := guard(ctx, input.Result()); err != nil {
		return rop.FromError[T](err)
	}
	return input
}

func Tee[T any](ctx context.Context,
	input rop.Result[T],
	onSuccess func(ctx context.Context, r T)) rop.Result[T] {

	if input.IsSuccess() {
		onSuccess(ctx, input.Result())
	}
	return input
}

func DoubleTee[T any](ctx context.Context, input rop.Result[T],
	onSuccess func(ctx context.Context, r T),
	onError func(ctx context.Context, err error),
	onCancel func(ctx context.Context, err error)) rop.Result[T] {

	switch {
	case input.IsSuccess():
		if onSuccess != nil {
			onSuccess(ctx, input.Result())
		}
	case input.IsCancel():
		if onCancel != nil {
			onCancel(ctx, input.Err())
		}
	default:
		if onError != nil {
			onError(ctx, input.Err())
		}
	}

	return input
}

func Finally[In, Out any](ctx context.Context, input rop.Result[In],
	onSuccess func(ctx context.Context, r In) Out,
	onError func(ctx context.Context, err error) Out,
	onCancel func(ctx context.Context, err error) Out) Out {

	if input.IsSuccess() {
		return onSuccess(ctx, input.Result())
	} else if input.IsCancel() {
		return onCancel(ctx, input.Err())
	} else {
		return onError(ctx, input.Err())
	}
}
