package lite

import (
	"context"
	"sync"

	"github.com/ib-77/vrcdecode/pkg/rop"
	"github.com/ib-77/vrcdecode/pkg/rop/core"
	"github.com/ib-77/vrcdecode/pkg/rop/solo"
)

// FinallyHandlers collapse a result into a plain value.
type FinallyHandlers[In, Out any] struct {
	OnSuccess func(ctx context.Context, r In) Out
	OnError   func(ctx context.Context, err error) Out
	OnCancel  func(ctx context.Context, err error) Out
}

func Turnout[In, Out any](ctx context.Context, inputCh <-chan rop.Result[In],
	engine core.Engine[In, Out], lines int) <-chan rop.Result[Out] {

	if lines < 1 {
		lines = 1
	}

	out := make(chan rop.Result[Out])
	wg := &sync.WaitGroup{}

	for range lines {
		wg.Add(1)
		go core.Locomotive(ctx, inputCh, out, engine, wg)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

func Switch[In, Out any](switchOnSuccess func(ctx context.Context, r In) rop.Result[Out]) core.Engine[In, Out] {
	return func(ctx context.Context, input rop.Result[In]) rop.Result[Out] {
		return solo.Switch(ctx, input, switchOnSuccess)
	}
}

func Map[In, Out any](mapOnSuccess func(ctx context.Context, r In) Out) core.Engine[In, Out] {
	return func(ctx context.Context, input rop.Result[In]) rop.Result[Out] {
		return solo.Map(ctx, input, mapOnSuccess)
	}
}

func Try[In, Out any](onTryExecute func(ctx context.Context, r In) (Out, error)) core.Engine[In, Out] {
	return func(ctx context.Context, input rop.Result[In]) rop.Result[Out] {
		return solo.Try(ctx, input, onTryExecute)
	}
}

// Finally turns every result of input into Out. It stops forwarding when ctx
// ends, but the returned channel is always closed.
func Finally[In, Out any](ctx context.Context, input <-chan rop.Result[In],
	handlers FinallyHandlers[In, Out]) <-chan Out {

	out := make(chan Out)

	go func() {
		defer close(out)

		for {
			select {
			case <-ctx.Done():
				return
			case in, ok := <-input:
				if !ok {
					return
				}

				select {
				case out <- solo.Finally(ctx, in, handlers.OnSuccess, handlers.OnError, handlers.OnCancel):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}
