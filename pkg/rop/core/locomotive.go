package core

import (
	"context"
	"sync"

	"github.com/ib-77/vrcdecode/pkg/rop"
)

// Engine is one stage run by a Locomotive.
type Engine[In, Out any] func(ctx context.Context, input rop.Result[In]) rop.Result[Out]

// Locomotive pulls results from inputCh, runs engine on each and pushes the
// produced result to outCh. It returns when inputCh is closed or ctx ends; an
// item in hand when ctx ends is dropped.
func Locomotive[In, Out any](ctx context.Context, inputCh <-chan rop.Result[In], outCh chan<- rop.Result[Out],
	engine Engine[In, Out], wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case in, ok := <-inputCh:
			if !ok {
				return
			}

			if ctx.Err() != nil {
				return
			}

			select {
			case <-ctx.Done():
				return
			case outCh <- engine(ctx, in):
			}
		}
	}
}
