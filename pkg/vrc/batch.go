package vrc

import (
	"context"
	"runtime"
	"time"

	"github.com/ib-77/vrcdecode/pkg/rop/core"
	"github.com/ib-77/vrcdecode/pkg/rop/lite"
)

// Outcome is the result of one item of a batch.
type Outcome struct {
	Index   int
	Input   string
	Decoded Decoded
	Err     error
	Elapsed time.Duration
}

func (o Outcome) OK() bool { return o.Err == nil }

type job struct {
	index int
	text  string
}

// DecodeAll decodes texts on workers goroutines and returns one Outcome per
// text, in input order. A non-positive workers falls back to the count
// carried by ctx (core.WithWorkerOptions), then to GOMAXPROCS. Once ctx
// ends, every outcome not yet collected carries the context error and a zero
// Decoded, even when its worker had already finished decoding it.
func (d *Decoder) DecodeAll(ctx context.Context, texts []string, workers int) []Outcome {
	if workers <= 0 {
		workers = core.GetWorkerMaxCount(ctx, runtime.GOMAXPROCS(0))
	}

	jobs := make([]job, len(texts))
	for i, t := range texts {
		jobs[i] = job{index: i, text: t}
	}

	handlers := lite.FinallyHandlers[Outcome, Outcome]{
		OnSuccess: func(_ context.Context, o Outcome) Outcome { return o },
		OnError:   func(_ context.Context, err error) Outcome { return Outcome{Index: -1, Err: err} },
		OnCancel:  func(_ context.Context, err error) Outcome { return Outcome{Index: -1, Err: err} },
	}

	collected := core.FromChanMany(ctx,
		lite.Finally(ctx,
			lite.Turnout(ctx,
				core.ToChanManyResults(ctx, jobs),
				lite.Map(d.decodeJob),
				workers),
			handlers))

	outcomes := make([]Outcome, len(texts))
	done := make([]bool, len(texts))
	for _, o := range collected {
		if o.Index >= 0 && o.Index < len(texts) {
			outcomes[o.Index] = o
			done[o.Index] = true
		}
	}

	for i := range outcomes {
		if done[i] {
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = context.Canceled
		}
		outcomes[i] = Outcome{Index: i, Input: texts[i], Err: err}
	}
	return outcomes
}

func (d *Decoder) decodeJob(ctx context.Context, j job) Outcome {
	start := time.Now()
	decoded, err := d.Decode(ctx, j.text)
	return Outcome{
		Index:   j.index,
		Input:   j.text,
		Decoded: decoded,
		Err:     err,
		Elapsed: time.Since(start),
	}
}
