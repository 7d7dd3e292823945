package vrc

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ib-77/vrcdecode/pkg/rop"
	"github.com/ib-77/vrcdecode/pkg/rop/chain"
	"github.com/ib-77/vrcdecode/pkg/ucl"
)

// Decoded is the outcome of a successful decode.
type Decoded struct {
	Record      VehicleRecord
	Text        string
	Provenance  Provenance
	InvalidText bool
	FieldCount  int
	// Warnings holds *DecodeError values for the conditions that did not stop
	// the pipeline: the raw text fallback and code unit substitution.
	Warnings []error
}

// Observer is told about every decode a Decoder runs.
type Observer interface {
	ObserveDecode(d Decoded, err error, elapsed time.Duration)
}

// Decoder runs the decode pipeline. It holds no state between calls and is
// safe for concurrent use.
type Decoder struct {
	decompressor Decompressor
	logger       *zap.Logger
	observer     Observer
}

type Option func(*Decoder)

func WithDecompressor(d Decompressor) Option {
	return func(dec *Decoder) {
		if d != nil {
			dec.decompressor = d
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(dec *Decoder) {
		if l != nil {
			dec.logger = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(dec *Decoder) {
		dec.observer = o
	}
}

// NewDecoder returns a decoder using NRV2E with the default output limit
// unless told otherwise.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{
		decompressor: ucl.NRV2E{},
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var defaultDecoder = NewDecoder()

// Decode runs text through a default Decoder.
func Decode(text string) (Decoded, error) {
	return defaultDecoder.Decode(context.Background(), text)
}

func (d *Decoder) Decode(ctx context.Context, text string) (Decoded, error) {
	return d.DecodeResult(ctx, text).Unwrap()
}

// DecodeCapture decodes the text of a reader capture.
func (d *Decoder) DecodeCapture(ctx context.Context, capture RawCapture) (Decoded, error) {
	d.logger.Debug("decoding capture",
		zap.String("format", capture.FormatLabel),
		zap.Float64("confidence", capture.Confidence),
		zap.Int("length", len(capture.Text)))
	return d.Decode(ctx, capture.Text)
}

type parsed struct {
	text   RecoveredText
	fields FieldList
}

// DecodeResult is the railway form of Decode.
func (d *Decoder) DecodeResult(ctx context.Context, text string) rop.Result[Decoded] {
	start := time.Now()

	payload := chain.Map(chain.FromValue(ctx, text), func(_ context.Context, s string) string {
		return NormalizePayload(s)
	})
	raw := chain.ThenTry(payload, func(_ context.Context, s string) ([]byte, error) {
		return DecodeBinary(s)
	})
	body := chain.ThenTry(raw, func(_ context.Context, b []byte) ([]byte, error) {
		return StripFrame(b)
	})
	recovered := chain.ThenTry(body, func(_ context.Context, b []byte) (RecoveredText, error) {
		return Recover(d.decompressor, b)
	}).Ensure(d.logRecovery)
	fields := chain.Map(recovered, func(_ context.Context, rt RecoveredText) parsed {
		return parsed{text: rt, fields: SplitFields(rt.Text)}
	}).Check(func(_ context.Context, p parsed) error {
		return ValidateFields(p.fields)
	})
	decoded := chain.Map(fields, func(_ context.Context, p parsed) Decoded {
		return Decoded{
			Record:      MapRecord(p.fields),
			Text:        p.text.Text,
			Provenance:  p.text.Provenance,
			InvalidText: p.text.InvalidText,
			FieldCount:  len(p.fields),
			Warnings:    p.text.Warnings(),
		}
	}).Observe(func(_ context.Context, err error) {
		d.logger.Debug("decode failed",
			zap.String("stage", string(stageOf(err))),
			zap.String("kind", string(KindOf(err))),
			zap.Error(err))
	})

	res := decoded.Result()
	if d.observer != nil {
		v, err := res.Unwrap()
		d.observer.ObserveDecode(v, err, time.Since(start))
	}
	return res
}

func (d *Decoder) logRecovery(_ context.Context, rt RecoveredText) {
	if rt.Provenance == ProvenanceFallbackRaw {
		d.logger.Warn("decompression failed, using raw payload text",
			zap.String("provenance", string(rt.Provenance)),
			zap.Error(rt.Cause))
	}
	if rt.InvalidText {
		d.logger.Debug("invalid code units replaced", zap.Int("replaced", rt.Replaced))
	}
}

func stageOf(err error) Stage {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Stage
	}
	return ""
}
