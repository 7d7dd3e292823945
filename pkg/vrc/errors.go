package vrc

import (
	"errors"
	"fmt"

	"github.com/ib-77/vrcdecode/pkg/rop"
)

// Kind classifies decode failures and annotations.
type Kind string

const (
	KindNone                Kind = ""
	KindInvalidEncoding     Kind = "InvalidEncoding"
	KindTruncatedPayload    Kind = "TruncatedPayload"
	KindDecompressionFailed Kind = "DecompressionFailed"
	KindInvalidText         Kind = "InvalidText"
	KindInsufficientFields  Kind = "InsufficientFields"
	KindCancelled           Kind = "Cancelled"
	KindUnknown             Kind = "Unknown"
)

var (
	ErrInvalidEncoding     = errors.New("invalid encoding")
	ErrTruncatedPayload    = errors.New("truncated payload")
	ErrDecompressionFailed = errors.New("decompression failed")
	ErrInvalidText         = errors.New("invalid text")
	ErrInsufficientFields  = errors.New("insufficient fields")
)

func (k Kind) sentinel() error {
	switch k {
	case KindInvalidEncoding:
		return ErrInvalidEncoding
	case KindTruncatedPayload:
		return ErrTruncatedPayload
	case KindDecompressionFailed:
		return ErrDecompressionFailed
	case KindInvalidText:
		return ErrInvalidText
	case KindInsufficientFields:
		return ErrInsufficientFields
	default:
		return nil
	}
}

// Stage names a step of the decode pipeline.
type Stage string

const (
	StageNormalizing    Stage = "normalizing"
	StageDecoding       Stage = "decoding"
	StageFrameStripping Stage = "frame-stripping"
	StageDecompressing  Stage = "decompressing"
	StageTextDecoding   Stage = "text-decoding"
	StageSplitting      Stage = "splitting"
	StageValidating     Stage = "validating"
	StageMapping        Stage = "mapping"
)

// DecodeError is the failure returned by every stage that can fail. Count
// carries the observed byte length for TruncatedPayload, the field count for
// InsufficientFields and the number of substituted code units for InvalidText.
type DecodeError struct {
	Stage Stage
	Kind  Kind
	Count int
	Err   error
}

func (e *DecodeError) Error() string {
	var msg string
	switch e.Kind {
	case KindTruncatedPayload:
		msg = fmt.Sprintf("truncated payload: %d bytes, need more than %d", e.Count, FrameSize)
	case KindInsufficientFields:
		msg = fmt.Sprintf("insufficient fields: got %d, need at least %d", e.Count, MinFields)
	case KindInvalidText:
		msg = fmt.Sprintf("invalid text: %d code units replaced", e.Count)
	default:
		if s := e.Kind.sentinel(); s != nil {
			msg = s.Error()
		} else {
			msg = string(e.Kind)
		}
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return string(e.Stage) + ": " + msg
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is matches the sentinel of the error's kind.
func (e *DecodeError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf classifies err. A nil error is KindNone.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Kind
	}
	if rop.IsCancellationError(err) {
		return KindCancelled
	}
	return KindUnknown
}

func stageError(stage Stage, kind Kind, count int, cause error) *DecodeError {
	return &DecodeError{Stage: stage, Kind: kind, Count: count, Err: cause}
}
