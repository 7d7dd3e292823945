package vrc

import (
	"errors"
	"unicode/utf8"
)

// Provenance tells which path produced a RecoveredText.
type Provenance string

const (
	ProvenanceDecompressed Provenance = "decompressed"
	ProvenanceFallbackRaw  Provenance = "fallback-raw"
)

// Decompressor restores the bytes the document producer compressed.
type Decompressor interface {
	Decompress(src []byte) ([]byte, error)
}

// DecompressorFunc adapts a function to Decompressor.
type DecompressorFunc func(src []byte) ([]byte, error)

func (f DecompressorFunc) Decompress(src []byte) ([]byte, error) { return f(src) }

// ErrDecompressionDisabled is returned by NoDecompression.
var ErrDecompressionDisabled = errors.New("decompression disabled")

// NoDecompression declines every payload, so every decode takes the raw text
// path.
func NoDecompression() Decompressor {
	return DecompressorFunc(func([]byte) ([]byte, error) {
		return nil, ErrDecompressionDisabled
	})
}

// RecoveredText is the text behind the frame. Cause keeps the decompressor
// error when Provenance is fallback-raw.
type RecoveredText struct {
	Text        string
	Provenance  Provenance
	InvalidText bool
	Replaced    int
	Cause       error
}

// Recover decompresses payload and decodes the result as text. When
// decompression fails the payload itself is decoded as text and tagged
// fallback-raw; only a fallback text without a single valid code unit is an
// error.
func Recover(d Decompressor, payload []byte) (RecoveredText, error) {
	raw, err := d.Decompress(payload)
	if err == nil {
		text, replaced := DecodeText(raw)
		return RecoveredText{
			Text:        text,
			Provenance:  ProvenanceDecompressed,
			InvalidText: replaced > 0,
			Replaced:    replaced,
		}, nil
	}

	text, replaced := DecodeText(payload)
	rt := RecoveredText{
		Text:        text,
		Provenance:  ProvenanceFallbackRaw,
		InvalidText: replaced > 0,
		Replaced:    replaced,
		Cause:       err,
	}
	if utf8.RuneCountInString(text) == replaced {
		return rt, stageError(StageDecompressing, KindDecompressionFailed, 0, err)
	}
	return rt, nil
}

// Warnings lists the non-fatal conditions met while recovering the text.
func (rt RecoveredText) Warnings() []error {
	var warnings []error
	if rt.Provenance == ProvenanceFallbackRaw {
		warnings = append(warnings, stageError(StageDecompressing, KindDecompressionFailed, 0, rt.Cause))
	}
	if rt.InvalidText {
		warnings = append(warnings, stageError(StageTextDecoding, KindInvalidText, rt.Replaced, nil))
	}
	return warnings
}
