package vrc

import (
	"encoding/base64"
	"strings"
)

// FrameSize is the length of the header in front of the compressed data.
const FrameSize = 4

// RawCapture is what a code reader reports for one detected code.
type RawCapture struct {
	Text        string  `json:"text"`
	FormatLabel string  `json:"formatLabel,omitempty"`
	Confidence  float64 `json:"confidence,omitempty"`
}

// NormalizePayload returns the text after the first space, or text itself
// when it holds no space. Readers prefix the payload with a symbology label.
func NormalizePayload(text string) string {
	if _, payload, found := strings.Cut(text, " "); found {
		return payload
	}
	return text
}

// DecodeBinary decodes padded standard base64. Line breaks, which the
// standard decoder would skip, are rejected like any other stray byte.
func DecodeBinary(payload string) ([]byte, error) {
	if i := strings.IndexAny(payload, "\r\n"); i >= 0 {
		return nil, stageError(StageDecoding, KindInvalidEncoding, 0, base64.CorruptInputError(i))
	}

	b, err := base64.StdEncoding.Strict().DecodeString(payload)
	if err != nil {
		return nil, stageError(StageDecoding, KindInvalidEncoding, 0, err)
	}
	return b, nil
}

// StripFrame drops the frame. The frame must be followed by at least one
// byte of compressed data.
func StripFrame(b []byte) ([]byte, error) {
	if len(b) <= FrameSize {
		return nil, stageError(StageFrameStripping, KindTruncatedPayload, len(b), nil)
	}
	return b[FrameSize:], nil
}
