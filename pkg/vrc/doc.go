// Package vrc decodes the vehicle record carried by the Aztec code printed on
// Polish vehicle registration certificates.
//
// The scanner text goes through a fixed sequence of stages, each one a pure
// function also exported on its own:
// - NormalizePayload: drop the symbology label a scanner may prepend
// - DecodeBinary: strict standard base64
// - StripFrame: drop the 4-byte frame in front of the compressed data
// - Recover: NRV2E decompression, or raw text when decompression fails
// - DecodeText: UTF-16LE with U+FFFD substitution
// - SplitFields / ValidateFields: '|' separated fields, at least MinFields
// - MapRecord: positional schema to a VehicleRecord
//
// Decoder chains the stages on a rop railway and stops at the first failure,
// which is always a *DecodeError.
package vrc
