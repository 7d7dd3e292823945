// Package lite provides lightweight channel-lifted helpers that wrap solo
// primitives for concurrent pipelines. It is designed for simple fan-out/fan-in
// flows: every stage is run by a fixed number of core.Locomotive lines.
//
// Common usage:
// - Turnout: run an engine over an input channel with a fixed number of lines
// - Try/Switch/Map: lift solo operations into engines
// - Finally: map Result[In] to Out on completion
package lite
