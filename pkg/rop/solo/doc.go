// Package solo contains single-value, synchronous ROP primitives that operate
// on Result[T]. They are the building blocks the chain package and the
// channel-lifted lite stages are made of.
//
// Highlights:
// - Switch: move from Result[In] to Result[Out] via a result-returning step
// - Map: transform successful values
// - Try: call a function (Out, error) and convert the error to a failure
// - Check: keep the value but fail when a guard returns an error
// - Tee/DoubleTee: side-effect helpers
// - Finally: reduce to a concrete value via success/error/cancel handlers
package solo
