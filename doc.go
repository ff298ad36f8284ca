// Package typal provides:
//
// - A runtime Type contract (membership + subtype test) with builtin descriptors
// - Structural subtyping via IsSubtype, layered over per-variant Includes
// - A stable error model via Issues (JSON Pointer, code, message) plus typed errors
// - Canonical nulls (NullRegistry) and a process-wide intern table for identity
//
// Design policy:
// - Keep only the core contract in the root package; combinators live under
//   algebra/, refinements under refine/, record schemas under model/ and
//   function contracts under contract/.
// - Descriptors are immutable once built; combinators intern by structural key
//   so equal constituents yield the identical object.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	point := model.Exact("Point").
//		Field("x", typal.Int).
//		Field("y", typal.Int).Default(0).
//		MustBuild()
//	rec, err := point.Validate(model.NewRecord("x", 1))
//
//	ok := typal.IsSubtype(refine.MustRange(1, 5), typal.Int)
package typal
