// Package contract wraps Go funcs as typed functions. A contract knows its
// domain (one typal.Type per parameter, possibly computed from earlier
// arguments) and its codomain, checks both on every call and reports
// violations as *typal.TypeMismatch naming the offending parameter.
//
// Contracts are typal.Callable values, so they can be dispatched over with
// algebra.Dispatch, used as refine.Filter predicates and composed with
// Compose. Factories memoize their results so that equal arguments yield
// the identical descriptor.
package contract
