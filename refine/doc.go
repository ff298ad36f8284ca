// Package refine narrows descriptors by predicates: arbitrary one-argument
// boolean callables (Filter) and the common shapes built on top of the same
// idea (Regex, Range, Values/Enum, Single, Len).
//
// Every refinement reports its base through typal.Narrowing, so
//
//	typal.IsSubtype(refine.MustRange(1, 9), typal.Int) // true
//
// holds without the caller knowing about refinements. Refinements are
// interned like combinators.
package refine
