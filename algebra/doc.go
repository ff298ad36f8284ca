// Package algebra builds composite descriptors from constituent ones:
// Union, Intersection, Complement, Product, UnorderedProduct, Sequence, Set
// and Mapping, plus Dispatch for unions of callables.
//
// Every combinator canonicalizes its constituents (flatten where meaningful,
// dedupe, stable sort by structural key) and interns the result, so
//
//	algebra.MustUnion(typal.Int, typal.Str) == algebra.MustUnion(typal.Str, typal.Int)
//
// holds by pointer identity. Passing anything that is not a descriptor
// yields a *typal.ArgumentCategoryError naming the offending position.
package algebra
