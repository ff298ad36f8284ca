// Package model declares record schemas: named field tables with required
// and optional fields, defaults, inheritance and record-level conditions.
//
// Four disciplines control keys:
//
//	open     extra keys allowed, any order
//	exact    key set equals the declared fields
//	ordered  declared keys follow declaration order (extras ignored)
//	rigid    exact and ordered
//
// A *Schema is a typal.Type, so schemas nest inside combinators and
// contracts, and typal.IsSubtype decides structural subsumption between
// schemas. Records keep key order (*Record); plain Go maps are accepted and
// laid out in declaration order.
package model
