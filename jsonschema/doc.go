// Package jsonschema projects typal descriptors into JSON Schema (draft
// 2020-12). Membership checks backed by Go predicates have no JSON Schema
// form; they export their base with a description naming the predicates.
package jsonschema
