// Package schemafile reads declarative schema catalogs (YAML, TOML or JSON)
// and record files. Field types are written as type expressions, e.g.
// `[str]`, `map[str]int`, `(str, int)`, `Address?`, `range(0, 10)`,
// `re"[a-z]+"`, `enum(str: "a", "b")` or `len(str, 2)`.
package schemafile
