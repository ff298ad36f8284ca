package typal

// Type is a runtime classification of values. Implementations are immutable
// once built.
type Type interface {
	// Name is the display name used in diagnostics.
	Name() string
	// Key is the structural key. Two descriptors with equal keys classify the
	// same values; combinators intern on it.
	Key() string
	// Contains reports whether v is a member.
	Contains(v any) bool
	// Includes reports whether every member of sub is a member of the
	// receiver. It is the right-hand side of IsSubtype and may be
	// conservative (false when unsure).
	Includes(sub Type) bool
}

// Nuller is implemented by descriptors that know their canonical null.
type Nuller interface {
	Null() (any, bool)
}

// Alternatives is implemented by union-like descriptors: a value is a member
// iff it is a member of one of the alternatives.
type Alternatives interface {
	Alternatives() []Type
}

// Narrowing is implemented by descriptors whose members are all members of
// each base (refinements, intersections, Go types of a builtin kind).
type Narrowing interface {
	Bases() []Type
}

// Finite is implemented by descriptors with an enumerable member set.
type Finite interface {
	Members() []any
}

// Checker is implemented by descriptors that can explain non-membership with
// a detailed report (usually Issues).
type Checker interface {
	Check(v any) error
}

// Sized is a value capability consulted by length refinements before
// falling back to reflection.
type Sized interface {
	Len() int
}

// Hashable is a value capability for set membership of values that are not
// comparable with ==.
type Hashable interface {
	HashKey() string
}

// Appendable is a value capability for custom growable sequences. Sequence
// and product membership read their elements through Items.
type Appendable interface {
	Append(v any)
	Items() []any
}

// Callable is the contract-side counterpart of Type: something invocable
// with a declared domain and codomain.
type Callable interface {
	Name() string
	Domain() []Type
	Codomain() Type
	// Accepts reports whether the arguments fall into the domain.
	Accepts(args ...any) bool
	Call(args ...any) (any, error)
}

// Keyed is a value capability for record-like values with string keys.
type Keyed interface {
	Keys() []string
	Get(key string) (any, bool)
}
