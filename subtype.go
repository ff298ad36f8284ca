package typal

// IsSubtype reports whether every member of a is a member of b.
//
// The generic rules apply before and after the variant-specific
// b.Includes(a): identity, Any on the right, Nothing on the left, unions on
// the left decompose, narrowing descriptors inherit from their bases, and
// finite descriptors are checked member by member.
func IsSubtype(a, b Type) bool {
	if a == nil || b == nil {
		return false
	}
	if a == b || a.Key() == b.Key() {
		return true
	}
	if b == Any || a == Nothing {
		return true
	}
	if b.Includes(a) {
		return true
	}
	if alt, ok := a.(Alternatives); ok {
		for _, t := range alt.Alternatives() {
			if !IsSubtype(t, b) {
				return false
			}
		}
		return true
	}
	if n, ok := a.(Narrowing); ok {
		for _, base := range n.Bases() {
			if IsSubtype(base, b) {
				return true
			}
		}
	}
	if f, ok := a.(Finite); ok {
		for _, m := range f.Members() {
			if !b.Contains(m) {
				return false
			}
		}
		return true
	}
	return false
}

// Is reports whether v is a member of t.
func Is(v any, t Type) bool {
	if t == nil {
		return false
	}
	return t.Contains(v)
}

// Check returns nil when v is a member of t, otherwise the descriptor's own
// report (Checker) or a TypeMismatch naming name.
func Check(name string, v any, t Type) error {
	if c, ok := t.(Checker); ok {
		return c.Check(v)
	}
	if t.Contains(v) {
		return nil
	}
	return &TypeMismatch{Name: name, Expected: t.Name(), Actual: Describe(v)}
}

// AsType returns arg as a Type or an ArgumentCategoryError for op at pos.
func AsType(op string, pos int, arg any) (Type, error) {
	if t, ok := arg.(Type); ok && t != nil {
		return t, nil
	}
	return nil, &ArgumentCategoryError{Op: op, Position: pos, Want: "type descriptor", Got: Category(arg)}
}

// AsTypes converts every argument with AsType.
func AsTypes(op string, args []any) ([]Type, error) {
	out := make([]Type, 0, len(args))
	for i, a := range args {
		t, err := AsType(op, i, a)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
