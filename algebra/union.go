package algebra

import (
	"fmt"

	"github.com/reoring/typal"
)

// UnionType is a value of any of its alternatives.
type UnionType struct {
	alts []typal.Type
	key  string
	name string
}

// Union builds the union of the given descriptors. Nested unions are
// flattened, duplicates removed and constituents sorted, so Union(A, B) and
// Union(B, A) return the identical object. Zero arguments yield
// typal.Nothing; a single argument is returned as is.
func Union(args ...any) (typal.Type, error) {
	ts, err := typesFor("Union", args)
	if err != nil {
		return nil, err
	}
	return union(ts), nil
}

// MustUnion is like Union but panics on error.
func MustUnion(args ...any) typal.Type {
	t, err := Union(args...)
	if err != nil {
		panic(err)
	}
	return t
}

// Optional is Union(t, Null). Its canonical null is t's null.
func Optional(t typal.Type) typal.Type { return union([]typal.Type{t, typal.Null}) }

func union(ts []typal.Type) typal.Type {
	flat := make([]typal.Type, 0, len(ts))
	for _, t := range ts {
		if t == typal.Any {
			return typal.Any
		}
		if t == typal.Nothing {
			continue
		}
		if u, ok := t.(*UnionType); ok {
			flat = append(flat, u.alts...)
			continue
		}
		flat = append(flat, t)
	}
	flat = canonical(flat)
	switch len(flat) {
	case 0:
		return typal.Nothing
	case 1:
		return flat[0]
	}
	key := keyOf("Union", flat)
	return typal.Intern(key, func() typal.Type {
		return &UnionType{alts: flat, key: key, name: nameOf("Union", flat)}
	})
}

func (u *UnionType) Name() string               { return u.name }
func (u *UnionType) Key() string                { return u.key }
func (u *UnionType) String() string             { return u.name }
func (u *UnionType) Alternatives() []typal.Type { return append([]typal.Type(nil), u.alts...) }

func (u *UnionType) Contains(v any) bool {
	for _, t := range u.alts {
		if t.Contains(v) {
			return true
		}
	}
	return false
}

// Includes: sub is the union itself, literally one of the alternatives, or
// a subtype of one of them. Unions on the left are decomposed by
// typal.IsSubtype.
func (u *UnionType) Includes(sub typal.Type) bool {
	if sub == u {
		return true
	}
	for _, t := range u.alts {
		if t == sub {
			return true
		}
	}
	for _, t := range u.alts {
		if typal.IsSubtype(sub, t) {
			return true
		}
	}
	return false
}

// Null prefers the first non-Null alternative with a canonical null.
func (u *UnionType) Null() (any, bool) {
	hasNull := false
	for _, t := range u.alts {
		if t == typal.Null {
			hasNull = true
			continue
		}
		if v, ok := typal.NullOf(t); ok {
			return v, true
		}
	}
	if hasNull {
		return nil, true
	}
	return nil, false
}

// Nearest returns the alternative v came closest to matching together with
// that alternative's report: alternatives with a Checker are ranked by the
// number of issues they report, others count as a single issue, and a
// refinement whose base accepts v ranks ahead of an unrelated branch.
func (u *UnionType) Nearest(v any) (typal.Type, error) {
	var (
		best      typal.Type
		bestErr   error
		bestScore = -1
	)
	for _, t := range u.alts {
		err := typal.Check("", v, t)
		if err == nil {
			return t, nil
		}
		score := 2
		if iss, ok := typal.AsIssues(err); ok {
			score = 2 * len(iss)
		}
		if inBase(v, t) {
			score--
		}
		if bestScore < 0 || score < bestScore {
			best, bestErr, bestScore = t, err, score
		}
	}
	return best, bestErr
}

// Check reports a TypeMismatch naming the nearly matched branch.
func (u *UnionType) Check(v any) error {
	if u.Contains(v) {
		return nil
	}
	tm := &typal.TypeMismatch{Expected: u.name, Actual: typal.Describe(v)}
	if best, err := u.Nearest(v); best != nil && err != nil {
		tm.Detail = fmt.Sprintf("nearly matched branch %s: %v", best.Name(), err)
	}
	return tm
}

// inBase reports whether v is a member of one of t's bases.
func inBase(v any, t typal.Type) bool {
	n, ok := t.(typal.Narrowing)
	if !ok {
		return false
	}
	for _, b := range n.Bases() {
		if b.Contains(v) {
			return true
		}
	}
	return false
}
