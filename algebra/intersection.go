package algebra

import (
	"github.com/reoring/typal"
)

// IntersectionType is a value of all of its constituents simultaneously.
type IntersectionType struct {
	parts []typal.Type
	key   string
	name  string
}

// Intersection builds the intersection of the given descriptors. Builtin
// primitive descriptors (Int, Str, ...) are rejected as constituents; Any is
// accepted and dropped as the identity element.
func Intersection(args ...any) (typal.Type, error) {
	ts, err := typesFor("Intersection", args)
	if err != nil {
		return nil, err
	}
	flat := make([]typal.Type, 0, len(ts))
	for i, t := range ts {
		if t == typal.Any {
			continue
		}
		if typal.IsPrimitive(t) {
			return nil, &typal.ArgumentCategoryError{Op: "Intersection", Position: i, Want: "non-primitive type descriptor", Got: "builtin " + t.Name()}
		}
		if it, ok := t.(*IntersectionType); ok {
			flat = append(flat, it.parts...)
			continue
		}
		flat = append(flat, t)
	}
	flat = canonical(flat)
	switch len(flat) {
	case 0:
		return typal.Any, nil
	case 1:
		return flat[0], nil
	}
	key := keyOf("Intersection", flat)
	return typal.Intern(key, func() typal.Type {
		return &IntersectionType{parts: flat, key: key, name: nameOf("Intersection", flat)}
	}), nil
}

// MustIntersection is like Intersection but panics on error.
func MustIntersection(args ...any) typal.Type {
	t, err := Intersection(args...)
	if err != nil {
		panic(err)
	}
	return t
}

func (it *IntersectionType) Name() string        { return it.name }
func (it *IntersectionType) Key() string         { return it.key }
func (it *IntersectionType) String() string      { return it.name }
func (it *IntersectionType) Bases() []typal.Type { return append([]typal.Type(nil), it.parts...) }

func (it *IntersectionType) Contains(v any) bool {
	for _, t := range it.parts {
		if !t.Contains(v) {
			return false
		}
	}
	return true
}

func (it *IntersectionType) Includes(sub typal.Type) bool {
	for _, t := range it.parts {
		if !typal.IsSubtype(sub, t) {
			return false
		}
	}
	return true
}

// Null is the first constituent null that is a member of the intersection.
func (it *IntersectionType) Null() (any, bool) {
	for _, t := range it.parts {
		if v, ok := typal.NullOf(t); ok && it.Contains(v) {
			return v, true
		}
	}
	return nil, false
}

// Check reports the first constituent the value fails.
func (it *IntersectionType) Check(v any) error {
	for _, t := range it.parts {
		if err := typal.Check("", v, t); err != nil {
			return &typal.TypeMismatch{Expected: it.name, Actual: typal.Describe(v), Detail: "fails " + t.Name() + ": " + err.Error()}
		}
	}
	return nil
}
