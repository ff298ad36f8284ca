package algebra

import (
	"fmt"

	"github.com/reoring/typal"
)

// SequenceType is a sequence (or set) of any length whose elements are
// members of the element union.
type SequenceType struct {
	elem typal.Type
	set  bool
	key  string
	name string
}

// Sequence builds the type of sequences whose elements conform to
// Union(args...). With no arguments the elements are unconstrained.
func Sequence(args ...any) (typal.Type, error) {
	ts, err := typesFor("Sequence", args)
	if err != nil {
		return nil, err
	}
	return sequence(ts, false), nil
}

// Set is Sequence for set values: Go maps used as sets (map[K]struct{},
// map[K]bool) or sequences of distinct hashable elements.
func Set(args ...any) (typal.Type, error) {
	ts, err := typesFor("Set", args)
	if err != nil {
		return nil, err
	}
	return sequence(ts, true), nil
}

// MustSequence is like Sequence but panics on error.
func MustSequence(args ...any) typal.Type {
	t, err := Sequence(args...)
	if err != nil {
		panic(err)
	}
	return t
}

// MustSet is like Set but panics on error.
func MustSet(args ...any) typal.Type {
	t, err := Set(args...)
	if err != nil {
		panic(err)
	}
	return t
}

func sequence(ts []typal.Type, set bool) typal.Type {
	elem := typal.Any
	if len(ts) > 0 {
		elem = union(ts)
	}
	kind := "Sequence"
	if set {
		kind = "Set"
	}
	key := kind + "(" + elem.Key() + ")"
	return typal.Intern(key, func() typal.Type {
		return &SequenceType{elem: elem, set: set, key: key, name: kind + "[" + elem.Name() + "]"}
	})
}

func (s *SequenceType) Name() string     { return s.name }
func (s *SequenceType) Key() string      { return s.key }
func (s *SequenceType) String() string   { return s.name }
func (s *SequenceType) Elem() typal.Type { return s.elem }
func (s *SequenceType) IsSet() bool      { return s.set }

func (s *SequenceType) elements(v any) ([]any, bool) {
	if s.set {
		return typal.SetElements(v)
	}
	return typal.Elements(v)
}

func (s *SequenceType) Contains(v any) bool {
	elems, ok := s.elements(v)
	if !ok {
		return false
	}
	for _, e := range elems {
		if !s.elem.Contains(e) {
			return false
		}
	}
	return true
}

// Includes: covariant in the element type. Products are sequences too, so a
// product whose constituents all fit the element type is included.
func (s *SequenceType) Includes(sub typal.Type) bool {
	switch o := sub.(type) {
	case *SequenceType:
		if o.set != s.set {
			return false
		}
		return typal.IsSubtype(o.elem, s.elem)
	case *ProductType:
		if s.set {
			return false
		}
		for _, t := range o.parts {
			if !typal.IsSubtype(t, s.elem) {
				return false
			}
		}
		return true
	}
	return false
}

func (s *SequenceType) Null() (any, bool) {
	if s.set {
		return map[any]struct{}{}, true
	}
	return []any{}, true
}

// Check reports every non-conforming element.
func (s *SequenceType) Check(v any) error {
	elems, ok := s.elements(v)
	if !ok {
		want := "a sequence"
		if s.set {
			want = "a set of distinct hashable elements"
		}
		return typal.Issues{{Path: "/", Code: typal.CodeInvalidType, Message: "expected " + want, Cause: &typal.TypeMismatch{Expected: s.name, Actual: typal.Describe(v)}}}
	}
	var iss typal.Issues
	for i, e := range elems {
		if err := typal.Check(fmt.Sprint(i), e, s.elem); err != nil {
			iss = typal.AppendIssues(iss, typal.RebaseIssues(typal.Index("/", i), err)...)
		}
	}
	if len(iss) > 0 {
		return iss
	}
	return nil
}

// MappingType is a mapping whose values conform to the value union and,
// when a key type is set, whose keys conform to it.
type MappingType struct {
	vals typal.Type
	keys typal.Type // nil when keys are unconstrained
	key  string
	name string
}

// KeysOption carries the key type of a Mapping.
type KeysOption struct{ t typal.Type }

// Keys sets the key type of a Mapping: Mapping(Keys(Str), Int).
func Keys(t typal.Type) KeysOption { return KeysOption{t: t} }

// Mapping builds the type of mappings whose values conform to Union of the
// descriptor arguments. A Keys(...) argument constrains the keys.
func Mapping(args ...any) (typal.Type, error) {
	var (
		keys typal.Type
		vals []any
	)
	for i, a := range args {
		if ko, ok := a.(KeysOption); ok {
			if ko.t == nil {
				return nil, &typal.ArgumentCategoryError{Op: "Mapping", Position: i, Name: "keys", Want: "type descriptor", Got: "null"}
			}
			keys = ko.t
			continue
		}
		vals = append(vals, a)
	}
	ts, err := typesFor("Mapping", vals)
	if err != nil {
		return nil, err
	}
	vt := typal.Any
	if len(ts) > 0 {
		vt = union(ts)
	}
	if keys == typal.Any {
		keys = nil
	}
	key := "Mapping(" + vt.Key()
	name := "Mapping[" + vt.Name()
	if keys != nil {
		key += ";keys=" + keys.Key()
		name += ", keys=" + keys.Name()
	}
	key += ")"
	name += "]"
	return typal.Intern(key, func() typal.Type {
		return &MappingType{vals: vt, keys: keys, key: key, name: name}
	}), nil
}

// MustMapping is like Mapping but panics on error.
func MustMapping(args ...any) typal.Type {
	t, err := Mapping(args...)
	if err != nil {
		panic(err)
	}
	return t
}

func (m *MappingType) Name() string       { return m.name }
func (m *MappingType) Key() string        { return m.key }
func (m *MappingType) String() string     { return m.name }
func (m *MappingType) Values() typal.Type { return m.vals }

// KeyType returns the key constraint, or nil when keys are unconstrained.
func (m *MappingType) KeyType() typal.Type { return m.keys }

func (m *MappingType) Contains(v any) bool {
	entries, ok := typal.Entries(v)
	if !ok {
		return false
	}
	for _, e := range entries {
		if m.keys != nil && !m.keys.Contains(e.Key) {
			return false
		}
		if !m.vals.Contains(e.Value) {
			return false
		}
	}
	return true
}

func (m *MappingType) Includes(sub typal.Type) bool {
	o, ok := sub.(*MappingType)
	if !ok {
		return false
	}
	if !typal.IsSubtype(o.vals, m.vals) {
		return false
	}
	if m.keys == nil {
		return true
	}
	return o.keys != nil && typal.IsSubtype(o.keys, m.keys)
}

func (m *MappingType) Null() (any, bool) { return map[string]any{}, true }

// Check reports every offending key and value.
func (m *MappingType) Check(v any) error {
	entries, ok := typal.Entries(v)
	if !ok {
		return typal.Issues{{Path: "/", Code: typal.CodeInvalidType, Message: "expected a mapping", Cause: &typal.TypeMismatch{Expected: m.name, Actual: typal.Describe(v)}}}
	}
	var iss typal.Issues
	for _, e := range entries {
		p := typal.Child("/", fmt.Sprint(e.Key))
		if m.keys != nil && !m.keys.Contains(e.Key) {
			iss = typal.AppendIssues(iss, typal.IssueFrom(p, &typal.TypeMismatch{Name: "key", Expected: m.keys.Name(), Actual: typal.Describe(e.Key)}))
		}
		if err := typal.Check(fmt.Sprint(e.Key), e.Value, m.vals); err != nil {
			iss = typal.AppendIssues(iss, typal.RebaseIssues(p, err)...)
		}
	}
	if len(iss) > 0 {
		return iss
	}
	return nil
}
