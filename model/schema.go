package model

import (
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/reoring/typal"
)

// Discipline selects how strictly a schema treats the key set and key order
// of a record.
type Discipline struct {
	Exact   bool // the key set must equal the declared fields
	Ordered bool // declared keys must appear as a prefix of the declared order
}

var (
	DisciplineOpen    = Discipline{}
	DisciplineExact   = Discipline{Exact: true}
	DisciplineOrdered = Discipline{Ordered: true}
	DisciplineRigid   = Discipline{Exact: true, Ordered: true}
)

func (d Discipline) String() string {
	switch {
	case d.Exact && d.Ordered:
		return "rigid"
	case d.Exact:
		return "exact"
	case d.Ordered:
		return "ordered"
	}
	return "open"
}

// ParseDiscipline maps "open", "exact", "ordered" and "rigid" onto a
// Discipline.
func ParseDiscipline(s string) (Discipline, bool) {
	switch s {
	case "", "open":
		return DisciplineOpen, true
	case "exact":
		return DisciplineExact, true
	case "ordered":
		return DisciplineOrdered, true
	case "rigid":
		return DisciplineRigid, true
	}
	return Discipline{}, false
}

// Field is one declared field of a schema.
type Field struct {
	Name     string
	Type     typal.Type
	Required bool
	Default  any // optional fields only
}

// Condition is a record-level predicate run after the fields check out.
// Conditions are compared by identity: a child inherits its parents'
// conditions, and subsumption requires the subtype to carry every
// condition of the supertype.
type Condition struct {
	Name  string
	Check func(*Record) error
	id    uint64
}

var conditionIDs atomic.Uint64

// NewCondition builds a condition with a fresh identity. A nil error from
// check means the condition holds.
func NewCondition(name string, check func(*Record) error) Condition {
	return Condition{Name: name, Check: check, id: conditionIDs.Add(1)}
}

// Predicate adapts a boolean predicate into a condition.
func Predicate(name string, fn func(*Record) bool) Condition {
	return NewCondition(name, func(r *Record) error {
		if fn(r) {
			return nil
		}
		return errConditionFalse
	})
}

type conditionFalse struct{}

func (conditionFalse) Error() string { return "predicate returned false" }

var errConditionFalse error = conditionFalse{}

// Schema is a frozen record schema. It is a typal.Type: members are records
// (or Go maps) that validate against it.
type Schema struct {
	id         uint64
	name       string
	disc       Discipline
	fields     map[string]*Field
	declared   []string // merged declaration order
	order      []string // canonical order
	conditions []Condition
	parents    []*Schema

	mu       sync.Mutex
	children []*Schema
}

var (
	_ typal.Type    = (*Schema)(nil)
	_ typal.Checker = (*Schema)(nil)
	_ typal.Nuller  = (*Schema)(nil)

	schemaIDs atomic.Uint64
)

func (s *Schema) Name() string            { return s.name }
func (s *Schema) Key() string             { return "model:" + s.name + "#" + strconv.FormatUint(s.id, 10) }
func (s *Schema) String() string          { return s.name }
func (s *Schema) Discipline() Discipline  { return s.disc }
func (s *Schema) Parents() []*Schema      { return append([]*Schema(nil), s.parents...) }
func (s *Schema) Conditions() []Condition { return append([]Condition(nil), s.conditions...) }
func (s *Schema) Order() []string         { return append([]string(nil), s.order...) }
func (s *Schema) Declared() []string      { return append([]string(nil), s.declared...) }
func (s *Schema) Contains(v any) bool     { return s.Check(v) == nil }

// Check validates v and returns the aggregated Issues, or nil.
func (s *Schema) Check(v any) error {
	_, err := s.validate(v, ValidateOpt{})
	return err
}

// Field returns the declared field named name.
func (s *Schema) Field(name string) (Field, bool) {
	f, ok := s.fields[name]
	if !ok {
		return Field{}, false
	}
	return *f, true
}

// Fields returns the declared fields in canonical order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.order))
	for i, n := range s.order {
		out[i] = *s.fields[n]
	}
	return out
}

// Required returns the required field names in canonical order.
func (s *Schema) Required() []string {
	var out []string
	for _, n := range s.order {
		if s.fields[n].Required {
			out = append(out, n)
		}
	}
	return out
}

// Children returns the schemas built with this one as a parent.
func (s *Schema) Children() []*Schema {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Schema(nil), s.children...)
}

func (s *Schema) addChild(c *Schema) {
	s.mu.Lock()
	s.children = append(s.children, c)
	s.mu.Unlock()
}

// Null builds the canonical null instance: required fields get their type's
// canonical null, optional fields their default. It reports false when a
// required field type has no canonical null or the result fails the schema.
func (s *Schema) Null() (any, bool) {
	rec := &Record{vals: make(map[string]any, len(s.order))}
	for _, n := range s.order {
		f := s.fields[n]
		if !f.Required {
			rec.Set(n, cloneValue(f.Default))
			continue
		}
		v, ok := typal.NullOf(f.Type)
		if !ok {
			return nil, false
		}
		rec.Set(n, cloneValue(v))
	}
	if !s.Contains(rec) {
		return nil, false
	}
	return rec, true
}

// Includes reports structural subsumption: every record valid against sub
// is valid against s.
func (s *Schema) Includes(sub typal.Type) bool {
	a, ok := sub.(*Schema)
	if !ok {
		return false
	}
	return subsumes(a, s)
}

// subsumes reports whether a <: b.
func subsumes(a, b *Schema) bool {
	if a == b {
		return true
	}
	for _, n := range b.order {
		bf := b.fields[n]
		af, ok := a.fields[n]
		if !ok {
			if bf.Required || !a.disc.Exact {
				return false
			}
			continue
		}
		if !typal.IsSubtype(af.Type, bf.Type) {
			return false
		}
		if bf.Required && !af.Required && !bf.Type.Contains(af.Default) {
			return false
		}
	}
	// exact pairs need equal key sets
	if b.disc.Exact {
		if !a.disc.Exact || len(a.fields) != len(b.fields) {
			return false
		}
		for n := range a.fields {
			if _, ok := b.fields[n]; !ok {
				return false
			}
		}
	}
	if b.disc.Ordered {
		if !a.disc.Ordered || len(b.order) > len(a.order) {
			return false
		}
		for i, n := range b.order {
			if a.order[i] != n {
				return false
			}
		}
	}
	have := make(map[uint64]struct{}, len(a.conditions))
	for _, c := range a.conditions {
		have[c.id] = struct{}{}
	}
	for _, c := range b.conditions {
		if _, ok := have[c.id]; !ok {
			return false
		}
	}
	return true
}

// canonicalOrder lays out fields required-first for unordered disciplines
// and in declaration order otherwise.
func canonicalOrder(d Discipline, declared []string, fields map[string]*Field) []string {
	out := append([]string(nil), declared...)
	if d.Ordered {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		return fields[out[i]].Required && !fields[out[j]].Required
	})
	return out
}
