package model

import (
	"github.com/reoring/typal"
)

// Builder declares a schema. Fields are required unless the field step says
// otherwise:
//
//	user := model.Exact("User").
//		Field("id", typal.Int).
//		Field("name", typal.Str).
//		Field("nick", typal.Str).Optional().
//		Field("role", roles).Default("member").
//		MustBuild()
type Builder struct {
	name       string
	disc       Discipline
	parents    []*Schema
	fields     []*fieldDecl
	index      map[string]int
	conditions []Condition
	errs       []error
}

type fieldDecl struct {
	name     string
	t        typal.Type
	required bool
	def      any
	hasDef   bool
}

// FieldStep configures the field just declared.
type FieldStep struct {
	b *Builder
	i int
}

// New starts a schema with the given discipline.
func New(name string, d Discipline) *Builder {
	return &Builder{name: name, disc: d, index: map[string]int{}}
}

// Open starts a schema that allows extra keys in any order.
func Open(name string) *Builder { return New(name, DisciplineOpen) }

// Exact starts a schema whose key set must equal its fields.
func Exact(name string) *Builder { return New(name, DisciplineExact) }

// Ordered starts a schema whose declared keys must follow declaration order.
func Ordered(name string) *Builder { return New(name, DisciplineOrdered) }

// Rigid starts a schema that is both Exact and Ordered.
func Rigid(name string) *Builder { return New(name, DisciplineRigid) }

// Extends adds parent schemas. Parent fields merge parent-first; later
// declarations override earlier ones but keep their position.
func (b *Builder) Extends(parents ...*Schema) *Builder {
	for i, p := range parents {
		if p == nil {
			b.errs = append(b.errs, &typal.ArgumentCategoryError{Op: b.name, Position: i, Name: "extends", Want: "schema", Got: "null"})
			continue
		}
		b.parents = append(b.parents, p)
	}
	return b
}

// Field declares a required field. Redeclaring a name replaces the earlier
// declaration in place.
func (b *Builder) Field(name string, t any) *FieldStep {
	tt, err := typal.AsType(b.name, -1, t)
	if err != nil {
		if ac, ok := err.(*typal.ArgumentCategoryError); ok {
			ac.Name = name
		}
		b.errs = append(b.errs, err)
		tt = typal.Any
	}
	d := &fieldDecl{name: name, t: tt, required: true}
	if i, ok := b.index[name]; ok {
		b.fields[i] = d
		return &FieldStep{b: b, i: i}
	}
	b.index[name] = len(b.fields)
	b.fields = append(b.fields, d)
	return &FieldStep{b: b, i: len(b.fields) - 1}
}

// Condition adds a boolean record-level predicate.
func (b *Builder) Condition(name string, fn func(*Record) bool) *Builder {
	if fn == nil {
		b.errs = append(b.errs, &typal.ArgumentCategoryError{Op: b.name, Position: -1, Name: name, Want: "condition predicate", Got: "null"})
		return b
	}
	b.conditions = append(b.conditions, Predicate(name, fn))
	return b
}

// Conditions adds prebuilt conditions (see package rules).
func (b *Builder) Conditions(cs ...Condition) *Builder {
	for _, c := range cs {
		if c.Check == nil {
			b.errs = append(b.errs, &typal.ArgumentCategoryError{Op: b.name, Position: -1, Name: c.Name, Want: "condition check", Got: "null"})
			continue
		}
		if c.id == 0 {
			c.id = conditionIDs.Add(1)
		}
		b.conditions = append(b.conditions, c)
	}
	return b
}

// Optional makes the field optional with its type's canonical null as the
// default.
func (f *FieldStep) Optional() *Builder {
	d := f.b.fields[f.i]
	d.required, d.hasDef, d.def = false, false, nil
	return f.b
}

// Default makes the field optional with the given default.
func (f *FieldStep) Default(v any) *Builder {
	d := f.b.fields[f.i]
	d.required, d.hasDef, d.def = false, true, v
	return f.b
}

func (f *FieldStep) Field(name string, t any) *FieldStep { return f.b.Field(name, t) }
func (f *FieldStep) Condition(name string, fn func(*Record) bool) *Builder {
	return f.b.Condition(name, fn)
}
func (f *FieldStep) Conditions(cs ...Condition) *Builder { return f.b.Conditions(cs...) }
func (f *FieldStep) Build() (*Schema, error)             { return f.b.Build() }
func (f *FieldStep) MustBuild() *Schema                  { return f.b.MustBuild() }

// Build merges parents and fields, validates defaults and freezes the
// schema. Invalid defaults are reported as Issues with code
// invalid_default.
func (b *Builder) Build() (*Schema, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}
	s := &Schema{
		id:      schemaIDs.Add(1),
		name:    b.name,
		disc:    b.disc,
		fields:  map[string]*Field{},
		parents: append([]*Schema(nil), b.parents...),
	}
	put := func(f *Field, from string) {
		if prev, ok := s.fields[f.Name]; ok {
			if !typal.IsSubtype(f.Type, prev.Type) {
				typal.Log().Warn().Str("schema", b.name).Str("field", f.Name).
					Str("inherited", prev.Type.Name()).Str("override", f.Type.Name()).Str("from", from).
					Msg("typal: field override is not a subtype of the inherited type")
			}
		} else {
			s.declared = append(s.declared, f.Name)
		}
		s.fields[f.Name] = f
	}
	seen := map[uint64]struct{}{}
	addCondition := func(c Condition) {
		if _, dup := seen[c.id]; dup {
			return
		}
		seen[c.id] = struct{}{}
		s.conditions = append(s.conditions, c)
	}
	for _, p := range b.parents {
		for _, n := range p.declared {
			f := *p.fields[n]
			put(&f, p.name)
		}
		for _, c := range p.conditions {
			addCondition(c)
		}
	}
	var iss typal.Issues
	for _, d := range b.fields {
		f := &Field{Name: d.name, Type: d.t, Required: d.required}
		if !d.required {
			def, err := defaultFor(d)
			if err != nil {
				iss = typal.AppendIssues(iss, typal.Issue{Path: typal.Pointer(d.name), Code: typal.CodeInvalidDefault, Message: err.Error(), Cause: err})
				continue
			}
			f.Default = def
		}
		put(f, b.name)
	}
	if len(iss) > 0 {
		return nil, iss
	}
	for _, c := range b.conditions {
		addCondition(c)
	}
	s.order = canonicalOrder(s.disc, s.declared, s.fields)
	for _, p := range s.parents {
		p.addChild(s)
	}
	typal.Log().Debug().Str("schema", s.name).Str("discipline", s.disc.String()).Strs("order", s.order).Msg("typal: schema built")
	return s, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

func defaultFor(d *fieldDecl) (any, error) {
	if !d.hasDef {
		v, ok := typal.NullOf(d.t)
		if !ok {
			return nil, &typal.TypeMismatch{Name: d.name, Expected: d.t.Name(), Actual: "no canonical null", Detail: "declare a default"}
		}
		return v, nil
	}
	if err := typal.Check(d.name, d.def, d.t); err != nil {
		return nil, err
	}
	return d.def, nil
}

// FieldSpec declares one field for Build.
type FieldSpec struct {
	Name       string
	Type       typal.Type
	Required   bool
	Default    any
	HasDefault bool
}

// Build declares a schema in one call: discipline, name, parents, conditions
// and fields.
func Build(d Discipline, name string, extends []*Schema, conditions []Condition, fields ...FieldSpec) (*Schema, error) {
	b := New(name, d).Extends(extends...).Conditions(conditions...)
	for _, f := range fields {
		step := b.Field(f.Name, f.Type)
		switch {
		case f.Required:
		case f.HasDefault:
			step.Default(f.Default)
		default:
			step.Optional()
		}
	}
	return b.Build()
}
