package model

import (
	"github.com/reoring/typal"
)

// Instance is a record that validated against its schema. Mutations are
// checked field by field; conditions are not re-run.
type Instance struct {
	schema *Schema
	rec    *Record
}

var (
	_ typal.Keyed = (*Instance)(nil)
	_ typal.Sized = (*Instance)(nil)
)

func (in *Instance) Schema() *Schema              { return in.schema }
func (in *Instance) Get(k string) (any, bool)     { return in.rec.Get(k) }
func (in *Instance) Keys() []string               { return in.rec.Keys() }
func (in *Instance) Len() int                     { return in.rec.Len() }
func (in *Instance) Map() map[string]any          { return in.rec.Map() }
func (in *Instance) MarshalJSON() ([]byte, error) { return in.rec.MarshalJSON() }
func (in *Instance) String() string               { return in.schema.name + in.rec.String() }

// Record returns a copy of the underlying record.
func (in *Instance) Record() *Record { return in.rec.Clone() }

// Set assigns a field after checking v against the field type. Undeclared
// keys are rejected by exact disciplines and appended otherwise.
func (in *Instance) Set(k string, v any) error {
	f, ok := in.schema.fields[k]
	if !ok {
		if in.schema.disc.Exact {
			return &typal.KeyMismatch{Schema: in.schema.name, Key: k, Reason: typal.KeyExtra, Want: in.schema.Order(), Got: in.rec.Keys()}
		}
		in.rec.Set(k, v)
		return nil
	}
	norm, err := checkValue(f, v)
	if err != nil {
		if iss, ok := typal.AsIssues(err); ok {
			return typal.RebaseIssues(typal.Pointer(k), iss)
		}
		return err
	}
	in.rec.Set(k, norm)
	return nil
}

// Delete removes a field. Required fields cannot be deleted. Optional fields
// are removed from open schemas and reset to their default otherwise, so the
// key set and key order stay valid.
func (in *Instance) Delete(k string) error {
	f, ok := in.schema.fields[k]
	if !ok {
		in.rec.Delete(k)
		return nil
	}
	if f.Required {
		return &typal.KeyMismatch{Schema: in.schema.name, Key: k, Reason: typal.KeyDelete}
	}
	if in.schema.disc == DisciplineOpen {
		in.rec.Delete(k)
		return nil
	}
	in.rec.Set(k, cloneValue(f.Default))
	return nil
}
