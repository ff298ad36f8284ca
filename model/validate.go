package model

import (
	"fmt"
	"sort"

	"github.com/reoring/typal"
)

// ValidateOpt tunes a validation call.
type ValidateOpt struct {
	FailFast bool // stop at the first issue
}

// Validate checks record against schema and returns the resulting instance.
func Validate(record any, schema *Schema, opts ...ValidateOpt) (*Instance, error) {
	if schema == nil {
		return nil, &typal.ArgumentCategoryError{Op: "Validate", Position: 1, Want: "schema", Got: "null"}
	}
	return schema.Validate(record, opts...)
}

// New validates v and wraps it as an instance of s.
func (s *Schema) New(v any) (*Instance, error) { return s.Validate(v) }

// Validate fills defaults for missing optional fields, then checks required
// presence, field types and the key discipline. All of those problems are
// collected into one typal.Issues unless FailFast is set. Conditions run
// only once the record is structurally valid, so a record with field, key
// or order issues is reported without its condition failures.
func (s *Schema) Validate(v any, opts ...ValidateOpt) (*Instance, error) {
	var opt ValidateOpt
	if len(opts) > 0 {
		opt = opts[0]
	}
	rec, err := s.validate(v, opt)
	if err != nil {
		return nil, err
	}
	return &Instance{schema: s, rec: rec}, nil
}

// validation accumulates issues and honors FailFast.
type validation struct {
	iss  typal.Issues
	fast bool
}

func (c *validation) add(it ...typal.Issue) bool {
	c.iss = typal.AppendIssues(c.iss, it...)
	return c.fast && len(c.iss) > 0
}

func (s *Schema) validate(v any, opt ValidateOpt) (*Record, error) {
	c := &validation{fast: opt.FailFast}
	rec, ok := s.candidate(v)
	if !ok {
		c.add(typal.IssueFrom("/", &typal.TypeMismatch{Expected: s.name, Actual: typal.Describe(v), Detail: "expected a record"}))
		return nil, c.iss
	}
	// defaults for missing optional fields, appended in declared order
	for _, n := range s.declared {
		f := s.fields[n]
		if !f.Required && !rec.Has(n) {
			rec.Set(n, cloneValue(f.Default))
		}
	}
	if s.checkFields(rec, c) {
		return nil, c.iss
	}
	if s.disc.Exact && s.checkExtra(rec, c) {
		return nil, c.iss
	}
	if s.disc.Ordered && s.checkOrder(rec, c) {
		return nil, c.iss
	}
	if len(c.iss) > 0 {
		return nil, c.iss
	}
	for _, cond := range s.conditions {
		if err := cond.Check(rec); err != nil {
			cf := &typal.ConditionFailed{Schema: s.name, Condition: cond.Name, Detail: detail(err)}
			if iss, ok := typal.AsIssues(err); ok {
				// conditions that point at fields keep their paths
				for i := range iss {
					if iss[i].Code == "" {
						iss[i].Code = typal.CodeConditionFailed
					}
					if iss[i].Cause == nil {
						iss[i].Cause = cf
					}
				}
				if c.add(iss...) {
					return nil, c.iss
				}
				continue
			}
			it := typal.IssueFrom("/", cf)
			if c.add(it) {
				return nil, c.iss
			}
		}
	}
	if len(c.iss) > 0 {
		return nil, c.iss
	}
	return rec, nil
}

func detail(err error) string {
	if err == errConditionFalse {
		return ""
	}
	return err.Error()
}

// checkFields reports missing required fields and field type mismatches.
// Valid nested schema values are replaced by their normalized records.
func (s *Schema) checkFields(rec *Record, c *validation) bool {
	for _, n := range s.order {
		f := s.fields[n]
		val, ok := rec.Get(n)
		if !ok {
			km := &typal.KeyMismatch{Schema: s.name, Key: n, Reason: typal.KeyMissing}
			if c.add(typal.IssueFrom(typal.Pointer(n), km)) {
				return true
			}
			continue
		}
		norm, err := checkValue(f, val)
		if err != nil {
			if c.add(typal.RebaseIssues(typal.Pointer(n), err)...) {
				return true
			}
			continue
		}
		rec.Set(n, norm)
	}
	return false
}

// checkValue checks one field value. Nested schemas return their
// normalized record.
func checkValue(f *Field, val any) (any, error) {
	if sub, ok := f.Type.(*Schema); ok {
		rec, err := sub.validate(val, ValidateOpt{})
		if err != nil {
			return nil, err
		}
		return rec, nil
	}
	if err := typal.Check(f.Name, val, f.Type); err != nil {
		return nil, err
	}
	return val, nil
}

func (s *Schema) checkExtra(rec *Record, c *validation) bool {
	for _, k := range rec.Keys() {
		if _, ok := s.fields[k]; ok {
			continue
		}
		km := &typal.KeyMismatch{Schema: s.name, Key: k, Reason: typal.KeyExtra, Want: s.Order(), Got: rec.Keys()}
		if c.add(typal.IssueFrom(typal.Pointer(k), km)) {
			return true
		}
	}
	return false
}

// checkOrder requires the declared keys of rec, in insertion order, to form
// a prefix of the declared order. Unknown keys are ignored.
func (s *Schema) checkOrder(rec *Record, c *validation) bool {
	var got []string
	for _, k := range rec.Keys() {
		if _, ok := s.fields[k]; ok {
			got = append(got, k)
		}
	}
	for i, k := range got {
		if s.order[i] == k {
			continue
		}
		km := &typal.KeyMismatch{Schema: s.name, Key: k, Reason: typal.KeyOrder, Want: s.Order(), Got: got}
		it := typal.IssueFrom(typal.Pointer(k), km)
		it.Hint = fmt.Sprintf("position %d expects %q", i, s.order[i])
		return c.add(it)
	}
	return false
}

// candidate copies v into a fresh record. Go maps are laid out in canonical
// order followed by unknown keys sorted.
func (s *Schema) candidate(v any) (*Record, bool) {
	switch t := v.(type) {
	case *Record:
		if t == nil {
			return nil, false
		}
		return t.Clone(), true
	case *Instance:
		if t == nil {
			return nil, false
		}
		return t.rec.Clone(), true
	case map[string]any:
		return s.layout(t), true
	case typal.Keyed:
		rec := &Record{vals: map[string]any{}}
		for _, k := range t.Keys() {
			val, _ := t.Get(k)
			rec.Set(k, val)
		}
		return rec, true
	}
	entries, ok := typal.Entries(v)
	if !ok {
		return nil, false
	}
	m := make(map[string]any, len(entries))
	for _, e := range entries {
		k, ok := e.Key.(string)
		if !ok {
			return nil, false
		}
		m[k] = e.Value
	}
	return s.layout(m), true
}

func (s *Schema) layout(m map[string]any) *Record {
	rec := &Record{vals: make(map[string]any, len(m))}
	for _, n := range s.order {
		if val, ok := m[n]; ok {
			rec.Set(n, val)
		}
	}
	var extra []string
	for k := range m {
		if _, ok := s.fields[k]; !ok {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		rec.Set(k, m[k])
	}
	return rec
}
