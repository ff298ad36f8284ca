package refine

import (
	"fmt"
	"strings"

	"github.com/reoring/typal"
)

// Identified mirrors algebra.Identified: callables with a stable identity.
type Identified interface {
	ID() uint64
}

// FilterType narrows a base descriptor by one-argument boolean predicates.
type FilterType struct {
	base  typal.Type
	preds []typal.Callable
	key   string
	name  string
}

// Filter builds Base narrowed by the predicates. Each predicate must be a
// typal.Callable with exactly one parameter whose declared type is Base or
// a supertype of it, and whose codomain is a subtype of Bool. All of this is
// checked here, not at call time.
func Filter(base any, preds ...any) (typal.Type, error) {
	b, err := typal.AsType("Filter", 0, base)
	if err != nil {
		return nil, err
	}
	fs := make([]typal.Callable, 0, len(preds))
	for i, p := range preds {
		c, ok := p.(typal.Callable)
		if !ok || c == nil {
			return nil, &typal.ArgumentCategoryError{Op: "Filter", Position: i + 1, Want: "one-argument boolean callable", Got: typal.Category(p)}
		}
		dom := c.Domain()
		if len(dom) != 1 {
			return nil, &typal.ArgumentCategoryError{Op: "Filter", Position: i + 1, Name: c.Name(), Want: "one-argument boolean callable", Got: fmt.Sprintf("callable of %d parameters", len(dom))}
		}
		if !typal.IsSubtype(b, dom[0]) {
			return nil, &typal.ArgumentCategoryError{Op: "Filter", Position: i + 1, Name: c.Name(), Want: "predicate over " + b.Name() + " or a supertype", Got: "predicate over " + dom[0].Name()}
		}
		if !typal.IsSubtype(c.Codomain(), typal.Bool) {
			return nil, &typal.ArgumentCategoryError{Op: "Filter", Position: i + 1, Name: c.Name(), Want: "predicate returning Bool", Got: "callable returning " + c.Codomain().Name()}
		}
		fs = append(fs, c)
	}
	// a filter over a filter accumulates predicates on the innermost base
	if inner, ok := b.(*FilterType); ok {
		fs = append(append([]typal.Callable(nil), inner.preds...), fs...)
		b = inner.base
	}
	if len(fs) == 0 {
		return b, nil
	}
	ids := make([]string, len(fs))
	names := make([]string, len(fs))
	for i, f := range fs {
		ids[i] = predKey(f)
		names[i] = f.Name()
	}
	key := "Filter(" + b.Key() + ";" + strings.Join(ids, ",") + ")"
	return typal.Intern(key, func() typal.Type {
		return &FilterType{base: b, preds: fs, key: key, name: b.Name() + "{" + strings.Join(names, ", ") + "}"}
	}), nil
}

// MustFilter is like Filter but panics on error.
func MustFilter(base any, preds ...any) typal.Type {
	t, err := Filter(base, preds...)
	if err != nil {
		panic(err)
	}
	return t
}

func predKey(c typal.Callable) string {
	if id, ok := c.(Identified); ok {
		return fmt.Sprintf("%s#%d", c.Name(), id.ID())
	}
	return fmt.Sprintf("%s@%p", c.Name(), c)
}

func (f *FilterType) Name() string                 { return f.name }
func (f *FilterType) Key() string                  { return f.key }
func (f *FilterType) String() string               { return f.name }
func (f *FilterType) Base() typal.Type             { return f.base }
func (f *FilterType) Bases() []typal.Type          { return []typal.Type{f.base} }
func (f *FilterType) Predicates() []typal.Callable { return append([]typal.Callable(nil), f.preds...) }

func (f *FilterType) Contains(v any) bool {
	if !f.base.Contains(v) {
		return false
	}
	_, ok := f.failing(v)
	return !ok
}

// failing returns the first predicate that rejects v.
func (f *FilterType) failing(v any) (typal.Callable, bool) {
	for _, p := range f.preds {
		out, err := p.Call(v)
		if err != nil {
			return p, true
		}
		if b, ok := out.(bool); !ok || !b {
			return p, true
		}
	}
	return nil, false
}

// Includes: another filter over a subtype of our base carrying at least our
// predicates.
func (f *FilterType) Includes(sub typal.Type) bool {
	o, ok := sub.(*FilterType)
	if !ok || !typal.IsSubtype(o.base, f.base) {
		return false
	}
	have := make(map[string]struct{}, len(o.preds))
	for _, p := range o.preds {
		have[predKey(p)] = struct{}{}
	}
	for _, p := range f.preds {
		if _, ok := have[predKey(p)]; !ok {
			return false
		}
	}
	return true
}

func (f *FilterType) Null() (any, bool) { return nullWithin(f.base, f) }

func (f *FilterType) Check(v any) error {
	if err := typal.Check("", v, f.base); err != nil {
		return err
	}
	if p, ok := f.failing(v); ok {
		return &typal.TypeMismatch{Expected: f.name, Actual: typal.Describe(v), Detail: "rejected by " + p.Name()}
	}
	return nil
}

// nullWithin returns base's null when it is also a member of t.
func nullWithin(base, t typal.Type) (any, bool) {
	v, ok := typal.NullOf(base)
	if !ok || !t.Contains(v) {
		return nil, false
	}
	return v, true
}
