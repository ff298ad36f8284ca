package model

import (
	"fmt"
	"sort"

	"github.com/reoring/typal"
)

// Record is an insertion-ordered string-keyed map. Setting an existing key
// keeps its position; new keys are appended.
type Record struct {
	keys []string
	vals map[string]any
}

var (
	_ typal.Keyed = (*Record)(nil)
	_ typal.Sized = (*Record)(nil)
)

// NewRecord builds a record from alternating key/value arguments. It panics
// when a key is not a string or a value is missing.
func NewRecord(kv ...any) *Record {
	if len(kv)%2 != 0 {
		panic(fmt.Sprintf("model: NewRecord: odd number of arguments (%d)", len(kv)))
	}
	r := &Record{vals: make(map[string]any, len(kv)/2)}
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("model: NewRecord: key at %d is %T, want string", i, kv[i]))
		}
		r.Set(k, kv[i+1])
	}
	return r
}

// RecordOf copies a Go map into a record. Go maps carry no order, so keys
// are laid out sorted.
func RecordOf(m map[string]any) *Record {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	r := &Record{keys: keys, vals: make(map[string]any, len(m))}
	for k, v := range m {
		r.vals[k] = v
	}
	return r
}

func (r *Record) init() {
	if r.vals == nil {
		r.vals = map[string]any{}
	}
}

// Get returns the value stored under k.
func (r *Record) Get(k string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.vals[k]
	return v, ok
}

// Has reports whether k is present.
func (r *Record) Has(k string) bool {
	_, ok := r.Get(k)
	return ok
}

// Set stores v under k.
func (r *Record) Set(k string, v any) {
	r.init()
	if _, ok := r.vals[k]; !ok {
		r.keys = append(r.keys, k)
	}
	r.vals[k] = v
}

// Delete removes k and reports whether it was present.
func (r *Record) Delete(k string) bool {
	if r == nil {
		return false
	}
	if _, ok := r.vals[k]; !ok {
		return false
	}
	delete(r.vals, k)
	for i, key := range r.keys {
		if key == k {
			r.keys = append(r.keys[:i:i], r.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns the keys in insertion order.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.keys...)
}

// Len returns the number of keys.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Clone returns a copy; nested records are cloned too.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := &Record{keys: append([]string(nil), r.keys...), vals: make(map[string]any, len(r.vals))}
	for k, v := range r.vals {
		out.vals[k] = cloneValue(v)
	}
	return out
}

// Map converts the record into a Go map, recursively.
func (r *Record) Map() map[string]any {
	if r == nil {
		return nil
	}
	out := make(map[string]any, len(r.vals))
	for k, v := range r.vals {
		out[k] = plain(v)
	}
	return out
}

// HashKey renders the record as canonical JSON so records can be set
// elements.
func (r *Record) HashKey() string {
	b, err := r.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("%v", r.Map())
	}
	return string(b)
}

func (r *Record) String() string { return r.HashKey() }

func cloneValue(v any) any {
	switch t := v.(type) {
	case *Record:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	}
	return v
}

func plain(v any) any {
	switch t := v.(type) {
	case *Record:
		return t.Map()
	case *Instance:
		return t.rec.Map()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plain(e)
		}
		return out
	}
	return v
}
