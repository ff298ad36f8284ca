package typal

import (
	"fmt"
	"reflect"
	"sort"
)

// Elements returns the elements of a sequence value (Go slice or array, or
// an Appendable). Strings and byte slices are not sequences.
func Elements(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	if isBytes(v) {
		return nil, false
	}
	if s, ok := v.([]any); ok {
		return s, true
	}
	if a, ok := v.(Appendable); ok {
		return a.Items(), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, true
	}
	return nil, false
}

// Entry is one key/value pair of a mapping value.
type Entry struct {
	Key   any
	Value any
}

// Entries returns the pairs of a mapping value: Keyed values in their own
// key order, Go maps in a deterministic (sorted key) order.
func Entries(v any) ([]Entry, bool) {
	if v == nil {
		return nil, false
	}
	if k, ok := v.(Keyed); ok {
		keys := k.Keys()
		out := make([]Entry, 0, len(keys))
		for _, key := range keys {
			val, _ := k.Get(key)
			out = append(out, Entry{Key: key, Value: val})
		}
		return out, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, false
	}
	out := make([]Entry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out = append(out, Entry{Key: iter.Key().Interface(), Value: iter.Value().Interface()})
	}
	sort.Slice(out, func(i, j int) bool { return fmt.Sprint(out[i].Key) < fmt.Sprint(out[j].Key) })
	return out, true
}

// SetElements returns the elements of a set value: the keys of a Go map
// whose values are struct{} or true bools, or the elements of a sequence
// when all of them are hashable and distinct.
func SetElements(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Map {
		et := rv.Type().Elem()
		switch {
		case et.Kind() == reflect.Struct && et.NumField() == 0:
		case et.Kind() == reflect.Bool:
		default:
			return nil, false
		}
		out := make([]any, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			if et.Kind() == reflect.Bool && !iter.Value().Bool() {
				continue
			}
			out = append(out, iter.Key().Interface())
		}
		sort.Slice(out, func(i, j int) bool { return LiteralKey(out[i]) < LiteralKey(out[j]) })
		return out, true
	}
	elems, ok := Elements(v)
	if !ok {
		return nil, false
	}
	seen := make(map[string]struct{}, len(elems))
	for _, e := range elems {
		if !IsHashable(e) {
			return nil, false
		}
		k := LiteralKey(e)
		if _, dup := seen[k]; dup {
			return nil, false
		}
		seen[k] = struct{}{}
	}
	return elems, true
}

// IsHashable reports whether v can be a set element.
func IsHashable(v any) bool {
	if v == nil {
		return true
	}
	if _, ok := v.(Hashable); ok {
		return true
	}
	return reflect.TypeOf(v).Comparable()
}

// Length returns the length of strings, byte slices, sequences, maps and
// Sized values.
func Length(v any) (int, bool) {
	if v == nil {
		return 0, false
	}
	if s, ok := v.(Sized); ok {
		return s.Len(), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map, reflect.Chan:
		return rv.Len(), true
	}
	return 0, false
}
