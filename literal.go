package typal

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// LiteralKey renders a canonical key for a literal value. Numbers render
// by value regardless of Go kind, integral floats included, so numerically
// Equal values share keys. Other values render with their Go type and every
// field, map entry (sorted) and element, recursively. Descriptors render as
// their Key and Hashable values as their HashKey.
func LiteralKey(v any) string {
	w := keyWriter{seen: map[uintptr]bool{}}
	w.value(reflect.ValueOf(v))
	return w.b.String()
}

type keyWriter struct {
	b    strings.Builder
	seen map[uintptr]bool
}

func (w *keyWriter) value(rv reflect.Value) {
	if !rv.IsValid() {
		w.b.WriteString("null")
		return
	}
	if rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			w.b.WriteString("null")
			return
		}
		w.value(rv.Elem())
		return
	}
	nilable := rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Map || rv.Kind() == reflect.Slice
	if rv.CanInterface() && !(nilable && rv.IsNil()) {
		switch t := rv.Interface().(type) {
		case Type:
			w.b.WriteString("type:" + t.Key())
			return
		case Hashable:
			w.b.WriteString(rv.Type().String() + ":" + t.HashKey())
			return
		}
	}
	typ := rv.Type().String()
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		w.b.WriteString("int:" + strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			w.b.WriteString("uint:" + strconv.FormatUint(u, 10))
			return
		}
		w.b.WriteString("int:" + strconv.FormatUint(u, 10))
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) < 1<<63 {
			w.b.WriteString("int:" + strconv.FormatInt(int64(f), 10))
			return
		}
		w.b.WriteString("float:" + strconv.FormatFloat(f, 'g', -1, 64))
	case reflect.String:
		w.b.WriteString(typ + ":" + strconv.Quote(rv.String()))
	case reflect.Bool:
		w.b.WriteString(typ + ":" + strconv.FormatBool(rv.Bool()))
	case reflect.Pointer:
		if rv.IsNil() {
			w.b.WriteString(typ + "(nil)")
			return
		}
		if w.enter(rv.Pointer()) {
			return
		}
		w.b.WriteString("&")
		w.value(rv.Elem())
		delete(w.seen, rv.Pointer())
	case reflect.Struct:
		w.b.WriteString(typ + "{")
		for i := 0; i < rv.NumField(); i++ {
			if i > 0 {
				w.b.WriteString(",")
			}
			w.b.WriteString(rv.Type().Field(i).Name + ":")
			w.value(rv.Field(i))
		}
		w.b.WriteString("}")
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice {
			if rv.IsNil() {
				w.b.WriteString(typ + "(nil)")
				return
			}
			if w.enter(rv.Pointer()) {
				return
			}
			defer delete(w.seen, rv.Pointer())
		}
		w.b.WriteString(typ + "[")
		for i := 0; i < rv.Len(); i++ {
			if i > 0 {
				w.b.WriteString(",")
			}
			w.value(rv.Index(i))
		}
		w.b.WriteString("]")
	case reflect.Map:
		if rv.IsNil() {
			w.b.WriteString(typ + "(nil)")
			return
		}
		if w.enter(rv.Pointer()) {
			return
		}
		defer delete(w.seen, rv.Pointer())
		entries := make([]string, 0, rv.Len())
		it := rv.MapRange()
		for it.Next() {
			kw := keyWriter{seen: w.seen}
			kw.value(it.Key())
			kw.b.WriteString(":")
			kw.value(it.Value())
			entries = append(entries, kw.b.String())
		}
		sort.Strings(entries)
		w.b.WriteString(typ + "{" + strings.Join(entries, ",") + "}")
	case reflect.Complex64, reflect.Complex128:
		w.b.WriteString(typ + ":" + strconv.FormatComplex(rv.Complex(), 'g', -1, 128))
	default:
		// funcs, channels and unsafe pointers compare by identity
		w.b.WriteString(fmt.Sprintf("%s@%#x", typ, rv.Pointer()))
	}
}

// enter marks p as being rendered and reports whether it already was.
func (w *keyWriter) enter(p uintptr) bool {
	if w.seen[p] {
		w.b.WriteString("<cycle>")
		return true
	}
	w.seen[p] = true
	return false
}

// Equal compares literal values: integers compare numerically across Go
// kinds, floats compare with integers when integral, everything else uses
// reflect.DeepEqual.
func Equal(a, b any) bool {
	if ai, ok := asInt64(a); ok {
		if bi, ok := asInt64(b); ok {
			return ai == bi
		}
		if bf, ok := asFloat64(b); ok {
			return float64(ai) == bf
		}
		return false
	}
	if af, ok := asFloat64(a); ok {
		if bf, ok := asFloat64(b); ok {
			return af == bf
		}
		if bi, ok := asInt64(b); ok {
			return af == float64(bi)
		}
		return false
	}
	if at, ok := a.(Type); ok {
		bt, ok := b.(Type)
		return ok && at.Key() == bt.Key()
	}
	return reflect.DeepEqual(a, b)
}

// Category names the category of v for diagnostics.
func Category(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case Type:
		return "type " + t.Name()
	case Callable:
		return "callable " + t.Name()
	}
	return reflect.TypeOf(v).String()
}

// Describe renders v with its category, truncated for long values.
func Describe(v any) string {
	if v == nil {
		return "null"
	}
	if t, ok := v.(Type); ok {
		return "type " + t.Name()
	}
	s := fmt.Sprintf("%v", v)
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.String {
		s = fmt.Sprintf("%q", v)
	}
	const maxLen = 60
	if len(s) > maxLen {
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "..."
	}
	return Category(v) + " (" + s + ")"
}

// AsInt64 converts any Go integer kind (and integral floats) to int64.
func AsInt64(v any) (int64, bool) {
	if i, ok := asInt64(v); ok {
		return i, true
	}
	if f, ok := asFloat64(v); ok && f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) < 1<<63 {
		return int64(f), true
	}
	return 0, false
}

func asInt64(v any) (int64, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	}
	return 0, false
}

func asFloat64(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
