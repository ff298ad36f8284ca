package typal

import "reflect"

// Builtin descriptors. Int, Float, Str, Bool and Bytes classify by reflect
// kind, so named Go types (type Age int) are members too.
var (
	// Any is the universal type.
	Any Type = universal{}
	// Nothing is the empty type; it has no members and is a subtype of
	// every type.
	Nothing Type = empty{}

	Null   = &primitive{name: "Null", hasNull: true, contains: func(v any) bool { return v == nil }}
	Bool   = &primitive{name: "Bool", null: false, hasNull: true, contains: kindIn(reflect.Bool)}
	Int    = &primitive{name: "Int", null: 0, hasNull: true, contains: kindIn(intKinds...)}
	Float  = &primitive{name: "Float", null: 0.0, hasNull: true, contains: kindIn(reflect.Float32, reflect.Float64)}
	Str    = &primitive{name: "Str", null: "", hasNull: true, contains: kindIn(reflect.String)}
	Bytes  = &primitive{name: "Bytes", null: []byte{}, hasNull: true, contains: isBytes}
	Number = &primitive{name: "Number", null: 0, hasNull: true, contains: kindIn(append(intKinds, reflect.Float32, reflect.Float64)...)}

	// TypeType classifies Type values themselves (factory codomains).
	TypeType = &primitive{name: "Type", contains: isType}
	// CallableType classifies Callable values.
	CallableType = &primitive{name: "Callable", contains: isCallable}
)

func init() {
	Number.subs = []Type{Int, Float}
}

var intKinds = []reflect.Kind{
	reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
	reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
}

func kindIn(kinds ...reflect.Kind) func(any) bool {
	return func(v any) bool {
		if v == nil {
			return false
		}
		k := reflect.TypeOf(v).Kind()
		for _, want := range kinds {
			if k == want {
				return true
			}
		}
		return false
	}
}

func isType(v any) bool {
	_, ok := v.(Type)
	return ok
}

func isCallable(v any) bool {
	_, ok := v.(Callable)
	return ok
}

func isBytes(v any) bool {
	if v == nil {
		return false
	}
	rt := reflect.TypeOf(v)
	return rt.Kind() == reflect.Slice && rt.Elem().Kind() == reflect.Uint8
}

// primitive is a builtin leaf descriptor.
type primitive struct {
	name     string
	null     any
	hasNull  bool
	contains func(any) bool
	subs     []Type // builtins that are subtypes (Number: Int, Float)
}

func (p *primitive) Name() string        { return p.name }
func (p *primitive) Key() string         { return p.name }
func (p *primitive) Contains(v any) bool { return p.contains(v) }
func (p *primitive) Null() (any, bool)   { return p.null, p.hasNull }
func (p *primitive) String() string      { return p.name }

func (p *primitive) Includes(sub Type) bool {
	if sub == p {
		return true
	}
	for _, s := range p.subs {
		if IsSubtype(sub, s) {
			return true
		}
	}
	return false
}

// IsPrimitive reports whether t is one of the builtin leaf descriptors other
// than Any and Nothing.
func IsPrimitive(t Type) bool {
	_, ok := t.(*primitive)
	return ok
}

type universal struct{}

func (universal) Name() string       { return "Any" }
func (universal) Key() string        { return "Any" }
func (universal) Contains(any) bool  { return true }
func (universal) Includes(Type) bool { return true }
func (universal) Null() (any, bool)  { return nil, true }
func (universal) String() string     { return "Any" }

type empty struct{}

func (empty) Name() string           { return "Nothing" }
func (empty) Key() string            { return "Nothing" }
func (empty) Contains(any) bool      { return false }
func (empty) Includes(sub Type) bool { return sub == Nothing }
func (empty) Alternatives() []Type   { return nil }
func (empty) String() string         { return "Nothing" }
