package typal

import (
	"reflect"
)

var (
	typeIface     = reflect.TypeOf((*Type)(nil)).Elem()
	callableIface = reflect.TypeOf((*Callable)(nil)).Elem()
)

// wide predeclared types stand for the builtin of their kind
var predeclared = map[reflect.Type]Type{
	reflect.TypeOf(int(0)):      Int,
	reflect.TypeOf(int64(0)):    Int,
	reflect.TypeOf(float64(0)):  Float,
	reflect.TypeOf(""):          Str,
	reflect.TypeOf(false):       Bool,
	reflect.TypeOf([]byte(nil)): Bytes,
}

// TypeFor returns the descriptor for a Go type. The empty interface maps to
// Any, Type to TypeType, Callable to CallableType and the wide predeclared
// types (int, int64, float64, string, bool, []byte) to their builtins;
// everything else gets an interned descriptor whose members are values
// assignable to rt.
func TypeFor(rt reflect.Type) Type {
	if rt == nil {
		return Null
	}
	if b, ok := predeclared[rt]; ok {
		return b
	}
	switch {
	case rt.Kind() == reflect.Interface && rt.NumMethod() == 0:
		return Any
	case rt == typeIface:
		return TypeType
	case rt == callableIface:
		return CallableType
	}
	key := "go:" + goTypeID(rt)
	return Intern(key, func() Type { return &goType{rt: rt, key: key} })
}

// GoType is TypeFor for a static type parameter.
func GoType[T any]() Type { return TypeFor(reflect.TypeOf((*T)(nil)).Elem()) }

// TypeOfValue returns the descriptor for the dynamic Go type of v.
func TypeOfValue(v any) Type {
	if v == nil {
		return Null
	}
	return TypeFor(reflect.TypeOf(v))
}

func goTypeID(rt reflect.Type) string {
	if rt.Name() != "" && rt.PkgPath() != "" {
		return rt.PkgPath() + "." + rt.Name()
	}
	return rt.String()
}

// goType classifies values by Go assignability.
type goType struct {
	rt  reflect.Type
	key string
}

// Reflect returns the underlying Go type.
func (g *goType) Reflect() reflect.Type { return g.rt }

func (g *goType) Name() string   { return g.rt.String() }
func (g *goType) Key() string    { return g.key }
func (g *goType) String() string { return g.rt.String() }

func (g *goType) Contains(v any) bool {
	if v == nil {
		return nillable(g.rt.Kind())
	}
	return reflect.TypeOf(v).AssignableTo(g.rt)
}

func (g *goType) Includes(sub Type) bool {
	other, ok := sub.(*goType)
	if !ok {
		return sub == Null && nillable(g.rt.Kind())
	}
	return other.rt.AssignableTo(g.rt)
}

func (g *goType) Null() (any, bool) {
	if g.rt.Kind() == reflect.Interface {
		return nil, true
	}
	return reflect.Zero(g.rt).Interface(), true
}

// Bases maps the Go kind onto the builtin it narrows.
func (g *goType) Bases() []Type {
	switch k := g.rt.Kind(); {
	case k == reflect.Bool:
		return []Type{Bool}
	case k == reflect.String:
		return []Type{Str}
	case k == reflect.Float32 || k == reflect.Float64:
		return []Type{Float}
	case k == reflect.Slice && g.rt.Elem().Kind() == reflect.Uint8:
		return []Type{Bytes}
	default:
		for _, ik := range intKinds {
			if k == ik {
				return []Type{Int}
			}
		}
	}
	return nil
}

func nillable(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Func, reflect.Chan:
		return true
	}
	return false
}
