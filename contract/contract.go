package contract

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/reoring/typal"
)

// Args holds the values bound so far during a call, by parameter name.
// Dependent parameter resolvers receive it.
type Args map[string]any

// Resolver computes the type of a dependent parameter from the values bound
// to earlier parameters.
type Resolver func(Args) (typal.Type, error)

// Param describes one parameter of a contract.
type Param struct {
	Name       string
	Type       typal.Type // nil for dependent parameters
	Dependent  Resolver
	Default    any
	HasDefault bool
}

// Contract is a typed function: an ordered domain of parameters, a codomain
// and an implementation. Calls check arguments before and the result after
// invoking the implementation.
type Contract struct {
	id       uint64
	name     string
	params   []Param
	codomain typal.Type
	impl     func(args []any) (any, error)
	factory  *factoryCache
}

var (
	_ typal.Callable = (*Contract)(nil)

	lastID atomic.Uint64
)

func nextID() uint64 { return lastID.Add(1) }

var errorIface = reflect.TypeOf((*error)(nil)).Elem()

// Wrap turns a Go func into a contract. The domain comes from the parameter
// types (typal.TypeFor), the codomain from the first result. The func may
// return nothing, (T), (error) or (T, error); parameters are named arg0,
// arg1, ... Use New to name parameters or declare richer types.
func Wrap(fn any) (*Contract, error) {
	return New("", fn).Build()
}

// MustWrap is like Wrap but panics on error.
func MustWrap(fn any) *Contract {
	c, err := Wrap(fn)
	if err != nil {
		panic(err)
	}
	return c
}

// signature validates fn and returns its reflected value and whether the
// last result is an error.
func signature(op string, fn any) (reflect.Value, bool, error) {
	rv := reflect.ValueOf(fn)
	if fn == nil || rv.Kind() != reflect.Func || rv.IsNil() {
		return reflect.Value{}, false, &typal.ArgumentCategoryError{Op: op, Position: 0, Want: "func", Got: categoryOf(fn)}
	}
	rt := rv.Type()
	if rt.IsVariadic() {
		return reflect.Value{}, false, &typal.ArgumentCategoryError{Op: op, Position: 0, Want: "func with a fixed parameter list", Got: rt.String()}
	}
	switch rt.NumOut() {
	case 0:
		return rv, false, nil
	case 1:
		return rv, rt.Out(0) == errorIface, nil
	case 2:
		if rt.Out(1) == errorIface {
			return rv, true, nil
		}
	}
	return reflect.Value{}, false, &typal.ArgumentCategoryError{Op: op, Position: 0, Want: "func returning (T), (error) or (T, error)", Got: rt.String()}
}

func categoryOf(v any) string {
	if v == nil {
		return "null"
	}
	return typal.Category(v)
}

// funcName is the short name of fn: package.func, without the import path.
func funcName(rv reflect.Value) string {
	f := runtime.FuncForPC(rv.Pointer())
	if f == nil {
		return "func"
	}
	n := f.Name()
	if i := strings.LastIndex(n, "/"); i >= 0 {
		n = n[i+1:]
	}
	return n
}

// codomainOf derives the codomain from the Go results.
func codomainOf(rt reflect.Type, hasErr bool) typal.Type {
	n := rt.NumOut()
	if hasErr {
		n--
	}
	if n == 0 {
		return typal.Null
	}
	return typal.TypeFor(rt.Out(0))
}

// invoker adapts a reflected func to the contract implementation signature.
func invoker(name string, params []Param, rv reflect.Value, hasErr bool) func([]any) (any, error) {
	rt := rv.Type()
	return func(args []any) (any, error) {
		in := make([]reflect.Value, len(args))
		for i, a := range args {
			v, err := argValue(a, rt.In(i))
			if err != nil {
				var tm *typal.TypeMismatch
				if errors.As(err, &tm) {
					tm.Name = name + ": " + params[i].Name
				}
				return nil, err
			}
			in[i] = v
		}
		out := rv.Call(in)
		if hasErr {
			if e := out[len(out)-1]; !e.IsNil() {
				return nil, e.Interface().(error)
			}
			out = out[:len(out)-1]
		}
		if len(out) == 0 {
			return nil, nil
		}
		return out[0].Interface(), nil
	}
}

// argValue converts a checked argument into a value for a Go parameter.
// Numbers convert across kinds when the value fits.
func argValue(a any, rt reflect.Type) (reflect.Value, error) {
	if a == nil {
		switch rt.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(rt), nil
		}
		return reflect.Value{}, &typal.TypeMismatch{Expected: rt.String(), Actual: "null"}
	}
	v := reflect.ValueOf(a)
	if v.Type().AssignableTo(rt) {
		return v, nil
	}
	if i, ok := typal.AsInt64(a); ok && isInt(rt.Kind()) {
		out := reflect.New(rt).Elem()
		if isUint(rt.Kind()) {
			if i < 0 || out.OverflowUint(uint64(i)) {
				return reflect.Value{}, &typal.TypeMismatch{Expected: rt.String(), Actual: typal.Describe(a), Detail: "out of range"}
			}
			out.SetUint(uint64(i))
			return out, nil
		}
		if out.OverflowInt(i) {
			return reflect.Value{}, &typal.TypeMismatch{Expected: rt.String(), Actual: typal.Describe(a), Detail: "out of range"}
		}
		out.SetInt(i)
		return out, nil
	}
	if k := v.Kind(); (k == reflect.Float32 || k == reflect.Float64 || isInt(k)) && (rt.Kind() == reflect.Float32 || rt.Kind() == reflect.Float64) {
		return v.Convert(rt), nil
	}
	if v.Type().ConvertibleTo(rt) && v.Kind() == rt.Kind() {
		return v.Convert(rt), nil
	}
	return reflect.Value{}, &typal.TypeMismatch{Expected: rt.String(), Actual: typal.Describe(a)}
}

func isInt(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return isUint(k)
}

func isUint(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

// ID is the contract's process-unique identity.
func (c *Contract) ID() uint64 { return c.id }

func (c *Contract) Name() string         { return c.name }
func (c *Contract) String() string       { return c.name }
func (c *Contract) Codomain() typal.Type { return c.codomain }
func (c *Contract) Params() []Param      { return append([]Param(nil), c.params...) }
func (c *Contract) IsFactory() bool      { return c.factory != nil }

// Domain returns the declared parameter types; dependent parameters report
// Any.
func (c *Contract) Domain() []typal.Type {
	out := make([]typal.Type, len(c.params))
	for i, p := range c.params {
		if p.Type == nil {
			out[i] = typal.Any
			continue
		}
		out[i] = p.Type
	}
	return out
}

// Accepts reports whether the positional arguments bind and check against
// the domain. The implementation is not invoked.
func (c *Contract) Accepts(args ...any) bool {
	_, err := c.bind(args, nil)
	return err == nil
}

// Call invokes the contract with positional arguments.
func (c *Contract) Call(args ...any) (any, error) { return c.CallNamed(args, nil) }

// CallNamed binds positional arguments first, then keywords by parameter
// name, then defaults. Each value is checked against its parameter type
// (dependent types are resolved against the earlier bound values) before the
// implementation runs; the result is checked against the codomain and
// returned unchanged.
func (c *Contract) CallNamed(positional []any, keywords map[string]any) (any, error) {
	vals, err := c.bind(positional, keywords)
	if err != nil {
		return nil, err
	}
	if c.factory != nil {
		return c.factory.get(c, vals)
	}
	return c.invoke(vals)
}

func (c *Contract) invoke(vals []any) (any, error) {
	out, err := c.impl(vals)
	if err != nil {
		return nil, err
	}
	if err := typal.Check("", out, c.codomain); err != nil {
		return nil, mismatch(c.name+": return value", c.codomain, out, err)
	}
	return out, nil
}

func (c *Contract) bind(positional []any, keywords map[string]any) ([]any, error) {
	if len(positional) > len(c.params) {
		return nil, &typal.ArgumentCategoryError{Op: c.name, Position: len(c.params), Want: fmt.Sprintf("at most %d arguments", len(c.params)), Got: fmt.Sprintf("%d arguments", len(positional))}
	}
	for k := range keywords {
		if c.index(k) < 0 {
			return nil, &typal.ArgumentCategoryError{Op: c.name, Position: -1, Name: k, Want: "known parameter name", Got: "unexpected keyword " + k}
		}
	}
	bound := make(Args, len(c.params))
	vals := make([]any, len(c.params))
	for i, p := range c.params {
		kv, named := keywords[p.Name]
		var v any
		switch {
		case i < len(positional):
			if named {
				return nil, &typal.ArgumentCategoryError{Op: c.name, Position: i, Name: p.Name, Want: "one value", Got: "positional and keyword values"}
			}
			v = positional[i]
		case named:
			v = kv
		case p.HasDefault:
			v = p.Default
		default:
			return nil, &typal.ArgumentCategoryError{Op: c.name, Position: i, Name: p.Name, Want: "argument", Got: "none"}
		}
		t := p.Type
		if p.Dependent != nil {
			dt, err := p.Dependent(bound)
			if err != nil {
				return nil, err
			}
			if dt == nil {
				return nil, &typal.ArgumentCategoryError{Op: c.name, Position: i, Name: p.Name, Want: "resolved type descriptor", Got: "null"}
			}
			t = dt
		}
		if err := typal.Check(p.Name, v, t); err != nil {
			return nil, mismatch(p.Name, t, v, err)
		}
		bound[p.Name] = v
		vals[i] = v
	}
	return vals, nil
}

// mismatch normalizes a membership failure into a TypeMismatch naming the
// parameter (or return value).
func mismatch(name string, t typal.Type, v any, err error) error {
	if tm, ok := err.(*typal.TypeMismatch); ok {
		out := *tm
		out.Name = name
		if out.Expected == "" {
			out.Expected = t.Name()
		}
		return &out
	}
	return &typal.TypeMismatch{Name: name, Expected: t.Name(), Actual: typal.Describe(v), Detail: err.Error()}
}

func (c *Contract) index(name string) int {
	for i, p := range c.params {
		if p.Name == name {
			return i
		}
	}
	return -1
}
