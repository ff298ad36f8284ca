package typal_test

import (
	"reflect"
	"testing"

	"github.com/reoring/typal"
)

type age int

type shape interface{ Area() float64 }

type square struct{ side float64 }

func (s square) Area() float64 { return s.side * s.side }

func TestBuiltins_Membership(t *testing.T) {
	cases := []struct {
		t     typal.Type
		in    []any
		notIn []any
	}{
		{typal.Int, []any{1, int8(2), uint64(3), age(4)}, []any{1.0, "1", nil, true}},
		{typal.Float, []any{1.5, float32(2)}, []any{1, "1.5"}},
		{typal.Number, []any{1, 2.5}, []any{"1", false}},
		{typal.Str, []any{"", "x"}, []any{[]byte("x"), 1}},
		{typal.Bytes, []any{[]byte("x")}, []any{"x", []int{1}}},
		{typal.Bool, []any{true, false}, []any{0, "true"}},
		{typal.Null, []any{nil}, []any{0, ""}},
		{typal.TypeType, []any{typal.Int}, []any{"Int"}},
	}
	for _, c := range cases {
		for _, v := range c.in {
			if !typal.Is(v, c.t) {
				t.Fatalf("%#v should be a member of %s", v, c.t.Name())
			}
		}
		for _, v := range c.notIn {
			if typal.Is(v, c.t) {
				t.Fatalf("%#v should not be a member of %s", v, c.t.Name())
			}
		}
	}
	if !typal.Is(struct{}{}, typal.Any) || typal.Is(nil, typal.Nothing) {
		t.Fatalf("top/bottom membership wrong")
	}
}

func TestIsSubtype_Builtins(t *testing.T) {
	all := []typal.Type{typal.Any, typal.Nothing, typal.Null, typal.Bool, typal.Int, typal.Float, typal.Number, typal.Str, typal.Bytes}
	for _, a := range all {
		if !typal.IsSubtype(a, a) {
			t.Fatalf("%s must be a subtype of itself", a.Name())
		}
		if !typal.IsSubtype(a, typal.Any) || !typal.IsSubtype(typal.Nothing, a) {
			t.Fatalf("%s: top/bottom rules violated", a.Name())
		}
	}
	if !typal.IsSubtype(typal.Int, typal.Number) || !typal.IsSubtype(typal.Float, typal.Number) {
		t.Fatalf("Int and Float are Numbers")
	}
	if typal.IsSubtype(typal.Number, typal.Int) || typal.IsSubtype(typal.Str, typal.Bytes) {
		t.Fatalf("unexpected subtype")
	}
	if typal.IsSubtype(typal.Any, typal.Int) {
		t.Fatalf("Any is not a subtype of Int")
	}
}

func TestTypeFor(t *testing.T) {
	if typal.GoType[int]() != typal.Int || typal.GoType[string]() != typal.Str || typal.GoType[any]() != typal.Any {
		t.Fatalf("wide predeclared types map onto builtins")
	}
	if typal.GoType[typal.Type]() != typal.TypeType {
		t.Fatalf("Type maps onto TypeType")
	}
	a := typal.GoType[age]()
	if a != typal.TypeFor(reflect.TypeOf(age(0))) {
		t.Fatalf("go type descriptors must intern")
	}
	if !a.Contains(age(3)) || a.Contains(3) {
		t.Fatalf("named type membership is by assignability")
	}
	if !typal.IsSubtype(a, typal.Int) || !typal.IsSubtype(a, typal.Number) {
		t.Fatalf("named int types narrow Int")
	}
	sh := typal.GoType[shape]()
	if !sh.Contains(square{2}) || !typal.IsSubtype(typal.GoType[square](), sh) {
		t.Fatalf("interface descriptors include implementations")
	}
	if !sh.Contains(nil) || typal.GoType[int8]().Contains(nil) {
		t.Fatalf("only nillable kinds contain null")
	}
	if v, ok := typal.NullOf(typal.GoType[int8]()); !ok || v != int8(0) {
		t.Fatalf("go type null is the zero value, got %#v", v)
	}
}

func TestIsSubtype_Transitive(t *testing.T) {
	chain := []typal.Type{typal.GoType[age](), typal.Int, typal.Number, typal.Any}
	for i := range chain {
		for j := i; j < len(chain); j++ {
			if !typal.IsSubtype(chain[i], chain[j]) {
				t.Fatalf("%s should be a subtype of %s", chain[i].Name(), chain[j].Name())
			}
		}
	}
}

func TestNullRegistry(t *testing.T) {
	if v, ok := typal.NullOf(typal.Int); !ok || v != 0 {
		t.Fatalf("Int null = %v", v)
	}
	if err := typal.RegisterNull(typal.Str, 5); err == nil {
		t.Fatalf("registering a non-member must fail")
	}
	if err := typal.RegisterNull(typal.Str, "n/a"); err != nil {
		t.Fatalf("register: %v", err)
	}
	defer typal.UnregisterNull(typal.Str)
	if v, _ := typal.NullOf(typal.Str); v != "n/a" {
		t.Fatalf("registry must win over the builtin null, got %v", v)
	}
}

func TestIntern(t *testing.T) {
	built := 0
	mk := func() typal.Type {
		built++
		return typal.GoType[square]()
	}
	a := typal.Intern("test:intern", mk)
	b := typal.Intern("test:intern", mk)
	if a != b || built != 1 {
		t.Fatalf("intern must build once and return the first object")
	}
	if got, ok := typal.Interned("test:intern"); !ok || got != a {
		t.Fatalf("Interned lookup failed")
	}
}
