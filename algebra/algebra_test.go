package algebra_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/reoring/typal"
	"github.com/reoring/typal/algebra"
	"github.com/reoring/typal/contract"
	"github.com/reoring/typal/refine"
)

func TestUnion_IdentityAcrossOrder(t *testing.T) {
	a := algebra.MustUnion(typal.Int, typal.Str, typal.Bool)
	b := algebra.MustUnion(typal.Bool, typal.Int, typal.Str, typal.Int)
	if a != b {
		t.Fatalf("unions over equal sets must be identical: %s vs %s", a.Name(), b.Name())
	}
	nested := algebra.MustUnion(typal.Bool, algebra.MustUnion(typal.Str, typal.Int))
	if nested != a {
		t.Fatalf("nested unions must flatten")
	}
}

func TestUnion_Degenerate(t *testing.T) {
	if u := algebra.MustUnion(); u != typal.Nothing {
		t.Fatalf("empty union = %s", u.Name())
	}
	if u := algebra.MustUnion(typal.Str); u != typal.Str {
		t.Fatalf("single union = %s", u.Name())
	}
	if u := algebra.MustUnion(typal.Str, typal.Any); u != typal.Any {
		t.Fatalf("Any must absorb: %s", u.Name())
	}
}

func TestUnion_SubtypeRules(t *testing.T) {
	u := algebra.MustUnion(typal.Int, typal.Str)
	if !typal.IsSubtype(typal.Int, u) || !typal.IsSubtype(refine.MustRange(0, 3), u) {
		t.Fatalf("constituents and their subtypes are subtypes")
	}
	if !typal.IsSubtype(algebra.MustUnion(typal.Str, refine.MustRange(0, 3)), u) {
		t.Fatalf("union on the left decomposes")
	}
	if typal.IsSubtype(u, typal.Int) || typal.IsSubtype(typal.Float, u) {
		t.Fatalf("unexpected subtype")
	}
	if !typal.IsSubtype(typal.Nothing, u) {
		t.Fatalf("Nothing is a subtype of everything")
	}
}

func TestUnion_ArgumentCategory(t *testing.T) {
	_, err := algebra.Union(typal.Int, "str")
	var ac *typal.ArgumentCategoryError
	if !errors.As(err, &ac) {
		t.Fatalf("want ArgumentCategoryError, got %v", err)
	}
	if ac.Position != 1 || ac.Got != "string" {
		t.Fatalf("error = %+v", ac)
	}
}

func TestOptional(t *testing.T) {
	o := algebra.Optional(refine.MustRange(5, 9))
	if !o.Contains(nil) || !o.Contains(6) || o.Contains(1) {
		t.Fatalf("optional membership wrong")
	}
	if v, _ := typal.NullOf(o); v != 5 {
		t.Fatalf("optional null should be the inner null, got %v", v)
	}
}

func TestSoundness(t *testing.T) {
	cases := []struct {
		name string
		t    typal.Type
		base typal.Type
		vals []any
	}{
		{"range", refine.MustRange(0, 5), typal.Int, []any{-1, 0, 3, 5, 6, "x", 2.5}},
		{"regex", refine.MustRegex(`a+`), typal.Str, []any{"a", "b", "aa", 1}},
		{"complement", algebra.MustComplement(typal.Int, refine.MustRange(0, 5)), typal.Int, []any{-1, 3, 9, "x"}},
		{"intersection", algebra.MustIntersection(algebra.MustSequence(typal.Int), refine.MustLen(algebra.MustSequence(), 2)), algebra.MustSequence(typal.Int), []any{[]any{1, 2}, []any{1}, []any{"a", "b"}}},
	}
	for _, c := range cases {
		if !typal.IsSubtype(c.t, c.base) {
			t.Fatalf("%s: not a subtype of its base", c.name)
		}
		for _, v := range c.vals {
			if c.t.Contains(v) && !c.base.Contains(v) {
				t.Fatalf("%s: %v is a member but not of the base", c.name, v)
			}
		}
	}
}

func TestIntersection(t *testing.T) {
	_, err := algebra.Intersection(typal.Int, refine.MustRange(0, 3))
	var ac *typal.ArgumentCategoryError
	if !errors.As(err, &ac) {
		t.Fatalf("primitives must be rejected, got %v", err)
	}
	if i := algebra.MustIntersection(); i != typal.Any {
		t.Fatalf("empty intersection = %s", i.Name())
	}
	a := refine.MustRange(0, 10)
	b := refine.MustRange(5, 20)
	i := algebra.MustIntersection(a, b, typal.Any)
	if !i.Contains(7) || i.Contains(3) || i.Contains(15) {
		t.Fatalf("intersection membership wrong")
	}
	if !typal.IsSubtype(i, a) || !typal.IsSubtype(i, b) {
		t.Fatalf("intersection is a subtype of each constituent")
	}
	if algebra.MustIntersection(b, a) != i {
		t.Fatalf("intersection must intern")
	}
}

func TestComplement(t *testing.T) {
	c := algebra.MustComplement(typal.Int, refine.MustRange(0, 9))
	if !c.Contains(10) || c.Contains(5) || c.Contains("x") {
		t.Fatalf("complement membership wrong")
	}
	_, err := algebra.Complement(refine.MustRange(0, 9), typal.Str)
	var ac *typal.ArgumentCategoryError
	if !errors.As(err, &ac) {
		t.Fatalf("excluded type outside the base must fail, got %v", err)
	}
}

func TestProduct(t *testing.T) {
	p := algebra.MustProduct(typal.Int, typal.Str)
	if !p.Contains([]any{1, "a"}) || p.Contains([]any{"a", 1}) || p.Contains([]any{1}) {
		t.Fatalf("product membership wrong")
	}
	if !p.Contains([2]any{1, "a"}) {
		t.Fatalf("arrays are sequences too")
	}
	if !typal.IsSubtype(algebra.MustProduct(refine.MustRange(0, 1), typal.Str), p) {
		t.Fatalf("products are covariant")
	}
	n, err := algebra.ProductN(typal.Int, 3)
	if err != nil || !n.Contains([]int{1, 2, 3}) || n.Contains([]int{1, 2}) {
		t.Fatalf("ProductN wrong: %v", err)
	}
}

func TestUnorderedProduct(t *testing.T) {
	u, err := algebra.UnorderedProduct(typal.Int, typal.Str, typal.Int)
	if err != nil {
		t.Fatalf("unordered: %v", err)
	}
	if !u.Contains([]any{"a", 1, 2}) || !u.Contains([]any{1, 2, "a"}) || u.Contains([]any{"a", "b", 1}) {
		t.Fatalf("unordered membership wrong")
	}
	v, _ := algebra.UnorderedProduct(typal.Str, typal.Int, typal.Int)
	if u != v {
		t.Fatalf("unordered products over the same multiset must be identical")
	}
}

func TestCollections(t *testing.T) {
	seq := algebra.MustSequence(typal.Int, typal.Str)
	if !seq.Contains([]any{1, "a", 2}) || !seq.Contains([]int{}) || seq.Contains([]any{1.5}) {
		t.Fatalf("sequence membership wrong")
	}
	set := algebra.MustSet(typal.Int)
	if !set.Contains(map[int]struct{}{1: {}}) || !set.Contains([]int{1, 2}) || set.Contains([]int{1, 1}) {
		t.Fatalf("set membership wrong")
	}
	m := algebra.MustMapping(typal.Int, algebra.Keys(refine.MustRegex(`[a-z]+`)))
	if !m.Contains(map[string]int{"a": 1}) || m.Contains(map[string]int{"A": 1}) || m.Contains(map[string]string{"a": "x"}) {
		t.Fatalf("mapping membership wrong")
	}
	if !typal.IsSubtype(algebra.MustSequence(refine.MustRange(0, 1)), seq) {
		t.Fatalf("sequences are covariant")
	}
}

func TestBuild(t *testing.T) {
	u, err := algebra.Build(algebra.KindUnion, typal.Int, typal.Str)
	if err != nil || u != algebra.MustUnion(typal.Str, typal.Int) {
		t.Fatalf("build union: %v", err)
	}
	if _, err := algebra.Build(algebra.KindComplement); err == nil {
		t.Fatalf("complement without base must fail")
	}
	d, err := algebra.Build(algebra.KindUnion, contract.MustWrap(func(x int) int { return x }))
	if err != nil {
		t.Fatalf("build dispatch: %v", err)
	}
	if _, ok := d.(*algebra.DispatchContract); !ok {
		t.Fatalf("union of callables should dispatch, got %T", d)
	}
}

func TestDispatch(t *testing.T) {
	double := contract.New("double", func(x int) int { return x * 2 }).Param("x", typal.Int).MustBuild()
	shout := contract.New("shout", func(s string) string { return strings.ToUpper(s) }).Param("s", typal.Str).MustBuild()
	d, err := algebra.Dispatch(double, shout)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if again, _ := algebra.Dispatch(shout, double); again != d {
		t.Fatalf("dispatch must be canonical")
	}
	if out, err := d.Call(4); err != nil || out != 8 {
		t.Fatalf("int branch = %v, %v", out, err)
	}
	if out, err := d.Call("hi"); err != nil || out != "HI" {
		t.Fatalf("str branch = %v, %v", out, err)
	}
	_, err = d.Call(1.5)
	var nb *typal.NoBranch
	if !errors.As(err, &nb) {
		t.Fatalf("want NoBranch, got %v", err)
	}
}

func TestDispatch_Ambiguity(t *testing.T) {
	inc := contract.New("inc", func(x int) int { return x + 1 }).Param("x", typal.Int).MustBuild()
	small := contract.New("small", func(x int) int { return x * 10 }).Param("x", refine.MustRange(0, 9)).MustBuild()
	same := contract.New("same", func(x int) int { return x + 1 }).Param("x", refine.MustRange(0, 9)).MustBuild()

	d := algebra.MustDispatch(inc, small)
	if out, err := d.Call(20); err != nil || out != 21 {
		t.Fatalf("only inc accepts 20: %v, %v", out, err)
	}
	_, err := d.Call(2)
	var au *typal.AmbiguousUnion
	if !errors.As(err, &au) {
		t.Fatalf("want AmbiguousUnion, got %v", err)
	}
	if len(au.Branches) != 2 {
		t.Fatalf("branches = %v", au.Branches)
	}
	agree := algebra.MustDispatch(inc, same)
	if out, err := agree.Call(2); err != nil || out != 3 {
		t.Fatalf("agreeing branches = %v, %v", out, err)
	}
}
