package refine_test

import (
	"errors"
	"testing"

	"github.com/reoring/typal"
	"github.com/reoring/typal/contract"
	"github.com/reoring/typal/refine"
)

func positive() *contract.Contract {
	return contract.New("positive", func(x int) bool { return x > 0 }).Param("x", typal.Int).MustBuild()
}

func even() *contract.Contract {
	return contract.New("even", func(x int) bool { return x%2 == 0 }).Param("x", typal.Number).MustBuild()
}

func TestFilter_Membership(t *testing.T) {
	pos := refine.MustFilter(typal.Int, positive())
	if !pos.Contains(3) || pos.Contains(-3) || pos.Contains("3") {
		t.Fatalf("positive membership wrong")
	}
	if !typal.IsSubtype(pos, typal.Int) || typal.IsSubtype(typal.Int, pos) {
		t.Fatalf("filter must narrow its base")
	}
	var tm *typal.TypeMismatch
	if err := typal.Check("n", -1, pos); !errors.As(err, &tm) || tm.Detail == "" {
		t.Fatalf("want detailed mismatch, got %v", err)
	}
}

func TestFilter_AcceptsSupertypePredicate(t *testing.T) {
	ev := refine.MustFilter(typal.Int, even())
	if !ev.Contains(4) || ev.Contains(3) {
		t.Fatalf("even membership wrong")
	}
}

func TestFilter_RejectsBadPredicates(t *testing.T) {
	cases := map[string]any{
		"not callable": 42,
		"two params":   contract.MustWrap(func(a, b int) bool { return a < b }),
		"narrow domain": contract.New("small", func(x int) bool { return true }).
			Param("x", refine.MustRange(0, 9)).MustBuild(),
		"non-bool codomain": contract.MustWrap(func(x int) int { return x }),
	}
	for name, p := range cases {
		_, err := refine.Filter(typal.Int, p)
		var ac *typal.ArgumentCategoryError
		if !errors.As(err, &ac) {
			t.Fatalf("%s: want ArgumentCategoryError, got %v", name, err)
		}
	}
}

func TestFilter_NestedAccumulates(t *testing.T) {
	p, e := positive(), even()
	a := refine.MustFilter(refine.MustFilter(typal.Int, p), e)
	b := refine.MustFilter(typal.Int, p, e)
	if a != b {
		t.Fatalf("nested filters should intern to the flat form")
	}
	if !typal.IsSubtype(b, refine.MustFilter(typal.Int, p)) {
		t.Fatalf("more predicates must be a subtype of fewer")
	}
}

func TestRegex(t *testing.T) {
	re := refine.MustRegex(`[a-z]+\d`)
	if !re.Contains("abc1") || !re.Contains("ab1xyz") {
		t.Fatalf("prefix match expected")
	}
	if re.Contains("1abc") || re.Contains(42) {
		t.Fatalf("must match from the start, strings only")
	}
	if refine.MustRegex(`[a-z]+\d`) != re {
		t.Fatalf("regex must intern")
	}
	if !typal.IsSubtype(re, typal.Str) {
		t.Fatalf("regex narrows Str")
	}
	if _, err := refine.Regex(`(`); err == nil {
		t.Fatalf("invalid pattern must fail")
	}
}

func TestRange(t *testing.T) {
	r := refine.MustRange(1, 10)
	for _, v := range []any{1, 10, int64(5), uint8(7)} {
		if !r.Contains(v) {
			t.Fatalf("%v should be in range", v)
		}
	}
	for _, v := range []any{0, 11, 5.0, "5"} {
		if r.Contains(v) {
			t.Fatalf("%v should be outside range", v)
		}
	}
	if !typal.IsSubtype(refine.MustRange(2, 3), r) || typal.IsSubtype(refine.MustRange(0, 3), r) {
		t.Fatalf("range containment wrong")
	}
	if !typal.IsSubtype(r, typal.Int) || !typal.IsSubtype(r, typal.Number) {
		t.Fatalf("range narrows Int")
	}
	if v, _ := typal.NullOf(r); v != 1 {
		t.Fatalf("null = %v", v)
	}
	if _, err := refine.Range(3, 1); err == nil {
		t.Fatalf("inverted bounds must fail")
	}
}

func TestValues(t *testing.T) {
	colors := refine.MustValues(typal.Str, "red", "green", "red")
	if !colors.Contains("red") || colors.Contains("blue") {
		t.Fatalf("values membership wrong")
	}
	if len(colors.(typal.Finite).Members()) != 2 {
		t.Fatalf("duplicates must be dropped")
	}
	if refine.MustValues(typal.Str, "green", "red") != colors {
		t.Fatalf("values must intern regardless of order")
	}
	if e, _ := refine.Enum(typal.Str, "red", "green"); e != colors {
		t.Fatalf("Enum aliases Values")
	}
	if !typal.IsSubtype(refine.MustValues(typal.Str, "red"), colors) {
		t.Fatalf("subset must be a subtype")
	}
	if !typal.IsSubtype(colors, typal.Str) {
		t.Fatalf("values narrow Str")
	}
	if _, err := refine.Values(typal.Int, 1, "two"); err == nil {
		t.Fatalf("non-member value must fail")
	}
}

func TestSingle(t *testing.T) {
	s := refine.Single(7)
	if !s.Contains(7) || s.Contains(8) {
		t.Fatalf("singleton membership wrong")
	}
	if !typal.IsSubtype(s, typal.Int) || !typal.IsSubtype(s, refine.MustRange(0, 9)) {
		t.Fatalf("singleton subtype wrong")
	}
	if refine.Single(7) != s {
		t.Fatalf("singletons must intern")
	}
}

type point struct{ x, y int }

func TestLiteralStructsStayDistinct(t *testing.T) {
	a, b := refine.Single(point{1, 2}), refine.Single(point{3, 4})
	if a == b {
		t.Fatalf("singletons of different structs must not intern together")
	}
	if !b.Contains(point{3, 4}) || b.Contains(point{1, 2}) {
		t.Fatalf("singleton membership wrong")
	}
	pts := refine.MustValues(typal.TypeOfValue(point{}), point{1, 2})
	if !pts.Contains(point{1, 2}) || pts.Contains(point{7, 7}) {
		t.Fatalf("values must compare every struct field")
	}
	nested := refine.MustValues(typal.Any, []typal.Type{typal.Int})
	if nested.Contains([]typal.Type{typal.Str}) {
		t.Fatalf("nested descriptors must render by key")
	}
}

func TestValuesNumericKinds(t *testing.T) {
	one := refine.MustValues(typal.Number, 1)
	if !one.Contains(1.0) || !one.Contains(int64(1)) || one.Contains(1.5) {
		t.Fatalf("numerically equal members must match")
	}
}

func TestLen(t *testing.T) {
	pair := refine.MustLen(typal.Str, 2)
	if !pair.Contains("ab") || pair.Contains("abc") {
		t.Fatalf("len membership wrong")
	}
	empty, err := refine.Empty(typal.Str)
	if err != nil {
		t.Fatalf("empty: %v", err)
	}
	if empty.Name() != "Empty[Str]" {
		t.Fatalf("name = %s", empty.Name())
	}
	if !empty.Contains("") || empty.Contains("x") {
		t.Fatalf("empty membership wrong")
	}
	if v, ok := typal.NullOf(empty); !ok || v != "" {
		t.Fatalf("empty null = %v", v)
	}
	if _, ok := typal.NullOf(pair); ok {
		t.Fatalf("len 2 string has no canonical null")
	}
}
