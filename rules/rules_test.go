package rules_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/typal"
	"github.com/reoring/typal/model"
	"github.com/reoring/typal/rules"
)

func paths(iss typal.Issues) []string {
	var out []string
	for _, it := range iss {
		out = append(out, it.Path)
	}
	return out
}

func TestIfThen(t *testing.T) {
	r := rules.If("/express", rules.Eq, true).Then(rules.AtLeastOne("/items"))
	if iss := r(model.NewRecord("express", true, "items", []any{})); len(iss) != 1 || iss[0].Code != typal.CodeTooShort {
		t.Fatalf("express with no items: %v", iss)
	}
	if iss := r(model.NewRecord("express", false, "items", []any{})); len(iss) != 0 {
		t.Fatalf("condition false must skip rules: %v", iss)
	}
	if iss := r(model.NewRecord("items", []any{})); len(iss) != 0 {
		t.Fatalf("missing path never holds: %v", iss)
	}
}

func TestIfAllAny(t *testing.T) {
	rec := model.NewRecord("kind", "a", "n", int64(5))
	cases := []struct {
		name string
		c    rules.Conditional
		want bool
	}{
		{"eq across kinds", rules.If("n", rules.Eq, 5), true},
		{"gt", rules.If("/n", rules.Gt, 4.5), true},
		{"all", rules.IfAll(rules.If("/kind", rules.Eq, "a"), rules.If("/n", rules.Lt, 5)), false},
		{"any", rules.IfAny(rules.If("/kind", rules.Eq, "b"), rules.If("/n", rules.Le, 5)), true},
		{"and", rules.If("/kind", rules.Ne, "b").And(rules.If("/n", rules.Ge, 5)), true},
		{"or", rules.If("/kind", rules.Eq, "b").Or(rules.If("/n", rules.Gt, 9)), false},
		{"strings order", rules.If("/kind", rules.Lt, "b"), true},
		{"mixed order", rules.If("/kind", rules.Lt, 1), false},
	}
	for _, c := range cases {
		if got := c.c.Holds(rec); got != c.want {
			t.Fatalf("%s: Holds = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestUniqueBy(t *testing.T) {
	items := []any{
		model.NewRecord("sku", "a"),
		map[string]any{"sku": "b"},
		model.NewRecord("sku", "a"),
		model.NewRecord("other", 1),
	}
	iss := rules.UniqueBy("/items", "sku")(model.NewRecord("items", items))
	if diff := cmp.Diff([]string{"/items/2/sku"}, paths(iss)); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
	if iss[0].Code != typal.CodeUniqueness || iss[0].Params["first"] != 0 {
		t.Fatalf("issue = %+v", iss[0])
	}
	scalars := rules.UniqueBy("/tags", "")(model.NewRecord("tags", []string{"x", "y", "x"}))
	if diff := cmp.Diff([]string{"/tags/2"}, paths(scalars)); diff != "" {
		t.Fatalf("scalar paths mismatch (-want +got):\n%s", diff)
	}
}

func TestCompare(t *testing.T) {
	r := rules.Compare("/lo", rules.Le, "/hi")
	if iss := r(model.NewRecord("lo", 1, "hi", 2.5)); len(iss) != 0 {
		t.Fatalf("1 <= 2.5: %v", iss)
	}
	iss := r(model.NewRecord("lo", 3, "hi", 2))
	if len(iss) != 1 || iss[0].Path != "/lo" || iss[0].Code != typal.CodeConditionFailed {
		t.Fatalf("3 <= 2: %v", iss)
	}
	if iss := r(model.NewRecord("lo", 3)); len(iss) != 0 {
		t.Fatalf("missing side is ignored: %v", iss)
	}
}

func TestAndOr(t *testing.T) {
	fail := func(p string) rules.Rule {
		return func(*model.Record) typal.Issues {
			return typal.Issues{typal.IssueAt(p, typal.CodeConditionFailed, "no", nil)}
		}
	}
	pass := func(*model.Record) typal.Issues { return nil }
	rec := model.NewRecord()
	if got := paths(rules.And(fail("/a"), nil, fail("/b"))(rec)); !cmp.Equal(got, []string{"/a", "/b"}) {
		t.Fatalf("And = %v", got)
	}
	if got := rules.Or(fail("/a"), pass)(rec); len(got) != 0 {
		t.Fatalf("Or with a passing branch = %v", got)
	}
	both := rules.And(fail("/x"), fail("/y"))
	if got := paths(rules.Or(both, fail("/z"))(rec)); !cmp.Equal(got, []string{"/z"}) {
		t.Fatalf("Or keeps the smallest failure, got %v", got)
	}
}

func TestValueAt(t *testing.T) {
	doc := model.NewRecord(
		"spec", map[string]any{"a/b": []any{10, model.NewRecord("x", "y")}},
		"labels", map[string]string{"app": "web"},
	)
	cases := []struct {
		ptr  string
		want any
		ok   bool
	}{
		{"/spec/a~1b/0", 10, true},
		{"/spec/a~1b/1/x", "y", true},
		{"/labels/app", "web", true},
		{"/spec/a~1b/7", nil, false},
		{"/spec/a~1b/-1", nil, false},
		{"/missing/x", nil, false},
	}
	for _, c := range cases {
		got, ok := rules.ValueAt(doc, c.ptr)
		if ok != c.ok || (ok && got != c.want) {
			t.Fatalf("ValueAt(%q) = %v, %v", c.ptr, got, ok)
		}
	}
}

func TestConditionInSchema(t *testing.T) {
	s := model.Open("Order").
		Field("items", typal.Any).
		Field("lo", typal.Int).Default(0).
		Field("hi", typal.Int).Default(10).
		Conditions(
			rules.Condition("unique-sku", rules.UniqueBy("/items", "sku")),
			rules.Condition("lo<=hi", rules.Compare("/lo", rules.Le, "/hi")),
		).
		MustBuild()
	_, err := s.New(map[string]any{
		"items": []any{map[string]any{"sku": "a"}, map[string]any{"sku": "a"}},
		"lo":    11,
	})
	iss, ok := typal.AsIssues(err)
	if !ok {
		t.Fatalf("want Issues, got %v", err)
	}
	if diff := cmp.Diff([]string{"/items/1/sku", "/lo"}, paths(iss)); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
	if iss.Codes()[0] != typal.CodeUniqueness {
		t.Fatalf("codes = %v", iss.Codes())
	}
	var cf *typal.ConditionFailed
	if !errors.As(err, &cf) || cf.Condition != "unique-sku" {
		t.Fatalf("rule issues carry the condition as cause: %v", err)
	}
}
