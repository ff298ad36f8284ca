package model_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/typal"
	"github.com/reoring/typal/algebra"
	"github.com/reoring/typal/model"
	"github.com/reoring/typal/refine"
)

func codes(t *testing.T, err error) []string {
	t.Helper()
	iss, ok := typal.AsIssues(err)
	if !ok {
		t.Fatalf("want Issues, got %v", err)
	}
	return iss.Codes()
}

func TestRequiredField(t *testing.T) {
	s := model.Open("Point").Field("x", typal.Int).MustBuild()
	_, err := s.New(map[string]any{})
	if got := codes(t, err); len(got) != 1 || got[0] != typal.CodeRequired {
		t.Fatalf("codes = %v", got)
	}
	var km *typal.KeyMismatch
	if !errors.As(err, &km) || km.Key != "x" || km.Reason != typal.KeyMissing {
		t.Fatalf("want missing x, got %v", err)
	}
	in, err := s.New(map[string]any{"x": 1})
	if err != nil {
		t.Fatalf("valid record rejected: %v", err)
	}
	if !s.Contains(in) || !typal.Is(in.Record(), s) {
		t.Fatalf("instance must be a schema member")
	}
}

func TestExactClosure(t *testing.T) {
	s := model.Exact("X").Field("x", typal.Int).MustBuild()
	_, err := s.New(map[string]any{"x": 1, "y": 2})
	if got := codes(t, err); len(got) != 1 || got[0] != typal.CodeUnknownKey {
		t.Fatalf("extra key codes = %v", got)
	}
	_, err = s.New(map[string]any{"x": "s"})
	if got := codes(t, err); len(got) != 1 || got[0] != typal.CodeInvalidType {
		t.Fatalf("wrong type codes = %v", got)
	}
	var tm *typal.TypeMismatch
	if !errors.As(err, &tm) || tm.Name != "x" {
		t.Fatalf("mismatch should name x: %v", err)
	}
	if _, err := s.New(model.NewRecord("x", 1)); err != nil {
		t.Fatalf("exact record rejected: %v", err)
	}
}

func TestOrderedPrefixRule(t *testing.T) {
	s := model.Ordered("XY").Field("x", typal.Int).Field("y", typal.Str).MustBuild()
	if _, err := s.New(model.NewRecord("x", 1, "y", "a")); err != nil {
		t.Fatalf("[x, y] rejected: %v", err)
	}
	_, err := s.New(model.NewRecord("y", "a", "x", 1))
	if got := codes(t, err); len(got) != 1 || got[0] != typal.CodeKeyOrder {
		t.Fatalf("[y, x] codes = %v", got)
	}
	if _, err := s.New(model.NewRecord("x", 1, "z", true, "y", "a")); err != nil {
		t.Fatalf("unknown keys are ignored for ordering: %v", err)
	}
	if _, err := s.New(map[string]any{"y": "a", "x": 1}); err != nil {
		t.Fatalf("plain maps are laid out in declared order: %v", err)
	}
}

func TestOrderedDefaultsAppend(t *testing.T) {
	s := model.Ordered("ABC").
		Field("a", typal.Int).
		Field("b", typal.Int).Default(2).
		Field("c", typal.Int).Default(3).
		MustBuild()
	in, err := s.New(model.NewRecord("a", 1))
	if err != nil {
		t.Fatalf("prefix record rejected: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, in.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if _, err := s.New(model.NewRecord("a", 1, "c", 3)); err == nil {
		t.Fatalf("[a, c] skips b and must fail")
	}
}

func TestRigidConjunction(t *testing.T) {
	rigid := model.Rigid("R").Field("x", typal.Int).Field("y", typal.Str).MustBuild()
	exact := model.Exact("E").Field("x", typal.Int).Field("y", typal.Str).MustBuild()
	ordered := model.Ordered("O").Field("x", typal.Int).Field("y", typal.Str).MustBuild()
	members := []*model.Record{
		model.NewRecord("x", 1, "y", "a"),
	}
	nonMembers := []*model.Record{
		model.NewRecord("y", "a", "x", 1),
		model.NewRecord("x", 1, "y", "a", "z", 0),
	}
	for _, r := range members {
		if !rigid.Contains(r) || !exact.Contains(r) || !ordered.Contains(r) {
			t.Fatalf("%v: rigid member must be exact and ordered", r)
		}
	}
	for _, r := range nonMembers {
		if rigid.Contains(r) {
			t.Fatalf("%v must not be a rigid member", r)
		}
	}
	if !typal.IsSubtype(rigid, exact) || !typal.IsSubtype(rigid, ordered) {
		t.Fatalf("rigid subsumes into exact and ordered")
	}
	if typal.IsSubtype(exact, rigid) || typal.IsSubtype(ordered, rigid) {
		t.Fatalf("exact/ordered alone are not rigid")
	}
}

func TestAggregateAndFailFast(t *testing.T) {
	s := model.Exact("User").
		Field("id", typal.Int).
		Field("name", typal.Str).
		MustBuild()
	bad := map[string]any{"name": 5, "extra": true}
	_, err := s.Validate(bad)
	if got := codes(t, err); len(got) != 3 {
		t.Fatalf("want 3 issues, got %v", got)
	}
	_, err = s.Validate(bad, model.ValidateOpt{FailFast: true})
	if got := codes(t, err); len(got) != 1 {
		t.Fatalf("fail fast should stop at one issue, got %v", got)
	}
	_, err = model.Validate(42, s)
	if got := codes(t, err); got[0] != typal.CodeInvalidType {
		t.Fatalf("non-record codes = %v", got)
	}
}

func TestNullDefaulting(t *testing.T) {
	s := model.Open("Opt").Field("n", typal.Int).Optional().Field("tag", typal.Str).Default("none").MustBuild()
	in, err := s.New(map[string]any{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if v, _ := in.Get("n"); v != 0 {
		t.Fatalf("optional Int should default to 0, got %v", v)
	}
	if v, _ := in.Get("tag"); v != "none" {
		t.Fatalf("declared default lost: %v", v)
	}
}

func TestInvalidDefault(t *testing.T) {
	_, err := model.Open("Bad").Field("n", refine.MustRange(1, 3)).Default(9).Build()
	if got := codes(t, err); got[0] != typal.CodeInvalidDefault {
		t.Fatalf("codes = %v", got)
	}
	_, err = model.Open("NoNull").Field("p", refine.MustRegex(`x+`)).Optional().Build()
	if got := codes(t, err); got[0] != typal.CodeInvalidDefault {
		t.Fatalf("types without a canonical null need a default: %v", got)
	}
}

func TestConditions(t *testing.T) {
	s := model.Open("Span").
		Field("lo", typal.Int).
		Field("hi", typal.Int).
		Condition("lo<=hi", func(r *model.Record) bool {
			lo, _ := r.Get("lo")
			hi, _ := r.Get("hi")
			return lo.(int) <= hi.(int)
		}).
		MustBuild()
	if _, err := s.New(map[string]any{"lo": 1, "hi": 2}); err != nil {
		t.Fatalf("valid span: %v", err)
	}
	_, err := s.New(map[string]any{"lo": 3, "hi": 2})
	var cf *typal.ConditionFailed
	if !errors.As(err, &cf) || cf.Condition != "lo<=hi" {
		t.Fatalf("want ConditionFailed, got %v", err)
	}
	// conditions only run on structurally valid records
	_, err = s.New(map[string]any{"lo": "x", "hi": 2})
	if got := codes(t, err); len(got) != 1 || got[0] != typal.CodeInvalidType {
		t.Fatalf("codes = %v", got)
	}
	closed := model.Exact("ClosedSpan").Extends(s).MustBuild()
	_, err = closed.New(map[string]any{"lo": 3, "hi": 2, "extra": true})
	if got := codes(t, err); len(got) != 1 || got[0] != typal.CodeUnknownKey {
		t.Fatalf("key issues suppress conditions, codes = %v", got)
	}
}

func TestInheritance(t *testing.T) {
	base := model.Open("Base").
		Field("id", typal.Int).
		Field("note", typal.Str).Default("").
		MustBuild()
	child := model.Open("Child").Extends(base).
		Field("id", refine.MustRange(1, 100)).
		Field("name", typal.Str).
		MustBuild()
	if diff := cmp.Diff([]string{"id", "note", "name"}, child.Declared()); diff != "" {
		t.Fatalf("declared order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"id", "name", "note"}, child.Order()); diff != "" {
		t.Fatalf("canonical order mismatch (-want +got):\n%s", diff)
	}
	if !typal.IsSubtype(child, base) || typal.IsSubtype(base, child) {
		t.Fatalf("narrowing child must subsume into its parent only")
	}
	if cs := base.Children(); len(cs) != 1 || cs[0] != child {
		t.Fatalf("child back-link missing")
	}
	if ps := child.Parents(); len(ps) != 1 || ps[0] != base {
		t.Fatalf("parents = %v", ps)
	}
	odd := model.Open("Odd").Extends(base).Field("id", typal.Str).MustBuild()
	if typal.IsSubtype(odd, base) {
		t.Fatalf("an unrelated override is not a subtype")
	}
}

func TestInheritedConditions(t *testing.T) {
	base := model.Open("B").Field("n", typal.Int).Condition("positive", func(r *model.Record) bool {
		n, _ := r.Get("n")
		return n.(int) > 0
	}).MustBuild()
	child := model.Open("C").Extends(base).MustBuild()
	if child.Contains(map[string]any{"n": -1}) {
		t.Fatalf("parent conditions are inherited")
	}
	twin := model.Open("Twin").Field("n", typal.Int).MustBuild()
	if !typal.IsSubtype(child, base) || typal.IsSubtype(twin, base) {
		t.Fatalf("subsumption requires the supertype's conditions")
	}
}

func TestSubtypeTransitive(t *testing.T) {
	a := model.Open("A").Field("x", typal.Number).MustBuild()
	b := model.Open("B").Extends(a).Field("x", typal.Int).Field("y", typal.Str).MustBuild()
	c := model.Exact("C").Extends(b).Field("x", refine.MustRange(0, 9)).MustBuild()
	chain := []typal.Type{c, b, a}
	for i := range chain {
		for j := i; j < len(chain); j++ {
			if !typal.IsSubtype(chain[i], chain[j]) {
				t.Fatalf("%s should be a subtype of %s", chain[i].Name(), chain[j].Name())
			}
		}
	}
}

func TestSubsumptionRules(t *testing.T) {
	b := model.Open("B").Field("x", typal.Int).Field("tag", typal.Str).Default("t").MustBuild()
	exactNoTag := model.Exact("A1").Field("x", typal.Int).MustBuild()
	openNoTag := model.Open("A2").Field("x", typal.Int).MustBuild()
	if !typal.IsSubtype(exactNoTag, b) {
		t.Fatalf("exact subtype may omit optional supertype fields")
	}
	if typal.IsSubtype(openNoTag, b) {
		t.Fatalf("open subtype could carry any tag value")
	}
	req := model.Open("Req").Field("x", typal.Int).Field("tag", typal.Str).MustBuild()
	optGood := model.Open("OptGood").Field("x", typal.Int).Field("tag", typal.Str).Default("ok").MustBuild()
	optRegex := model.Open("OptRegex").Field("x", typal.Int).Field("tag", refine.MustRegex(`.*`)).Optional().MustBuild()
	if !typal.IsSubtype(optGood, req) || !typal.IsSubtype(optRegex, req) {
		t.Fatalf("optional fields with member defaults satisfy required supertype fields")
	}
	exactB := model.Exact("EB").Field("x", typal.Int).Field("tag", typal.Str).Default("t").MustBuild()
	if typal.IsSubtype(exactNoTag, exactB) {
		t.Fatalf("exact pairs need equal key sets")
	}
	exactSame := model.Exact("EA").Field("x", refine.MustRange(0, 9)).Field("tag", typal.Str).Default("u").MustBuild()
	if !typal.IsSubtype(exactSame, exactB) {
		t.Fatalf("exact pair with equal key sets subsumes")
	}
	narrow := model.Open("Narrow").Field("x", typal.Int).Field("tag", refine.MustValues(typal.Str, "a", "b")).Default("a").MustBuild()
	if !typal.IsSubtype(narrow, b) {
		t.Fatalf("narrowed field types subsume")
	}
}

func TestNestedSchemas(t *testing.T) {
	addr := model.Exact("Address").Field("city", typal.Str).Field("zip", typal.Str).Default("").MustBuild()
	user := model.Open("User").Field("name", typal.Str).Field("address", addr).MustBuild()
	in, err := user.New(map[string]any{"name": "a", "address": map[string]any{"city": "Kyoto"}})
	if err != nil {
		t.Fatalf("nested: %v", err)
	}
	got, _ := in.Get("address")
	rec, ok := got.(*model.Record)
	if !ok || !rec.Has("zip") {
		t.Fatalf("nested values are normalized with defaults: %#v", got)
	}
	_, err = user.New(map[string]any{"name": "a", "address": map[string]any{"city": 1, "x": 1}})
	iss, _ := typal.AsIssues(err)
	paths := map[string]bool{}
	for _, it := range iss {
		paths[it.Path] = true
	}
	if !paths["/address/city"] || !paths["/address/x"] {
		t.Fatalf("nested issues must be rebased, got %v", err)
	}
	opt := model.Open("Holder").Field("addr", algebra.Optional(addr)).Optional().MustBuild()
	if _, err := opt.New(map[string]any{}); err != nil {
		t.Fatalf("optional nested schema: %v", err)
	}
}

func TestInstanceMutation(t *testing.T) {
	s := model.Exact("M").Field("id", typal.Int).Field("n", typal.Int).Default(7).MustBuild()
	in, err := s.New(map[string]any{"id": 1, "n": 2})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := in.Set("n", "x"); err == nil {
		t.Fatalf("set must check the field type")
	}
	if err := in.Set("n", 3); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := in.Set("zzz", 3); err == nil {
		t.Fatalf("exact instances reject new keys")
	}
	err = in.Delete("id")
	var km *typal.KeyMismatch
	if !errors.As(err, &km) || km.Code() != typal.CodeRequiredDeletion {
		t.Fatalf("deleting a required field must fail, got %v", err)
	}
	if err := in.Delete("n"); err != nil {
		t.Fatalf("delete optional: %v", err)
	}
	if v, ok := in.Get("n"); !ok || v != 7 {
		t.Fatalf("exact delete resets to the default, got %v", v)
	}
	open := model.Open("O").Field("n", typal.Int).Default(1).MustBuild()
	oi, _ := open.New(map[string]any{})
	if err := oi.Delete("n"); err != nil || oi.Len() != 0 {
		t.Fatalf("open delete removes the key")
	}
}

func TestSchemaNull(t *testing.T) {
	addr := model.Open("Addr").Field("city", typal.Str).MustBuild()
	s := model.Open("S").Field("n", typal.Int).Field("a", addr).Field("tag", typal.Str).Default("x").MustBuild()
	v, ok := typal.NullOf(s)
	if !ok {
		t.Fatalf("schema should have a canonical null")
	}
	want := map[string]any{"n": 0, "a": map[string]any{"city": ""}, "tag": "x"}
	if diff := cmp.Diff(want, v.(*model.Record).Map()); diff != "" {
		t.Fatalf("null mismatch (-want +got):\n%s", diff)
	}
	o := model.Open("WithNull").Field("s", s).Optional().MustBuild()
	if _, err := o.New(map[string]any{}); err != nil {
		t.Fatalf("optional schema field defaults to the canonical null instance: %v", err)
	}
}

func TestBuildEntryPoint(t *testing.T) {
	base := model.Open("Base").Field("id", typal.Int).MustBuild()
	cond := model.Predicate("has-name", func(r *model.Record) bool { return r.Has("name") })
	s, err := model.Build(model.DisciplineExact, "Entry", []*model.Schema{base}, []model.Condition{cond},
		model.FieldSpec{Name: "name", Type: typal.Str, Required: true},
		model.FieldSpec{Name: "age", Type: typal.Int},
		model.FieldSpec{Name: "role", Type: typal.Str, HasDefault: true, Default: "user"},
	)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if diff := cmp.Diff([]string{"id", "name"}, s.Required()); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}
	in, err := s.New(map[string]any{"id": 1, "name": "n"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if v, _ := in.Get("role"); v != "user" {
		t.Fatalf("role default = %v", v)
	}
	if s.Discipline() != model.DisciplineExact {
		t.Fatalf("discipline = %v", s.Discipline())
	}
}
