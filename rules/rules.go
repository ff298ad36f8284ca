package rules

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/reoring/typal"
	"github.com/reoring/typal/model"
)

// Op defines simple comparison operators for If(...).Then(...) and Compare.
type Op int

const (
	Eq Op = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

func (o Op) String() string {
	switch o {
	case Eq:
		return "=="
	case Ne:
		return "!="
	case Lt:
		return "<"
	case Le:
		return "<="
	case Gt:
		return ">"
	case Ge:
		return ">="
	}
	return "op(" + strconv.Itoa(int(o)) + ")"
}

// Rule checks a record and returns the issues it finds. Issue paths are
// JSON Pointers relative to the record.
type Rule = func(*model.Record) typal.Issues

// Condition turns a rule into a model condition. Issues keep their paths
// when the schema reports them.
func Condition(name string, r Rule) model.Condition {
	return model.NewCondition(name, func(rec *model.Record) error {
		if iss := r(rec); len(iss) > 0 {
			return iss
		}
		return nil
	})
}

// Conditional composes conditional execution of rules.
type Conditional struct {
	path string
	op   Op
	want any
	all  []Conditional // composite AND
	any  []Conditional // composite OR
}

// If builds a conditional that evaluates a path against a value using an
// operator. The path is a JSON Pointer like "/status" or "/spec/replicas".
func If(path string, op Op, want any) Conditional {
	return Conditional{path: normalizePath(path), op: op, want: want}
}

// IfAll builds a conditional that requires all conditions to hold.
func IfAll(conds ...Conditional) Conditional { return Conditional{all: conds} }

// IfAny builds a conditional that requires any condition to hold.
func IfAny(conds ...Conditional) Conditional { return Conditional{any: conds} }

// And combines the receiver with additional conditions using logical AND.
func (c Conditional) And(others ...Conditional) Conditional {
	return IfAll(append([]Conditional{c}, others...)...)
}

// Or combines the receiver with additional conditions using logical OR.
func (c Conditional) Or(others ...Conditional) Conditional {
	return IfAny(append([]Conditional{c}, others...)...)
}

// Holds evaluates the conditional against v.
func (c Conditional) Holds(v any) bool {
	if len(c.all) > 0 {
		for _, it := range c.all {
			if !it.Holds(v) {
				return false
			}
		}
		return true
	}
	if len(c.any) > 0 {
		for _, it := range c.any {
			if it.Holds(v) {
				return true
			}
		}
		return false
	}
	cur, ok := ValueAt(v, c.path)
	if !ok {
		return false
	}
	return compare(cur, c.op, c.want)
}

// Then attaches rules to run when the condition is satisfied.
func (c Conditional) Then(rules ...Rule) Rule {
	and := And(rules...)
	return func(r *model.Record) typal.Issues {
		if !c.Holds(r) {
			return nil
		}
		return and(r)
	}
}

// Require reports a condition_failed issue at path when the conditional does
// not hold. Paired with Then it expresses "if A then B".
func Require(c Conditional, msg string) Rule {
	return func(r *model.Record) typal.Issues {
		if c.Holds(r) {
			return nil
		}
		return typal.Issues{typal.IssueAt(c.path, typal.CodeConditionFailed, msg, nil)}
	}
}

// AtLeastOne ensures the collection at collectionPath has at least 1 element.
func AtLeastOne(collectionPath string) Rule {
	p := normalizePath(collectionPath)
	return func(r *model.Record) typal.Issues {
		val, ok := ValueAt(r, p)
		if !ok {
			return nil
		}
		if n, ok := typal.Length(val); ok && n == 0 {
			if _, isStr := val.(string); isStr {
				return nil
			}
			return typal.Issues{typal.IssueAt(p, typal.CodeTooShort, "at least 1 item is required", map[string]any{"minItems": 1})}
		}
		return nil
	}
}

// UniqueBy ensures elements in a collection have unique key values.
// collectionPath is a JSON Pointer to a sequence (e.g., "/items"); keyPath is
// relative to each element (e.g., "sku" or "/sku"). Keys compare by their
// literal key, so 1 and int64(1) collide.
func UniqueBy(collectionPath, keyPath string) Rule {
	cp := normalizePath(collectionPath)
	kp := normalizePath(keyPath)
	return func(r *model.Record) typal.Issues {
		val, ok := ValueAt(r, cp)
		if !ok {
			return nil
		}
		elems, ok := typal.Elements(val)
		if !ok {
			return nil
		}
		seen := map[string]int{}
		var out typal.Issues
		for i, elem := range elems {
			kv, ok := ValueAt(elem, kp)
			if !ok {
				continue
			}
			key := typal.LiteralKey(kv)
			if j, dup := seen[key]; dup {
				path := typal.Index(cp, i)
				if kp != "/" {
					path += kp
				}
				out = typal.AppendIssues(out, typal.IssueAt(path, typal.CodeUniqueness, "duplicate value",
					map[string]any{"first": j, "dup": i, "key": fmt.Sprint(kv)}))
			} else {
				seen[key] = i
			}
		}
		return out
	}
}

// Compare relates the values at two paths, e.g. Compare("/lo", Le, "/hi").
// A missing side is not reported; presence is the schema's concern.
func Compare(left string, op Op, right string) Rule {
	lp, rp := normalizePath(left), normalizePath(right)
	return func(r *model.Record) typal.Issues {
		a, ok := ValueAt(r, lp)
		if !ok {
			return nil
		}
		b, ok := ValueAt(r, rp)
		if !ok {
			return nil
		}
		if compare(a, op, b) {
			return nil
		}
		return typal.Issues{typal.IssueAt(lp, typal.CodeConditionFailed,
			fmt.Sprintf("%s %s %s does not hold", lp, op, rp),
			map[string]any{"left": a, "op": op.String(), "right": b})}
	}
}

// And executes all rules and concatenates Issues.
func And(rules ...Rule) Rule {
	return func(r *model.Record) typal.Issues {
		var out typal.Issues
		for _, rule := range rules {
			if rule == nil {
				continue
			}
			if iss := rule(r); len(iss) > 0 {
				out = typal.AppendIssues(out, iss...)
			}
		}
		return out
	}
}

// Or succeeds if any rule returns no Issues. When all fail it returns the
// branch with the fewest issues.
func Or(rules ...Rule) Rule {
	return func(r *model.Record) typal.Issues {
		var best typal.Issues
		bestSet := false
		for _, rule := range rules {
			if rule == nil {
				continue
			}
			iss := rule(r)
			if len(iss) == 0 {
				return nil
			}
			if !bestSet || len(iss) < len(best) {
				best = iss
				bestSet = true
			}
		}
		return best
	}
}

// ------- helpers -------

func normalizePath(p string) string {
	if p == "" || p == "/" {
		return "/"
	}
	if p[0] != '/' {
		return "/" + p
	}
	return p
}

// ValueAt navigates v by JSON Pointer. Records and other keyed values,
// string-keyed maps and sequences are traversed.
func ValueAt(v any, pointer string) (any, bool) {
	rel := strings.TrimPrefix(pointer, "/")
	if rel == "" {
		return v, true
	}
	cur := v
	for _, seg := range strings.Split(rel, "/") {
		seg = strings.ReplaceAll(strings.ReplaceAll(seg, "~1", "/"), "~0", "~")
		next, ok := step(cur, seg)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

func step(cur any, seg string) (any, bool) {
	switch t := cur.(type) {
	case nil:
		return nil, false
	case typal.Keyed:
		return t.Get(seg)
	case map[string]any:
		val, ok := t[seg]
		return val, ok
	}
	rv := reflect.ValueOf(cur)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		mv := rv.MapIndex(reflect.ValueOf(seg).Convert(rv.Type().Key()))
		if !mv.IsValid() {
			return nil, false
		}
		return mv.Interface(), true
	}
	elems, ok := typal.Elements(cur)
	if !ok {
		return nil, false
	}
	idx, err := strconv.Atoi(seg)
	if err != nil || idx < 0 || idx >= len(elems) {
		return nil, false
	}
	return elems[idx], true
}

func compare(cur any, op Op, want any) bool {
	switch op {
	case Eq:
		return typal.Equal(cur, want)
	case Ne:
		return !typal.Equal(cur, want)
	case Lt, Le, Gt, Ge:
		c, ok := order(cur, want)
		if !ok {
			return false
		}
		switch op {
		case Lt:
			return c < 0
		case Le:
			return c <= 0
		case Gt:
			return c > 0
		}
		return c >= 0
	}
	return false
}

// order compares numbers (across Go kinds) and strings.
func order(a, b any) (int, bool) {
	if ai, ok := typal.AsInt64(a); ok {
		if bi, ok := typal.AsInt64(b); ok {
			return cmp3(ai, bi), true
		}
	}
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return cmp3(af, bf), true
		}
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return strings.Compare(as, bs), true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	if i, ok := typal.AsInt64(v); ok {
		return float64(i), true
	}
	rv := reflect.ValueOf(v)
	if rv.IsValid() && (rv.Kind() == reflect.Float32 || rv.Kind() == reflect.Float64) {
		return rv.Float(), true
	}
	return 0, false
}

func cmp3[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
