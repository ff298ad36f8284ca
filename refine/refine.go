package refine

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/reoring/typal"
)

// RegexType classifies strings matching a pattern from their start.
type RegexType struct {
	re  *regexp.Regexp
	src string
	key string
}

// Regex compiles pattern and builds the refinement of Str it describes.
// Matching is anchored at the start of the value only, so "ab" accepts "abc".
func Regex(pattern string) (typal.Type, error) {
	re, err := regexp.Compile(`^(?:` + pattern + `)`)
	if err != nil {
		return nil, &typal.ArgumentCategoryError{Op: "Regex", Position: 0, Want: "regular expression", Got: err.Error()}
	}
	key := "Regex(" + strconv.Quote(pattern) + ")"
	return typal.Intern(key, func() typal.Type { return &RegexType{re: re, src: pattern, key: key} }), nil
}

// MustRegex is like Regex but panics on error.
func MustRegex(pattern string) typal.Type {
	t, err := Regex(pattern)
	if err != nil {
		panic(err)
	}
	return t
}

func (r *RegexType) Name() string        { return "Regex(" + r.src + ")" }
func (r *RegexType) Key() string         { return r.key }
func (r *RegexType) String() string      { return r.Name() }
func (r *RegexType) Pattern() string     { return r.src }
func (r *RegexType) Bases() []typal.Type { return []typal.Type{typal.Str} }

func (r *RegexType) Contains(v any) bool {
	s, ok := v.(string)
	return ok && r.re.MatchString(s)
}

func (r *RegexType) Includes(sub typal.Type) bool {
	o, ok := sub.(*RegexType)
	return ok && o.src == r.src
}

func (r *RegexType) Null() (any, bool) {
	if r.re.MatchString("") {
		return "", true
	}
	return nil, false
}

// RangeType classifies integers in [Lo, Hi].
type RangeType struct {
	lo, hi int64
	key    string
}

// Range builds the inclusive integer range lo..hi.
func Range(lo, hi int64) (typal.Type, error) {
	if lo > hi {
		return nil, &typal.ArgumentCategoryError{Op: "Range", Position: 1, Want: fmt.Sprintf("upper bound >= %d", lo), Got: strconv.FormatInt(hi, 10)}
	}
	key := fmt.Sprintf("Range(%d,%d)", lo, hi)
	return typal.Intern(key, func() typal.Type { return &RangeType{lo: lo, hi: hi, key: key} }), nil
}

// MustRange is like Range but panics on error.
func MustRange(lo, hi int64) typal.Type {
	t, err := Range(lo, hi)
	if err != nil {
		panic(err)
	}
	return t
}

func (r *RangeType) Name() string           { return fmt.Sprintf("Range[%d..%d]", r.lo, r.hi) }
func (r *RangeType) Key() string            { return r.key }
func (r *RangeType) String() string         { return r.Name() }
func (r *RangeType) Bounds() (int64, int64) { return r.lo, r.hi }
func (r *RangeType) Bases() []typal.Type    { return []typal.Type{typal.Int} }

func (r *RangeType) Contains(v any) bool {
	if !typal.Int.Contains(v) {
		return false
	}
	i, ok := typal.AsInt64(v)
	return ok && i >= r.lo && i <= r.hi
}

func (r *RangeType) Includes(sub typal.Type) bool {
	o, ok := sub.(*RangeType)
	return ok && o.lo >= r.lo && o.hi <= r.hi
}

func (r *RangeType) Null() (any, bool) {
	switch {
	case r.lo <= 0 && r.hi >= 0:
		return 0, true
	case r.lo > 0:
		return int(r.lo), true
	default:
		return int(r.hi), true
	}
}

func (r *RangeType) Check(v any) error {
	if r.Contains(v) {
		return nil
	}
	return &typal.TypeMismatch{Expected: r.Name(), Actual: typal.Describe(v)}
}

// ValuesType is a finite refinement: base members equal to one of the listed
// values.
type ValuesType struct {
	base    typal.Type
	members []any
	keys    map[string]struct{}
	key     string
	name    string
}

// Values builds Base restricted to the listed values. Every value must be a
// member of Base. Duplicates are dropped.
func Values(base any, vs ...any) (typal.Type, error) {
	b, err := typal.AsType("Values", 0, base)
	if err != nil {
		return nil, err
	}
	return values("Values", b, vs)
}

// Enum is an alias of Values.
func Enum(base any, vs ...any) (typal.Type, error) {
	b, err := typal.AsType("Enum", 0, base)
	if err != nil {
		return nil, err
	}
	return values("Enum", b, vs)
}

// MustValues is like Values but panics on error.
func MustValues(base any, vs ...any) typal.Type {
	t, err := Values(base, vs...)
	if err != nil {
		panic(err)
	}
	return t
}

func values(op string, b typal.Type, vs []any) (typal.Type, error) {
	type member struct {
		key string
		v   any
	}
	seen := map[string]struct{}{}
	var ms []member
	for i, v := range vs {
		if !b.Contains(v) {
			return nil, &typal.ArgumentCategoryError{Op: op, Position: i + 1, Want: "member of " + b.Name(), Got: typal.Describe(v)}
		}
		k := typal.LiteralKey(v)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		ms = append(ms, member{key: k, v: v})
	}
	sort.SliceStable(ms, func(i, j int) bool { return ms[i].key < ms[j].key })
	keys := make([]string, len(ms))
	members := make([]any, len(ms))
	for i, m := range ms {
		keys[i] = m.key
		members[i] = m.v
	}
	key := "Values(" + b.Key() + ";" + strings.Join(keys, ",") + ")"
	return typal.Intern(key, func() typal.Type {
		names := make([]string, len(members))
		for i, m := range members {
			names[i] = fmt.Sprintf("%#v", m)
		}
		return &ValuesType{base: b, members: members, keys: seen, key: key, name: b.Name() + "{" + strings.Join(names, ", ") + "}"}
	}), nil
}

func (t *ValuesType) Name() string        { return t.name }
func (t *ValuesType) Key() string         { return t.key }
func (t *ValuesType) String() string      { return t.name }
func (t *ValuesType) Bases() []typal.Type { return []typal.Type{t.base} }
func (t *ValuesType) Members() []any      { return append([]any(nil), t.members...) }

func (t *ValuesType) Contains(v any) bool {
	if !t.base.Contains(v) {
		return false
	}
	_, ok := t.keys[typal.LiteralKey(v)]
	return ok
}

func (t *ValuesType) Includes(sub typal.Type) bool {
	f, ok := sub.(typal.Finite)
	if !ok {
		return false
	}
	for _, m := range f.Members() {
		if !t.Contains(m) {
			return false
		}
	}
	return true
}

// Null is the base's null when listed, else the first member.
func (t *ValuesType) Null() (any, bool) {
	if v, ok := nullWithin(t.base, t); ok {
		return v, true
	}
	if len(t.members) == 0 {
		return nil, false
	}
	return t.members[0], true
}

func (t *ValuesType) Check(v any) error {
	if t.Contains(v) {
		return nil
	}
	return &typal.TypeMismatch{Expected: t.name, Actual: typal.Describe(v)}
}

// SingleType is the singleton descriptor of one literal.
type SingleType struct {
	v   any
	key string
}

// Single builds the descriptor whose only member is x. It is a subtype of
// the descriptor of x's Go type.
func Single(x any) typal.Type {
	key := "Single(" + typal.TypeOfValue(x).Key() + ";" + typal.LiteralKey(x) + ")"
	return typal.Intern(key, func() typal.Type { return &SingleType{v: x, key: key} })
}

func (s *SingleType) Name() string        { return fmt.Sprintf("Single(%#v)", s.v) }
func (s *SingleType) Key() string         { return s.key }
func (s *SingleType) String() string      { return s.Name() }
func (s *SingleType) Value() any          { return s.v }
func (s *SingleType) Members() []any      { return []any{s.v} }
func (s *SingleType) Bases() []typal.Type { return []typal.Type{typal.TypeOfValue(s.v)} }
func (s *SingleType) Null() (any, bool)   { return s.v, true }

func (s *SingleType) Contains(v any) bool {
	return typal.TypeOfValue(s.v).Contains(v) && typal.Equal(s.v, v)
}

func (s *SingleType) Includes(sub typal.Type) bool {
	o, ok := sub.(*SingleType)
	return ok && s.Contains(o.v)
}

// LenType restricts a base to values of an exact length.
type LenType struct {
	base typal.Type
	n    int
	key  string
}

// Len builds Base restricted to values of length n. Len(T, 0) is named
// Empty[T].
func Len(base any, n int) (typal.Type, error) {
	b, err := typal.AsType("Len", 0, base)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, &typal.ArgumentCategoryError{Op: "Len", Position: 1, Want: "non-negative length", Got: strconv.Itoa(n)}
	}
	key := fmt.Sprintf("Len(%s;%d)", b.Key(), n)
	return typal.Intern(key, func() typal.Type { return &LenType{base: b, n: n, key: key} }), nil
}

// Empty is Len(base, 0).
func Empty(base any) (typal.Type, error) { return Len(base, 0) }

// MustLen is like Len but panics on error.
func MustLen(base any, n int) typal.Type {
	t, err := Len(base, n)
	if err != nil {
		panic(err)
	}
	return t
}

func (l *LenType) Name() string {
	if l.n == 0 {
		return "Empty[" + l.base.Name() + "]"
	}
	return fmt.Sprintf("Len[%s, %d]", l.base.Name(), l.n)
}

func (l *LenType) Key() string         { return l.key }
func (l *LenType) String() string      { return l.Name() }
func (l *LenType) Base() typal.Type    { return l.base }
func (l *LenType) Length() int         { return l.n }
func (l *LenType) Bases() []typal.Type { return []typal.Type{l.base} }

func (l *LenType) Contains(v any) bool {
	if !l.base.Contains(v) {
		return false
	}
	n, ok := typal.Length(v)
	return ok && n == l.n
}

func (l *LenType) Includes(sub typal.Type) bool {
	o, ok := sub.(*LenType)
	return ok && o.n == l.n && typal.IsSubtype(o.base, l.base)
}

func (l *LenType) Null() (any, bool) { return nullWithin(l.base, l) }

func (l *LenType) Check(v any) error {
	if err := typal.Check("", v, l.base); err != nil {
		return err
	}
	n, _ := typal.Length(v)
	if n != l.n {
		return &typal.TypeMismatch{Expected: l.Name(), Actual: typal.Describe(v), Detail: fmt.Sprintf("length %d, want %d", n, l.n)}
	}
	return nil
}
