package algebra

import (
	"sort"
	"strings"

	"github.com/reoring/typal"
)

// canonical removes repeated constituents (by Key) and sorts the rest by Key,
// so constituent order at the call site does not matter.
func canonical(ts []typal.Type) []typal.Type {
	seen := make(map[string]struct{}, len(ts))
	out := make([]typal.Type, 0, len(ts))
	for _, t := range ts {
		k := t.Key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, t)
	}
	sortByKey(out)
	return out
}

func sortByKey(ts []typal.Type) {
	sort.SliceStable(ts, func(i, j int) bool { return ts[i].Key() < ts[j].Key() })
}

func keyOf(kind string, ts []typal.Type) string {
	return kind + "(" + joinKeys(ts) + ")"
}

func joinKeys(ts []typal.Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.Key()
	}
	return strings.Join(parts, ",")
}

func nameOf(kind string, ts []typal.Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.Name()
	}
	return kind + "[" + strings.Join(parts, ", ") + "]"
}

// typesFor converts combinator arguments, rejecting callables with a hint
// pointing at Dispatch.
func typesFor(op string, args []any) ([]typal.Type, error) {
	out := make([]typal.Type, 0, len(args))
	for i, a := range args {
		if _, ok := a.(typal.Type); !ok {
			if _, isFn := a.(typal.Callable); isFn {
				return nil, &typal.ArgumentCategoryError{Op: op, Position: i, Want: "type descriptor (callables only combine as a whole via Dispatch)", Got: typal.Category(a)}
			}
		}
		t, err := typal.AsType(op, i, a)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
