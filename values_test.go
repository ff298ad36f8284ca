package typal_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/typal"
)

type stack struct{ items []any }

func (s *stack) Append(v any) { s.items = append(s.items, v) }
func (s *stack) Items() []any { return s.items }
func (s *stack) Len() int     { return len(s.items) }

func TestElements(t *testing.T) {
	st := &stack{}
	st.Append(1)
	st.Append("a")
	cases := []struct {
		in   any
		want []any
		ok   bool
	}{
		{[]int{1, 2}, []any{1, 2}, true},
		{[2]string{"a", "b"}, []any{"a", "b"}, true},
		{st, []any{1, "a"}, true},
		{"ab", nil, false},
		{[]byte("ab"), nil, false},
		{nil, nil, false},
	}
	for _, c := range cases {
		got, ok := typal.Elements(c.in)
		if ok != c.ok {
			t.Fatalf("Elements(%#v) ok = %v", c.in, ok)
		}
		if diff := cmp.Diff(c.want, got); ok && diff != "" {
			t.Fatalf("Elements(%#v) mismatch (-want +got):\n%s", c.in, diff)
		}
	}
	if n, ok := typal.Length(st); !ok || n != 2 {
		t.Fatalf("Sized length = %d", n)
	}
}

func TestSetElements(t *testing.T) {
	got, ok := typal.SetElements(map[string]bool{"b": true, "a": true, "x": false})
	if !ok {
		t.Fatalf("bool map is a set")
	}
	if diff := cmp.Diff([]any{"a", "b"}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if _, ok := typal.SetElements([]int{1, 1}); ok {
		t.Fatalf("duplicates are not a set")
	}
	if _, ok := typal.SetElements(map[string]int{"a": 1}); ok {
		t.Fatalf("maps with payload values are not sets")
	}
	if _, ok := typal.SetElements([]any{[]int{1}}); ok {
		t.Fatalf("unhashable elements are not a set")
	}
}

func TestEntries(t *testing.T) {
	got, ok := typal.Entries(map[string]int{"b": 2, "a": 1})
	if !ok {
		t.Fatalf("map entries")
	}
	want := []typal.Entry{{Key: "a", Value: 1}, {Key: "b", Value: 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}
