package algebra

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/reoring/typal"
)

// Identified is implemented by callables with a stable identity (contracts).
// Dispatch uses it to canonicalize and memoize branch sets.
type Identified interface {
	ID() uint64
}

// DispatchContract is a union of callables: a call runs every branch whose
// domain accepts the arguments and requires them to agree.
type DispatchContract struct {
	branches []typal.Callable
	key      string
	name     string
	domain   []typal.Type
	codomain typal.Type
}

var _ typal.Callable = (*DispatchContract)(nil)

var (
	dispatchMu   sync.Mutex
	dispatchPool = map[string]*DispatchContract{}
)

// Dispatch builds the dispatch contract of the given callables. Branches are
// canonicalized like union constituents; the same branch set returns the
// same contract.
func Dispatch(args ...any) (*DispatchContract, error) {
	if len(args) == 0 {
		return nil, &typal.ArgumentCategoryError{Op: "Dispatch", Position: -1, Want: "at least one callable", Got: "none"}
	}
	seen := map[string]struct{}{}
	var branches []typal.Callable
	var keys []string
	for i, a := range args {
		c, ok := a.(typal.Callable)
		if !ok || c == nil {
			return nil, &typal.ArgumentCategoryError{Op: "Dispatch", Position: i, Want: "callable", Got: typal.Category(a)}
		}
		if d, ok := c.(*DispatchContract); ok {
			for _, b := range d.branches {
				if k := branchKey(b); !has(seen, k) {
					seen[k] = struct{}{}
					branches, keys = append(branches, b), append(keys, k)
				}
			}
			continue
		}
		if k := branchKey(c); !has(seen, k) {
			seen[k] = struct{}{}
			branches, keys = append(branches, c), append(keys, k)
		}
	}
	sortBranches(branches, keys)
	key := "Dispatch(" + strings.Join(keys, ",") + ")"
	dispatchMu.Lock()
	defer dispatchMu.Unlock()
	if d, ok := dispatchPool[key]; ok {
		return d, nil
	}
	d := newDispatch(branches, key)
	dispatchPool[key] = d
	return d, nil
}

// MustDispatch is like Dispatch but panics on error.
func MustDispatch(args ...any) *DispatchContract {
	d, err := Dispatch(args...)
	if err != nil {
		panic(err)
	}
	return d
}

func has(m map[string]struct{}, k string) bool {
	_, ok := m[k]
	return ok
}

func branchKey(c typal.Callable) string {
	if id, ok := c.(Identified); ok {
		return fmt.Sprintf("%s#%d", c.Name(), id.ID())
	}
	return fmt.Sprintf("%s@%p", c.Name(), c)
}

type byBranchKey struct {
	bs   []typal.Callable
	keys []string
}

func (b byBranchKey) Len() int           { return len(b.bs) }
func (b byBranchKey) Less(i, j int) bool { return b.keys[i] < b.keys[j] }
func (b byBranchKey) Swap(i, j int) {
	b.bs[i], b.bs[j] = b.bs[j], b.bs[i]
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
}

func sortBranches(bs []typal.Callable, keys []string) { sort.Stable(byBranchKey{bs: bs, keys: keys}) }

func newDispatch(branches []typal.Callable, key string) *DispatchContract {
	names := make([]string, len(branches))
	arity := 0
	var codomains []typal.Type
	for i, b := range branches {
		names[i] = b.Name()
		if n := len(b.Domain()); n > arity {
			arity = n
		}
		codomains = append(codomains, b.Codomain())
	}
	domain := make([]typal.Type, arity)
	for pos := range domain {
		var ts []typal.Type
		for _, b := range branches {
			if d := b.Domain(); pos < len(d) {
				ts = append(ts, d[pos])
			}
		}
		domain[pos] = union(ts)
	}
	return &DispatchContract{
		branches: branches,
		key:      key,
		name:     "Dispatch[" + strings.Join(names, " | ") + "]",
		domain:   domain,
		codomain: union(codomains),
	}
}

func (d *DispatchContract) Name() string         { return d.name }
func (d *DispatchContract) Domain() []typal.Type { return append([]typal.Type(nil), d.domain...) }
func (d *DispatchContract) Codomain() typal.Type { return d.codomain }

// Branches returns the canonical branch list.
func (d *DispatchContract) Branches() []typal.Callable {
	return append([]typal.Callable(nil), d.branches...)
}

func (d *DispatchContract) Accepts(args ...any) bool {
	for _, b := range d.branches {
		if b.Accepts(args...) {
			return true
		}
	}
	return false
}

// Call evaluates every matching branch. The branch decision is not cached:
// it is recomputed on every call.
func (d *DispatchContract) Call(args ...any) (any, error) {
	var (
		names   []string
		results []any
	)
	for _, b := range d.branches {
		if !b.Accepts(args...) {
			continue
		}
		out, err := b.Call(args...)
		if err != nil {
			return nil, err
		}
		names = append(names, b.Name())
		results = append(results, out)
	}
	switch len(results) {
	case 0:
		cats := make([]string, len(args))
		for i, a := range args {
			cats[i] = typal.Category(a)
		}
		bn := make([]string, len(d.branches))
		for i, b := range d.branches {
			bn[i] = b.Name()
		}
		return nil, &typal.NoBranch{Dispatch: d.name, Args: cats, Branches: bn}
	case 1:
		return results[0], nil
	}
	for i := 1; i < len(results); i++ {
		if !typal.Equal(results[0], results[i]) {
			typal.Log().Debug().Str("dispatch", d.name).Strs("branches", names).Msg("typal: ambiguous dispatch")
			return nil, &typal.AmbiguousUnion{Dispatch: d.name, Branches: names, Values: results}
		}
	}
	return results[0], nil
}
