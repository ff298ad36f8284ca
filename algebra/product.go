package algebra

import (
	"fmt"
	"strconv"

	"github.com/reoring/typal"
)

// ProductType is a fixed-arity sequence. Ordered products match
// positionally; unordered products match constituents as a multiset.
type ProductType struct {
	parts     []typal.Type
	unordered bool
	key       string
	name      string
}

// Product builds the ordered product of the given descriptors: a sequence of
// exactly len(args) elements, element i a member of args[i].
func Product(args ...any) (typal.Type, error) {
	ts, err := typesFor("Product", args)
	if err != nil {
		return nil, err
	}
	return product(ts, false), nil
}

// ProductN is the shorthand Product(t, t, ..., t) with n copies.
func ProductN(t any, n int) (typal.Type, error) {
	tt, err := typal.AsType("Product", 0, t)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, &typal.ArgumentCategoryError{Op: "Product", Position: 1, Want: "non-negative arity", Got: strconv.Itoa(n)}
	}
	ts := make([]typal.Type, n)
	for i := range ts {
		ts[i] = tt
	}
	return product(ts, false), nil
}

// UnorderedProduct builds a fixed-arity sequence whose elements match the
// constituents in any order (each constituent consumed once).
func UnorderedProduct(args ...any) (typal.Type, error) {
	ts, err := typesFor("UnorderedProduct", args)
	if err != nil {
		return nil, err
	}
	return product(ts, true), nil
}

// MustProduct is like Product but panics on error.
func MustProduct(args ...any) typal.Type {
	t, err := Product(args...)
	if err != nil {
		panic(err)
	}
	return t
}

func product(ts []typal.Type, unordered bool) typal.Type {
	parts := append([]typal.Type(nil), ts...)
	kind := "Product"
	if unordered {
		// multiset: order-independent but duplicates are significant
		sortByKey(parts)
		kind = "UnorderedProduct"
	}
	key := keyOf(kind, parts)
	return typal.Intern(key, func() typal.Type {
		return &ProductType{parts: parts, unordered: unordered, key: key, name: nameOf(kind, parts)}
	})
}

func (p *ProductType) Name() string        { return p.name }
func (p *ProductType) Key() string         { return p.key }
func (p *ProductType) String() string      { return p.name }
func (p *ProductType) Arity() int          { return len(p.parts) }
func (p *ProductType) Unordered() bool     { return p.unordered }
func (p *ProductType) Parts() []typal.Type { return append([]typal.Type(nil), p.parts...) }

func (p *ProductType) Contains(v any) bool {
	elems, ok := typal.Elements(v)
	if !ok || len(elems) != len(p.parts) {
		return false
	}
	if !p.unordered {
		for i, t := range p.parts {
			if !t.Contains(elems[i]) {
				return false
			}
		}
		return true
	}
	return greedyMatch(len(elems), len(p.parts), func(i, j int) bool { return p.parts[j].Contains(elems[i]) })
}

// greedyMatch assigns each of n items to the first unconsumed slot that
// accepts it; it fails when an item finds no slot or a slot is left over.
func greedyMatch(n, slots int, accepts func(item, slot int) bool) bool {
	if n != slots {
		return false
	}
	used := make([]bool, slots)
	for i := 0; i < n; i++ {
		matched := false
		for j := 0; j < slots; j++ {
			if used[j] || !accepts(i, j) {
				continue
			}
			used[j] = true
			matched = true
			break
		}
		if !matched {
			return false
		}
	}
	return true
}

// Includes: same arity and constituent-wise subtypes. An ordered product is
// included in an unordered one when its constituents can be matched.
func (p *ProductType) Includes(sub typal.Type) bool {
	other, ok := sub.(*ProductType)
	if !ok || len(other.parts) != len(p.parts) {
		return false
	}
	if !p.unordered {
		if other.unordered {
			// an unordered product admits permutations; only uniform
			// constituents keep positional conformance
			for _, ot := range other.parts {
				for _, t := range p.parts {
					if !typal.IsSubtype(ot, t) {
						return false
					}
				}
			}
			return true
		}
		for i, t := range p.parts {
			if !typal.IsSubtype(other.parts[i], t) {
				return false
			}
		}
		return true
	}
	return greedyMatch(len(other.parts), len(p.parts), func(i, j int) bool {
		return typal.IsSubtype(other.parts[i], p.parts[j])
	})
}

// Null is a slice of the constituents' nulls.
func (p *ProductType) Null() (any, bool) {
	out := make([]any, len(p.parts))
	for i, t := range p.parts {
		v, ok := typal.NullOf(t)
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// Check reports arity and positional mismatches as Issues.
func (p *ProductType) Check(v any) error {
	elems, ok := typal.Elements(v)
	if !ok {
		return typal.Issues{{Path: "/", Code: typal.CodeInvalidType, Message: "expected a sequence", Cause: &typal.TypeMismatch{Expected: p.name, Actual: typal.Describe(v)}}}
	}
	if len(elems) != len(p.parts) {
		return typal.Issues{{Path: "/", Code: typal.CodeInvalidType, Message: fmt.Sprintf("expected %d elements, got %d", len(p.parts), len(elems)),
			Cause: &typal.TypeMismatch{Expected: p.name, Actual: typal.Describe(v)}}}
	}
	if p.unordered {
		if p.Contains(v) {
			return nil
		}
		return typal.Issues{{Path: "/", Code: typal.CodeInvalidType, Message: "elements do not match the constituents", Cause: &typal.TypeMismatch{Expected: p.name, Actual: typal.Describe(v)}}}
	}
	var iss typal.Issues
	for i, t := range p.parts {
		if err := typal.Check(strconv.Itoa(i), elems[i], t); err != nil {
			iss = typal.AppendIssues(iss, typal.RebaseIssues(typal.Index("/", i), err)...)
		}
	}
	if len(iss) > 0 {
		return iss
	}
	return nil
}
