package algebra

import (
	"strings"

	"github.com/reoring/typal"
)

// ComplementType is Base minus the excluded descriptors.
type ComplementType struct {
	base     typal.Type
	excluded []typal.Type
	key      string
	name     string
}

// Complement builds base \ (excluded...). Every excluded descriptor must be a
// subtype of base.
func Complement(base any, excluded ...any) (typal.Type, error) {
	b, err := typal.AsType("Complement", 0, base)
	if err != nil {
		return nil, err
	}
	ex, err := typesFor("Complement", excluded)
	if err != nil {
		if ac, ok := err.(*typal.ArgumentCategoryError); ok {
			ac.Position++
		}
		return nil, err
	}
	for i, e := range ex {
		if !typal.IsSubtype(e, b) {
			return nil, &typal.ArgumentCategoryError{Op: "Complement", Position: i + 1, Want: "subtype of " + b.Name(), Got: "type " + e.Name()}
		}
	}
	ex = canonical(ex)
	if len(ex) == 0 {
		return b, nil
	}
	key := "Complement(" + b.Key() + ";" + joinKeys(ex) + ")"
	return typal.Intern(key, func() typal.Type {
		names := make([]string, len(ex))
		for i, e := range ex {
			names[i] = e.Name()
		}
		return &ComplementType{base: b, excluded: ex, key: key, name: "Complement[" + b.Name() + " - " + strings.Join(names, ", ") + "]"}
	}), nil
}

// MustComplement is like Complement but panics on error.
func MustComplement(base any, excluded ...any) typal.Type {
	t, err := Complement(base, excluded...)
	if err != nil {
		panic(err)
	}
	return t
}

func (c *ComplementType) Name() string           { return c.name }
func (c *ComplementType) Key() string            { return c.key }
func (c *ComplementType) String() string         { return c.name }
func (c *ComplementType) Base() typal.Type       { return c.base }
func (c *ComplementType) Excluded() []typal.Type { return append([]typal.Type(nil), c.excluded...) }
func (c *ComplementType) Bases() []typal.Type    { return []typal.Type{c.base} }

func (c *ComplementType) Contains(v any) bool {
	if !c.base.Contains(v) {
		return false
	}
	for _, e := range c.excluded {
		if e.Contains(v) {
			return false
		}
	}
	return true
}

// Includes accepts another complement whose base is a subtype of ours and
// whose exclusions cover each of ours. Finite descriptors are handled member
// by member by typal.IsSubtype.
func (c *ComplementType) Includes(sub typal.Type) bool {
	other, ok := sub.(*ComplementType)
	if !ok || !typal.IsSubtype(other.base, c.base) {
		return false
	}
	for _, e := range c.excluded {
		covered := false
		for _, oe := range other.excluded {
			if typal.IsSubtype(e, oe) {
				covered = true
				break
			}
		}
		if !covered {
			return false
		}
	}
	return true
}

func (c *ComplementType) Null() (any, bool) {
	v, ok := typal.NullOf(c.base)
	if !ok || !c.Contains(v) {
		return nil, false
	}
	return v, true
}
