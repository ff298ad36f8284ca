package algebra

import (
	"github.com/reoring/typal"
)

// Kind selects a combinator for Build.
type Kind int

const (
	KindUnion Kind = iota
	KindIntersection
	KindComplement
	KindProduct
	KindUnorderedProduct
	KindSequence
	KindSet
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindUnion:
		return "Union"
	case KindIntersection:
		return "Intersection"
	case KindComplement:
		return "Complement"
	case KindProduct:
		return "Product"
	case KindUnorderedProduct:
		return "UnorderedProduct"
	case KindSequence:
		return "Sequence"
	case KindSet:
		return "Set"
	case KindMapping:
		return "Mapping"
	}
	return "Unknown"
}

// Build is the generic combinator entry point. It returns a typal.Type for
// every kind, except KindUnion over callables only, which yields a
// *DispatchContract.
func Build(kind Kind, args ...any) (any, error) {
	switch kind {
	case KindUnion:
		if allCallables(args) {
			d, err := Dispatch(args...)
			if err != nil {
				return nil, err
			}
			return d, nil
		}
		return Union(args...)
	case KindIntersection:
		return Intersection(args...)
	case KindComplement:
		if len(args) == 0 {
			return nil, &typal.ArgumentCategoryError{Op: "Complement", Position: 0, Want: "base type descriptor", Got: "none"}
		}
		return Complement(args[0], args[1:]...)
	case KindProduct:
		return Product(args...)
	case KindUnorderedProduct:
		return UnorderedProduct(args...)
	case KindSequence:
		return Sequence(args...)
	case KindSet:
		return Set(args...)
	case KindMapping:
		return Mapping(args...)
	}
	return nil, &typal.ArgumentCategoryError{Op: "Build", Position: -1, Name: "kind", Want: "combinator kind", Got: kind.String()}
}

func allCallables(args []any) bool {
	if len(args) == 0 {
		return false
	}
	for _, a := range args {
		if _, isType := a.(typal.Type); isType {
			return false
		}
		if _, ok := a.(typal.Callable); !ok {
			return false
		}
	}
	return true
}
