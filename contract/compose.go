package contract

import (
	"fmt"

	"github.com/reoring/typal"
)

// Compose builds g∘f: the result takes f's arguments and feeds f's result
// into g. g must take exactly one parameter and f's codomain must be a
// subtype of it; otherwise Compose fails with a *typal.CompositionError
// before anything is called.
func Compose(f, g typal.Callable) (*Contract, error) {
	if f == nil {
		return nil, &typal.ArgumentCategoryError{Op: "Compose", Position: 0, Want: "callable", Got: "null"}
	}
	if g == nil {
		return nil, &typal.ArgumentCategoryError{Op: "Compose", Position: 1, Want: "callable", Got: "null"}
	}
	gd := g.Domain()
	if len(gd) != 1 {
		return nil, &typal.CompositionError{Left: f.Name(), Right: g.Name(), Produces: f.Codomain().Name(), Accepts: fmt.Sprintf("%d parameters", len(gd))}
	}
	if !typal.IsSubtype(f.Codomain(), gd[0]) {
		return nil, &typal.CompositionError{Left: f.Name(), Right: g.Name(), Produces: f.Codomain().Name(), Accepts: gd[0].Name()}
	}
	var params []Param
	if fc, ok := f.(*Contract); ok {
		params = fc.Params()
	} else {
		for i, t := range f.Domain() {
			params = append(params, Param{Name: fmt.Sprintf("arg%d", i), Type: t})
		}
	}
	return &Contract{
		id:       nextID(),
		name:     g.Name() + "∘" + f.Name(),
		params:   params,
		codomain: g.Codomain(),
		impl: func(args []any) (any, error) {
			mid, err := f.Call(args...)
			if err != nil {
				return nil, err
			}
			return g.Call(mid)
		},
	}, nil
}
