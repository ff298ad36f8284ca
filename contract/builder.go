package contract

import (
	"fmt"

	"github.com/reoring/typal"
)

// Builder declares a contract over a Go func step by step.
//
//	c, err := contract.New("scale", func(x, k int) int { return x * k }).
//		Param("x", refine.MustRange(0, 100)).
//		ParamDefault("k", typal.Int, 2).
//		Returns(typal.Int).
//		Build()
type Builder struct {
	name     string
	fn       any
	params   []Param
	codomain typal.Type
	factory  bool
	errs     []error
}

// New starts a contract named name over fn. An empty name uses the func's
// own name.
func New(name string, fn any) *Builder {
	return &Builder{name: name, fn: fn}
}

// Param declares the next parameter.
func (b *Builder) Param(name string, t any) *Builder {
	tt, err := typal.AsType(b.op(), len(b.params), t)
	if err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	b.params = append(b.params, Param{Name: name, Type: tt})
	return b
}

// ParamDefault declares the next parameter with a default used when the
// caller omits it.
func (b *Builder) ParamDefault(name string, t any, def any) *Builder {
	tt, err := typal.AsType(b.op(), len(b.params), t)
	if err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	b.params = append(b.params, Param{Name: name, Type: tt, Default: def, HasDefault: true})
	return b
}

// Dependent declares the next parameter with a type computed from earlier
// bound arguments at call time.
func (b *Builder) Dependent(name string, resolve Resolver) *Builder {
	if resolve == nil {
		b.errs = append(b.errs, &typal.ArgumentCategoryError{Op: b.op(), Position: len(b.params), Name: name, Want: "type resolver", Got: "null"})
		return b
	}
	b.params = append(b.params, Param{Name: name, Dependent: resolve})
	return b
}

// Returns declares the codomain.
func (b *Builder) Returns(t any) *Builder {
	tt, err := typal.AsType(b.op(), -1, t)
	if err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	b.codomain = tt
	return b
}

// Factory marks the contract as a type factory: its codomain must be a
// subtype of typal.TypeType and results are memoized per argument tuple.
func (b *Builder) Factory() *Builder {
	b.factory = true
	return b
}

func (b *Builder) op() string {
	if b.name == "" {
		return "contract"
	}
	return b.name
}

// Build validates the declaration against the func signature.
func (b *Builder) Build() (*Contract, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}
	rv, hasErr, err := signature(b.op(), b.fn)
	if err != nil {
		return nil, err
	}
	rt := rv.Type()
	name := b.name
	if name == "" {
		name = funcName(rv)
	}
	params := b.params
	if len(params) == 0 && rt.NumIn() > 0 {
		params = make([]Param, rt.NumIn())
		for i := range params {
			params[i] = Param{Name: fmt.Sprintf("arg%d", i), Type: typal.TypeFor(rt.In(i))}
		}
	}
	if len(params) != rt.NumIn() {
		return nil, &typal.ArgumentCategoryError{Op: name, Position: -1, Want: fmt.Sprintf("%d declared parameters", rt.NumIn()), Got: fmt.Sprintf("%d", len(params))}
	}
	seen := map[string]struct{}{}
	for i, p := range params {
		if _, dup := seen[p.Name]; dup {
			return nil, &typal.ArgumentCategoryError{Op: name, Position: i, Name: p.Name, Want: "unique parameter name", Got: "duplicate " + p.Name}
		}
		seen[p.Name] = struct{}{}
		if p.HasDefault && p.Type != nil {
			if err := typal.Check(p.Name, p.Default, p.Type); err != nil {
				return nil, typal.Issues{{Path: typal.Pointer(p.Name), Code: typal.CodeInvalidDefault, Message: "default is not a member of " + p.Type.Name(), Cause: err}}
			}
		}
	}
	codomain := b.codomain
	if codomain == nil {
		codomain = codomainOf(rt, hasErr)
	}
	c := &Contract{
		id:       nextID(),
		name:     name,
		params:   params,
		codomain: codomain,
		impl:     invoker(name, params, rv, hasErr),
	}
	if b.factory {
		if !typal.IsSubtype(codomain, typal.TypeType) {
			return nil, &typal.ArgumentCategoryError{Op: name, Position: -1, Want: "factory returning type descriptors", Got: "codomain " + codomain.Name()}
		}
		c.factory = &factoryCache{}
	}
	return c, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *Contract {
	c, err := b.Build()
	if err != nil {
		panic(err)
	}
	return c
}
