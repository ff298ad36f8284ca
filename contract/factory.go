package contract

import (
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/reoring/typal"
)

// factoryCache memoizes factory results by canonical argument tuple. The
// first stored result for a tuple wins; concurrent first calls share one
// invocation.
type factoryCache struct {
	results sync.Map // tuple key -> any
	group   singleflight.Group
}

// Factory wraps fn as a type factory: a contract whose codomain is a subtype
// of typal.TypeType and whose results are memoized, so equal arguments yield
// the identical descriptor.
func Factory(fn any) (*Contract, error) {
	return New("", fn).Factory().Build()
}

// MustFactory is like Factory but panics on error.
func MustFactory(fn any) *Contract {
	c, err := Factory(fn)
	if err != nil {
		panic(err)
	}
	return c
}

func tupleKey(vals []any) string {
	keys := make([]string, len(vals))
	for i, v := range vals {
		keys[i] = typal.LiteralKey(v)
	}
	return "(" + strings.Join(keys, ",") + ")"
}

func (f *factoryCache) get(c *Contract, vals []any) (any, error) {
	key := tupleKey(vals)
	if v, ok := f.results.Load(key); ok {
		return v, nil
	}
	v, err, _ := f.group.Do(key, func() (any, error) {
		if v, ok := f.results.Load(key); ok {
			return v, nil
		}
		typal.Log().Debug().Str("factory", c.name).Str("args", key).Msg("typal: factory cache miss")
		out, err := c.invoke(vals)
		if err != nil {
			return nil, err
		}
		stored, _ := f.results.LoadOrStore(key, out)
		return stored, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}
