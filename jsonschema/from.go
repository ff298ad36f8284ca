package jsonschema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/reoring/typal"
	"github.com/reoring/typal/algebra"
	"github.com/reoring/typal/model"
	"github.com/reoring/typal/refine"
)

// From projects a descriptor into a root JSON Schema document. Model
// schemas are emitted once under $defs and referenced by $ref.
func From(t typal.Type) (*Schema, error) {
	if t == nil {
		return nil, &typal.ArgumentCategoryError{Op: "jsonschema.From", Position: 0, Want: "type descriptor", Got: "null"}
	}
	p := &projector{names: map[string]string{}, defs: map[string]*Schema{}}
	s, err := p.project(t)
	if err != nil {
		return nil, err
	}
	if len(p.defs) > 0 {
		s.Defs = p.defs
	}
	s.Schema = Draft
	return s, nil
}

// Marshal projects t and encodes the document as indented JSON.
func Marshal(t typal.Type) ([]byte, error) {
	s, err := From(t)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(s, "", "  ")
}

type projector struct {
	names map[string]string // schema key -> $defs name
	defs  map[string]*Schema
}

type reflected interface{ Reflect() reflect.Type }

func (p *projector) project(t typal.Type) (*Schema, error) {
	switch t {
	case typal.Any:
		return &Schema{}, nil
	case typal.Nothing:
		return &Schema{Not: &Schema{}}, nil
	case typal.Null:
		return &Schema{Type: "null"}, nil
	case typal.Bool:
		return &Schema{Type: "boolean"}, nil
	case typal.Int:
		return &Schema{Type: "integer"}, nil
	case typal.Float, typal.Number:
		return &Schema{Type: "number"}, nil
	case typal.Str:
		return &Schema{Type: "string"}, nil
	case typal.Bytes:
		return &Schema{Type: "string", ContentEncoding: "base64"}, nil
	case typal.TypeType, typal.CallableType:
		return &Schema{Description: t.Name() + " values have no JSON form"}, nil
	}
	switch x := t.(type) {
	case *model.Schema:
		return p.model(x)
	case *algebra.UnionType:
		alts, err := p.all(x.Alternatives())
		if err != nil {
			return nil, err
		}
		return &Schema{AnyOf: alts}, nil
	case *algebra.IntersectionType:
		parts, err := p.all(x.Bases())
		if err != nil {
			return nil, err
		}
		return &Schema{AllOf: parts}, nil
	case *algebra.ComplementType:
		base, err := p.project(x.Base())
		if err != nil {
			return nil, err
		}
		out := &Schema{AllOf: []*Schema{base}}
		for _, e := range x.Excluded() {
			es, err := p.project(e)
			if err != nil {
				return nil, err
			}
			out.AllOf = append(out.AllOf, &Schema{Not: es})
		}
		return out, nil
	case *algebra.ProductType:
		return p.product(x)
	case *algebra.SequenceType:
		elem, err := p.project(x.Elem())
		if err != nil {
			return nil, err
		}
		return &Schema{Type: "array", Items: elem, UniqueItems: x.IsSet()}, nil
	case *algebra.MappingType:
		vals, err := p.project(x.Values())
		if err != nil {
			return nil, err
		}
		out := &Schema{Type: "object", AdditionalProperties: vals}
		if k := x.KeyType(); k != nil && k != typal.Any {
			ks, err := p.project(k)
			if err != nil {
				return nil, err
			}
			out.PropertyNames = ks
		}
		return out, nil
	case *refine.RangeType:
		lo, hi := x.Bounds()
		return &Schema{Type: "integer", Minimum: &lo, Maximum: &hi}, nil
	case *refine.RegexType:
		return &Schema{Type: "string", Pattern: "^(?:" + x.Pattern() + ")"}, nil
	case *refine.ValuesType:
		base, err := p.project(x.Bases()[0])
		if err != nil {
			return nil, err
		}
		base.Enum = x.Members()
		return base, nil
	case *refine.SingleType:
		if x.Value() == nil {
			return &Schema{Type: "null"}, nil
		}
		return &Schema{Const: x.Value()}, nil
	case *refine.LenType:
		return p.length(x)
	case *refine.FilterType:
		base, err := p.project(x.Base())
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(x.Predicates()))
		for _, pr := range x.Predicates() {
			names = append(names, pr.Name())
		}
		base.Description = joinDesc(base.Description, "filtered by "+strings.Join(names, ", "))
		return base, nil
	case reflected:
		return fromReflect(x.Reflect(), t.Name()), nil
	case typal.Narrowing:
		// unknown refinement: fall back to its bases
		bs, err := p.all(x.Bases())
		if err != nil {
			return nil, err
		}
		if len(bs) == 1 {
			bs[0].Description = joinDesc(bs[0].Description, t.Name())
			return bs[0], nil
		}
		return &Schema{AllOf: bs, Description: t.Name()}, nil
	}
	return &Schema{Description: t.Name()}, nil
}

func (p *projector) all(ts []typal.Type) ([]*Schema, error) {
	out := make([]*Schema, 0, len(ts))
	for _, t := range ts {
		s, err := p.project(t)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (p *projector) product(x *algebra.ProductType) (*Schema, error) {
	parts, err := p.all(x.Parts())
	if err != nil {
		return nil, err
	}
	n := x.Arity()
	out := &Schema{Type: "array", MinItems: intp(n), MaxItems: intp(n)}
	if !x.Unordered() {
		out.PrefixItems = parts
		out.Items = false
		return out, nil
	}
	out.Items = &Schema{AnyOf: parts}
	out.Description = "unordered product"
	return out, nil
}

func (p *projector) length(x *refine.LenType) (*Schema, error) {
	base, err := p.project(x.Base())
	if err != nil {
		return nil, err
	}
	n := x.Length()
	switch base.Type {
	case "string":
		base.MinLength, base.MaxLength = intp(n), intp(n)
	case "object":
		base.MinProperties, base.MaxProperties = intp(n), intp(n)
	case "array":
		base.MinItems, base.MaxItems = intp(n), intp(n)
	default:
		base.Description = joinDesc(base.Description, "length "+strconv.Itoa(n))
	}
	return base, nil
}

func (p *projector) model(s *model.Schema) (*Schema, error) {
	if name, ok := p.names[s.Key()]; ok {
		return &Schema{Ref: "#/$defs/" + name}, nil
	}
	name := s.Name()
	for i := 2; p.defs[name] != nil; i++ {
		name = s.Name() + "_" + strconv.Itoa(i)
	}
	p.names[s.Key()] = name
	p.defs[name] = &Schema{} // reserve the name
	out := &Schema{
		Type:       "object",
		Title:      s.Name(),
		Properties: map[string]*Schema{},
		Required:   s.Required(),
	}
	for _, f := range s.Fields() {
		fs, err := p.project(f.Type)
		if err != nil {
			return nil, fmt.Errorf("jsonschema: %s.%s: %w", s.Name(), f.Name, err)
		}
		if !f.Required && f.Default != nil {
			fs = withDefault(fs, f.Default)
		}
		out.Properties[f.Name] = fs
	}
	d := s.Discipline()
	if d.Exact {
		out.AdditionalProperties = false
	}
	if d.Ordered {
		out.PropertyOrder = s.Order()
	}
	if cs := s.Conditions(); len(cs) > 0 {
		names := make([]string, 0, len(cs))
		for _, c := range cs {
			names = append(names, c.Name)
		}
		out.Description = "conditions: " + strings.Join(names, ", ")
	}
	p.defs[name] = out
	return &Schema{Ref: "#/$defs/" + name}, nil
}

// withDefault attaches a JSON-encodable default. A $ref node is wrapped so
// the default does not sit beside the reference.
func withDefault(s *Schema, v any) *Schema {
	if r, ok := v.(*model.Record); ok {
		v = r.Map()
	}
	if s.Ref != "" {
		return &Schema{AllOf: []*Schema{s}, Default: v}
	}
	s.Default = v
	return s
}

func fromReflect(rt reflect.Type, name string) *Schema {
	switch rt.Kind() {
	case reflect.Bool:
		return &Schema{Type: "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}
	case reflect.String:
		return &Schema{Type: "string"}
	case reflect.Slice, reflect.Array:
		return &Schema{Type: "array", Items: fromReflect(rt.Elem(), rt.Elem().String())}
	case reflect.Map:
		return &Schema{Type: "object", AdditionalProperties: fromReflect(rt.Elem(), rt.Elem().String())}
	}
	return &Schema{Description: name}
}

func joinDesc(a, b string) string {
	if a == "" {
		return b
	}
	return a + "; " + b
}
