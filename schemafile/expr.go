package schemafile

import (
	"fmt"
	"strconv"
	"strings"
	"text/scanner"

	"github.com/reoring/typal"
	"github.com/reoring/typal/algebra"
	"github.com/reoring/typal/refine"
)

// Resolver looks up a non-builtin name in a type expression.
type Resolver func(name string) (typal.Type, bool)

// UnknownNameError reports a name that is neither builtin nor resolvable.
type UnknownNameError struct {
	Name string
	Pos  scanner.Position
}

func (e *UnknownNameError) Error() string {
	return fmt.Sprintf("schemafile: unknown type %q at column %d", e.Name, e.Pos.Column)
}

// SyntaxError reports a malformed type expression.
type SyntaxError struct {
	Expr string
	Pos  scanner.Position
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("schemafile: %s at column %d in %q", e.Msg, e.Pos.Column, e.Expr)
}

var builtins = map[string]typal.Type{
	"any":      typal.Any,
	"nothing":  typal.Nothing,
	"null":     typal.Null,
	"bool":     typal.Bool,
	"int":      typal.Int,
	"float":    typal.Float,
	"number":   typal.Number,
	"str":      typal.Str,
	"bytes":    typal.Bytes,
	"type":     typal.TypeType,
	"callable": typal.CallableType,
}

// ParseType parses a type expression:
//
//	union   = inter { "|" inter }
//	inter   = postfix { "&" postfix }
//	postfix = primary { "?" }
//	primary = name | "[" union "]" | "{" union "}" | "map" "[" union "]" union
//	        | "(" union { "," union } ")" | "range" "(" int "," int ")"
//	        | "re" string | "enum" "(" union ":" literal { "," literal } ")"
//	        | "len" "(" union "," int ")"
//
// "(A)" groups; "(A, B)" is a product. Names other than builtins go to
// resolve, which may be nil.
func ParseType(expr string, resolve Resolver) (typal.Type, error) {
	p := &parser{expr: expr, resolve: resolve}
	p.s.Init(strings.NewReader(expr))
	p.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats | scanner.ScanStrings | scanner.ScanRawStrings
	p.s.Error = func(_ *scanner.Scanner, msg string) { p.fail(msg) }
	p.next()
	t := p.union()
	if p.err == nil && p.tok != scanner.EOF {
		p.fail("unexpected " + p.s.TokenText())
	}
	if p.err != nil {
		return nil, p.err
	}
	return t, nil
}

type parser struct {
	expr    string
	resolve Resolver
	s       scanner.Scanner
	tok     rune
	err     error
}

func (p *parser) next() { p.tok = p.s.Scan() }

func (p *parser) fail(msg string) {
	if p.err == nil {
		p.err = &SyntaxError{Expr: p.expr, Pos: p.s.Position, Msg: msg}
	}
}

// check records a combinator error and returns a placeholder so parsing
// can unwind.
func (p *parser) check(t typal.Type, err error) typal.Type {
	if err != nil {
		if p.err == nil {
			p.err = err
		}
		return typal.Any
	}
	return t
}

func (p *parser) expect(r rune) {
	if p.tok != r {
		p.fail(fmt.Sprintf("expected %q, found %s", r, scanner.TokenString(p.tok)))
		return
	}
	p.next()
}

func (p *parser) union() typal.Type {
	ts := []any{p.inter()}
	for p.err == nil && p.tok == '|' {
		p.next()
		ts = append(ts, p.inter())
	}
	if len(ts) == 1 {
		return ts[0].(typal.Type)
	}
	return p.check(algebra.Union(ts...))
}

func (p *parser) inter() typal.Type {
	ts := []any{p.postfix()}
	for p.err == nil && p.tok == '&' {
		p.next()
		ts = append(ts, p.postfix())
	}
	if len(ts) == 1 {
		return ts[0].(typal.Type)
	}
	return p.check(algebra.Intersection(ts...))
}

func (p *parser) postfix() typal.Type {
	t := p.primary()
	for p.err == nil && p.tok == '?' {
		p.next()
		t = algebra.Optional(t)
	}
	return t
}

func (p *parser) primary() typal.Type {
	if p.err != nil {
		return typal.Any
	}
	switch p.tok {
	case '[':
		p.next()
		t := p.union()
		p.expect(']')
		return p.check(algebra.Sequence(t))
	case '{':
		p.next()
		t := p.union()
		p.expect('}')
		return p.check(algebra.Set(t))
	case '(':
		p.next()
		ts := []any{p.union()}
		for p.err == nil && p.tok == ',' {
			p.next()
			ts = append(ts, p.union())
		}
		p.expect(')')
		if len(ts) == 1 {
			return ts[0].(typal.Type)
		}
		return p.check(algebra.Product(ts...))
	case scanner.Ident:
		return p.named()
	}
	p.fail("unexpected " + scanner.TokenString(p.tok))
	return typal.Any
}

func (p *parser) named() typal.Type {
	name := p.s.TokenText()
	pos := p.s.Position
	p.next()
	switch name {
	case "map":
		p.expect('[')
		k := p.union()
		p.expect(']')
		v := p.union()
		return p.check(algebra.Mapping(algebra.Keys(k), v))
	case "range":
		p.expect('(')
		lo := p.integer()
		p.expect(',')
		hi := p.integer()
		p.expect(')')
		return p.check(refine.Range(lo, hi))
	case "re":
		pat := p.str()
		return p.check(refine.Regex(pat))
	case "enum":
		p.expect('(')
		base := p.union()
		p.expect(':')
		vs := []any{p.literal()}
		for p.err == nil && p.tok == ',' {
			p.next()
			vs = append(vs, p.literal())
		}
		p.expect(')')
		return p.check(refine.Enum(base, vs...))
	case "len":
		p.expect('(')
		base := p.union()
		p.expect(',')
		n := p.integer()
		p.expect(')')
		return p.check(refine.Len(base, int(n)))
	}
	if t, ok := builtins[name]; ok {
		return t
	}
	if p.resolve != nil {
		if t, ok := p.resolve(name); ok {
			return t
		}
	}
	if p.err == nil {
		p.err = &UnknownNameError{Name: name, Pos: pos}
	}
	return typal.Any
}

func (p *parser) integer() int64 {
	neg := false
	if p.tok == '-' {
		neg = true
		p.next()
	}
	if p.tok != scanner.Int {
		p.fail("expected integer, found " + scanner.TokenString(p.tok))
		return 0
	}
	n, err := strconv.ParseInt(p.s.TokenText(), 0, 64)
	if err != nil {
		p.fail("bad integer " + p.s.TokenText())
	}
	p.next()
	if neg {
		return -n
	}
	return n
}

func (p *parser) str() string {
	if p.tok != scanner.String && p.tok != scanner.RawString {
		p.fail("expected string, found " + scanner.TokenString(p.tok))
		return ""
	}
	s, err := strconv.Unquote(p.s.TokenText())
	if err != nil {
		p.fail("bad string " + p.s.TokenText())
	}
	p.next()
	return s
}

// literal parses an enum member: string, integer, float, true, false or
// null.
func (p *parser) literal() any {
	switch p.tok {
	case scanner.String, scanner.RawString:
		return p.str()
	case '-':
		p.next()
		switch p.tok {
		case scanner.Float:
			return -p.float()
		case scanner.Int:
			return -p.integer()
		}
		p.fail("expected number, found " + scanner.TokenString(p.tok))
		return nil
	case scanner.Int:
		return p.integer()
	case scanner.Float:
		return p.float()
	case scanner.Ident:
		name := p.s.TokenText()
		p.next()
		switch name {
		case "true":
			return true
		case "false":
			return false
		case "null":
			return nil
		}
		p.fail("unexpected literal " + name)
		return nil
	}
	p.fail("expected literal, found " + scanner.TokenString(p.tok))
	return nil
}

func (p *parser) float() float64 {
	f, err := strconv.ParseFloat(p.s.TokenText(), 64)
	if err != nil {
		p.fail("bad number " + p.s.TokenText())
	}
	p.next()
	return f
}
