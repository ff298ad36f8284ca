package model

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/reoring/typal"
)

// MarshalJSON writes the record as a JSON object in key order.
func (r *Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(r.vals[k])
		if err != nil {
			return nil, fmt.Errorf("model: encode %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON replaces the record with a decoded JSON object. See
// DecodeJSON for the value mapping.
func (r *Record) UnmarshalJSON(data []byte) error {
	v, err := DecodeJSON(data)
	if err != nil {
		return err
	}
	rec, ok := v.(*Record)
	if !ok {
		return &typal.TypeMismatch{Expected: "JSON object", Actual: typal.Category(v)}
	}
	*r = *rec
	return nil
}

// DecodeJSON decodes one JSON value keeping object key order: objects become
// *Record, arrays []any, integral numbers int64, other numbers float64.
// Duplicate object keys are reported as Issues with code duplicate_key.
func DecodeJSON(data []byte) (any, error) {
	return DecodeJSONReader(bytes.NewReader(data))
}

// DecodeJSONReader is DecodeJSON over a reader. Trailing data after the
// first value is an error.
func DecodeJSONReader(rd io.Reader) (any, error) {
	dec := json.NewDecoder(rd)
	dec.UseNumber()
	d := &tokenDecoder{dec: dec}
	v, err := d.value("")
	if err != nil {
		return nil, err
	}
	if len(d.dups) > 0 {
		return nil, d.dups
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("model: trailing data after JSON value")
	}
	return v, nil
}

type tokenDecoder struct {
	dec  *json.Decoder
	dups typal.Issues
}

func (d *tokenDecoder) value(path string) (any, error) {
	tok, err := d.dec.Token()
	if err != nil {
		return nil, err
	}
	return d.fromToken(path, tok)
}

func (d *tokenDecoder) fromToken(path string, tok json.Token) (any, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return d.object(path)
		case '[':
			return d.array(path)
		}
		return nil, fmt.Errorf("model: unexpected delimiter %q at %s", rune(t), pathOrRoot(path))
	case json.Number:
		return number(t)
	case float64:
		return number(json.Number(strconv.FormatFloat(t, 'g', -1, 64)))
	case string, bool, nil:
		return t, nil
	}
	return nil, fmt.Errorf("model: unexpected token %v at %s", tok, pathOrRoot(path))
}

func (d *tokenDecoder) object(path string) (*Record, error) {
	rec := &Record{vals: map[string]any{}}
	for d.dec.More() {
		tok, err := d.dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("model: object key expected at %s", pathOrRoot(path))
		}
		child := typal.Child(path, key)
		v, err := d.value(child)
		if err != nil {
			return nil, err
		}
		if rec.Has(key) {
			d.dups = typal.AppendIssues(d.dups, typal.IssueAt(child, typal.CodeDuplicateKey, "duplicate key "+strconv.Quote(key), map[string]any{"key": key}))
			continue
		}
		rec.Set(key, v)
	}
	if _, err := d.dec.Token(); err != nil { // '}'
		return nil, err
	}
	return rec, nil
}

func (d *tokenDecoder) array(path string) ([]any, error) {
	out := []any{}
	for i := 0; d.dec.More(); i++ {
		v, err := d.value(typal.Index(path, i))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if _, err := d.dec.Token(); err != nil { // ']'
		return nil, err
	}
	return out, nil
}

func number(n json.Number) (any, error) {
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("model: invalid number %q", string(n))
	}
	if i, ok := typal.AsInt64(f); ok {
		return i, nil
	}
	return f, nil
}

func pathOrRoot(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
