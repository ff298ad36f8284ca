package schemafile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/reoring/typal"
	"github.com/reoring/typal/model"
	"github.com/reoring/typal/rules"
)

// Document is the on-disk form of a catalog. The same shape is read from
// YAML, TOML and JSON:
//
//	models:
//	  - name: User
//	    discipline: exact
//	    extends: [Entity]
//	    fields:
//	      - {name: name, type: str}
//	      - {name: role, type: 'enum(str: "admin", "member")', default: member}
//	    rules:
//	      - {name: window, compare: ["/start", "<=", "/end"]}
type Document struct {
	Models []ModelDecl `yaml:"models" toml:"models" json:"models"`
}

// ModelDecl declares one schema.
type ModelDecl struct {
	Name       string      `yaml:"name" toml:"name" json:"name"`
	Discipline string      `yaml:"discipline,omitempty" toml:"discipline" json:"discipline,omitempty"`
	Extends    []string    `yaml:"extends,omitempty" toml:"extends" json:"extends,omitempty"`
	Fields     []FieldDecl `yaml:"fields" toml:"fields" json:"fields"`
	Rules      []RuleDecl  `yaml:"rules,omitempty" toml:"rules" json:"rules,omitempty"`
}

// FieldDecl declares one field. A field is required unless Optional is set
// or a Default is given.
type FieldDecl struct {
	Name     string `yaml:"name" toml:"name" json:"name"`
	Type     string `yaml:"type" toml:"type" json:"type"`
	Optional bool   `yaml:"optional,omitempty" toml:"optional" json:"optional,omitempty"`
	Default  any    `yaml:"default,omitempty" toml:"default" json:"default,omitempty"`
}

// RuleDecl declares a record condition. Exactly one of Compare, Unique and
// AtLeastOne is set.
type RuleDecl struct {
	Name       string      `yaml:"name" toml:"name" json:"name"`
	Compare    []string    `yaml:"compare,omitempty" toml:"compare" json:"compare,omitempty"`
	Unique     *UniqueDecl `yaml:"unique,omitempty" toml:"unique" json:"unique,omitempty"`
	AtLeastOne string      `yaml:"at_least_one,omitempty" toml:"at_least_one" json:"at_least_one,omitempty"`
}

// UniqueDecl selects a collection and the per-element key that must be
// unique.
type UniqueDecl struct {
	Path string `yaml:"path" toml:"path" json:"path"`
	Key  string `yaml:"key" toml:"key" json:"key"`
}

// Catalog is a set of built schemas addressable by name.
type Catalog struct {
	schemas map[string]*model.Schema
	names   []string
}

// Schema returns the schema declared as name.
func (c *Catalog) Schema(name string) (*model.Schema, bool) {
	s, ok := c.schemas[name]
	return s, ok
}

// Names lists the declared model names in declaration order.
func (c *Catalog) Names() []string { return append([]string(nil), c.names...) }

// Type parses a type expression against the catalog's models.
func (c *Catalog) Type(expr string) (typal.Type, error) {
	return ParseType(expr, c.lookup)
}

func (c *Catalog) lookup(name string) (typal.Type, bool) {
	s, ok := c.schemas[name]
	if !ok {
		return nil, false
	}
	return s, true
}

// LoadFile reads a catalog, picking the format from the file extension
// (.yaml, .yml, .toml or .json).
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(f)
	case ".toml":
		return LoadTOML(f)
	case ".json":
		return LoadJSON(f)
	}
	return nil, fmt.Errorf("schemafile: unsupported catalog extension %q", filepath.Ext(path))
}

// LoadYAML decodes a YAML catalog. Unknown keys are errors.
func LoadYAML(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var doc Document
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("schemafile: yaml: %w", err)
	}
	return Build(doc)
}

// LoadTOML decodes a TOML catalog. Unknown keys are errors.
func LoadTOML(r io.Reader) (*Catalog, error) {
	var doc Document
	md, err := toml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("schemafile: toml: %w", err)
	}
	if und := md.Undecoded(); len(und) > 0 {
		keys := make([]string, len(und))
		for i, k := range und {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("schemafile: toml: unknown keys %s", strings.Join(keys, ", "))
	}
	return Build(doc)
}

// LoadJSON decodes a JSON catalog. Unknown keys are errors.
func LoadJSON(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	dec.UseNumber()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("schemafile: json: %w", err)
	}
	for i := range doc.Models {
		for j := range doc.Models[i].Fields {
			f := &doc.Models[i].Fields[j]
			f.Default = fromJSONNumbers(f.Default)
		}
	}
	return Build(doc)
}

// fromJSONNumbers maps json.Number onto int64 or float64 the way records
// decoded by model.DecodeJSON carry numbers.
func fromJSONNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return string(t)
	case map[string]any:
		for k, e := range t {
			t[k] = fromJSONNumbers(e)
		}
	case []any:
		for i, e := range t {
			t[i] = fromJSONNumbers(e)
		}
	}
	return v
}

// Build turns a decoded document into schemas. Models may reference each
// other in any order; reference cycles are errors.
func Build(doc Document) (*Catalog, error) {
	c := &Catalog{schemas: map[string]*model.Schema{}}
	declared := map[string]bool{}
	for _, m := range doc.Models {
		if m.Name == "" {
			return nil, errors.New("schemafile: model without a name")
		}
		if declared[m.Name] {
			return nil, fmt.Errorf("schemafile: model %q declared twice", m.Name)
		}
		declared[m.Name] = true
		c.names = append(c.names, m.Name)
	}
	pending := doc.Models
	for len(pending) > 0 {
		var deferred []ModelDecl
		var blockers []string
		for _, m := range pending {
			s, err := c.build(m)
			var un *UnknownNameError
			if errors.As(err, &un) && declared[un.Name] {
				deferred = append(deferred, m)
				blockers = append(blockers, m.Name+" -> "+un.Name)
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("schemafile: model %s: %w", m.Name, err)
			}
			c.schemas[m.Name] = s
		}
		if len(deferred) == len(pending) {
			sort.Strings(blockers)
			return nil, fmt.Errorf("schemafile: reference cycle: %s", strings.Join(blockers, ", "))
		}
		pending = deferred
	}
	typal.Log().Debug().Strs("models", c.names).Msg("schemafile: catalog built")
	return c, nil
}

func (c *Catalog) build(m ModelDecl) (*model.Schema, error) {
	d, ok := model.ParseDiscipline(m.Discipline)
	if !ok {
		return nil, fmt.Errorf("unknown discipline %q", m.Discipline)
	}
	b := model.New(m.Name, d)
	for _, p := range m.Extends {
		parent, ok := c.schemas[p]
		if !ok {
			return nil, &UnknownNameError{Name: p}
		}
		b.Extends(parent)
	}
	for _, f := range m.Fields {
		t, err := c.Type(f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		step := b.Field(f.Name, t)
		switch {
		case f.Default != nil:
			step.Default(f.Default)
		case f.Optional:
			step.Optional()
		}
	}
	for _, r := range m.Rules {
		cond, err := r.condition()
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.Name, err)
		}
		b.Conditions(cond)
	}
	return b.Build()
}

var ops = map[string]rules.Op{
	"==": rules.Eq, "!=": rules.Ne,
	"<": rules.Lt, "<=": rules.Le,
	">": rules.Gt, ">=": rules.Ge,
}

func (r RuleDecl) condition() (model.Condition, error) {
	set := 0
	var rule rules.Rule
	if len(r.Compare) > 0 {
		set++
		if len(r.Compare) != 3 {
			return model.Condition{}, fmt.Errorf("compare wants [left, op, right], got %d items", len(r.Compare))
		}
		op, ok := ops[r.Compare[1]]
		if !ok {
			return model.Condition{}, fmt.Errorf("unknown operator %q", r.Compare[1])
		}
		rule = rules.Compare(r.Compare[0], op, r.Compare[2])
	}
	if r.Unique != nil {
		set++
		rule = rules.UniqueBy(r.Unique.Path, r.Unique.Key)
	}
	if r.AtLeastOne != "" {
		set++
		rule = rules.AtLeastOne(r.AtLeastOne)
	}
	if set != 1 {
		return model.Condition{}, errors.New("exactly one of compare, unique, at_least_one is required")
	}
	name := r.Name
	if name == "" {
		name = "rule"
	}
	return rules.Condition(name, rule), nil
}
