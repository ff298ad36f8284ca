package schemafile

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/reoring/typal"
	"github.com/reoring/typal/model"
)

// DuplicateKeyError reports a duplicate key found in a YAML mapping with both
// the first occurrence position and the duplicate occurrence position.
type DuplicateKeyError struct {
	Key       string
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate YAML key %q at %d:%d (first at %d:%d)", e.Key, e.Line, e.Col, e.FirstLine, e.FirstCol)
}

// RecordReader decodes a multi-document YAML stream through yaml.Node so
// that key order survives and duplicate keys are caught with positions.
// Mappings become *model.Record, sequences []any, integers int64.
type RecordReader struct {
	dec *yaml.Decoder
}

// NewRecordReader constructs a RecordReader.
func NewRecordReader(r io.Reader) *RecordReader {
	return &RecordReader{dec: yaml.NewDecoder(r)}
}

// Next returns the next document. It returns (nil, io.EOF) when the stream
// is exhausted. Duplicate keys are reported together as typal.Issues with
// code duplicate_key.
func (s *RecordReader) Next() (any, error) {
	var root yaml.Node
	if err := s.dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, err
	}
	c := &converter{}
	v := c.value(&root, "")
	if len(c.dups) > 0 {
		return nil, c.dups
	}
	return v, nil
}

// ReadAll reads all documents from the stream.
func (s *RecordReader) ReadAll() ([]any, error) {
	var out []any
	for {
		v, err := s.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, err
		}
		out = append(out, v)
	}
}

// ReadRecords reads every document of a record file. JSON files hold one
// value; YAML files may hold several documents.
func ReadRecords(path string) ([]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if strings.EqualFold(filepath.Ext(path), ".json") {
		v, err := model.DecodeJSONReader(f)
		if err != nil {
			return nil, err
		}
		return []any{v}, nil
	}
	return NewRecordReader(f).ReadAll()
}

type converter struct {
	dups typal.Issues
}

func (c *converter) value(n *yaml.Node, path string) any {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil
		}
		return c.value(n.Content[0], path)
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil
		}
		return c.value(n.Alias, path)
	case yaml.MappingNode:
		rec := model.NewRecord()
		first := make(map[string][2]int, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			key := k.Value
			child := typal.Child(path, key)
			if pos, dup := first[key]; dup {
				de := &DuplicateKeyError{Key: key, FirstLine: pos[0], FirstCol: pos[1], Line: k.Line, Col: k.Column}
				c.dups = typal.AppendIssues(c.dups, typal.Issue{
					Path:    child,
					Code:    typal.CodeDuplicateKey,
					Message: "duplicate key " + strconv.Quote(key),
					Hint:    fmt.Sprintf("line %d:%d, first at %d:%d", de.Line, de.Col, de.FirstLine, de.FirstCol),
					Cause:   de,
					Params:  map[string]any{"key": key},
				})
				continue
			}
			first[key] = [2]int{k.Line, k.Column}
			rec.Set(key, c.value(v, child))
		}
		return rec
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for i, e := range n.Content {
			arr = append(arr, c.value(e, typal.Index(path, i)))
		}
		return arr
	case yaml.ScalarNode:
		return scalar(n)
	}
	return nil
}

func scalar(n *yaml.Node) any {
	switch n.ShortTag() {
	case "!!null":
		return nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err == nil {
			return b
		}
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return i
		}
	case "!!float":
		var f float64
		if err := n.Decode(&f); err == nil {
			if f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) < 1<<53 {
				return int64(f)
			}
			return f
		}
	}
	return n.Value
}
