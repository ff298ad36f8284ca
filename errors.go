package typal

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/typal/i18n"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeArgumentCategory = "argument_category"
	CodeInvalidType      = "invalid_type"
	CodeRequired         = "required"
	CodeUnknownKey       = "unknown_key"
	CodeKeyOrder         = "key_order"
	CodeConditionFailed  = "condition_failed"
	CodeUnionAmbiguous   = "union_ambiguous"
	CodeNoBranch         = "no_branch"
	CodeComposition      = "composition"
	CodeInvalidDefault   = "invalid_default"
	CodeRequiredDeletion = "required_deletion"
	CodeDuplicateKey     = "duplicate_key"
	CodeTooShort         = "too_short"
	CodeUniqueness       = "uniqueness"
)

// Issue represents a single validation entry.
type Issue struct {
	Path    string // JSON Pointer (for example: /items/2/price).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, expected categories, etc.
	Cause   error  // Optional: underlying typed error.
	// Params carries structured parameters (e.g., {"expected":"Int","got":"string"})
	// for i18n and observability.
	Params map[string]any
}

// Issues is a collection of validation errors that implements error. It is
// the aggregate report produced by one validation call.
type Issues []Issue

// Error renders one line per issue, capped at maxShown entries.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 10
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	if n == 1 {
		b.WriteString("1 validation issue:")
	} else {
		fmt.Fprintf(b, "%d validation issues:", n)
	}
	for i := 0; i < lim; i++ {
		it := iss[i]
		// e.g. invalid_type at /path: message
		fmt.Fprintf(b, "\n  - %s at %s", it.Code, it.Path)
		if it.Message != "" {
			fmt.Fprintf(b, ": %s", it.Message)
		}
		if it.Hint != "" {
			fmt.Fprintf(b, " (%s)", it.Hint)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "\n  ... (total %d)", n)
	}
	return b.String()
}

// Unwrap exposes the typed causes so errors.As can reach e.g. *TypeMismatch
// inside an aggregate.
func (iss Issues) Unwrap() []error {
	var out []error
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

// Codes returns the issue codes in report order.
func (iss Issues) Codes() []string {
	out := make([]string, 0, len(iss))
	for _, it := range iss {
		out = append(out, it.Code)
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// ArgumentCategoryError reports a malformed combinator, schema or contract
// argument: something that is not a Type or a callable where one is required.
type ArgumentCategoryError struct {
	Op       string // combinator or builder name
	Position int    // zero-based argument position; -1 when not positional
	Name     string // optional argument name
	Want     string
	Got      string
}

func (e *ArgumentCategoryError) Error() string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "%s: %s", e.Op, i18n.T(CodeArgumentCategory, nil))
	if e.Position >= 0 {
		fmt.Fprintf(b, " at position %d", e.Position)
	}
	if e.Name != "" {
		fmt.Fprintf(b, " (%s)", e.Name)
	}
	fmt.Fprintf(b, "\n  expected: %s\n  received: %s", e.Want, e.Got)
	return b.String()
}

// TypeMismatch reports a single value that is not a member of its declared
// Type. Name is the parameter or field name.
type TypeMismatch struct {
	Name     string
	Expected string
	Actual   string
	Detail   string // optional: nearest union branch, nested report, etc.
}

func (e *TypeMismatch) Error() string {
	b := &strings.Builder{}
	if e.Name != "" {
		fmt.Fprintf(b, "%s for %q", i18n.T(CodeInvalidType, nil), e.Name)
	} else {
		b.WriteString(i18n.T(CodeInvalidType, nil))
	}
	fmt.Fprintf(b, "\n  expected: %s\n  received: %s", e.Expected, e.Actual)
	if e.Detail != "" {
		fmt.Fprintf(b, "\n  detail: %s", strings.ReplaceAll(e.Detail, "\n", "\n    "))
	}
	return b.String()
}

// KeyMismatch reasons.
const (
	KeyMissing = "missing"
	KeyExtra   = "extra"
	KeyOrder   = "order"
	KeyDelete  = "delete"
)

// KeyMismatch reports schema exactness/order/missing/extra violations.
type KeyMismatch struct {
	Schema string
	Key    string
	Reason string // KeyMissing, KeyExtra, KeyOrder or KeyDelete
	Want   []string
	Got    []string
}

// Code maps the reason onto an issue code.
func (e *KeyMismatch) Code() string {
	switch e.Reason {
	case KeyMissing:
		return CodeRequired
	case KeyExtra:
		return CodeUnknownKey
	case KeyDelete:
		return CodeRequiredDeletion
	default:
		return CodeKeyOrder
	}
}

func (e *KeyMismatch) Error() string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "%s: %s %q", e.Schema, i18n.T(e.Code(), nil), e.Key)
	if len(e.Want) > 0 || len(e.Got) > 0 {
		fmt.Fprintf(b, "\n  expected keys: [%s]\n  received keys: [%s]", strings.Join(e.Want, ", "), strings.Join(e.Got, ", "))
	}
	return b.String()
}

// ConditionFailed reports a record-level predicate that did not hold.
type ConditionFailed struct {
	Schema    string
	Condition string
	Detail    string
}

func (e *ConditionFailed) Error() string {
	msg := fmt.Sprintf("%s: %s %q", e.Schema, i18n.T(CodeConditionFailed, nil), e.Condition)
	if e.Detail != "" {
		msg += "\n  detail: " + e.Detail
	}
	return msg
}

// AmbiguousUnion reports dispatch branches that matched the same input but
// computed different results.
type AmbiguousUnion struct {
	Dispatch string
	Branches []string
	Values   []any
}

func (e *AmbiguousUnion) Error() string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "%s: %s", e.Dispatch, i18n.T(CodeUnionAmbiguous, nil))
	for i, name := range e.Branches {
		var v any
		if i < len(e.Values) {
			v = e.Values[i]
		}
		fmt.Fprintf(b, "\n  %s -> %s", name, Describe(v))
	}
	return b.String()
}

// NoBranch reports a dispatch call no branch accepted.
type NoBranch struct {
	Dispatch string
	Args     []string // categories of the received arguments
	Branches []string
}

func (e *NoBranch) Error() string {
	return fmt.Sprintf("%s: %s\n  received: (%s)\n  branches: %s",
		e.Dispatch, i18n.T(CodeNoBranch, nil), strings.Join(e.Args, ", "), strings.Join(e.Branches, " | "))
}

// CompositionError reports an incompatible function-contract chain.
type CompositionError struct {
	Left     string
	Right    string
	Produces string
	Accepts  string
}

func (e *CompositionError) Error() string {
	return fmt.Sprintf("%s: cannot feed %s into %s\n  %s produces: %s\n  %s accepts: %s",
		i18n.T(CodeComposition, nil), e.Left, e.Right, e.Left, e.Produces, e.Right, e.Accepts)
}
