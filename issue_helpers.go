package typal

import (
	"errors"
	"strconv"
	"strings"

	"github.com/reoring/typal/i18n"
)

// IssueAt creates an Issue at the given path with provided code, message and params map.
// This is a convenience helper to improve readability at call sites with many parameters.
func IssueAt(path, code, msg string, params map[string]any) Issue {
	return Issue{Path: path, Code: code, Message: msg, Params: params}
}

// IssueFrom converts a typed error into an Issue rooted at path. Issues
// returned as errors are not accepted here; use RebaseIssues for those.
func IssueFrom(path string, err error) Issue {
	var (
		tm *TypeMismatch
		km *KeyMismatch
		cf *ConditionFailed
		ac *ArgumentCategoryError
		au *AmbiguousUnion
		nb *NoBranch
		ce *CompositionError
	)
	switch {
	case errors.As(err, &tm):
		return Issue{Path: path, Code: CodeInvalidType, Message: i18n.T(CodeInvalidType, nil), Hint: "expected " + tm.Expected + ", got " + tm.Actual, Cause: tm,
			Params: map[string]any{"expected": tm.Expected, "got": tm.Actual}}
	case errors.As(err, &km):
		return Issue{Path: path, Code: km.Code(), Message: i18n.T(km.Code(), nil), Cause: km, Params: map[string]any{"key": km.Key}}
	case errors.As(err, &cf):
		return Issue{Path: path, Code: CodeConditionFailed, Message: i18n.T(CodeConditionFailed, nil), Hint: cf.Condition, Cause: cf}
	case errors.As(err, &ac):
		return Issue{Path: path, Code: CodeArgumentCategory, Message: i18n.T(CodeArgumentCategory, nil), Hint: ac.Want, Cause: ac}
	case errors.As(err, &au):
		return Issue{Path: path, Code: CodeUnionAmbiguous, Message: i18n.T(CodeUnionAmbiguous, nil), Hint: strings.Join(au.Branches, ", "), Cause: au}
	case errors.As(err, &nb):
		return Issue{Path: path, Code: CodeNoBranch, Message: i18n.T(CodeNoBranch, nil), Cause: nb}
	case errors.As(err, &ce):
		return Issue{Path: path, Code: CodeComposition, Message: i18n.T(CodeComposition, nil), Cause: ce}
	}
	return Issue{Path: path, Code: "custom", Message: err.Error(), Cause: err}
}

// RebaseIssues converts err into Issues placed under base. Nested Issues keep
// their relative paths ("/" maps onto base itself).
func RebaseIssues(base string, err error) Issues {
	if err == nil {
		return nil
	}
	child, ok := AsIssues(err)
	if !ok {
		return Issues{IssueFrom(base, err)}
	}
	var out Issues
	for _, it := range child {
		p := it.Path
		switch {
		case p == "" || p == "/":
			p = base
		case base == "/" || base == "":
			// keep p
		case p[0] == '/':
			p = base + p
		default:
			p = base + "/" + p
		}
		it.Path = p
		out = AppendIssues(out, it)
	}
	return out
}

// Pointer joins path segments into a JSON Pointer, escaping per RFC6901.
func Pointer(parts ...string) string {
	if len(parts) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(strings.ReplaceAll(strings.ReplaceAll(p, "~", "~0"), "/", "~1"))
	}
	return b.String()
}

// Child appends a field segment to an existing pointer.
func Child(base, name string) string {
	if base == "" || base == "/" {
		return Pointer(name)
	}
	return base + Pointer(name)
}

// Index appends an index segment to an existing pointer.
func Index(base string, i int) string { return Child(base, strconv.Itoa(i)) }
