package typal

import "sync"

// NullRegistry associates descriptors with canonical default values. It is
// consulted before a descriptor's own Nuller capability.
var (
	nullMu    sync.RWMutex
	nullTable = map[string]any{}
)

// RegisterNull sets the canonical null for t. The value must be a member of t.
func RegisterNull(t Type, v any) error {
	if t == nil {
		return &ArgumentCategoryError{Op: "RegisterNull", Position: 0, Want: "type descriptor", Got: "null"}
	}
	if !t.Contains(v) {
		return &TypeMismatch{Name: "null of " + t.Name(), Expected: t.Name(), Actual: Describe(v)}
	}
	nullMu.Lock()
	nullTable[t.Key()] = v
	nullMu.Unlock()
	return nil
}

// UnregisterNull removes a registered canonical null.
func UnregisterNull(t Type) {
	nullMu.Lock()
	delete(nullTable, t.Key())
	nullMu.Unlock()
}

// NullOf returns the canonical null for t, if any.
func NullOf(t Type) (any, bool) {
	if t == nil {
		return nil, false
	}
	nullMu.RLock()
	v, ok := nullTable[t.Key()]
	nullMu.RUnlock()
	if ok {
		return v, true
	}
	if n, ok := t.(Nuller); ok {
		return n.Null()
	}
	return nil, false
}
