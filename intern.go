package typal

import "sync"

// process-wide intern table for descriptors, keyed by structural key
var (
	_internMu   sync.RWMutex
	_internPool = map[string]Type{}
)

// Intern returns the descriptor registered under key, building and
// registering it on first use. build runs outside the lock; racing callers
// may build redundantly but all of them receive the first registered object.
func Intern(key string, build func() Type) Type {
	_internMu.RLock()
	if t, ok := _internPool[key]; ok {
		_internMu.RUnlock()
		return t
	}
	_internMu.RUnlock()

	t := build()

	_internMu.Lock()
	if prev, ok := _internPool[key]; ok { // double-check
		_internMu.Unlock()
		return prev
	}
	_internPool[key] = t
	_internMu.Unlock()
	Log().Debug().Str("key", key).Msg("typal: interned descriptor")
	return t
}

// Interned reports whether a descriptor is registered under key.
func Interned(key string) (Type, bool) {
	_internMu.RLock()
	t, ok := _internPool[key]
	_internMu.RUnlock()
	return t, ok
}
