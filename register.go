// FILE: itcw/config/register.go
package config

import (
	"sort"
)

// Register adds or replaces the registered default for key.
func (r *Resolver) Register(key string, defaultValue any) error {
	if err := validateKey(key); err != nil {
		return err
	}

	r.defaultsMu.Lock()
	defer r.defaultsMu.Unlock()
	r.defaults[key] = defaultValue
	return nil
}

// Unregister removes the registered default for key. Removing an absent key is not an error.
func (r *Resolver) Unregister(key string) {
	r.defaultsMu.Lock()
	defer r.defaultsMu.Unlock()
	delete(r.defaults, key)
}

// RegisteredKeys returns the keys that have a registered default, sorted.
func (r *Resolver) RegisteredKeys() []string {
	r.defaultsMu.RLock()
	defer r.defaultsMu.RUnlock()

	keys := make([]string, 0, len(r.defaults))
	for k := range r.defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r *Resolver) registeredDefault(key string) (any, bool) {
	r.defaultsMu.RLock()
	defer r.defaultsMu.RUnlock()
	v, ok := r.defaults[key]
	return v, ok
}
