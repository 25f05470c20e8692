package adapter

import (
	"fmt"
	"sort"
	"sync"
)

// Table maps descriptor kinds to adapters. Populate it during setup;
// afterwards it is read-only and safely shared by every root.
type Table struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{adapters: make(map[string]Adapter)}
}

// Register associates kind with a. Re-registering the same adapter for a
// kind is a no-op; registering a different one returns an error.
func (t *Table) Register(kind string, a Adapter) error {
	if kind == "" {
		return fmt.Errorf("adapter: empty kind")
	}
	if a == nil {
		return fmt.Errorf("adapter: nil adapter for kind %q", kind)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.adapters[kind]; ok {
		if existing == a {
			return nil
		}
		return fmt.Errorf("adapter: kind %q already registered", kind)
	}
	t.adapters[kind] = a
	return nil
}

// MustRegister is Register that panics on error. For package-level setup
// of built-in kinds.
func (t *Table) MustRegister(kind string, a Adapter) {
	if err := t.Register(kind, a); err != nil {
		panic(err)
	}
}

// Lookup returns the adapter for kind, if registered.
func (t *Table) Lookup(kind string) (Adapter, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	a, ok := t.adapters[kind]
	return a, ok
}

// Kinds returns a sorted snapshot of the registered kinds.
func (t *Table) Kinds() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	kinds := make([]string, 0, len(t.adapters))
	for k := range t.adapters {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
