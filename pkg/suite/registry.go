// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package suite

import (
	"sync"

	"github.com/holomush/propsuite/pkg/prop"
)

// Handle is the opaque token a plugin holds for a property set.
// The zero Handle is never issued.
type Handle uint64

// Registry maps handles to property sets. Only the table is locked; the lock
// is released before any Set operation runs.
type Registry struct {
	mu   sync.RWMutex
	next Handle
	sets map[Handle]*prop.Set
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sets: make(map[Handle]*prop.Set)}
}

// Register issues a new handle for s.
func (r *Registry) Register(s *prop.Set) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.sets[r.next] = s
	return r.next
}

// Release forgets h. It reports whether h was registered.
func (r *Registry) Release(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sets[h]
	delete(r.sets, h)
	return ok
}

// Resolve returns the Set behind h.
func (r *Registry) Resolve(h Handle) (*prop.Set, error) {
	r.mu.RLock()
	s, ok := r.sets[h]
	r.mu.RUnlock()
	if !ok {
		return nil, Errorf(ErrBadHandle, "handle %d is not registered", uint64(h))
	}
	return s, nil
}

// Len returns the number of live handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sets)
}
