// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package prop

// GetHook supplies an entry's values from outside the Set. While a GetHook is
// installed, reads, dimension queries and resets of the entry go to the hook
// and the entry's local storage is not used.
type GetHook interface {
	GetValue(name string, index int) (Value, error)
	// GetValues returns up to count values.
	GetValues(name string, count int) ([]Value, error)
	Dimension(name string) (int, error)
	Reset(name string) error
}

// SetHook is notified after every accepted write to an entry, in the order
// the hooks were added. Hooks may call back into the Set that notified them.
type SetHook interface {
	Notify(name string, v Value, index int)
	NotifyN(name string, values []Value)
}

// NotifyFunc adapts a function to SetHook. Vector writes are delivered as
// one call per index.
type NotifyFunc func(name string, v Value, index int)

// Notify calls f.
func (f NotifyFunc) Notify(name string, v Value, index int) {
	f(name, v, index)
}

// NotifyN calls f once per value.
func (f NotifyFunc) NotifyN(name string, values []Value) {
	for i, v := range values {
		f(name, v, i)
	}
}
