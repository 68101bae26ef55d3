package orderedmap

import (
	"errors"
	"fmt"
	"iter"
)

// ErrKeyNotFound is returned by Get when a key is absent and no default
// factory is active.
var ErrKeyNotFound = errors.New("key not found")

// Map is an insertion-ordered map with an optional default factory.
type Map[K comparable, V any] struct {
	keys    []K
	values  map[K]V
	factory func() V
	sealed  bool
}

// New creates an empty map. A nil factory gives a map that never creates
// values on look-up.
func New[K comparable, V any](factory func() V) *Map[K, V] {
	return &Map[K, V]{
		values:  make(map[K]V),
		factory: factory,
	}
}

// Get returns the value stored under key. When the key is absent and the map
// is still in its insertion phase, a default value is created, stored at the
// end of the iteration order and returned.
func (m *Map[K, V]) Get(key K) (V, error) {
	if v, ok := m.values[key]; ok {
		return v, nil
	}
	if m.sealed || m.factory == nil {
		var zero V
		return zero, fmt.Errorf("%w: %v", ErrKeyNotFound, key)
	}
	v := m.factory()
	m.Set(key, v)
	return v, nil
}

// Lookup returns the value stored under key without ever creating one.
func (m *Map[K, V]) Lookup(key K) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Map[K, V]) Has(key K) bool {
	_, ok := m.values[key]
	return ok
}

// Set stores value under key. A new key goes to the end of the iteration
// order; an existing key keeps its position.
func (m *Map[K, V]) Set(key K, value V) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Seal ends the insertion phase. Subsequent look-ups of absent keys fail.
func (m *Map[K, V]) Seal() {
	m.sealed = true
}

// Sealed reports whether the default factory has been disabled.
func (m *Map[K, V]) Sealed() bool {
	return m.sealed
}

// Len returns the number of keys.
func (m *Map[K, V]) Len() int {
	return len(m.keys)
}

// Keys returns a copy of the keys in insertion order.
func (m *Map[K, V]) Keys() []K {
	out := make([]K, len(m.keys))
	copy(out, m.keys)
	return out
}

// Values returns the values in key insertion order.
func (m *Map[K, V]) Values() []V {
	out := make([]V, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.values[k])
	}
	return out
}

// All iterates over key/value pairs in insertion order.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// Clone returns a shallow copy that keeps the factory and the sealed state.
func (m *Map[K, V]) Clone() *Map[K, V] {
	out := &Map[K, V]{
		keys:    m.Keys(),
		values:  make(map[K]V, len(m.values)),
		factory: m.factory,
		sealed:  m.sealed,
	}
	for k, v := range m.values {
		out.values[k] = v
	}
	return out
}

// MapValues builds a new sealed map with the same key order whose values are
// fn applied to the values of m. The first error from fn stops the
// conversion and is returned as-is.
func MapValues[K comparable, V, W any](m *Map[K, V], fn func(K, V) (W, error)) (*Map[K, W], error) {
	out := New[K, W](nil)
	for _, k := range m.keys {
		w, err := fn(k, m.values[k])
		if err != nil {
			return nil, err
		}
		out.Set(k, w)
	}
	out.Seal()
	return out, nil
}
