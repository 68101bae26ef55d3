// Package metatree implements the nested key-value metadata trees attached
// to exposures and slits, together with the deep merge used when slits are
// regrouped by source.
package metatree

import (
	"fmt"
	"sort"
	"strings"
)

// Tree is the root of a metadata tree. Nested nodes are map[string]any,
// lists are []any and leaves are string, bool, int64, float64 or nil.
type Tree map[string]any

// New returns an empty tree.
func New() Tree {
	return Tree{}
}

// asMap returns v as a plain map when it is a tree node.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Tree:
		return map[string]any(m), true
	}
	return nil, false
}

// Clone returns a deep copy of t.
func (t Tree) Clone() Tree {
	if t == nil {
		return nil
	}
	return Tree(cloneMap(t))
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	if m, ok := asMap(v); ok {
		return cloneMap(m)
	}
	if l, ok := v.([]any); ok {
		out := make([]any, len(l))
		for i, item := range l {
			out[i] = cloneValue(item)
		}
		return out
	}
	return v
}

// Get returns the value at a dotted path such as "instrument.detector".
func (t Tree) Get(path string) (any, bool) {
	var cur any = map[string]any(t)
	for _, part := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// GetString returns the value at path when it is a string.
func (t Tree) GetString(path string) (string, bool) {
	v, ok := t.Get(path)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Set stores value at a dotted path, creating intermediate nodes. A leaf in
// the way of the path is an error.
func (t Tree) Set(path string, value any) error {
	parts := strings.Split(path, ".")
	cur := map[string]any(t)
	for i, part := range parts[:len(parts)-1] {
		next, exists := cur[part]
		if !exists {
			child := map[string]any{}
			cur[part] = child
			cur = child
			continue
		}
		m, ok := asMap(next)
		if !ok {
			return fmt.Errorf("cannot set %q: %q is a %T, not a node", path, strings.Join(parts[:i+1], "."), next)
		}
		cur = m
	}
	cur[parts[len(parts)-1]] = value
	return nil
}

// Keys returns the top-level keys in sorted order.
func (t Tree) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Flatten maps the dotted path of every leaf to its value. Empty nodes count
// as leaves.
func (t Tree) Flatten() map[string]any {
	out := make(map[string]any)
	flatten("", t, out)
	return out
}

func flatten(prefix string, m map[string]any, out map[string]any) {
	for k, v := range m {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		if child, ok := asMap(v); ok && len(child) > 0 {
			flatten(path, child, out)
			continue
		}
		out[path] = v
	}
}

// Paths returns the flattened leaf paths in sorted order.
func (t Tree) Paths() []string {
	flat := t.Flatten()
	paths := make([]string, 0, len(flat))
	for p := range flat {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
