package metatree

import (
	"fmt"
	"strings"
)

// MergePolicy decides which side wins when both trees hold a leaf at the
// same path.
type MergePolicy int

const (
	// PreferIncoming overwrites destination leaves with source leaves.
	PreferIncoming MergePolicy = iota
	// PreferExisting keeps destination leaves and only adds missing paths.
	PreferExisting
)

// String implements fmt.Stringer.
func (p MergePolicy) String() string {
	switch p {
	case PreferIncoming:
		return "incoming"
	case PreferExisting:
		return "existing"
	default:
		return fmt.Sprintf("MergePolicy(%d)", int(p))
	}
}

// ParseMergePolicy accepts "incoming" or "existing", case-insensitively.
func ParseMergePolicy(s string) (MergePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "incoming":
		return PreferIncoming, nil
	case "existing":
		return PreferExisting, nil
	default:
		return 0, fmt.Errorf("unknown merge policy %q: must be 'incoming' or 'existing'", s)
	}
}

// Merge deep-merges src into dst in place and returns dst.
//
// Nodes merge key by key. Paths missing from src, or null in src, are left
// untouched in dst; paths missing from dst are added. When one side holds a
// node and the other a leaf, or both hold leaves, the policy picks the
// winner. Everything copied out of src is cloned, so src is never aliased or
// modified.
func Merge(dst, src Tree, policy MergePolicy) Tree {
	if dst == nil {
		dst = Tree{}
	}
	mergeMap(dst, src, policy)
	return dst
}

func mergeMap(dst, src map[string]any, policy MergePolicy) {
	for k, sv := range src {
		if sv == nil {
			continue
		}
		dv, exists := dst[k]
		if !exists {
			dst[k] = cloneValue(sv)
			continue
		}
		dm, dIsMap := asMap(dv)
		sm, sIsMap := asMap(sv)
		if dIsMap && sIsMap {
			mergeMap(dm, sm, policy)
			continue
		}
		if policy == PreferIncoming {
			dst[k] = cloneValue(sv)
		}
	}
}
