package catalog

import (
	"fmt"
	"slices"
)

// ResourceSet is the sorted, duplicate-free list of resource names held by a
// catalog document. Methods never mutate the receiver.
type ResourceSet []string

// NewResourceSet builds a set from names in any order
func NewResourceSet(names ...string) ResourceSet {
	set := make(ResourceSet, 0, len(names))
	set = append(set, names...)
	slices.Sort(set)
	return slices.Compact(set)
}

func (s ResourceSet) Contains(name string) bool {
	_, found := slices.BinarySearch(s, name)
	return found
}

// With returns a copy of the set including name
func (s ResourceSet) With(name string) ResourceSet {
	return NewResourceSet(append(slices.Clone(s), name)...)
}

// Without returns a copy of the set excluding name
func (s ResourceSet) Without(name string) ResourceSet {
	out := make(ResourceSet, 0, len(s))
	for _, n := range s {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}

// parseResourceSet reads a catalog field decoded from JSON or msgpack
func parseResourceSet(raw interface{}) (ResourceSet, error) {
	switch v := raw.(type) {
	case nil:
		return ResourceSet{}, nil
	case []string:
		return NewResourceSet(v...), nil
	case []interface{}:
		names := make([]string, 0, len(v))
		for i, item := range v {
			name, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("catalog entry %d is %T, not a string", i, item)
			}
			names = append(names, name)
		}
		return NewResourceSet(names...), nil
	default:
		return nil, fmt.Errorf("catalog field is %T, not a list", raw)
	}
}
