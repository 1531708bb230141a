// Package table provides a lookup of values keyed by short byte prefixes,
// such as file magic numbers.
package table

// TableSize is the number of slots of the presence filter, one per uint16 hash.
const TableSize = 1 << 16

const (
	none = iota
	prefixMarker
	keyMarker
)

// PrefixTable maps byte keys to values and finds the keys that prefix a given input.
// A 64 KiB presence filter indexed by a rolling hash of each key prefix lets
// Walk stop at the first byte that no key continues with.
type PrefixTable[T any] struct {
	filter [TableSize]byte
	elems  map[string]T
	maxLen int
}

// New returns an empty PrefixTable.
func New[T any]() *PrefixTable[T] {
	return &PrefixTable[T]{
		elems: make(map[string]T),
	}
}

func step(h uint16, b byte) uint16 {
	return (h << 2) + uint16(b)
}

// Insert associates v with key, replacing any previous value.
func (t *PrefixTable[T]) Insert(key []byte, v T) {
	if len(key) == 0 {
		return
	}

	var h uint16
	for _, b := range key {
		h = step(h, b)
		t.filter[h] = max(t.filter[h], prefixMarker)
	}
	t.filter[h] = keyMarker

	t.elems[string(key)] = v
	t.maxLen = max(t.maxLen, len(key))
}

// Get returns the value stored for key.
func (t *PrefixTable[T]) Get(key []byte) (T, bool) {
	v, ok := t.elems[string(key)]
	return v, ok
}

// Walk calls onMatch, shortest first, for every stored key that is a prefix
// of data. It stops as soon as onMatch returns true.
func (t *PrefixTable[T]) Walk(data []byte, onMatch func(T) bool) {
	var h uint16
	for i, b := range data[:min(len(data), t.maxLen)] {
		h = step(h, b)

		switch t.filter[h] {
		case none:
			return
		case keyMarker:
			// hash collisions are resolved by the exact map lookup
			if v, ok := t.elems[string(data[:i+1])]; ok && onMatch(v) {
				return
			}
		}
	}
}

// Longest returns the value of the longest stored key that prefixes data.
func (t *PrefixTable[T]) Longest(data []byte) (T, bool) {
	var (
		found T
		ok    bool
	)
	t.Walk(data, func(v T) bool {
		found, ok = v, true
		return false
	})
	return found, ok
}

// Size returns the number of stored keys.
func (t *PrefixTable[T]) Size() int {
	return len(t.elems)
}
