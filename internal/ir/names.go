package ir

import "strconv"

// Names allocates collision-free identifiers for one compilation. Each
// prefix has its own counter starting at zero.
type Names struct {
	counters map[string]int
}

// NewNames creates an empty allocator.
func NewNames() *Names {
	return &Names{counters: make(map[string]int)}
}

// Next returns prefix followed by the prefix's current counter, then
// advances the counter.
func (n *Names) Next(prefix string) string {
	id := n.counters[prefix]
	n.counters[prefix] = id + 1
	return prefix + strconv.Itoa(id)
}

// Count returns how many names have been allocated for prefix.
func (n *Names) Count(prefix string) int {
	return n.counters[prefix]
}

// Total returns how many names have been allocated across all prefixes.
func (n *Names) Total() int {
	total := 0
	for _, c := range n.counters {
		total += c
	}
	return total
}
