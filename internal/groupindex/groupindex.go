// Package groupindex provides an ordered multimap: values grouped under a key,
// each group kept sorted by a comparator with a deterministic tie-break.
package groupindex

import (
	"cmp"
	"iter"
	"maps"
	"slices"

	"github.com/google/btree"
)

const degree = 16

type group[V any] struct {
	tree    *btree.BTreeG[V]
	members map[int64]V
}

// Index maps a key to a sorted set of values.
// An Index is not safe for concurrent mutation; callers that share one
// must stop writing before publishing it to readers.
type Index[K cmp.Ordered, V any] struct {
	groups  map[K]*group[V]
	compare func(a, b V) int
	key     func(V) int64
	size    int
}

// New creates an index ordering each group by compare, then by key ascending.
// key must be unique per value: two values with the same key are the same member.
func New[K cmp.Ordered, V any](compare func(a, b V) int, key func(V) int64) *Index[K, V] {
	return &Index[K, V]{
		groups:  make(map[K]*group[V]),
		compare: compare,
		key:     key,
	}
}

func (x *Index[K, V]) less(a, b V) bool {
	if c := x.compare(a, b); c != 0 {
		return c < 0
	}
	return x.key(a) < x.key(b)
}

// Put inserts v into the group for k, creating the group if needed.
// A member with the same unique key is replaced.
func (x *Index[K, V]) Put(k K, v V) {
	g := x.groups[k]
	if g == nil {
		g = &group[V]{
			tree:    btree.NewG(degree, x.less),
			members: make(map[int64]V),
		}
		x.groups[k] = g
	}

	id := x.key(v)
	if old, ok := g.members[id]; ok {
		g.tree.Delete(old)
		x.size--
	}
	g.members[id] = v
	g.tree.ReplaceOrInsert(v)
	x.size++
}

// Get returns a copy of the group for k in order. An absent key yields an empty slice.
func (x *Index[K, V]) Get(k K) []V {
	g := x.groups[k]
	if g == nil {
		return nil
	}
	return g.values()
}

func (g *group[V]) values() []V {
	out := make([]V, 0, g.tree.Len())
	g.tree.Ascend(func(v V) bool {
		out = append(out, v)
		return true
	})
	return out
}

// First returns the first member of the group for k.
func (x *Index[K, V]) First(k K) (V, bool) {
	g := x.groups[k]
	if g == nil {
		var zero V
		return zero, false
	}
	return g.tree.Min()
}

// Len returns the size of the group for k.
func (x *Index[K, V]) Len(k K) int {
	g := x.groups[k]
	if g == nil {
		return 0
	}
	return g.tree.Len()
}

// Groups returns the number of non-empty groups.
func (x *Index[K, V]) Groups() int {
	return len(x.groups)
}

// Size returns the total number of members across groups.
func (x *Index[K, V]) Size() int {
	return x.size
}

// Keys returns every group key in ascending order.
func (x *Index[K, V]) Keys() []K {
	return slices.Sorted(maps.Keys(x.groups))
}

// All iterates groups in ascending key order, yielding each group as an ordered copy.
func (x *Index[K, V]) All() iter.Seq2[K, []V] {
	return func(yield func(K, []V) bool) {
		for _, k := range x.Keys() {
			if !yield(k, x.groups[k].values()) {
				return
			}
		}
	}
}

// Clear removes every group.
func (x *Index[K, V]) Clear() {
	clear(x.groups)
	x.size = 0
}
