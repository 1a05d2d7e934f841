// Package hierarchy assembles flat parent-linked rows into trees.
package hierarchy

// Build links items into a forest. Every item whose parent is present in
// items is attached to that parent exactly once; the rest become roots.
// Input order is preserved among siblings and among roots. Items that
// would close a parent cycle are promoted to roots.
func Build[T any, K comparable](
	items []T,
	key func(T) K,
	parent func(T) (K, bool),
	attach func(parent, child T),
) []T {
	index := make(map[K]int, len(items))
	for i, item := range items {
		k := key(item)
		if _, dup := index[k]; !dup {
			index[k] = i
		}
	}

	parentOf := make([]int, len(items))
	for i, item := range items {
		parentOf[i] = -1
		pk, ok := parent(item)
		if !ok {
			continue
		}
		if j, found := index[pk]; found && j != i {
			parentOf[i] = j
		}
	}

	for i := range items {
		if parentOf[i] >= 0 && closesCycle(parentOf, i) {
			parentOf[i] = -1
		}
	}

	roots := make([]T, 0, len(items))
	for i, item := range items {
		if parentOf[i] < 0 {
			roots = append(roots, item)
			continue
		}
		attach(items[parentOf[i]], item)
	}
	return roots
}

func closesCycle(parentOf []int, start int) bool {
	seen := map[int]struct{}{start: {}}
	for cur := parentOf[start]; cur >= 0; cur = parentOf[cur] {
		if _, ok := seen[cur]; ok {
			return true
		}
		seen[cur] = struct{}{}
	}
	return false
}
