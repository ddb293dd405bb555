package proc

// Tree returns root plus every transitive descendant found in the
// snapshot. When root itself is absent (a shell replaced by exec keeps
// its children parented to the old pid) the walk falls back to every
// process whose parent is root. An empty result is not an error; the
// caller decides what it means.
func (s *Snapshot) Tree(root int32) map[int32]struct{} {
	result := make(map[int32]struct{})

	if s.Contains(root) {
		s.walk(root, result)
		return result
	}

	// Exec-without-fork fallback: the root is gone but its children may
	// still reference it as parent.
	for _, child := range s.children[root] {
		if _, ok := result[child]; !ok {
			s.walk(child, result)
		}
	}
	return result
}

// walk does a breadth-first traversal over the parent adjacency map,
// inserting every reached pid into result.
func (s *Snapshot) walk(start int32, result map[int32]struct{}) {
	queue := []int32{start}
	result[start] = struct{}{}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, child := range s.children[current] {
			if _, ok := result[child]; ok {
				continue
			}
			result[child] = struct{}{}
			queue = append(queue, child)
		}
	}
}
