package network

// Arena holds every segment of one build, addressed by dense internal id.
// Adjacency is stored as index lists rather than object references, so
// ancestor propagation is a merge of integer sets with no shared ownership.
//
// Slot 0 of every per-segment slice is unused; internal ids are 1-based.
type Arena struct {
	n         int64
	parents   [][]int64
	children  [][]int64
	visited   []int64              // parents finalized so far
	ancestors []map[int64]struct{} // transient, released on finalization
	finalized []bool
}

// BuildArena constructs full adjacency from the ingested relation and
// returns the arena. Parent ids that never appear as their own row are
// tolerated by growing the arena to cover them; such implicit segments have
// no attributes beyond their id.
func BuildArena(t *Topology) *Arena {
	n := int64(t.IDs.Len())
	for _, l := range t.Links {
		if l.ID > n {
			n = l.ID
		}
		if l.ParentID > n {
			n = l.ParentID
		}
	}

	a := &Arena{
		n:         n,
		parents:   make([][]int64, n+1),
		children:  make([][]int64, n+1),
		visited:   make([]int64, n+1),
		ancestors: make([]map[int64]struct{}, n+1),
		finalized: make([]bool, n+1),
	}

	for _, l := range t.Links {
		if l.ParentID == 0 {
			continue
		}
		a.parents[l.ID] = append(a.parents[l.ID], l.ParentID)
		a.children[l.ParentID] = append(a.children[l.ParentID], l.ID)
	}

	return a
}

// Len returns the number of segments in the arena.
func (a *Arena) Len() int64 { return a.n }

// Parents returns the parent ids of a segment. The returned slice is a
// read-only view; it is released after the segment is finalized.
func (a *Arena) Parents(id int64) []int64 { return a.parents[id] }

// Children returns the child ids of a segment. The returned slice is a
// read-only view; it is released after the segment is finalized.
func (a *Arena) Children(id int64) []int64 { return a.children[id] }

// Seeds returns all segments with no parents, in id order. These are the
// traversal roots: headwaters in upstream builds, terminal outlets in
// downstream builds.
func (a *Arena) Seeds() []int64 {
	var seeds []int64
	for id := int64(1); id <= a.n; id++ {
		if len(a.parents[id]) == 0 {
			seeds = append(seeds, id)
		}
	}
	return seeds
}

// ancestorSet returns the segment's ancestor set, allocating it on first use.
func (a *Arena) ancestorSet(id int64) map[int64]struct{} {
	if a.ancestors[id] == nil {
		a.ancestors[id] = make(map[int64]struct{})
	}
	return a.ancestors[id]
}

// release drops a finalized segment's transient fields. This is mandatory,
// not an optimization: ancestor sets pinned for the whole graph would make
// large networks unprocessable.
func (a *Arena) release(id int64) {
	a.parents[id] = nil
	a.children[id] = nil
	a.ancestors[id] = nil
	a.finalized[id] = true
}
