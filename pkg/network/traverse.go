package network

import (
	"context"
	"slices"
)

// MultiSegment is a finalized segment with two or more ancestors. Ancestors
// holds the resolved closure inline in in-memory builds and is nil when the
// closure was streamed to a store, in which case the aggregation step
// fetches it on demand by id.
type MultiSegment struct {
	ID        int64
	Ancestors []int64
}

// Partition classifies finalized segments by ancestor-set cardinality so
// the aggregation step can skip work: no-ancestor segments need no query at
// all, one-ancestor segments (only reachable when the segment itself is
// included) copy their local values straight through, and only
// multi-ancestor segments need the full reduction.
//
// The three lists are pairwise disjoint and together cover every finalized
// segment.
type Partition struct {
	NoAncestors []int64
	OneAncestor []int64
	Multi       []MultiSegment
}

// Total returns the number of finalized segments across all three lists.
func (p *Partition) Total() int {
	return len(p.NoAncestors) + len(p.OneAncestor) + len(p.Multi)
}

// add classifies one finalized segment. Segments with exactly one ancestor
// land in OneAncestor only when the run includes the segment itself in its
// closure; otherwise a single real ancestor still needs the full reduction.
func (p *Partition) add(id int64, ancestors []int64, includeSelf, inline bool) {
	switch {
	case len(ancestors) == 0:
		p.NoAncestors = append(p.NoAncestors, id)
	case includeSelf && len(ancestors) == 1:
		p.OneAncestor = append(p.OneAncestor, id)
	case inline:
		p.Multi = append(p.Multi, MultiSegment{ID: id, Ancestors: ancestors})
	default:
		p.Multi = append(p.Multi, MultiSegment{ID: id})
	}
}

// ClosureWriter receives each finalized closure. Implementations must store
// an explicit empty array for empty closures so "no ancestors" stays
// distinguishable from "segment not found".
type ClosureWriter interface {
	Put(ctx context.Context, id int64, ancestors []int64) error
}

// TraverseOptions configures one traversal run.
type TraverseOptions struct {
	// IncludeSelf adds each segment's own id to its closure. Applied
	// uniformly for the whole run.
	IncludeSelf bool

	// Writer, when set, receives every finalized closure and the in-memory
	// copy is discarded immediately, bounding peak memory to the graph
	// itself. When nil, closures stay inline on the partition.
	Writer ClosureWriter
}

// ClosureResult is the outcome of one traversal.
type ClosureResult struct {
	// Partition classifies every finalized segment.
	Partition Partition

	// Finalized is the number of segments whose closure was resolved.
	Finalized int64

	// Unreached lists segments that were never finalized: members of cycles
	// or segments whose every ancestor path loops. They are absent from the
	// partition and from any store output. An acyclic input always yields an
	// empty list.
	Unreached []int64
}

// Traverse computes the ancestor closure of every segment reachable from
// the seed set, in a single topologically ordered pass.
//
// The queue starts with the seeds. Popping a segment merges its closure
// into each child and bumps the child's visited-parent count; a child whose
// every parent has been visited joins the queue. A segment is therefore
// popped only after its closure is complete: no ancestor is missed and no
// parent contributes twice. After propagation the segment is finalized (its
// closure sorted and classified, or written out) and its transient
// adjacency released.
//
// Traversal is strictly sequential; correctness depends on queue order.
// The context is only checked between pops so cancellation is coarse.
func Traverse(ctx context.Context, a *Arena, opts TraverseOptions) (*ClosureResult, error) {
	queue := a.Seeds()
	result := &ClosureResult{}

	for next := 0; next < len(queue); next++ {
		if next%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		id := queue[next]

		// Propagate this segment's closure to its children.
		set := a.ancestorSet(id)
		for _, child := range a.children[id] {
			childSet := a.ancestorSet(child)
			for ancestor := range set {
				childSet[ancestor] = struct{}{}
			}
			childSet[id] = struct{}{}
			a.visited[child]++
			if a.visited[child] == int64(len(a.parents[child])) {
				queue = append(queue, child)
			}
		}

		// Finalize: collapse the set to a sorted id list.
		if opts.IncludeSelf {
			set[id] = struct{}{}
		}
		ancestors := make([]int64, 0, len(set))
		for ancestor := range set {
			ancestors = append(ancestors, ancestor)
		}
		slices.Sort(ancestors)

		if opts.Writer != nil {
			if err := opts.Writer.Put(ctx, id, ancestors); err != nil {
				return nil, err
			}
			result.Partition.add(id, ancestors, opts.IncludeSelf, false)
		} else {
			result.Partition.add(id, ancestors, opts.IncludeSelf, true)
		}

		a.release(id)
		result.Finalized++
	}

	// Anything not finalized sits on a cycle (or below one). Report rather
	// than drop.
	if result.Finalized < a.n {
		for id := int64(1); id <= a.n; id++ {
			if !a.finalized[id] {
				result.Unreached = append(result.Unreached, id)
			}
		}
	}

	return result, nil
}
