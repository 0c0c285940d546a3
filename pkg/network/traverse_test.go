package network

import (
	"context"
	"slices"
	"testing"
)

func buildFixture(t *testing.T) *Arena {
	t.Helper()
	topo, err := BuildTopology(testRows(), DirectionUp)
	if err != nil {
		t.Fatalf("BuildTopology: %v", err)
	}
	return BuildArena(topo)
}

func multiByID(p Partition) map[int64][]int64 {
	m := make(map[int64][]int64, len(p.Multi))
	for _, seg := range p.Multi {
		m[seg.ID] = seg.Ancestors
	}
	return m
}

func TestTraverseDiamond(t *testing.T) {
	// Two paths converge: 1 -> 2 -> 4 and 1 -> 3 -> 4. The closure of 4 must
	// be the union of both parents' closures plus the parents themselves,
	// with the shared ancestor deduplicated.
	rows := []TopologyRow{
		{ID: "top", To: "t1", From: "s"},
		{ID: "left", To: "t2", From: "t1"},
		{ID: "right", To: "t2", From: "t1"},
		{ID: "bottom", To: "t3", From: "t2"},
	}
	topo, err := BuildTopology(rows, DirectionUp)
	if err != nil {
		t.Fatalf("BuildTopology: %v", err)
	}

	res, err := Traverse(context.Background(), BuildArena(topo), TraverseOptions{})
	if err != nil {
		t.Fatalf("Traverse: %v", err)
	}

	multi := multiByID(res.Partition)
	if got, want := multi[4], []int64{1, 2, 3}; !slices.Equal(got, want) {
		t.Errorf("closure of bottom = %v, want %v", got, want)
	}
	if len(res.Unreached) != 0 {
		t.Errorf("Unreached = %v, want none", res.Unreached)
	}
}

func TestTraverseFixtureIncludeSelf(t *testing.T) {
	res, err := Traverse(context.Background(), buildFixture(t), TraverseOptions{IncludeSelf: true})
	if err != nil {
		t.Fatalf("Traverse: %v", err)
	}

	if res.Finalized != 17 {
		t.Errorf("Finalized = %d, want 17", res.Finalized)
	}
	if len(res.Partition.NoAncestors) != 0 {
		t.Errorf("NoAncestors = %v, want empty", res.Partition.NoAncestors)
	}

	one := slices.Clone(res.Partition.OneAncestor)
	slices.Sort(one)
	if want := []int64{1, 2, 4, 5, 15, 17}; !slices.Equal(one, want) {
		t.Errorf("OneAncestor = %v, want %v", one, want)
	}

	multi := multiByID(res.Partition)
	want := map[int64][]int64{
		3:  {1, 2, 3},
		6:  {4, 5, 6},
		7:  {4, 5, 6, 7},
		8:  {4, 5, 6, 8},
		9:  {4, 5, 6, 8, 9},
		10: {1, 2, 3, 4, 5, 6, 7, 10},
		11: {4, 5, 6, 8, 11},
		12: {1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 12},
		13: {1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13},
		14: {14, 15},
		16: {1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
	}
	if len(multi) != len(want) {
		t.Fatalf("Multi has %d segments, want %d", len(multi), len(want))
	}
	for id, ancestors := range want {
		if got := multi[id]; !slices.Equal(got, ancestors) {
			t.Errorf("closure of %d = %v, want %v", id, got, ancestors)
		}
	}
}

func TestTraverseFixtureExcludeSelf(t *testing.T) {
	res, err := Traverse(context.Background(), buildFixture(t), TraverseOptions{})
	if err != nil {
		t.Fatalf("Traverse: %v", err)
	}

	// Without include-self, headwaters have empty closures and the
	// one-ancestor shortcut never applies.
	no := slices.Clone(res.Partition.NoAncestors)
	slices.Sort(no)
	if want := []int64{1, 2, 4, 5, 15, 17}; !slices.Equal(no, want) {
		t.Errorf("NoAncestors = %v, want %v", no, want)
	}
	if len(res.Partition.OneAncestor) != 0 {
		t.Errorf("OneAncestor = %v, want empty", res.Partition.OneAncestor)
	}

	multi := multiByID(res.Partition)
	if got, want := multi[12], []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}; !slices.Equal(got, want) {
		t.Errorf("closure of 12 = %v, want %v", got, want)
	}
	// Single real ancestor without include-self still takes the full path.
	if got, want := multi[14], []int64{15}; !slices.Equal(got, want) {
		t.Errorf("closure of 14 = %v, want %v", got, want)
	}
}

func TestTraversePartitionCoversAll(t *testing.T) {
	for _, includeSelf := range []bool{true, false} {
		res, err := Traverse(context.Background(), buildFixture(t), TraverseOptions{IncludeSelf: includeSelf})
		if err != nil {
			t.Fatalf("Traverse: %v", err)
		}
		if got := res.Partition.Total(); int64(got) != res.Finalized {
			t.Errorf("includeSelf=%v: partition total %d != finalized %d", includeSelf, got, res.Finalized)
		}

		seen := make(map[int64]bool)
		track := func(id int64) {
			if seen[id] {
				t.Errorf("includeSelf=%v: segment %d appears in two partitions", includeSelf, id)
			}
			seen[id] = true
		}
		for _, id := range res.Partition.NoAncestors {
			track(id)
		}
		for _, id := range res.Partition.OneAncestor {
			track(id)
		}
		for _, seg := range res.Partition.Multi {
			track(seg.ID)
		}
	}
}

func TestTraverseIdempotent(t *testing.T) {
	run := func() *ClosureResult {
		res, err := Traverse(context.Background(), buildFixture(t), TraverseOptions{IncludeSelf: true})
		if err != nil {
			t.Fatalf("Traverse: %v", err)
		}
		return res
	}

	first, second := run(), run()

	m1, m2 := multiByID(first.Partition), multiByID(second.Partition)
	if len(m1) != len(m2) {
		t.Fatalf("multi sizes differ: %d vs %d", len(m1), len(m2))
	}
	for id, a1 := range m1 {
		if !slices.Equal(a1, m2[id]) {
			t.Errorf("closure of %d differs between runs: %v vs %v", id, a1, m2[id])
		}
	}
	if first.Partition.Total() != second.Partition.Total() {
		t.Error("partition totals differ between runs")
	}
}

func TestTraverseCycleReported(t *testing.T) {
	// a -> b -> a plus one clean headwater. The cycle members never reach
	// their required visited-parent count and must be reported, not dropped.
	rows := []TopologyRow{
		{ID: "a", To: "n1", From: "n2"},
		{ID: "b", To: "n2", From: "n1"},
		{ID: "c", To: "n3", From: "n0"},
	}
	topo, err := BuildTopology(rows, DirectionUp)
	if err != nil {
		t.Fatalf("BuildTopology: %v", err)
	}

	res, err := Traverse(context.Background(), BuildArena(topo), TraverseOptions{})
	if err != nil {
		t.Fatalf("Traverse: %v", err)
	}
	if res.Finalized != 1 {
		t.Errorf("Finalized = %d, want 1", res.Finalized)
	}
	unreached := slices.Clone(res.Unreached)
	slices.Sort(unreached)
	if want := []int64{1, 2}; !slices.Equal(unreached, want) {
		t.Errorf("Unreached = %v, want %v", unreached, want)
	}
}

// collectWriter records Put calls for store-mode traversal tests.
type collectWriter struct {
	closures map[int64][]int64
}

func (w *collectWriter) Put(_ context.Context, id int64, ancestors []int64) error {
	if w.closures == nil {
		w.closures = make(map[int64][]int64)
	}
	w.closures[id] = slices.Clone(ancestors)
	return nil
}

func TestTraverseWithWriter(t *testing.T) {
	w := &collectWriter{}
	res, err := Traverse(context.Background(), buildFixture(t), TraverseOptions{IncludeSelf: true, Writer: w})
	if err != nil {
		t.Fatalf("Traverse: %v", err)
	}

	// Every finalized segment gets a record, including the one- and
	// no-ancestor partitions, and multi entries carry bare ids only.
	if len(w.closures) != 17 {
		t.Errorf("store has %d records, want 17", len(w.closures))
	}
	for _, seg := range res.Partition.Multi {
		if seg.Ancestors != nil {
			t.Errorf("segment %d: inline ancestors in store mode", seg.ID)
		}
	}
	if got, want := w.closures[12], []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 12}; !slices.Equal(got, want) {
		t.Errorf("stored closure of 12 = %v, want %v", got, want)
	}
}
