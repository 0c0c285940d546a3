package viz

import (
	"strings"
	"testing"

	"github.com/matzehuels/streamnet/pkg/network"
)

func testTopology(t *testing.T) *network.Topology {
	t.Helper()
	rows := []network.TopologyRow{
		{ID: "a", To: "n1", From: "n0"},
		{ID: "b", To: "n1", From: "n9"},
		{ID: "c", To: "n2", From: "n1"},
	}
	topo, err := network.BuildTopology(rows, network.DirectionUp)
	if err != nil {
		t.Fatal(err)
	}
	return topo
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testTopology(t), Options{})

	if !strings.HasPrefix(dot, "digraph network {") {
		t.Errorf("missing digraph header:\n%s", dot)
	}
	for _, want := range []string{
		`"a" [label="a", fillcolor=lightgrey];`,
		`"b" [label="b", fillcolor=lightgrey];`,
		`"c" [label="c"];`,
		`"a" -> "c";`,
		`"b" -> "c";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	// Edges come out sorted for stable diffs.
	if strings.Index(dot, `"a" -> "c"`) > strings.Index(dot, `"b" -> "c"`) {
		t.Error("edges are not sorted")
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(testTopology(t), Options{Detailed: true})
	if !strings.Contains(dot, `label="a\ninternal: 1"`) {
		t.Errorf("detailed label missing:\n%s", dot)
	}
}
