package viz

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/streamnet/pkg/network"
)

// Options configures network diagram rendering.
type Options struct {
	// Detailed includes internal ids in node labels.
	// When false, only the external id is shown.
	Detailed bool
}

// ToDOT converts a topology to Graphviz DOT format. Edges run parent →
// child, nodes are labeled with external ids, and segments without parents
// get a grey fill to mark the traversal seeds.
func ToDOT(t *network.Topology, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph network {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	hasParent := make(map[int64]bool)
	for _, l := range t.Links {
		if l.ParentID != 0 {
			hasParent[l.ID] = true
		}
	}

	for id := int64(1); id <= int64(t.IDs.Len()); id++ {
		ext, ok := t.IDs.External(id)
		if !ok {
			continue
		}
		label := ext
		if opts.Detailed {
			label = fmt.Sprintf("%s\ninternal: %d", ext, id)
		}
		if hasParent[id] {
			fmt.Fprintf(&buf, "  %q [label=%q];\n", ext, label)
		} else {
			fmt.Fprintf(&buf, "  %q [label=%q, fillcolor=lightgrey];\n", ext, label)
		}
	}

	buf.WriteString("\n")
	for _, e := range sortedEdges(t) {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e[0], e[1])
	}

	buf.WriteString("}\n")
	return buf.String()
}

// sortedEdges resolves links to external-id pairs in a stable order.
func sortedEdges(t *network.Topology) [][2]string {
	var edges [][2]string
	for _, l := range t.Links {
		if l.ParentID == 0 {
			continue
		}
		parent, ok := t.IDs.External(l.ParentID)
		if !ok {
			continue
		}
		child, ok := t.IDs.External(l.ID)
		if !ok {
			continue
		}
		edges = append(edges, [2]string{parent, child})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i][0] != edges[j][0] {
			return edges[i][0] < edges[j][0]
		}
		return edges[i][1] < edges[j][1]
	})
	return edges
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
