package network

// TopologyRow is one raw input row: a segment identifier plus the two node
// endpoints that position it in the network. Two segments are connected
// parent→child when the parent's To endpoint equals the child's From
// endpoint (upstream direction).
type TopologyRow struct {
	ID   string // external segment identifier
	To   string // downstream node endpoint
	From string // upstream node endpoint
}

// Direction selects which way ancestors flow through the network.
type Direction string

const (
	// DirectionUp builds upstream networks: a segment's ancestors are the
	// segments that flow into it. Headwaters are the seeds.
	DirectionUp Direction = "up"

	// DirectionDown builds downstream networks by swapping the to/from
	// endpoints, so a segment's ancestors are the segments it flows into.
	DirectionDown Direction = "down"
)

// Link relates a segment to one of its parents by internal id.
// ParentID 0 means the row matched no parent (a headwater in upstream
// builds); such rows seed the traversal.
type Link struct {
	ID       int64
	ParentID int64
}

// Topology is the ingested parent relation plus the id mapping.
type Topology struct {
	// Links holds one entry per discovered (segment, parent) pair, and one
	// entry with ParentID 0 per headwater row.
	Links []Link

	// IDs relates internal ids to external identifiers.
	IDs *IDMap

	// Headwaters is the number of rows whose From endpoint matched no other
	// row's To endpoint. Reported to the caller as a non-fatal warning.
	Headwaters int
}

// BuildTopology resolves raw rows into a parent relation. Internal ids are
// assigned 1-based in input row order. Parent linkage is found by matching
// each row's From endpoint against every other row's To endpoint; a row
// matching no To endpoint is recorded with ParentID 0 and counted as a
// headwater.
//
// With DirectionDown the endpoints are swapped before matching, producing
// the downstream relation from the same input.
//
// Duplicate external ids are rejected with a DUPLICATE_ID error.
func BuildTopology(rows []TopologyRow, dir Direction) (*Topology, error) {
	ids := newIDMap(len(rows))

	// First pass: assign ids and index segments by their To endpoint.
	// Multiple segments may share a To endpoint (a confluence junction).
	byTo := make(map[string][]int64, len(rows))
	for _, row := range rows {
		id, err := ids.add(row.ID)
		if err != nil {
			return nil, err
		}
		to := row.To
		if dir == DirectionDown {
			to = row.From
		}
		byTo[to] = append(byTo[to], id)
	}

	t := &Topology{IDs: ids}

	// Second pass: resolve each row's From endpoint to its parent segments.
	for i, row := range rows {
		id := int64(i) + 1
		from := row.From
		if dir == DirectionDown {
			from = row.To
		}
		parents := byTo[from]
		if len(parents) == 0 {
			t.Links = append(t.Links, Link{ID: id})
			t.Headwaters++
			continue
		}
		for _, parent := range parents {
			t.Links = append(t.Links, Link{ID: id, ParentID: parent})
		}
	}

	return t, nil
}
