package network

import (
	"github.com/matzehuels/streamnet/pkg/errors"
)

// IDMap is the bidirectional mapping between dense 1-based internal ids and
// caller-supplied external identifiers. Internal ids are assigned in input
// row order during ingestion and are stable for the lifetime of one build.
//
// The mapping is strict: every internal id resolves to exactly one external
// id and vice versa. Lookups never silently drop ids.
type IDMap struct {
	external []string         // index = internal id; slot 0 unused
	internal map[string]int64 // external id -> internal id
}

// newIDMap creates an IDMap with capacity for n segments.
func newIDMap(n int) *IDMap {
	return &IDMap{
		external: make([]string, 1, n+1),
		internal: make(map[string]int64, n),
	}
}

// add assigns the next dense internal id to the external id.
// Duplicate external ids are a fatal ingestion error: a later row silently
// reusing an earlier segment's identity would corrupt the closure build.
func (m *IDMap) add(externalID string) (int64, error) {
	if _, exists := m.internal[externalID]; exists {
		return 0, errors.New(errors.ErrCodeDuplicateID, "duplicate segment identifier %q", externalID)
	}
	id := int64(len(m.external))
	m.external = append(m.external, externalID)
	m.internal[externalID] = id
	return id, nil
}

// External returns the external identifier for an internal id.
func (m *IDMap) External(id int64) (string, bool) {
	if id < 1 || id >= int64(len(m.external)) {
		return "", false
	}
	return m.external[id], true
}

// Internal returns the internal id for an external identifier.
func (m *IDMap) Internal(externalID string) (int64, bool) {
	id, ok := m.internal[externalID]
	return id, ok
}

// Len returns the number of mapped segments.
func (m *IDMap) Len() int { return len(m.external) - 1 }
