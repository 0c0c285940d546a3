package netcalc

import "math"

// LocalTable holds the per-segment input values for one run, addressed by
// dense internal id. Values are stored column-major so a reduction over one
// variable walks a contiguous slice.
//
// NaN means "present but missing". A segment with no local row at all is
// tracked separately: absent rows contribute nothing to any reduction,
// including the missing-percentage denominator.
type LocalTable struct {
	n       int64
	vars    []string
	values  [][]float64 // [varIdx][id], slot 0 unused
	weights []float64   // [id]
	present []bool      // [id]
}

// NewLocalTable creates a table sized for n segments with the given
// variable columns. All rows start absent.
func NewLocalTable(n int64, vars []string) *LocalTable {
	t := &LocalTable{
		n:       n,
		vars:    vars,
		values:  make([][]float64, len(vars)),
		weights: make([]float64, n+1),
		present: make([]bool, n+1),
	}
	for i := range t.values {
		col := make([]float64, n+1)
		for j := range col {
			col[j] = math.NaN()
		}
		t.values[i] = col
	}
	return t
}

// SetRow records the local values of one segment. vals must have one entry
// per variable, NaN for missing cells. weight is 1 when the run has no
// weight column.
func (t *LocalTable) SetRow(id int64, weight float64, vals []float64) {
	t.present[id] = true
	t.weights[id] = weight
	for i, v := range vals {
		t.values[i][id] = v
	}
}

// Vars returns the variable column names in table order.
func (t *LocalTable) Vars() []string { return t.vars }

// Len returns the number of segment slots.
func (t *LocalTable) Len() int64 { return t.n }

// Has reports whether the segment has a local row.
func (t *LocalTable) Has(id int64) bool { return t.present[id] }

// Value returns one cell; NaN for missing cells and absent rows.
func (t *LocalTable) Value(varIdx int, id int64) float64 { return t.values[varIdx][id] }

// Weight returns the segment's weight. Meaningless for absent rows.
func (t *LocalTable) Weight(id int64) float64 { return t.weights[id] }
